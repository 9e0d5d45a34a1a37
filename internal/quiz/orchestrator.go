package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abhisek/wikiquiz/internal/lang"
	"github.com/abhisek/wikiquiz/internal/llm"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/sampler"
	"github.com/abhisek/wikiquiz/internal/wiki"
)

// ArticleSource resolves topics and fetches articles. *wiki.Client
// implements it.
type ArticleSource interface {
	ResolveExactTitle(ctx context.Context, text string, l lang.Language) (string, error)
	FetchTitle(ctx context.Context, title, topic string, l lang.Language) (*wiki.Article, error)
}

// QuestionGenerator produces questions from sampled text. *quizgen.Engine
// implements it.
type QuestionGenerator interface {
	Generate(ctx context.Context, req quizgen.Request) (*quizgen.Result, error)
}

// CostCalculator prices a provider call. *llm.Catalog implements it.
type CostCalculator interface {
	CostOf(modelID string, promptTokens, cachedTokens, completionTokens int) (float64, error)
}

// TextSampler cuts an excerpt of at most n code points from text.
type TextSampler interface {
	Sample(text string, n int) string
}

// SamplerFactory returns a fresh sampler for one request.
type SamplerFactory func() TextSampler

// LanguageDetector guesses the language of a text.
type LanguageDetector interface {
	Detect(text string) (lang.Language, bool)
}

// Orchestrator runs the quiz pipeline. It keeps no per-request state and
// is safe for concurrent use when its collaborators are.
type Orchestrator struct {
	articles   ArticleSource
	generator  QuestionGenerator
	costs      CostCalculator
	newSampler SamplerFactory
	detector   LanguageDetector
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSamplerFactory replaces the default clock-seeded sampler.
func WithSamplerFactory(f SamplerFactory) Option {
	return func(o *Orchestrator) { o.newSampler = f }
}

// WithLanguageDetector enables the article language check.
func WithLanguageDetector(d LanguageDetector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithClock overrides time.Now for quiz timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator.
func New(articles ArticleSource, generator QuestionGenerator, costs CostCalculator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		articles:   articles,
		generator:  generator,
		costs:      costs,
		newSampler: func() TextSampler { return sampler.NewDefault() },
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(zap.String("component", "quiz"))
	return o
}

// GenerateQuiz resolves p.Topic to an article, samples it, generates
// questions and prices the call. Any failure ends the request; nothing is
// retried at this level.
func (o *Orchestrator) GenerateQuiz(ctx context.Context, p Params) (*Quiz, error) {
	if _, err := lang.CodeFor(p.Language); err != nil {
		return nil, err
	}

	// Fail on an unpriced model before spending a provider call on it.
	if p.Model != "" {
		if _, err := o.costs.CostOf(llm.ResolveModelID(p.Provider, p.Model), 0, 0, 0); err != nil {
			return nil, err
		}
	}

	if p.RequesterID != "" {
		ctx = llm.WithRequester(ctx, p.RequesterID)
	}

	title, err := o.articles.ResolveExactTitle(ctx, p.Topic, p.Language)
	if err != nil {
		return nil, stageError(StageResolve, err)
	}
	if title == "" {
		return nil, &wiki.ArticleNotFoundError{Topic: p.Topic, Language: p.Language}
	}

	article, err := o.articles.FetchTitle(ctx, title, p.Topic, p.Language)
	if err != nil {
		return nil, stageError(StageFetch, err)
	}

	o.checkLanguage(article, p.Language)

	length := p.ExtractLength
	if length == 0 {
		length = DefaultExtractLength
	}
	sampled := o.newSampler().Sample(article.Extract, length)

	// Sampling never blocks; catch a cancel that landed during the fetch
	// before paying for generation.
	if err := ctx.Err(); err != nil {
		return nil, stageError(StageGenerate, err)
	}

	result, err := o.generator.Generate(ctx, quizgen.Request{
		SampledText:  sampled,
		Language:     p.Language,
		NumQuestions: p.NumQuestions,
		NumOptions:   p.NumOptions,
		Provider:     p.Provider,
		Model:        p.Model,
	})
	if err != nil {
		return nil, stageError(StageGenerate, err)
	}

	cost, err := o.price(result)
	if err != nil {
		return nil, err
	}

	q := &Quiz{
		ID:               o.newID(),
		Title:            article.Title,
		CreatedAt:        o.now().UTC(),
		Language:         p.Language,
		RequesterID:      p.RequesterID,
		ArticleReference: referenceFor(article),
		Questions:        result.Questions,
		Usage:            usageFrom(result.Usage),
		EstimatedCost:    cost,
	}
	if q.Questions == nil {
		q.Questions = []quizgen.Question{}
	}

	o.logger.Info("quiz generated",
		zap.String("quiz_id", q.ID),
		zap.String("article", article.Title),
		zap.Int("questions", len(q.Questions)),
		zap.Int("dropped", result.Dropped),
		zap.String("model", q.Usage.ModelName),
		zap.Float64("cost", cost))
	return q, nil
}

// price costs the call with the served model, falling back to the
// configured one when the served id is not in the catalog.
func (o *Orchestrator) price(r *quizgen.Result) (float64, error) {
	prompt := deref(r.Usage.PromptTokens)
	cached := deref(r.Usage.CachedTokens)
	completion := deref(r.Usage.CompletionTokens)
	uncached := max(prompt-cached, 0)

	cost, err := o.costs.CostOf(r.Usage.ModelName, uncached, cached, completion)
	if err == nil {
		return cost, nil
	}
	var unknown *llm.UnknownModelError
	if !errors.As(err, &unknown) || r.Model == "" || r.Model == r.Usage.ModelName {
		return 0, err
	}
	o.logger.Debug("served model not priced, using configured model",
		zap.String("served", r.Usage.ModelName),
		zap.String("configured", r.Model))
	return o.costs.CostOf(r.Model, uncached, cached, completion)
}

func (o *Orchestrator) checkLanguage(a *wiki.Article, want lang.Language) {
	if o.detector == nil || a.Extract == "" {
		return
	}
	got, ok := o.detector.Detect(a.Extract)
	if ok && got != want {
		o.logger.Warn("article text does not look like the requested language",
			zap.String("article", a.Title),
			zap.String("requested", string(want)),
			zap.String("detected", string(got)))
	}
}

// stageError turns a caller cancellation into a CancellationError and
// wraps everything else with the stage name.
func stageError(stage string, err error) error {
	if errors.Is(err, context.Canceled) {
		return &CancellationError{Stage: stage, Err: err}
	}
	var notFound *wiki.ArticleNotFoundError
	if errors.As(err, &notFound) {
		return err
	}
	return fmt.Errorf("%s: %w", stage, err)
}
