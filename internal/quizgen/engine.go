package quizgen

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/wikiquiz/internal/llm"
)

// ProviderSource builds LLM providers by name. *llm.Registry implements it.
type ProviderSource interface {
	Provider(ctx context.Context, name, model string) (llm.Provider, error)
	DefaultProvider() string
}

// Engine generates questions through a ProviderSource.
type Engine struct {
	providers ProviderSource
	config    Config
	logger    *zap.Logger
}

// New creates an Engine. Zero config fields take their defaults and a nil
// logger disables logging.
func New(providers ProviderSource, cfg Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		providers: providers,
		config:    cfg.withDefaults(),
		logger:    logger.With(zap.String("component", "quizgen")),
	}
}

// Generate asks the selected provider for questions about req.SampledText.
//
// Only provider failures are errors, reported as *GenerationError. Output
// that cannot be parsed produces a Result with no questions.
func (e *Engine) Generate(ctx context.Context, req Request) (*Result, error) {
	numQuestions := clampQuestions(req.NumQuestions)
	numOptions := e.config.clampOptions(req.NumOptions)

	providerName := req.Provider
	if providerName == "" {
		providerName = e.providers.DefaultProvider()
	}

	ctx = llm.WithPurpose(ctx, "quiz-gen")

	provider, err := e.providers.Provider(ctx, providerName, req.Model)
	if err != nil {
		return nil, &GenerationError{Provider: providerName, Model: req.Model, Err: err}
	}

	llmReq := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(req.SampledText, req.Language, numQuestions, numOptions)},
		},
		MaxTokens:   e.config.responseBudget(numQuestions),
		Temperature: e.config.Temperature,
	}

	start := time.Now()
	resp, err := provider.Generate(ctx, llmReq)
	elapsed := time.Since(start)
	if err != nil {
		return nil, &GenerationError{Provider: providerName, Model: provider.ModelID(), Err: err}
	}

	usage := toUsage(resp, provider.ModelID(), elapsed)

	questions, dropped := parseQuestions(RepairJSON(resp.Content), e.config, e.logger)
	if len(questions) > numQuestions {
		questions = questions[:numQuestions]
	}

	e.logger.Debug("generated questions",
		zap.String("provider", providerName),
		zap.String("model", usage.ModelName),
		zap.Int("requested", numQuestions),
		zap.Int("accepted", len(questions)),
		zap.Int("dropped", dropped),
		zap.Int64("latency_ms", usage.ResponseTimeMs))

	return &Result{
		Questions: questions,
		Usage:     usage,
		Model:     provider.ModelID(),
		Dropped:   dropped,
	}, nil
}

func toUsage(resp *llm.Response, fallbackModel string, elapsed time.Duration) Usage {
	u := Usage{
		ResponseTimeMs: elapsed.Milliseconds(),
		ModelName:      resp.Model,
	}
	if u.ModelName == "" {
		u.ModelName = fallbackModel
	}

	ru := resp.Usage
	if ru.InputTokens == 0 && ru.CachedInputTokens == 0 && ru.OutputTokens == 0 {
		return u
	}
	prompt := ru.InputTokens + ru.CachedInputTokens
	completion := ru.OutputTokens
	cached := ru.CachedInputTokens
	u.PromptTokens = &prompt
	u.CompletionTokens = &completion
	u.CachedTokens = &cached
	return u
}
