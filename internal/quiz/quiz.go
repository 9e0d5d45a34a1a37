// Package quiz composes article lookup, sampling, question generation and
// pricing into a single quiz-generation call.
package quiz

import (
	"time"

	"github.com/abhisek/wikiquiz/internal/lang"
	"github.com/abhisek/wikiquiz/internal/quizgen"
	"github.com/abhisek/wikiquiz/internal/wiki"
)

// Quiz is the result of one generation call. It is not modified after
// GenerateQuiz returns it.
type Quiz struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	CreatedAt        time.Time          `json:"createdAt"`
	Language         lang.Language      `json:"language"`
	RequesterID      string             `json:"requesterId"`
	ArticleReference ArticleReference   `json:"articleReference"`
	Questions        []quizgen.Question `json:"questions"`
	Usage            Usage              `json:"usage"`
	EstimatedCost    float64            `json:"estimatedCost"`
}

// ArticleReference identifies the article a quiz was generated from.
type ArticleReference struct {
	PageID   int           `json:"pageId"`
	Title    string        `json:"title"`
	URL      string        `json:"url"`
	Language lang.Language `json:"language"`
}

func referenceFor(a *wiki.Article) ArticleReference {
	return ArticleReference{
		PageID:   a.PageID,
		Title:    a.Title,
		URL:      a.URL,
		Language: a.Language,
	}
}

// Usage is the serialized form of quizgen.Usage.
type Usage struct {
	PromptTokens     *int   `json:"promptTokens"`
	CompletionTokens *int   `json:"completionTokens"`
	CachedTokens     *int   `json:"cachedTokens"`
	TotalTokens      *int   `json:"totalTokens"`
	ResponseTimeMs   int64  `json:"responseTimeMs"`
	ModelName        string `json:"modelName"`
}

func usageFrom(u quizgen.Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		CachedTokens:     u.CachedTokens,
		TotalTokens:      u.TotalTokens(),
		ResponseTimeMs:   u.ResponseTimeMs,
		ModelName:        u.ModelName,
	}
}

// Params describes a quiz request.
type Params struct {
	Topic    string
	Language lang.Language

	// Provider and Model select the LLM; empty means configured defaults.
	Provider string
	Model    string

	NumQuestions int
	NumOptions   int

	// ExtractLength is the sample size in code points. Zero means
	// DefaultExtractLength.
	ExtractLength int

	RequesterID string
}

// DefaultExtractLength is used when Params.ExtractLength is zero.
const DefaultExtractLength = 4000

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}
