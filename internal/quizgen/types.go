// Package quizgen turns sampled article text into multiple-choice
// questions using an LLM provider.
package quizgen

import "github.com/abhisek/wikiquiz/internal/lang"

// Request describes one generation call.
type Request struct {
	// SampledText is the article excerpt the questions must be based on.
	SampledText string

	Language lang.Language

	// NumQuestions is clamped to [MinQuestions, MaxQuestions].
	NumQuestions int

	// NumOptions is clamped to [Config.MinOptions, Config.MaxOptions].
	// Zero means DefaultOptions.
	NumOptions int

	// Provider and Model select the LLM. Empty values use the configured
	// defaults.
	Provider string
	Model    string
}

// Question is a validated multiple-choice question.
type Question struct {
	Text               string   `json:"text"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
}

// Usage describes the provider call behind a Result.
//
// PromptTokens counts every prompt token, including the CachedTokens
// subset. Token fields are nil when the provider reported no usage.
type Usage struct {
	PromptTokens     *int   `json:"promptTokens,omitempty"`
	CompletionTokens *int   `json:"completionTokens,omitempty"`
	CachedTokens     *int   `json:"cachedTokens,omitempty"`
	ResponseTimeMs   int64  `json:"responseTimeMs"`
	ModelName        string `json:"modelName"`
}

// TotalTokens returns the sum of the prompt and completion counts that are
// present, or nil when neither is.
func (u Usage) TotalTokens() *int {
	if u.PromptTokens == nil && u.CompletionTokens == nil {
		return nil
	}
	total := 0
	if u.PromptTokens != nil {
		total += *u.PromptTokens
	}
	if u.CompletionTokens != nil {
		total += *u.CompletionTokens
	}
	return &total
}

// Result is the outcome of a successful provider call. Questions may be
// empty when the model's output could not be used.
type Result struct {
	Questions []Question
	Usage     Usage

	// Model is the model id the provider was configured with. It can
	// differ from Usage.ModelName, which is what actually served the call.
	Model string

	// Dropped counts items that parsed but failed validation.
	Dropped int
}
