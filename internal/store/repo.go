package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider          string
	Model             string
	Purpose           string
	RequesterID       string
	InputTokens       int
	CachedInputTokens int
	OutputTokens      int
	LatencyMs         int64
	Success           bool
	ErrorMessage      string
	RequestBody       string
	ResponseBody      string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose           string
	Calls             int
	InputTokens       int
	CachedInputTokens int
	OutputTokens      int
	AvgLatencyMs      int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model             string
	Calls             int
	InputTokens       int
	CachedInputTokens int
	OutputTokens      int
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// QuizRecord is a saved quiz. Payload holds the quiz's JSON encoding; the
// other fields are denormalized for listing.
type QuizRecord struct {
	ID            string
	CreatedAt     time.Time
	Title         string
	Language      string
	RequesterID   string
	ArticleTitle  string
	ArticleURL    string
	ModelName     string
	QuestionCount int
	TotalTokens   int
	EstimatedCost float64
	Payload       []byte
}

// QuizRepo stores generated quizzes.
type QuizRepo interface {
	// Save inserts a quiz. Saving an existing id is an error.
	Save(ctx context.Context, rec *QuizRecord) error

	// Get returns a quiz by id, or nil if it does not exist.
	Get(ctx context.Context, id string) (*QuizRecord, error)

	// List returns quizzes newest first, without payloads.
	List(ctx context.Context, opts QueryOpts) ([]QuizRecord, error)
}
