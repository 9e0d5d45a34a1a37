package quiz

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/abhisek/wikiquiz/internal/store"
)

// Record converts q to its stored form.
func (q *Quiz) Record() (*store.QuizRecord, error) {
	payload, err := json.Marshal(q)
	if err != nil {
		return nil, fmt.Errorf("encoding quiz %s: %w", q.ID, err)
	}
	return &store.QuizRecord{
		ID:            q.ID,
		CreatedAt:     q.CreatedAt,
		Title:         q.Title,
		Language:      string(q.Language),
		RequesterID:   q.RequesterID,
		ArticleTitle:  q.ArticleReference.Title,
		ArticleURL:    q.ArticleReference.URL,
		ModelName:     q.Usage.ModelName,
		QuestionCount: len(q.Questions),
		TotalTokens:   deref(q.Usage.TotalTokens),
		EstimatedCost: q.EstimatedCost,
		Payload:       payload,
	}, nil
}

// FromRecord decodes a stored quiz.
func FromRecord(rec *store.QuizRecord) (*Quiz, error) {
	var q Quiz
	if err := json.Unmarshal(rec.Payload, &q); err != nil {
		return nil, fmt.Errorf("decoding quiz %s: %w", rec.ID, err)
	}
	return &q, nil
}

// Save stores q in repo.
func Save(ctx context.Context, repo store.QuizRepo, q *Quiz) error {
	rec, err := q.Record()
	if err != nil {
		return err
	}
	return repo.Save(ctx, rec)
}

// Load returns the quiz with id, or nil if repo has none.
func Load(ctx context.Context, repo store.QuizRepo, id string) (*Quiz, error) {
	rec, err := repo.Get(ctx, id)
	if err != nil || rec == nil {
		return nil, err
	}
	return FromRecord(rec)
}
