package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// quizRepo implements QuizRepo on the quizzes table.
type quizRepo struct {
	db *sqlx.DB
}

type quizRow struct {
	ID            string  `db:"id"`
	CreatedAt     int64   `db:"created_at"`
	Title         string  `db:"title"`
	Language      string  `db:"language"`
	RequesterID   string  `db:"requester_id"`
	ArticleTitle  string  `db:"article_title"`
	ArticleURL    string  `db:"article_url"`
	ModelName     string  `db:"model_name"`
	QuestionCount int     `db:"question_count"`
	TotalTokens   int     `db:"total_tokens"`
	EstimatedCost float64 `db:"estimated_cost"`
	Payload       []byte  `db:"payload"`
}

func (r quizRow) toRecord() QuizRecord {
	return QuizRecord{
		ID:            r.ID,
		CreatedAt:     time.UnixMilli(r.CreatedAt).UTC(),
		Title:         r.Title,
		Language:      r.Language,
		RequesterID:   r.RequesterID,
		ArticleTitle:  r.ArticleTitle,
		ArticleURL:    r.ArticleURL,
		ModelName:     r.ModelName,
		QuestionCount: r.QuestionCount,
		TotalTokens:   r.TotalTokens,
		EstimatedCost: r.EstimatedCost,
		Payload:       r.Payload,
	}
}

func (r *quizRepo) Save(ctx context.Context, rec *QuizRecord) error {
	if rec.ID == "" {
		return errors.New("save quiz: empty id")
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	payload := rec.Payload
	if payload == nil {
		payload = []byte("{}")
	}

	row := quizRow{
		ID:            rec.ID,
		CreatedAt:     createdAt.UnixMilli(),
		Title:         rec.Title,
		Language:      rec.Language,
		RequesterID:   rec.RequesterID,
		ArticleTitle:  rec.ArticleTitle,
		ArticleURL:    rec.ArticleURL,
		ModelName:     rec.ModelName,
		QuestionCount: rec.QuestionCount,
		TotalTokens:   rec.TotalTokens,
		EstimatedCost: rec.EstimatedCost,
		Payload:       payload,
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO quizzes (
		id, created_at, title, language, requester_id, article_title,
		article_url, model_name, question_count, total_tokens,
		estimated_cost, payload
	) VALUES (
		:id, :created_at, :title, :language, :requester_id, :article_title,
		:article_url, :model_name, :question_count, :total_tokens,
		:estimated_cost, :payload
	)`, row)
	if err != nil {
		return fmt.Errorf("save quiz %s: %w", rec.ID, err)
	}
	return nil
}

func (r *quizRepo) Get(ctx context.Context, id string) (*QuizRecord, error) {
	var row quizRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM quizzes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz %s: %w", id, err)
	}
	rec := row.toRecord()
	return &rec, nil
}

func (r *quizRepo) List(ctx context.Context, opts QueryOpts) ([]QuizRecord, error) {
	where, args := opts.where("")
	query := `SELECT id, created_at, title, language, requester_id,
		article_title, article_url, model_name, question_count,
		total_tokens, estimated_cost, x'' AS payload
	FROM quizzes` + where + " ORDER BY created_at DESC, id"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []quizRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	out := make([]QuizRecord, len(rows))
	for i, row := range rows {
		rec := row.toRecord()
		rec.Payload = nil
		out[i] = rec
	}
	return out, nil
}
