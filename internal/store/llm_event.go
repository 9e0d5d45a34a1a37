package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// eventRepo implements EventRepo on the llm_requests table.
type eventRepo struct {
	db *sqlx.DB
}

type llmEventRow struct {
	ID                int    `db:"id"`
	CreatedAt         int64  `db:"created_at"`
	Provider          string `db:"provider"`
	Model             string `db:"model"`
	Purpose           string `db:"purpose"`
	RequesterID       string `db:"requester_id"`
	InputTokens       int    `db:"input_tokens"`
	CachedInputTokens int    `db:"cached_input_tokens"`
	OutputTokens      int    `db:"output_tokens"`
	LatencyMs         int64  `db:"latency_ms"`
	Success           bool   `db:"success"`
	ErrorMessage      string `db:"error_message"`
	RequestBody       string `db:"request_body"`
	ResponseBody      string `db:"response_body"`
}

func (r llmEventRow) toEvent() LLMEvent {
	return LLMEvent{
		ID:        r.ID,
		Timestamp: time.UnixMilli(r.CreatedAt).UTC(),
		LLMRequestEventData: LLMRequestEventData{
			Provider:          r.Provider,
			Model:             r.Model,
			Purpose:           r.Purpose,
			RequesterID:       r.RequesterID,
			InputTokens:       r.InputTokens,
			CachedInputTokens: r.CachedInputTokens,
			OutputTokens:      r.OutputTokens,
			LatencyMs:         r.LatencyMs,
			Success:           r.Success,
			ErrorMessage:      r.ErrorMessage,
			RequestBody:       r.RequestBody,
			ResponseBody:      r.ResponseBody,
		},
	}
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	row := llmEventRow{
		CreatedAt:         time.Now().UnixMilli(),
		Provider:          data.Provider,
		Model:             data.Model,
		Purpose:           data.Purpose,
		RequesterID:       data.RequesterID,
		InputTokens:       data.InputTokens,
		CachedInputTokens: data.CachedInputTokens,
		OutputTokens:      data.OutputTokens,
		LatencyMs:         data.LatencyMs,
		Success:           data.Success,
		ErrorMessage:      data.ErrorMessage,
		RequestBody:       data.RequestBody,
		ResponseBody:      data.ResponseBody,
	}

	_, err := r.db.NamedExecContext(ctx, `INSERT INTO llm_requests (
		created_at, provider, model, purpose, requester_id,
		input_tokens, cached_input_tokens, output_tokens, latency_ms,
		success, error_message, request_body, response_body
	) VALUES (
		:created_at, :provider, :model, :purpose, :requester_id,
		:input_tokens, :cached_input_tokens, :output_tokens, :latency_ms,
		:success, :error_message, :request_body, :response_body
	)`, row)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	where, args := opts.where("purpose")
	query := "SELECT * FROM llm_requests" + where + " ORDER BY id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	var rows []llmEventRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}

	events := make([]LLMEvent, len(rows))
	for i, row := range rows {
		events[i] = row.toEvent()
	}
	return events, nil
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	var row llmEventRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM llm_requests WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get LLM event %d: %w", id, err)
	}
	e := row.toEvent()
	return &e, nil
}

func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	var rows []struct {
		Purpose           string `db:"purpose"`
		Calls             int    `db:"calls"`
		InputTokens       int    `db:"input_tokens"`
		CachedInputTokens int    `db:"cached_input_tokens"`
		OutputTokens      int    `db:"output_tokens"`
		AvgLatencyMs      int64  `db:"avg_latency_ms"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT
		purpose,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(cached_input_tokens), 0) AS cached_input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens,
		CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) AS avg_latency_ms
	FROM llm_requests
	GROUP BY purpose
	ORDER BY calls DESC, purpose`)
	if err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}

	out := make([]PurposeUsage, len(rows))
	for i, row := range rows {
		out[i] = PurposeUsage(row)
	}
	return out, nil
}

func (r *eventRepo) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	var rows []struct {
		Model             string `db:"model"`
		Calls             int    `db:"calls"`
		InputTokens       int    `db:"input_tokens"`
		CachedInputTokens int    `db:"cached_input_tokens"`
		OutputTokens      int    `db:"output_tokens"`
	}
	err := r.db.SelectContext(ctx, &rows, `SELECT
		model,
		COUNT(*) AS calls,
		COALESCE(SUM(input_tokens), 0) AS input_tokens,
		COALESCE(SUM(cached_input_tokens), 0) AS cached_input_tokens,
		COALESCE(SUM(output_tokens), 0) AS output_tokens
	FROM llm_requests
	WHERE success = 1
	GROUP BY model
	ORDER BY model`)
	if err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}

	out := make([]ModelUsage, len(rows))
	for i, row := range rows {
		out[i] = ModelUsage(row)
	}
	return out, nil
}

// where builds a WHERE clause for the options. purposeCol names the column
// the Purpose filter applies to; "" disables it.
func (o QueryOpts) where(purposeCol string) (string, []any) {
	var conds []string
	var args []any

	if purposeCol != "" && o.Purpose != "" {
		conds = append(conds, purposeCol+" = ?")
		args = append(args, o.Purpose)
	}
	if !o.From.IsZero() {
		conds = append(conds, "created_at >= ?")
		args = append(args, o.From.UnixMilli())
	}
	if !o.To.IsZero() {
		conds = append(conds, "created_at <= ?")
		args = append(args, o.To.UnixMilli())
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
