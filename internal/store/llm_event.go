package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (e *Events) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	return e.insert(ctx, LLMRequestEventsTable.Name,
		[]string{"provider", "model", "purpose", "input_tokens", "output_tokens", "frame_bytes",
			"latency_ms", "success", "stop_reason", "error_message", "request_body", "response_body"},
		[]any{data.Provider, data.Model, data.Purpose, data.InputTokens, data.OutputTokens, data.FrameBytes,
			data.LatencyMs, data.Success, data.StopReason, data.ErrorMessage, data.RequestBody, data.ResponseBody},
	)
}

var llmColumns = []string{
	"id", "sequence", "timestamp", "provider", "model", "purpose", "input_tokens",
	"output_tokens", "frame_bytes", "latency_ms", "success", "stop_reason", "error_message",
	"request_body", "response_body",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLLMRecord(row rowScanner) (*LLMRequestRecord, error) {
	var r LLMRequestRecord
	err := row.Scan(&r.ID, &r.Sequence, &r.Timestamp, &r.Provider, &r.Model, &r.Purpose,
		&r.InputTokens, &r.OutputTokens, &r.FrameBytes, &r.LatencyMs, &r.Success, &r.StopReason,
		&r.ErrorMessage, &r.RequestBody, &r.ResponseBody)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// QueryLLMEvents returns LLM request events, newest first.
func (e *Events) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestRecord, error) {
	sel := builder().Select(llmColumns...).
		From(entsql.Table(LLMRequestEventsTable.Name)).
		OrderBy(entsql.Desc("sequence"))
	opts.SessionID = ""
	query, args := opts.where(sel).Query()

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestRecord
	for rows.Next() {
		r, err := scanLLMRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// GetLLMEvent returns the event with the given id, or nil if absent.
func (e *Events) GetLLMEvent(ctx context.Context, id int) (*LLMRequestRecord, error) {
	query, args := builder().Select(llmColumns...).
		From(entsql.Table(LLMRequestEventsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()

	r, err := scanLLMRecord(e.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get llm event %d: %w", id, err)
	}
	return r, nil
}

// LLMUsageByPurpose aggregates token usage per purpose label.
func (e *Events) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	return e.llmUsage(ctx, "purpose")
}

// LLMUsageByModel aggregates token usage per model ID.
func (e *Events) LLMUsageByModel(ctx context.Context) ([]LLMUsage, error) {
	return e.llmUsage(ctx, "model")
}

func (e *Events) llmUsage(ctx context.Context, groupBy string) ([]LLMUsage, error) {
	query, args := builder().
		Select(
			groupBy,
			entsql.Count("*"),
			"COALESCE(SUM(input_tokens), 0)",
			"COALESCE(SUM(output_tokens), 0)",
			"COALESCE(AVG(latency_ms), 0)",
			"COALESCE(SUM(stop_reason = 'refused'), 0)",
		).
		From(entsql.Table(LLMRequestEventsTable.Name)).
		GroupBy(groupBy).
		OrderBy(groupBy).
		Query()

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm usage by %s: %w", groupBy, err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u   LLMUsage
			key string
			avg float64
		)
		if err := rows.Scan(&key, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg, &u.Refused); err != nil {
			return nil, fmt.Errorf("scan llm usage: %w", err)
		}
		if groupBy == "model" {
			u.Model = key
		} else {
			u.Purpose = key
		}
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}
