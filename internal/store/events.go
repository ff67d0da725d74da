package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LLMRequestEvent captures a single LLM API call.
type LLMRequestEvent struct {
	Timestamp    time.Time
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	CostUSD      float64
	Success      bool
	ErrorMessage string
}

// QuizResultEvent captures a completed quiz.
type QuizResultEvent struct {
	Timestamp      time.Time
	SessionID      string
	Username       string
	Topic          string
	TotalQuestions int
	Correct        int
	FinalPercent   float64
	FinalLevel     int
}

// EventRepo provides append and query access to the event log.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, ev LLMRequestEvent) error

	// AppendQuizResult records a completed quiz.
	AppendQuizResult(ctx context.Context, ev QuizResultEvent) error

	// RecentLLMRequests returns the most recent LLM request events,
	// newest first, up to limit.
	RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error)
}

type eventRepo struct {
	db *sql.DB
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, ev LLMRequestEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO llm_request_events
			(timestamp, provider, model, purpose, input_tokens, output_tokens, latency_ms, cost_usd, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Unix(), ev.Provider, ev.Model, ev.Purpose,
		ev.InputTokens, ev.OutputTokens, ev.LatencyMs, ev.CostUSD,
		boolToInt(ev.Success), ev.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("append llm request event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendQuizResult(ctx context.Context, ev QuizResultEvent) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_result_events
			(timestamp, session_id, username, topic, total_questions, correct, final_percent, final_level)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Unix(), ev.SessionID, ev.Username, ev.Topic,
		ev.TotalQuestions, ev.Correct, ev.FinalPercent, ev.FinalLevel,
	)
	if err != nil {
		return fmt.Errorf("append quiz result event: %w", err)
	}
	return nil
}

func (r *eventRepo) RecentLLMRequests(ctx context.Context, limit int) ([]LLMRequestEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT timestamp, provider, model, purpose, input_tokens, output_tokens, latency_ms, cost_usd, success, error_message
		FROM llm_request_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query llm request events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		var ev LLMRequestEvent
		var ts int64
		var success int
		if err := rows.Scan(&ts, &ev.Provider, &ev.Model, &ev.Purpose,
			&ev.InputTokens, &ev.OutputTokens, &ev.LatencyMs, &ev.CostUSD,
			&success, &ev.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan llm request event: %w", err)
		}
		ev.Timestamp = time.Unix(ts, 0)
		ev.Success = success != 0
		out = append(out, ev)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
