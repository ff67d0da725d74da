package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/mathquiz/internal/store"
)

// LoggingProvider is a decorator that records every LLM request as an
// event row and emits a structured log line.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
}

// WithLogging wraps a Provider with event logging. A nil repo disables
// the event row and keeps only the log line.
func WithLogging(p Provider, repo store.EventRepo) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	latencyMs := time.Since(start).Milliseconds()

	ev := store.LLMRequestEvent{
		Provider:  l.inner.ModelID(),
		Model:     l.inner.ModelID(),
		Purpose:   purpose,
		LatencyMs: latencyMs,
		Success:   err == nil,
	}

	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if c := LookupCost(resp.Model); c != nil {
			ev.CostUSD = c.Cost(resp.Usage.InputTokens, resp.Usage.OutputTokens)
		}
	}

	if err != nil {
		ev.ErrorMessage = err.Error()
		slog.Warn("llm request failed", "purpose", purpose, "model", ev.Model, "latency_ms", latencyMs, "error", err)
	} else {
		slog.Debug("llm request", "purpose", purpose, "model", ev.Model, "latency_ms", latencyMs,
			"input_tokens", ev.InputTokens, "output_tokens", ev.OutputTokens)
	}

	// Record the event but don't fail the request if logging fails.
	if l.eventRepo != nil {
		if logErr := l.eventRepo.AppendLLMRequest(ctx, ev); logErr != nil {
			slog.Warn("failed to record llm request event", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
