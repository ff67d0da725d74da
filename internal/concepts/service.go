package concepts

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/abhisek/mathquiz/internal/llm"
)

// Config holds tunables for concept generation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the default concept generation config.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.4,
	}
}

// Service generates concept lists using an LLM provider.
type Service struct {
	provider llm.Provider
	config   Config
}

// NewService creates a Service with the given provider and config.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, config: cfg}
}

// List returns five concepts for the topic, ordered by increasing
// difficulty. Any provider or parse failure degrades to the static
// fallback table; List never returns an error.
func (s *Service) List(ctx context.Context, topic string) []Concept {
	ctx = llm.WithPurpose(ctx, "concept-list")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(topic)},
		},
		Schema:      ListSchema,
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		slog.Warn("concept generation failed, using fallback", "topic", topic, "error", err)
		return Fallback(topic)
	}

	var list []Concept
	if err := json.Unmarshal(resp.Content, &list); err != nil {
		slog.Warn("concept list unmarshal failed, using fallback", "topic", topic, "error", err)
		return Fallback(topic)
	}
	if len(list) == 0 {
		slog.Warn("empty concept list, using fallback", "topic", topic)
		return Fallback(topic)
	}

	return list
}
