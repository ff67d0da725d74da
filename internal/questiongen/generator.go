package questiongen

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"

	"github.com/abhisek/mathquiz/internal/llm"
)

// Config holds tunables for question generation.
type Config struct {
	MaxTokens        int
	Temperature      float64
	MaxAskedInPrompt int
}

// DefaultConfig returns the default question generation config.
func DefaultConfig() Config {
	return Config{
		MaxTokens:        1024,
		Temperature:      0.7,
		MaxAskedInPrompt: 5,
	}
}

// Generator produces quiz questions using an LLM provider.
type Generator struct {
	provider llm.Provider
	config   Config
}

// New creates a Generator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Generator {
	return &Generator{provider: provider, config: cfg}
}

// questionOutput is the raw LLM response before validation.
type questionOutput struct {
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Explanation string `json:"explanation"`
	Skill       string `json:"skill"`
	Difficulty  int    `json:"difficulty"`
}

// Generate produces a single question for the given input. It returns
// ErrDuplicateQuestion when the model repeats an already-asked question
// so the caller can retry; every other failure is folded into an error
// record Result, never a returned error.
func (g *Generator) Generate(ctx context.Context, in Input) (Result, error) {
	ctx = llm.WithPurpose(ctx, "question-gen")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(in, g.config)},
		},
		Schema:      QuestionSchema,
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		if llm.IsThrottled(err) {
			slog.Warn("question generation throttled", "topic", in.Topic, "concept", in.Concept)
			return errorResult(in,
				"Error: API limit reached. Cannot generate custom question.",
				"The system could not generate a question because the API request limit was reached.",
				"API quota exceeded during question generation"), nil
		}
		slog.Warn("question generation failed", "topic", in.Topic, "concept", in.Concept, "error", err)
		return errorResult(in,
			"Error: Could not generate a valid question.",
			"The AI response was not usable. Please try again.",
			"question generation failed"), nil
	}

	var raw questionOutput
	if err := json.Unmarshal(resp.Content, &raw); err != nil {
		slog.Warn("question unmarshal failed", "concept", in.Concept, "error", err)
		return errorResult(in,
			"Error: Could not generate a valid question.",
			"The AI response was not valid JSON. Please try again.",
			"failed to parse question JSON"), nil
	}

	// The model's own skill label is not trusted.
	if raw.Skill != in.Concept {
		slog.Warn("skill mismatch, overriding", "got", raw.Skill, "want", in.Concept)
		raw.Skill = in.Concept
	}

	if slices.Contains(in.Asked, raw.Question) {
		return Result{}, fmt.Errorf("%w: %q", ErrDuplicateQuestion, raw.Question)
	}

	return Result{
		Question:      raw.Question,
		CorrectAnswer: raw.Answer,
		Explanation:   raw.Explanation,
		Skill:         raw.Skill,
		Difficulty:    raw.Difficulty,
	}, nil
}

// errorResult builds an error record carrying placement context so the
// message stays actionable in logs and, if served, on screen.
func errorResult(in Input, msg, explanation, errTag string) Result {
	return Result{
		Question:      fmt.Sprintf("%s (Topic: %s, Concept: %s, Level: %d)", msg, in.Topic, in.Concept, in.Level),
		CorrectAnswer: "N/A",
		Explanation:   explanation,
		Skill:         in.Concept,
		Difficulty:    in.Level,
		Err:           errTag,
	}
}
