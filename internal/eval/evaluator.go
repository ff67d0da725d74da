package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/abhisek/mathquiz/internal/llm"
)

// minExplanationLen is the shortest explanation considered useful to a
// student. Anything shorter gets replaced with a synthesized one.
const minExplanationLen = 30

// Verdict is the structured judgment of a user's answer.
type Verdict struct {
	IsCorrect   bool   `json:"is_correct"`
	Reason      string `json:"judgment_reason"`
	Explanation string `json:"explanation"`
}

// Config holds tunables for answer evaluation.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the default evaluation config. Temperature is
// kept low: judging equivalence wants determinism, not creativity.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   1024,
		Temperature: 0.1,
	}
}

// Evaluator judges user answers against the stored correct answer.
type Evaluator struct {
	provider llm.Provider
	config   Config
}

// New creates an Evaluator with the given provider and config.
func New(provider llm.Provider, cfg Config) *Evaluator {
	return &Evaluator{provider: provider, config: cfg}
}

// Evaluate judges the user's answer against the provided correct answer.
// Throttling and unparseable responses are folded into a safe-default
// incorrect verdict that cites the correct answer; a non-nil error is
// returned only for transient provider failures the caller may retry.
func (e *Evaluator) Evaluate(ctx context.Context, question, correct, userAnswer string) (Verdict, error) {
	ctx = llm.WithPurpose(ctx, "answer-eval")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(question, correct, userAnswer)},
		},
		Schema:      VerdictSchema,
		MaxTokens:   e.config.MaxTokens,
		Temperature: e.config.Temperature,
	}

	resp, err := e.provider.Generate(ctx, req)
	if err != nil {
		if llm.IsThrottled(err) {
			slog.Warn("answer evaluation throttled", "question", question)
			return safeDefault(correct, "Incorrect: API limit reached, could not evaluate"), nil
		}
		slog.Warn("answer evaluation failed", "question", question, "error", err)
		return Verdict{}, fmt.Errorf("evaluating answer: %w", err)
	}

	var v Verdict
	if err := json.Unmarshal(resp.Content, &v); err != nil {
		slog.Warn("verdict unmarshal failed", "error", err)
		return safeDefault(correct, "Incorrect: evaluation response was not usable"), nil
	}

	if len(v.Explanation) < minExplanationLen {
		v.Explanation = synthesizeExplanation(question, correct, v.IsCorrect)
	}
	return v, nil
}

// safeDefault marks the answer incorrect while still surfacing the
// correct answer, so a degraded evaluator never blocks the quiz.
func safeDefault(correct, reason string) Verdict {
	return Verdict{
		IsCorrect:   false,
		Reason:      reason,
		Explanation: fmt.Sprintf("The correct answer is %s. A detailed explanation is unavailable right now.", correct),
	}
}

// synthesizeExplanation fills in for a model explanation too short to
// help the student.
func synthesizeExplanation(question, correct string, isCorrect bool) string {
	if isCorrect {
		return fmt.Sprintf("Your answer is correct. For the question %q, the answer is %s.", question, correct)
	}
	return fmt.Sprintf("For the question %q, the correct answer is %s. Review the steps needed to reach this result and compare them against your approach.", question, correct)
}
