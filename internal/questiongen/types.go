// Package questiongen generates one quiz question at a time for a
// (topic, concept, level) triple, rejecting repeats of questions the
// session has already seen.
package questiongen

import "errors"

// ErrDuplicateQuestion reports that the model returned a question text
// already present in the session's asked set. Callers retry on it.
var ErrDuplicateQuestion = errors.New("duplicate question generated")

// Input holds all context needed to generate a question.
type Input struct {
	// Topic is the quiz topic, e.g. "Algebra".
	Topic string

	// Level is the current difficulty (1-5).
	Level int

	// Concept is the sub-topic the question must target. The model's
	// own skill label is overridden with this value when they differ.
	Concept string

	// Asked contains every question text already presented in the
	// session. The most recent entries go into the prompt; the full
	// set is used for duplicate rejection.
	Asked []string
}

// Result is the outcome of a generation attempt. When Err is non-empty
// the result is an error record: Question carries a human-readable
// message and the other fields hold placeholders, so a caller that
// chooses to serve it still has a complete shape.
type Result struct {
	Question      string
	CorrectAnswer string
	Explanation   string
	Skill         string
	Difficulty    int

	// Err classifies the failure ("" = success).
	Err string
}

// Failed reports whether this result is an error record.
func (r Result) Failed() bool { return r.Err != "" }

// FallbackResult is the fixed substitute served when every generation
// attempt is exhausted.
func FallbackResult(level int) Result {
	return Result{
		Question:      "We couldn't generate a new question right now. Please try again later.",
		CorrectAnswer: "N/A",
		Explanation:   "No explanation available for this fallback question.",
		Skill:         "Fallback Question",
		Difficulty:    level,
	}
}
