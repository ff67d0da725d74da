package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// ExtractJSON strips markdown fencing and conversational filler from an
// LLM response, returning the JSON payload it contains. Models without a
// native structured-output mode often wrap their JSON in a ```json block
// or surround it with prose; structured parsing must survive both.
//
// Resolution order: a fenced code block wins, then the outermost
// {...} or [...] span if it parses as JSON, then the trimmed input.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	if m := fencedJSON.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}

	if span, ok := outerSpan(text, '{', '}'); ok {
		return span
	}
	if span, ok := outerSpan(text, '[', ']'); ok {
		return span
	}

	return text
}

// outerSpan returns the substring from the first open delimiter to the
// last close delimiter, but only when that span is valid JSON.
func outerSpan(text string, open, close byte) (string, bool) {
	start := strings.IndexByte(text, open)
	end := strings.LastIndexByte(text, close)
	if start == -1 || end == -1 || start >= end {
		return "", false
	}
	span := strings.TrimSpace(text[start : end+1])
	if !json.Valid([]byte(span)) {
		return "", false
	}
	return span, true
}
