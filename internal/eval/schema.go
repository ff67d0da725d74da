package eval

import "github.com/abhisek/mathquiz/internal/llm"

// VerdictSchema constrains the evaluator output to a structured verdict.
var VerdictSchema = &llm.Schema{
	Name:        "answer-verdict",
	Description: "Judgment of a user's answer against the provided correct answer",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"is_correct": map[string]any{
				"type":        "boolean",
				"description": "Whether the user's answer is mathematically equivalent to the provided correct answer",
			},
			"judgment_reason": map[string]any{
				"type":        "string",
				"description": "Short reason for the judgment",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Full step-by-step explanation of how to reach the provided correct answer",
			},
		},
		"required":             []string{"is_correct", "judgment_reason", "explanation"},
		"additionalProperties": false,
	},
}
