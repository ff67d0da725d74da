package questiongen

import "github.com/abhisek/mathquiz/internal/llm"

// QuestionSchema defines the JSON schema for question generation responses.
var QuestionSchema = &llm.Schema{
	Name:        "quiz-question",
	Description: "A single quiz question with answer and explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question": map[string]any{
				"type":        "string",
				"description": "The question text shown to the user, in plain ASCII",
			},
			"answer": map[string]any{
				"type":        "string",
				"description": "The correct answer as a string, in simplest form",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "Brief step-by-step explanation of the solution",
			},
			"skill": map[string]any{
				"type":        "string",
				"description": "The concept this question targets; must match the requested concept",
			},
			"difficulty": map[string]any{
				"type":        "integer",
				"minimum":     1,
				"maximum":     5,
				"description": "Difficulty from 1 (easy) to 5 (hard)",
			},
		},
		"required":             []any{"question", "answer", "explanation", "skill", "difficulty"},
		"additionalProperties": false,
	},
}
