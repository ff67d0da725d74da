package concepts

import "github.com/abhisek/mathquiz/internal/llm"

// ListSchema defines the JSON schema for concept-list responses.
var ListSchema = &llm.Schema{
	Name:        "concept-list",
	Description: "Five math concepts for a topic, ordered by increasing difficulty",
	Definition: map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"concept_name": map[string]any{
					"type":        "string",
					"description": "Concise name for the concept",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "Brief explanation of what the concept entails",
				},
				"base_difficulty": map[string]any{
					"type":        "integer",
					"minimum":     1,
					"maximum":     5,
					"description": "Inherent difficulty of the concept within the topic",
				},
			},
			"required":             []any{"concept_name", "description", "base_difficulty"},
			"additionalProperties": false,
		},
		"minItems": PerTopic,
		"maxItems": PerTopic,
	},
}
