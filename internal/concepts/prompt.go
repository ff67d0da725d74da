package concepts

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a math education assistant.
For a given math topic, generate a JSON array of 5 distinct math concepts or skills, ordered by increasing difficulty.
Each object in the array must have:
- "concept_name": A concise name for the concept (e.g., "Solving Linear Equations").
- "description": A brief explanation of what the concept entails.
- "base_difficulty": An integer from 1 to 5 indicating its inherent difficulty within the topic.

The output MUST be a JSON array and nothing else.`

const exampleBlock = `Example for 'Algebra':
[
    {"concept_name": "Simplifying Expressions", "description": "Combining like terms and applying order of operations.", "base_difficulty": 1},
    {"concept_name": "Solving Linear Equations", "description": "Finding the value of a single variable in equations like ax + b = c.", "base_difficulty": 2},
    {"concept_name": "Factoring Quadratics", "description": "Decomposing quadratic trinomials into binomial factors.", "base_difficulty": 3},
    {"concept_name": "Solving Systems of Equations", "description": "Finding common solutions for multiple linear equations.", "base_difficulty": 4},
    {"concept_name": "Quadratic Formula", "description": "Using the quadratic formula to find roots of quadratic equations.", "base_difficulty": 5}
]`

// buildUserMessage constructs the concept-list request for a topic.
func buildUserMessage(topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n\n", topic)
	b.WriteString(exampleBlock)
	return b.String()
}
