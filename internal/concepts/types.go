// Package concepts produces the ordered list of sub-topics a quiz
// session cycles through. Lists come from the LLM when possible and
// from a static per-topic table otherwise.
package concepts

// Concept is a named sub-topic within a quiz topic.
type Concept struct {
	// Name is a concise label, e.g. "Solving Linear Equations".
	Name string `json:"concept_name"`

	// Description briefly explains what the concept entails.
	Description string `json:"description"`

	// BaseDifficulty is the concept's inherent difficulty tier (1-5).
	BaseDifficulty int `json:"base_difficulty"`
}

// PerTopic is the number of concepts requested for a topic.
const PerTopic = 5
