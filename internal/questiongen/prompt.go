package questiongen

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a strict math quiz generator.

Rules:
- Generate a single new and varied math question for the given topic, concept, and difficulty.
- Never repeat a question from the "already asked" list.
- Use plain ASCII text for all math. Use / for fractions, ^ for exponents, and standard operators.
- The answer must be correct and in simplest form.
- The explanation must be a brief step-by-step walkthrough of the solution.
- The skill field must be exactly the requested concept name.

Example output:
{
  "question": "Factor the quadratic expression: x^2 - 7x + 12",
  "answer": "(x - 3)(x - 4)",
  "explanation": "To factor x^2 - 7x + 12, find two numbers that multiply to 12 and add to -7. These numbers are -3 and -4. So, (x - 3)(x - 4).",
  "skill": "Factoring Quadratics",
  "difficulty": 3
}`

// buildUserMessage constructs the question request from Input and Config limits.
func buildUserMessage(in Input, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", in.Topic)
	fmt.Fprintf(&b, "Concept: %s\n", in.Concept)
	fmt.Fprintf(&b, "Difficulty: %d\n", in.Level)

	b.WriteString("\nAlready asked in this session:\n")
	b.WriteString(buildAskedList(in.Asked, cfg.MaxAskedInPrompt))

	return b.String()
}

// buildAskedList formats recently asked questions for the prompt,
// keeping only the most recent max entries. Returns "None" for an
// empty history.
func buildAskedList(asked []string, max int) string {
	if len(asked) == 0 {
		return "None"
	}

	if max > 0 && len(asked) > max {
		asked = asked[len(asked)-max:]
	}

	var b strings.Builder
	for i, q := range asked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
