package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/mathquiz/internal/llm"
)

// Insights is the AI-written portion of a report.
type Insights struct {
	Summary         string
	Recommendations string
}

const summarySystemPrompt = `You are an encouraging math tutor writing a short performance review for a student who just finished a quiz. Respond in exactly this format, with no preamble:

Summary: <2-3 sentences on overall performance, naming the strongest and weakest skills>
Recommendations: <2-3 sentences of concrete, actionable study advice for the weakest skills>`

// Summarize asks the LLM for a performance summary and study
// recommendations. It never fails: any provider error or unusable
// response degrades to generic fallback text.
func Summarize(ctx context.Context, provider llm.Provider, topic, username string, perf []SkillStats, score, total int) Insights {
	ctx = llm.WithPurpose(ctx, "report-summary")

	resp, err := provider.Generate(ctx, llm.Request{
		System: summarySystemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildSummaryMessage(topic, username, perf, score, total)},
		},
		MaxTokens:   512,
		Temperature: 0.5,
	})
	if err != nil {
		slog.Warn("report summary generation failed", "topic", topic, "error", err)
		return fallbackInsights(topic)
	}

	insights := parseInsights(string(resp.Content))
	if insights.Summary == "" {
		return fallbackInsights(topic)
	}
	if insights.Recommendations == "" {
		insights.Recommendations = fallbackInsights(topic).Recommendations
	}
	return insights
}

func buildSummaryMessage(topic, username string, perf []SkillStats, score, total int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student: %s\nTopic: %s\nScore: %d/%d\n\nPer-skill results:\n", username, topic, score, total)
	for _, s := range perf {
		fmt.Fprintf(&b, "- %s: %d/%d correct (%.0f%%)\n", s.Skill, s.Correct, s.Total, s.Percent)
	}
	return b.String()
}

// parseInsights splits the response on the Summary:/Recommendations:
// markers, tolerating conversational filler the model sometimes
// prepends.
func parseInsights(text string) Insights {
	text = stripFiller(text)

	var in Insights
	if i := strings.Index(text, "Recommendations:"); i >= 0 {
		in.Summary = text[:i]
		in.Recommendations = strings.TrimSpace(text[i+len("Recommendations:"):])
	} else {
		in.Summary = text
	}
	in.Summary = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(in.Summary), "Summary:"))
	in.Summary = strings.TrimSpace(in.Summary)
	return in
}

// stripFiller drops leading lines like "Sure, here's the review:" that
// appear before the Summary: marker.
func stripFiller(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "Summary:") {
			return strings.Join(lines[i:], "\n")
		}
	}
	return text
}

func fallbackInsights(topic string) Insights {
	return Insights{
		Summary:         fmt.Sprintf("You completed a quiz on %s. A detailed AI summary is unavailable right now.", topic),
		Recommendations: "Review the questions you missed, paying attention to the explanations, and try another quiz to reinforce what you learned.",
	}
}
