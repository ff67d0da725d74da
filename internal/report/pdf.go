package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/abhisek/mathquiz/internal/llm"
	"github.com/abhisek/mathquiz/internal/quiz"
)

// pageBreakAt is the y position (mm, A4 portrait) past which a new page
// is started before writing the next block.
const pageBreakAt = 270.0

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Builder assembles PDF quiz reports into a reports directory.
type Builder struct {
	provider llm.Provider
	dir      string
	now      func() time.Time
}

// NewBuilder creates a report builder writing into dir.
func NewBuilder(provider llm.Provider, dir string) *Builder {
	return &Builder{provider: provider, dir: dir, now: time.Now}
}

// Build writes the PDF report for the session and returns its filename
// (relative to the reports dir) plus the AI insights used. AI failures
// degrade to fallback text; only report assembly errors are returned.
func (b *Builder) Build(ctx context.Context, s *quiz.Session) (string, Insights, error) {
	perf := Aggregate(s.History)
	score := s.CorrectCount()
	total := len(s.History)

	insights := Summarize(ctx, b.provider, s.Topic, s.Username, perf, score, total)

	chartFile, err := os.CreateTemp("", "mathquiz-chart-*.png")
	if err != nil {
		return "", Insights{}, fmt.Errorf("creating chart temp file: %w", err)
	}
	chartPath := chartFile.Name()
	chartFile.Close()
	defer os.Remove(chartPath)

	if err := RenderChart(score, total-score, chartPath); err != nil {
		return "", Insights{}, err
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return "", Insights{}, fmt.Errorf("creating reports dir: %w", err)
	}

	filename := fmt.Sprintf("%s_quiz_report_%s.pdf",
		sanitizeUsername(s.Username), b.now().Format("20060102_150405"))

	if err := b.render(s, perf, insights, score, total, chartPath, filepath.Join(b.dir, filename)); err != nil {
		return "", Insights{}, err
	}
	return filename, insights, nil
}

func (b *Builder) render(s *quiz.Session, perf []SkillStats, insights Insights, score, total int, chartPath, outPath string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "Math Quiz Performance Report", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	percent := 0.0
	if total > 0 {
		percent = float64(score) / float64(total) * 100
	}
	pdf.SetFont("Helvetica", "", 11)
	info := []string{
		fmt.Sprintf("Student: %s", s.Username),
		fmt.Sprintf("Topic: %s", s.Topic),
		fmt.Sprintf("Date: %s", b.now().Format("January 2, 2006")),
		fmt.Sprintf("Score: %d / %d (%.0f%%)", score, total, percent),
		fmt.Sprintf("Final Difficulty Level: %d / %d", s.Level, quiz.MaxLevel),
	}
	for _, line := range info {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	// Chart, centered. 100mm wide on a 210mm page with 10mm margins.
	pdf.ImageOptions(chartPath, 55, pdf.GetY(), 100, 0, false,
		fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	pdf.SetY(pdf.GetY() + 105)

	b.section(pdf, "AI Insights")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(insights.Summary), "", "L", false)
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(0, 7, "Recommendations", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, tr(insights.Recommendations), "", "L", false)

	b.section(pdf, "Skill Breakdown")
	pdf.SetFont("Helvetica", "", 11)
	for _, sk := range perf {
		b.ensureSpace(pdf, 7)
		line := fmt.Sprintf("%s: %d/%d correct (%.0f%%)", sk.Skill, sk.Correct, sk.Total, sk.Percent)
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", false, 0, "")
	}

	b.section(pdf, "Question Transcript")
	for i, r := range s.History {
		b.ensureSpace(pdf, 40)
		verdict := "Incorrect"
		if r.Correct {
			verdict = "Correct"
		}
		pdf.SetFont("Helvetica", "B", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Q%d (%s, level %d): %s", i+1, r.Skill, r.Level, r.Question)), "", "L", false)
		pdf.SetFont("Helvetica", "", 11)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Your answer: %s  |  Correct answer: %s  |  %s", r.UserAnswer, r.CorrectAnswer, verdict)), "", "L", false)
		pdf.MultiCell(0, 6, tr(fmt.Sprintf("Explanation: %s", r.Explanation)), "", "L", false)
		pdf.Ln(3)
	}

	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("writing report pdf: %w", err)
	}
	return nil
}

// section writes a section heading, breaking the page first when the
// heading would land near the bottom.
func (b *Builder) section(pdf *fpdf.Fpdf, title string) {
	b.ensureSpace(pdf, 20)
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 9, title, "", 1, "L", false, 0, "")
}

func (b *Builder) ensureSpace(pdf *fpdf.Fpdf, needed float64) {
	if pdf.GetY()+needed > pageBreakAt {
		pdf.AddPage()
	}
}

// sanitizeUsername makes a username safe for use in a filename.
func sanitizeUsername(name string) string {
	clean := unsafeFilenameChars.ReplaceAllString(name, "_")
	if clean == "" || clean == "_" {
		return "student"
	}
	return clean
}
