package report

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartGreen = drawing.ColorFromHex("2e8b57")
	chartRed   = drawing.ColorFromHex("cd5c5c")
	chartGray  = drawing.ColorFromHex("bdbdbd")
)

// RenderChart writes a correct/incorrect pie chart PNG to path. Slices
// with zero count are omitted; when both counts are zero a single "No
// Data" placeholder slice is drawn instead.
func RenderChart(correct, incorrect int, path string) error {
	var values []chart.Value
	if correct > 0 {
		values = append(values, chart.Value{
			Value: float64(correct),
			Label: fmt.Sprintf("Correct (%d)", correct),
			Style: chart.Style{FillColor: chartGreen},
		})
	}
	if incorrect > 0 {
		values = append(values, chart.Value{
			Value: float64(incorrect),
			Label: fmt.Sprintf("Incorrect (%d)", incorrect),
			Style: chart.Style{FillColor: chartRed},
		})
	}
	if len(values) == 0 {
		values = []chart.Value{{
			Value: 1,
			Label: "No Data",
			Style: chart.Style{FillColor: chartGray},
		}}
	}

	pie := chart.PieChart{
		Width:  600,
		Height: 600,
		Values: values,
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer f.Close()

	if err := pie.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
