package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// ChartRenderer draws the fitted curve over [From, To] years together with
// the observed yields as a PNG.
type ChartRenderer struct {
	Width, Height int
	From, To      float64
	// Step is the sampling interval of the fitted line, in years.
	Step float64
}

// NewChartRenderer returns a renderer for the 1 to 30 year range.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Width: 900, Height: 450, From: 1, To: nelsonsiegel.MaxMaturity, Step: 0.25}
}

// Render implements Renderer.
func (c *ChartRenderer) Render(w io.Writer, r Report) error {
	if r.Status == StatusFailed {
		return errors.New("no fitted curve to chart")
	}
	to := c.To
	for _, p := range r.observed {
		to = max(to, float64(p.Maturity))
	}
	points, err := nelsonsiegel.Curve(r.Params, c.From, to, c.Step)
	if err != nil {
		return fmt.Errorf("sampling fitted curve: %w", err)
	}
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 curve points, got %d", len(points))
	}

	fitX := make([]float64, len(points))
	fitY := make([]float64, len(points))
	for i, p := range points {
		fitX[i], fitY[i] = p.Maturity, p.Yield
	}
	obsX := make([]float64, len(r.observed))
	obsY := make([]float64, len(r.observed))
	for i, p := range r.observed {
		obsX[i], obsY[i] = float64(p.Maturity), p.Yield
	}

	fitted := chart.ContinuousSeries{
		Name: "Nelson-Siegel fit",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"),
			StrokeWidth: 2.5,
		},
		XValues: fitX,
		YValues: fitY,
	}
	observed := chart.ContinuousSeries{
		Name: "Observed",
		Style: chart.Style{
			StrokeWidth: chart.Disabled,
			DotWidth:    5,
			DotColor:    drawing.ColorFromHex("dc2626"),
		},
		XValues: obsX,
		YValues: obsY,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s: %s (SSE %.5f)", r.Curve, r.Solver, r.Error),
		Width:  c.Width,
		Height: c.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Name: "Maturity (years)",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Name: "Yield (%)",
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{fitted, observed},
	}
	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("chart render failed: %w", err)
	}
	return nil
}
