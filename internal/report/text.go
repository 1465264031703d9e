package report

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/ui"
)

// TextRenderer prints an aligned summary for terminals and text files.
type TextRenderer struct {
	// Verbose adds the residual table and the error history sparkline.
	Verbose bool
	// Plain ignores the active color theme, for files.
	Plain bool
}

// Render implements Renderer.
func (t *TextRenderer) Render(w io.Writer, r Report) error {
	th := ui.GetCurrentTheme()
	if t.Plain {
		th = ui.NoColorTheme
	}
	paint := func(color, s string) string {
		if color == "" {
			return s
		}
		return color + s + th.Reset
	}

	statusColor, statusText := th.Good, "Converged"
	switch r.Status {
	case StatusNotConverged:
		statusColor, statusText = th.Warn, "Not converged"
	case StatusFailed:
		statusColor, statusText = th.Bad, "Failed"
	}

	fmt.Fprintf(w, "%s\n", paint(th.Bold, "--- Fit Report ---"))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Curve:\t%s (%d points)\n", r.Curve, len(r.observed))
	fmt.Fprintf(tw, "Solver:\t%s\n", paint(th.Heading, r.Solver))
	fmt.Fprintf(tw, "Status:\t%s\n", paint(statusColor, statusText))
	if r.Message != "" {
		fmt.Fprintf(tw, "Detail:\t%s\n", r.Message)
	}
	fmt.Fprintf(tw, "Error (SSE):\t%s (tolerance %g)\n", paint(th.Value, fmt.Sprintf("%.7f", r.Error)), r.Tolerance)
	fmt.Fprintf(tw, "Iterations:\t%d (%d evaluations, %d speed-ups)\n", r.Iterations, r.Evaluations, r.Escalations)
	fmt.Fprintf(tw, "Duration:\t%s\n", FormatDuration(r.Duration))
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%s\n", paint(th.Bold, "Parameters"))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, name := range nelsonsiegel.ParamNames {
		fmt.Fprintf(tw, "  %s\t%s\n", paint(th.Label, name), paint(th.Value, fmt.Sprintf("%.6f", r.Params.At(i))))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !t.Verbose {
		return nil
	}

	if len(r.Residuals) > 0 {
		fmt.Fprintf(w, "\n%s\n", paint(th.Bold, "Residuals"))
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintf(tw, "Maturity\tObserved\tFitted\tResidual\t\n")
		limit := math.Sqrt(r.Tolerance / float64(len(r.Residuals)))
		for _, row := range r.Residuals {
			color := th.Good
			if math.Abs(row.Residual) > limit {
				color = th.Warn
			}
			fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%s\t\n", row.Maturity, row.Observed, row.Fitted,
				paint(color, fmt.Sprintf("%+.4f", row.Residual)))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	if len(r.History) > 0 {
		fmt.Fprintf(w, "\nError history: %s\n", paint(th.Muted, Sparkline(r.History, 40)))
		fmt.Fprintf(w, "  first %.4f, last %.7f\n", r.History[0], r.History[len(r.History)-1])
	}
	return nil
}

// FormatDuration formats short durations in µs or ms and longer ones with
// the default representation.
func FormatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "< 1µs"
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.String()
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as at most width block characters on a log scale.
// Longer series are sampled evenly, always keeping the last value.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	n := len(values)
	if n > width {
		n = width
	}
	logs := make([]float64, n)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i := range logs {
		idx := i
		if n > 1 {
			idx = i * (len(values) - 1) / (n - 1)
		}
		v := values[idx]
		if v <= 0 {
			v = math.SmallestNonzeroFloat64
		}
		logs[i] = math.Log(v)
		lo, hi = math.Min(lo, logs[i]), math.Max(hi, logs[i])
	}
	var sb strings.Builder
	for _, l := range logs {
		level := 0
		if hi > lo {
			level = int((l - lo) / (hi - lo) * float64(len(sparkRunes)-1))
		}
		sb.WriteRune(sparkRunes[level])
	}
	return sb.String()
}
