package report

import (
	"bytes"
	"encoding/json"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/testutil"
	"github.com/agbru/yieldfit/internal/ui"
)

var flatParams = nelsonsiegel.Params{A1: 2.5, A2: 0, A3: 0, B: 1}

func flatReport(t *testing.T, fitErr error) Report {
	t.Helper()
	c, err := curve.Synthetic(flatParams, []int{1, 5, 10}, curve.WithName("flat"))
	if err != nil {
		t.Fatal(err)
	}
	res := fit.Result{
		Solver:      "descent",
		Params:      flatParams,
		Evaluations: 1,
		Converged:   fitErr == nil,
		History:     []float64{8, 4, 2},
	}
	return New(c, res, fit.DefaultTolerance, fitErr)
}

func TestNewStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		err       error
		status    string
		residuals bool
	}{
		{"converged", nil, StatusConverged, true},
		{"not converged", apperrors.NonConvergenceError{Solver: "descent", Iterations: 10}, StatusNotConverged, true},
		{"failed", apperrors.NewNumericError("yield", "b", 0), StatusFailed, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := flatReport(t, tt.err)
			if r.Status != tt.status {
				t.Errorf("Status = %q, want %q", r.Status, tt.status)
			}
			if (len(r.Residuals) > 0) != tt.residuals {
				t.Errorf("residuals present = %v, want %v", len(r.Residuals) > 0, tt.residuals)
			}
			if tt.err != nil && r.Message != tt.err.Error() {
				t.Errorf("Message = %q", r.Message)
			}
			if len(r.Observed()) != 3 {
				t.Errorf("Observed() has %d points", len(r.Observed()))
			}
		})
	}
}

func TestTextRendererGolden(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := (&TextRenderer{Verbose: true, Plain: true}).Render(&buf, flatReport(t, nil)); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	testutil.AssertGolden(t, "flat_verbose.golden", buf.Bytes())
}

func TestTextRendererStatusLines(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := flatReport(t, apperrors.NonConvergenceError{Solver: "descent", Iterations: 10, BestError: 0.5, Tolerance: 0.0039})
	if err := (&TextRenderer{}).Render(&buf, r); err != nil {
		t.Fatal(err)
	}
	out := testutil.StripAnsiCodes(buf.String())
	for _, want := range []string{"Status:       Not converged", "Detail:", "no convergence after 10 iterations"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Residuals") {
		t.Error("non-verbose output should not list residuals")
	}
}

func TestTextRendererUsesTheme(t *testing.T) {
	defer ui.SetCurrentTheme(ui.GetCurrentTheme())
	ui.SetCurrentTheme(ui.DarkTheme)

	var colored, plain bytes.Buffer
	r := flatReport(t, nil)
	if err := (&TextRenderer{}).Render(&colored, r); err != nil {
		t.Fatal(err)
	}
	if err := (&TextRenderer{Plain: true}).Render(&plain, r); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(colored.String(), ui.DarkTheme.Good) {
		t.Error("themed output carries no color")
	}
	if plain.String() != testutil.StripAnsiCodes(plain.String()) {
		t.Error("plain output carries escape codes")
	}
}

func TestJSONRenderer(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	r := flatReport(t, nil)
	r.RunID = "run-1"
	if err := (&JSONRenderer{}).Render(&buf, r); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		RunID     string              `json:"run_id"`
		Curve     string              `json:"curve"`
		Status    string              `json:"status"`
		Params    nelsonsiegel.Params `json:"params"`
		Residuals []fit.Residual      `json:"residuals"`
		History   []float64           `json:"history"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if decoded.RunID != "run-1" || decoded.Curve != "flat" || decoded.Status != StatusConverged {
		t.Errorf("decoded = %+v", decoded)
	}
	if decoded.Params != flatParams || len(decoded.Residuals) != 3 || len(decoded.History) != 3 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestChartRendererWritesPNG(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	cr := NewChartRenderer()
	cr.Width, cr.Height = 320, 200
	if err := cr.Render(&buf, flatReport(t, nil)); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 200 {
		t.Errorf("image is %dx%d", b.Dx(), b.Dy())
	}
}

func TestChartRendererRejectsFailedFit(t *testing.T) {
	t.Parallel()
	r := flatReport(t, apperrors.NewNumericError("yield", "b", 0))
	if err := NewChartRenderer().Render(&bytes.Buffer{}, r); err == nil {
		t.Error("charting a failed fit should fail")
	}
}

func TestForFormat(t *testing.T) {
	t.Parallel()
	for _, format := range []string{"", FormatText, FormatJSON, FormatPNG} {
		if _, err := ForFormat(format); err != nil {
			t.Errorf("ForFormat(%q) error: %v", format, err)
		}
	}
	if _, err := ForFormat("xml"); err == nil {
		t.Error("ForFormat(xml) should fail")
	}
}

func TestSparkline(t *testing.T) {
	t.Parallel()
	tests := []struct {
		values []float64
		width  int
		want   string
	}{
		{nil, 10, ""},
		{[]float64{1}, 10, "▁"},
		{[]float64{3, 3, 3}, 10, "▁▁▁"},
		{[]float64{100, 10, 1}, 10, "█▄▁"},
		{[]float64{100, 50, 10, 5, 1}, 2, "█▁"},
	}
	for _, tt := range tests {
		if got := Sparkline(tt.values, tt.width); got != tt.want {
			t.Errorf("Sparkline(%v, %d) = %q, want %q", tt.values, tt.width, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()
	tests := map[string]string{
		"0s":    "< 1µs",
		"250µs": "250µs",
		"12ms":  "12ms",
		"1.5s":  "1.5s",
	}
	for in, want := range tests {
		d, _ := time.ParseDuration(in)
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%s) = %q, want %q", in, got, want)
		}
	}
}
