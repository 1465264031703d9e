// Package report turns a fit result into something a person or a program
// can read: an aligned text summary, a JSON document or a PNG chart of the
// fitted curve against the observations.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Status values of a Report.
const (
	StatusConverged    = "converged"
	StatusNotConverged = "not_converged"
	StatusFailed       = "failed"
)

// Report is the presentation model of one fit.
type Report struct {
	RunID       string              `json:"run_id,omitempty"`
	Curve       string              `json:"curve"`
	Solver      string              `json:"solver"`
	Status      string              `json:"status"`
	Message     string              `json:"message,omitempty"`
	Params      nelsonsiegel.Params `json:"params"`
	Error       float64             `json:"error"`
	Tolerance   float64             `json:"tolerance"`
	Iterations  int                 `json:"iterations"`
	Evaluations int                 `json:"evaluations"`
	Escalations int                 `json:"escalations"`
	FinalSpeed  float64             `json:"final_speed,omitempty"`
	Duration    time.Duration       `json:"duration_ns"`
	Residuals   []fit.Residual      `json:"residuals,omitempty"`
	History     []float64           `json:"history,omitempty"`

	observed []curve.Point
}

// New builds the report of res, a fit of c with the given tolerance. fitErr
// is the error the solver returned with res, if any; a non-convergence keeps
// the best-so-far parameters and their residuals.
func New(c *curve.Curve, res fit.Result, tolerance float64, fitErr error) Report {
	r := Report{
		Curve:       c.Name(),
		Solver:      res.Solver,
		Status:      StatusConverged,
		Params:      res.Params,
		Error:       res.Error,
		Tolerance:   tolerance,
		Iterations:  res.Iterations,
		Evaluations: res.Evaluations,
		Escalations: res.Escalations,
		FinalSpeed:  res.FinalSpeed,
		Duration:    res.Duration,
		History:     res.History,
		observed:    c.Points(),
	}
	switch {
	case fitErr == nil:
	case apperrors.ExitCodeFor(fitErr) == apperrors.ExitErrorNonConvergence:
		r.Status = StatusNotConverged
		r.Message = fitErr.Error()
	default:
		r.Status = StatusFailed
		r.Message = fitErr.Error()
	}
	if r.Status != StatusFailed {
		if rows, err := fit.Residuals(res.Params, c); err == nil {
			r.Residuals = rows
		}
	}
	return r
}

// Observed returns the observations the report was built from.
func (r Report) Observed() []curve.Point { return r.observed }

// Renderer writes a report in one output format.
type Renderer interface {
	Render(w io.Writer, r Report) error
}

// Formats accepted by ForFormat.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatPNG  = "png"
)

// ForFormat returns the default renderer for a format name.
func ForFormat(format string) (Renderer, error) {
	switch format {
	case FormatText, "":
		return &TextRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{Indent: true}, nil
	case FormatPNG:
		return NewChartRenderer(), nil
	}
	return nil, fmt.Errorf("unknown report format %q", format)
}
