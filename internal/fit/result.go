package fit

import (
	"time"

	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Result is the outcome of a fit. When a solver stops without converging it
// still returns a Result holding the best parameters it found.
type Result struct {
	// Solver is the name of the solver that produced the result.
	Solver string `json:"solver"`
	// Params is the fitted parameter set.
	Params nelsonsiegel.Params `json:"params"`
	// Error is the SSE at Params.
	Error float64 `json:"error"`
	// Iterations is the number of parameter updates performed.
	Iterations int `json:"iterations"`
	// Evaluations is the number of objective evaluations.
	Evaluations int `json:"evaluations"`
	// Escalations counts speed increases by the stagnation policy.
	Escalations int `json:"escalations"`
	// FinalSpeed is the step size in use when the solver stopped.
	FinalSpeed float64 `json:"final_speed,omitempty"`
	// Converged reports whether Error reached the tolerance.
	Converged bool `json:"converged"`
	// Duration is the wall-clock time of the fit.
	Duration time.Duration `json:"duration_ns"`
	// History holds the error after each iteration when requested.
	History []float64 `json:"history,omitempty"`
}
