package fit

import (
	"math"

	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Iteration describes the state of a solver after one iteration. It is the
// payload handed to progress reporters.
type Iteration struct {
	// Number counts iterations from 1.
	Number int
	// Error is the SSE at Params.
	Error float64
	// Params is the parameter set reached by this iteration.
	Params nelsonsiegel.Params
	// Gradient is the gradient the step was taken along. Zero for
	// derivative-free solvers.
	Gradient Gradient
	// Speed is the step size used.
	Speed float64
	// Progress estimates completion between 0 and 1.
	Progress float64
}

// ProgressReporter receives iteration updates from a running solver. Solvers
// call it synchronously, so it must return quickly.
type ProgressReporter func(it Iteration)

// ProgressUpdate carries progress of one solver among several to the user
// interface.
type ProgressUpdate struct {
	// SolverIndex distinguishes concurrent fits.
	SolverIndex int
	// Value is the normalized progress, from 0.0 to 1.0.
	Value float64
	// Iteration is the iteration number the update refers to.
	Iteration int
	// Error is the SSE at that iteration.
	Error float64
}

// EstimateProgress maps the error reduction so far onto [0, 1] on a log
// scale: 0 at the initial error, 1 at the tolerance.
func EstimateProgress(initial, current, tolerance float64) float64 {
	if current <= tolerance || initial <= tolerance {
		return 1
	}
	if current >= initial || tolerance <= 0 {
		return 0
	}
	p := math.Log(initial/current) / math.Log(initial/tolerance)
	return math.Max(0, math.Min(1, p))
}

func noopReporter(Iteration) {}
