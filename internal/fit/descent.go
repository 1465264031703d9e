package fit

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// Descent is steepest descent on the SSE surface with a central-difference
// gradient and a stagnation policy that raises the step size when the error
// stalls.
type Descent struct{}

// Name returns "descent".
func (d *Descent) Name() string { return "descent" }

// Description returns a one-line summary for listings.
func (d *Descent) Description() string {
	return "central-difference gradient descent with stagnation speed-up"
}

// Fit runs the descent from opts.Start until the SSE falls to
// opts.Tolerance. Each iteration asks the stagnation policy for the speed,
// estimates the gradient, steps against it and records the new error.
//
// It stops early with the best parameters seen so far and
//   - a NonConvergenceError once opts.MaxIterations updates have run,
//   - a numeric-instability error when the model can no longer be evaluated,
//   - the context error when ctx is done.
//
// A start that already meets the tolerance returns after zero iterations.
func (d *Descent) Fit(ctx context.Context, c *curve.Curve, opts Options, reporter ProgressReporter) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{Solver: d.Name()}, err
	}
	opts = normalizeOptions(opts)
	if reporter == nil {
		reporter = noopReporter
	}
	begin := time.Now()

	var evaluations atomic.Int64
	objective := func(p nelsonsiegel.Params) (float64, error) {
		evaluations.Add(1)
		return SSE(p, c)
	}
	gradient := CentralDifference
	if opts.ParallelGradient {
		gradient = CentralDifferenceParallel
	}

	params := *opts.Start
	current, err := objective(params)
	if err != nil {
		return Result{Solver: d.Name(), Params: params, Duration: time.Since(begin)}, err
	}

	speed := opts.Speed
	best := Result{Solver: d.Name(), Params: params, Error: current}
	initial := current
	iterations, escalations := 0, 0
	history := make([]float64, 0, 64)

	finish := func(r Result, converged bool) Result {
		r.Iterations = iterations
		r.Evaluations = int(evaluations.Load())
		r.Escalations = escalations
		r.FinalSpeed = speed
		r.Converged = converged
		r.Duration = time.Since(begin)
		if opts.KeepHistory {
			r.History = append([]float64(nil), history...)
		}
		return r
	}

	for current > opts.Tolerance {
		if err := ctx.Err(); err != nil {
			return finish(best, false), err
		}
		if iterations >= opts.MaxIterations {
			return finish(best, false), apperrors.NonConvergenceError{
				Solver:     d.Name(),
				Iterations: iterations,
				BestError:  best.Error,
				Tolerance:  opts.Tolerance,
			}
		}

		if next := opts.Stagnation.Adjust(history, speed, opts.Speed); next != speed {
			if next > speed {
				escalations++
			}
			speed = next
		}

		g, err := gradient(objective, params, opts.Epsilon)
		if err != nil {
			return finish(best, false), err
		}
		params = Step(params, g, speed)
		current, err = objective(params)
		if err != nil {
			return finish(best, false), err
		}
		if math.IsNaN(current) || math.IsInf(current, 0) {
			return finish(best, false), apperrors.NewNumericError("sse", "error", current)
		}
		iterations++
		history = append(history, current)
		if current < best.Error {
			best.Params, best.Error = params, current
		}

		reporter(Iteration{
			Number:   iterations,
			Error:    current,
			Params:   params,
			Gradient: g,
			Speed:    speed,
			Progress: EstimateProgress(initial, current, opts.Tolerance),
		})
	}

	return finish(Result{Solver: d.Name(), Params: params, Error: current}, true), nil
}
