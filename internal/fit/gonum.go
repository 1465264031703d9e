package fit

import (
	"context"
	"math"
	"time"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/optimize"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

// NelderMead minimizes SSE with gonum's downhill simplex method. It needs
// no gradient.
type NelderMead struct{}

// Name returns "nelder-mead".
func (*NelderMead) Name() string { return "nelder-mead" }

// Description returns a one-line summary for listings.
func (*NelderMead) Description() string { return "gonum Nelder-Mead simplex (derivative-free)" }

// Fit implements CoreSolver.
func (s *NelderMead) Fit(ctx context.Context, c *curve.Curve, opts Options, reporter ProgressReporter) (Result, error) {
	return minimize(ctx, s.Name(), c, opts, reporter, &optimize.NelderMead{}, false)
}

// BFGS minimizes SSE with gonum's quasi-Newton BFGS method. Gradients come
// from central differences computed by gonum's fd package with the
// configured epsilon.
type BFGS struct{}

// Name returns "bfgs".
func (*BFGS) Name() string { return "bfgs" }

// Description returns a one-line summary for listings.
func (*BFGS) Description() string { return "gonum BFGS quasi-Newton with central-difference gradient" }

// Fit implements CoreSolver.
func (s *BFGS) Fit(ctx context.Context, c *curve.Curve, opts Options, reporter ProgressReporter) (Result, error) {
	return minimize(ctx, s.Name(), c, opts, reporter, &optimize.BFGS{}, true)
}

// minimize adapts a gonum method to the CoreSolver contract: tolerance as
// a function threshold, the iteration budget as MajorIterations, progress
// and cancellation through a Recorder.
func minimize(ctx context.Context, name string, c *curve.Curve, opts Options, reporter ProgressReporter, method optimize.Method, withGradient bool) (Result, error) {
	if err := opts.Validate(); err != nil {
		return Result{Solver: name}, err
	}
	opts = normalizeOptions(opts)
	if reporter == nil {
		reporter = noopReporter
	}
	begin := time.Now()

	start := *opts.Start
	initial, err := SSE(start, c)
	if err != nil {
		return Result{Solver: name, Params: start}, err
	}
	if initial <= opts.Tolerance {
		return Result{Solver: name, Params: start, Error: initial, Evaluations: 1, Converged: true, Duration: time.Since(begin)}, nil
	}

	var firstErr error
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			p, _ := nelsonsiegel.FromVector(x)
			v, err := SSE(p, c)
			if err != nil {
				// Outside the model domain: steer the method away.
				if firstErr == nil {
					firstErr = err
				}
				return math.Inf(1)
			}
			return v
		},
	}
	if withGradient {
		settings := &fd.Settings{Formula: fd.Central, Step: opts.Epsilon}
		problem.Grad = func(grad, x []float64) {
			fd.Gradient(grad, problem.Func, x, settings)
		}
	}

	rec := &progressRecorder{ctx: ctx, reporter: reporter, initial: initial, tolerance: opts.Tolerance}
	settings := &optimize.Settings{
		MajorIterations: opts.MaxIterations,
		Converger:       &thresholdConverger{tolerance: opts.Tolerance},
		Recorder:        rec,
	}

	res, err := optimize.Minimize(problem, start.Vector(), settings, method)
	if res == nil {
		return Result{Solver: name, Params: start, Error: initial, Duration: time.Since(begin)}, err
	}
	// Any other error from Minimize is a method failure; the best location
	// found is still usable and is reported as a non-convergence below.

	params, _ := nelsonsiegel.FromVector(res.X)
	out := Result{
		Solver:      name,
		Params:      params,
		Error:       res.F,
		Iterations:  res.MajorIterations,
		Evaluations: res.FuncEvaluations,
		Converged:   res.F <= opts.Tolerance,
		Duration:    time.Since(begin),
	}
	if math.IsInf(res.F, 0) || math.IsNaN(res.F) {
		out.Params, out.Error = start, initial
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, ctxErr
	}
	if out.Converged {
		return out, nil
	}
	if math.IsInf(res.F, 0) && firstErr != nil {
		// No point of the run could be evaluated.
		return out, firstErr
	}
	return out, apperrors.NonConvergenceError{
		Solver:     name,
		Iterations: out.Iterations,
		BestError:  out.Error,
		Tolerance:  opts.Tolerance,
	}
}

// thresholdConverger ends a run once the error reaches the tolerance, and
// otherwise falls back to gonum's default stall detection.
type thresholdConverger struct {
	tolerance float64
	stall     optimize.FunctionConverge
}

func (t *thresholdConverger) Init(dim int) {
	t.stall = optimize.FunctionConverge{Absolute: 1e-12, Iterations: 200}
	t.stall.Init(dim)
}

func (t *thresholdConverger) Converged(loc *optimize.Location) optimize.Status {
	if loc.F <= t.tolerance {
		return optimize.FunctionThreshold
	}
	return t.stall.Converged(loc)
}

// progressRecorder forwards major iterations to a ProgressReporter and
// aborts the run when the context is done.
type progressRecorder struct {
	ctx       context.Context
	reporter  ProgressReporter
	initial   float64
	tolerance float64
	n         int
}

func (r *progressRecorder) Init() error { return nil }

func (r *progressRecorder) Record(loc *optimize.Location, op optimize.Operation, _ *optimize.Stats) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	if op != optimize.MajorIteration {
		return nil
	}
	r.n++
	p, err := nelsonsiegel.FromVector(loc.X)
	if err != nil {
		return err
	}
	var g Gradient
	copy(g[:], loc.Gradient)
	r.reporter(Iteration{
		Number:   r.n,
		Error:    loc.F,
		Params:   p,
		Gradient: g,
		Progress: EstimateProgress(r.initial, loc.F, r.tolerance),
	})
	return nil
}
