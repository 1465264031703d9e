package fit

import (
	"math"

	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

const (
	// DefaultSpeed is the descent step size.
	DefaultSpeed = 0.02
	// DefaultTolerance is the SSE at or below which a fit has converged.
	DefaultTolerance = 0.0039
	// DefaultMaxIterations bounds every solver.
	DefaultMaxIterations = 10000
)

// Options configures a fit. Zero values select the defaults, so a zero
// Speed, Tolerance, MaxIterations or Epsilon cannot be requested; callers
// that take these from users reject zeros before building Options.
type Options struct {
	// Start is the initial parameter set. If nil, nelsonsiegel.DefaultStart is used.
	Start *nelsonsiegel.Params
	// Speed is the step size of the descent solver. Zero means DefaultSpeed.
	Speed float64
	// Tolerance is the convergence threshold on SSE. Zero means
	// DefaultTolerance; an exact fit cannot be demanded.
	Tolerance float64
	// MaxIterations is the iteration budget; reaching it is a
	// non-convergence. Zero means DefaultMaxIterations.
	MaxIterations int
	// Epsilon is the central-difference perturbation. Zero means DefaultEpsilon.
	Epsilon float64
	// ParallelGradient evaluates the perturbed objectives concurrently.
	ParallelGradient bool
	// KeepHistory records the error after every iteration in Result.History.
	KeepHistory bool
	// Stagnation adapts the descent speed. If nil, the literal policy is used.
	Stagnation StagnationPolicy
}

// normalizeOptions returns a copy of opts with defaults filled in for zero
// values.
func normalizeOptions(opts Options) Options {
	normalized := opts
	if normalized.Start == nil {
		start := nelsonsiegel.DefaultStart
		normalized.Start = &start
	}
	if normalized.Speed == 0 {
		normalized.Speed = DefaultSpeed
	}
	if normalized.Tolerance == 0 {
		normalized.Tolerance = DefaultTolerance
	}
	if normalized.MaxIterations == 0 {
		normalized.MaxIterations = DefaultMaxIterations
	}
	if normalized.Epsilon == 0 {
		normalized.Epsilon = DefaultEpsilon
	}
	if normalized.Stagnation == nil {
		normalized.Stagnation = NewLiteralPolicy()
	}
	return normalized
}

// Validate rejects option values no solver can run with.
func (o Options) Validate() error {
	switch {
	case o.Start != nil && !o.Start.IsFinite():
		return apperrors.NewValidationError("start", "start parameters must be finite", *o.Start)
	case o.Speed < 0 || math.IsNaN(o.Speed) || math.IsInf(o.Speed, 0):
		return apperrors.NewValidationError("speed", "speed must be a non-negative finite number", o.Speed)
	case o.Tolerance < 0 || math.IsNaN(o.Tolerance):
		return apperrors.NewValidationError("tolerance", "tolerance must be non-negative", o.Tolerance)
	case o.MaxIterations < 0:
		return apperrors.NewValidationError("max-iterations", "iteration budget must be non-negative", o.MaxIterations)
	case o.Epsilon < 0 || math.IsNaN(o.Epsilon) || math.IsInf(o.Epsilon, 0):
		return apperrors.NewValidationError("epsilon", "epsilon must be a non-negative finite number", o.Epsilon)
	}
	return nil
}
