// Package fit estimates Nelson-Siegel parameters from an observed curve.
// It provides the SSE objective, central-difference gradients, the
// descent step and several solvers behind a common interface, plus the
// progress observers that report on running fits.
package fit

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
)

var (
	fitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yieldfit_fits_total",
			Help: "The total number of curve fits processed",
		},
		[]string{"solver", "status"},
	)
	fitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "yieldfit_fit_duration_seconds",
			Help: "The duration of curve fits in seconds",
		},
		[]string{"solver"},
	)
	fitIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yieldfit_fit_iterations",
			Help:    "The number of iterations curve fits needed",
			Buckets: prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"solver"},
	)
)

// CoreSolver is a bare optimization algorithm. It minimizes SSE over c and
// reports each iteration to reporter, which may be nil.
type CoreSolver interface {
	Fit(ctx context.Context, c *curve.Curve, opts Options, reporter ProgressReporter) (Result, error)
	Name() string
	Description() string
}

// Solver is the interface used by the orchestration layer. It wraps a
// CoreSolver with progress fan-out, metrics and tracing.
type Solver interface {
	// Run fits c and sends progress updates to progressChan, which may be nil.
	Run(ctx context.Context, progressChan chan<- ProgressUpdate, index int, c *curve.Curve, opts Options) (Result, error)
	// RunWithObservers fits c and notifies the observers registered on subject.
	RunWithObservers(ctx context.Context, subject *ProgressSubject, index int, c *curve.Curve, opts Options) (Result, error)
	// Name returns the registry name of the solver.
	Name() string
	// Description returns a one-line summary.
	Description() string
}

// FitSolver decorates a CoreSolver with the cross-cutting concerns of
// the Solver interface.
type FitSolver struct {
	core CoreSolver
}

// NewSolver wraps core. It panics if core is nil.
func NewSolver(core CoreSolver) Solver {
	if core == nil {
		panic("fit: the CoreSolver implementation cannot be nil")
	}
	return &FitSolver{core: core}
}

// Name delegates to the core solver.
func (s *FitSolver) Name() string { return s.core.Name() }

// Description delegates to the core solver.
func (s *FitSolver) Description() string { return s.core.Description() }

// Run implements Solver with a channel observer.
func (s *FitSolver) Run(ctx context.Context, progressChan chan<- ProgressUpdate, index int, c *curve.Curve, opts Options) (Result, error) {
	subject := NewProgressSubject()
	if progressChan != nil {
		subject.Register(NewChannelObserver(progressChan))
	}
	return s.RunWithObservers(ctx, subject, index, c, opts)
}

// RunWithObservers implements Solver. It records a trace span, the fit
// counters and histograms, and a debug log line for every fit.
func (s *FitSolver) RunWithObservers(ctx context.Context, subject *ProgressSubject, index int, c *curve.Curve, opts Options) (result Result, err error) {
	name := s.core.Name()
	ctx, span := otel.Tracer("yieldfit/fit").Start(ctx, "Fit")
	span.SetAttributes(
		attribute.String("solver", name),
		attribute.Int("points", c.Len()),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		duration := time.Since(start).Seconds()
		status := fitStatus(err)
		fitsTotal.WithLabelValues(name, status).Inc()
		fitDuration.WithLabelValues(name).Observe(duration)
		fitIterations.WithLabelValues(name).Observe(float64(result.Iterations))

		span.SetAttributes(
			attribute.Int("iterations", result.Iterations),
			attribute.Float64("error", result.Error),
			attribute.Bool("converged", result.Converged),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, status)
		}

		log.Debug().
			Str("solver", name).
			Int("iterations", result.Iterations).
			Float64("error", result.Error).
			Float64("duration", duration).
			Str("status", status).
			Msg("fit completed")
	}()

	var reporter ProgressReporter
	if subject != nil {
		reporter = subject.AsProgressReporter(index)
	}

	result, err = s.core.Fit(ctx, c, opts, reporter)
	if err == nil && reporter != nil && result.Iterations == 0 {
		// Nothing was reported; tell observers the fit is complete.
		reporter(Iteration{Params: result.Params, Error: result.Error, Progress: 1})
	}
	return result, err
}

func fitStatus(err error) string {
	switch apperrors.ExitCodeFor(err) {
	case apperrors.ExitSuccess:
		return "converged"
	case apperrors.ExitErrorNonConvergence:
		return "not_converged"
	case apperrors.ExitErrorNumeric:
		return "numeric_error"
	case apperrors.ExitErrorInvalidInput:
		return "invalid_input"
	case apperrors.ExitErrorTimeout, apperrors.ExitErrorCanceled:
		return "canceled"
	}
	return "error"
}
