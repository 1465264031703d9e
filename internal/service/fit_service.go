// Package service holds the fitting logic behind the HTTP API: request
// validation, resource limits, solver lookup, result caching and tracing.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/report"
	"github.com/agbru/yieldfit/pkg/models"
)

// Service defines the fitting operations offered to API clients.
// This abstraction enables dependency injection and easier testing.
type Service interface {
	// Fit validates req, fits the curve and returns the result. A fit that
	// exhausts its iteration budget is not an error: the response reports
	// it with Converged false.
	Fit(ctx context.Context, req models.FitRequest) (models.FitResponse, error)
	// Evaluate samples the model for p between from and to every step years.
	Evaluate(ctx context.Context, p nelsonsiegel.Params, from, to, step float64) (models.EvaluateResponse, error)
	// Solvers lists the registered solvers.
	Solvers() []models.SolverInfo
}

// Limits bound the work a single request may ask for.
type Limits struct {
	// MaxPoints is the largest number of observations accepted.
	MaxPoints int
	// MaxIterations caps the iteration budget a request may set.
	MaxIterations int
	// MaxEvaluatePoints caps the number of samples returned by Evaluate.
	MaxEvaluatePoints int
}

// DefaultLimits returns limits suited to an interactive API.
func DefaultLimits() Limits {
	return Limits{
		MaxPoints:         64,
		MaxIterations:     100_000,
		MaxEvaluatePoints: 1_000,
	}
}

// DefaultCacheSize is the number of fit responses kept by default.
const DefaultCacheSize = 256

// FitService implements Service on top of a solver factory.
type FitService struct {
	factory  fit.SolverFactory
	defaults fit.Options
	limits   Limits
	cache    *lru.Cache[string, models.FitResponse]
	tracer   trace.Tracer
	newRunID func() string
	// progress feeds the live fit gauges; solver indices follow names.
	progress *fit.ProgressSubject
	names    []string
}

// Ensure FitService implements Service interface.
var _ Service = (*FitService)(nil)

// Option configures a FitService.
type Option func(*FitService)

// WithCacheSize keeps the last size responses, keyed by request. Zero
// disables caching.
func WithCacheSize(size int) Option {
	return func(s *FitService) {
		s.cache = nil
		if size > 0 {
			s.cache, _ = lru.New[string, models.FitResponse](size)
		}
	}
}

// WithRunIDGenerator replaces the UUID run id generator.
func WithRunIDGenerator(gen func() string) Option {
	return func(s *FitService) {
		if gen != nil {
			s.newRunID = gen
		}
	}
}

// NewFitService creates a FitService.
//
// Parameters:
//   - factory: The factory to retrieve solvers from.
//   - defaults: Options used for every setting a request leaves at zero.
//   - limits: Per-request resource limits.
//   - opts: Optional settings such as the cache size.
func NewFitService(factory fit.SolverFactory, defaults fit.Options, limits Limits, opts ...Option) *FitService {
	s := &FitService{
		factory:  factory,
		defaults: defaults,
		limits:   limits,
		tracer:   otel.Tracer("yieldfit/service"),
		newRunID: uuid.NewString,
		progress: fit.NewProgressSubject(),
		names:    factory.List(),
	}
	s.progress.Register(fit.NewMetricsObserver(s.names...))
	WithCacheSize(DefaultCacheSize)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Fit implements Service.
func (s *FitService) Fit(ctx context.Context, req models.FitRequest) (resp models.FitResponse, err error) {
	runID := s.newRunID()
	ctx, span := s.tracer.Start(ctx, "FitService.Fit")
	span.SetAttributes(attribute.String("run_id", runID), attribute.Int("points", len(req.Terms)))
	defer func() {
		span.SetAttributes(attribute.Bool("cached", resp.Cached), attribute.String("status", resp.Status))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	c, solver, opts, err := s.prepare(req)
	if err != nil {
		return models.FitResponse{}, err
	}
	span.SetAttributes(attribute.String("solver", solver.Name()))

	key := cacheKey(solver.Name(), c, opts)
	if s.cache != nil {
		if cached, ok := s.cache.Get(key); ok {
			resp = cached
			resp.RunID = runID
			resp.Cached = true
			return resp, nil
		}
	}

	res, fitErr := solver.RunWithObservers(ctx, s.progress, s.solverIndex(solver.Name()), c, opts)
	if fitErr != nil && !errors.Is(fitErr, apperrors.ErrNonConvergence) {
		return models.FitResponse{}, fitErr
	}

	resp = toResponse(report.New(c, res, opts.Tolerance, fitErr))
	if s.cache != nil {
		s.cache.Add(key, resp)
	}
	resp.RunID = runID
	return resp, nil
}

// prepare validates req against the limits and resolves the curve, solver
// and options.
func (s *FitService) prepare(req models.FitRequest) (*curve.Curve, fit.Solver, fit.Options, error) {
	if s.limits.MaxPoints > 0 && len(req.Terms) > s.limits.MaxPoints {
		return nil, nil, fit.Options{}, apperrors.NewValidationError("terms",
			fmt.Sprintf("at most %d observations are accepted", s.limits.MaxPoints), len(req.Terms))
	}
	if s.limits.MaxIterations > 0 && req.MaxIterations > s.limits.MaxIterations {
		return nil, nil, fit.Options{}, apperrors.NewValidationError("max_iterations",
			fmt.Sprintf("at most %d iterations are allowed", s.limits.MaxIterations), req.MaxIterations)
	}

	c, err := curve.New(req.Terms, req.Yields, curve.WithName("request"))
	if err != nil {
		return nil, nil, fit.Options{}, err
	}

	name := req.Solver
	if name == "" {
		name = fit.DefaultSolver
	}
	solver, err := s.factory.Get(name)
	if err != nil {
		return nil, nil, fit.Options{}, apperrors.NewValidationError("solver", err.Error(), name)
	}

	opts := s.defaults
	if req.Start != nil {
		start := nelsonsiegel.Params{A1: req.Start.A1, A2: req.Start.A2, A3: req.Start.A3, B: req.Start.B}
		opts.Start = &start
	}
	if req.Speed != 0 {
		opts.Speed = req.Speed
	}
	if req.Tolerance != 0 {
		opts.Tolerance = req.Tolerance
	}
	if req.MaxIterations != 0 {
		opts.MaxIterations = req.MaxIterations
	}
	if req.Stagnation != "" {
		policy, err := fit.NewStagnationPolicy(req.Stagnation)
		if err != nil {
			return nil, nil, fit.Options{}, apperrors.NewValidationError("stagnation", err.Error(), req.Stagnation)
		}
		opts.Stagnation = policy
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = fit.DefaultTolerance
	}
	if err := opts.Validate(); err != nil {
		return nil, nil, fit.Options{}, err
	}
	return c, solver, opts, nil
}

// cacheKey identifies a fit by everything that determines its outcome.
func cacheKey(solver string, c *curve.Curve, opts fit.Options) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%v|%v|", solver, c.Terms(), c.Yields())
	start := nelsonsiegel.DefaultStart
	if opts.Start != nil {
		start = *opts.Start
	}
	policy := fit.PolicyLiteral
	if opts.Stagnation != nil {
		policy = opts.Stagnation.Name()
	}
	fmt.Fprintf(&b, "%v|%g|%g|%d|%g|%s", start.Vector(), opts.Speed, opts.Tolerance, opts.MaxIterations, opts.Epsilon, policy)
	return b.String()
}

func toModelParams(p nelsonsiegel.Params) models.Params {
	return models.Params{A1: p.A1, A2: p.A2, A3: p.A3, B: p.B}
}

func toResponse(r report.Report) models.FitResponse {
	resp := models.FitResponse{
		Solver:      r.Solver,
		Status:      r.Status,
		Message:     r.Message,
		Converged:   r.Status == report.StatusConverged,
		Params:      toModelParams(r.Params),
		SSE:         r.Error,
		Iterations:  r.Iterations,
		Evaluations: r.Evaluations,
		Duration:    r.Duration.Round(time.Microsecond).String(),
	}
	for _, row := range r.Residuals {
		resp.Residuals = append(resp.Residuals, models.Residual{
			Maturity: row.Maturity, Observed: row.Observed, Fitted: row.Fitted, Residual: row.Residual,
		})
	}
	return resp
}

// Evaluate implements Service.
func (s *FitService) Evaluate(ctx context.Context, p nelsonsiegel.Params, from, to, step float64) (models.EvaluateResponse, error) {
	_, span := s.tracer.Start(ctx, "FitService.Evaluate")
	defer span.End()

	n, err := nelsonsiegel.SampleCount(from, to, step)
	if err == nil && s.limits.MaxEvaluatePoints > 0 && n > s.limits.MaxEvaluatePoints {
		err = apperrors.NewValidationError("step",
			fmt.Sprintf("at most %d points can be evaluated", s.limits.MaxEvaluatePoints), step)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.EvaluateResponse{}, err
	}
	points, err := nelsonsiegel.Curve(p, from, to, step)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return models.EvaluateResponse{}, err
	}
	resp := models.EvaluateResponse{Params: toModelParams(p), Points: make([]models.Point, len(points))}
	for i, pt := range points {
		resp.Points[i] = models.Point{Maturity: pt.Maturity, Yield: pt.Yield}
	}
	return resp, nil
}

// solverIndex returns the gauge index of a solver, or len(names) for a
// solver registered after the service was created.
func (s *FitService) solverIndex(name string) int {
	for i, n := range s.names {
		if n == name {
			return i
		}
	}
	return len(s.names)
}

// Solvers implements Service.
func (s *FitService) Solvers() []models.SolverInfo {
	names := s.factory.List()
	infos := make([]models.SolverInfo, 0, len(names))
	for _, name := range names {
		solver, err := s.factory.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, models.SolverInfo{Name: name, Description: solver.Description()})
	}
	return infos
}
