package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/agbru/yieldfit/internal/config"
	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/testutil"
)

var fitted = nelsonsiegel.Params{A1: 2.8294, A2: -0.5680, A3: -2.2369, B: 2.6201}

// stubCore returns a fixed result, or blocks until the context ends when
// block is set.
type stubCore struct {
	name   string
	params nelsonsiegel.Params
	block  bool
}

func (s *stubCore) Name() string        { return s.name }
func (s *stubCore) Description() string { return "stub " + s.name }

func (s *stubCore) Fit(ctx context.Context, _ *curve.Curve, _ fit.Options, reporter fit.ProgressReporter) (fit.Result, error) {
	if s.block {
		<-ctx.Done()
		return fit.Result{Solver: s.name, Params: s.params, Error: 1}, ctx.Err()
	}
	if reporter != nil {
		reporter(fit.Iteration{Number: 1, Params: s.params, Error: 0.003, Progress: 1})
	}
	return fit.Result{Solver: s.name, Params: s.params, Error: 0.003, Iterations: 1, Converged: true}, nil
}

// stubFactory replaces every standard solver with a stub.
func stubFactory(block bool) fit.SolverFactory {
	f := fit.NewDefaultFactory()
	for _, name := range f.List() {
		_ = f.Register(name, func() fit.CoreSolver {
			return &stubCore{name: name, params: fitted, block: block}
		})
	}
	return f
}

func testConfig() config.AppConfig {
	return config.AppConfig{
		Solver:     "descent",
		Preset:     curve.DefaultPreset,
		Speed:      fit.DefaultSpeed,
		Tolerance:  fit.DefaultTolerance,
		Epsilon:    fit.DefaultEpsilon,
		Stagnation: fit.PolicyLiteral,
		Timeout:    time.Minute,
		LogLevel:   "error",
		Theme:      "none",
		NoColor:    true,
	}
}

func newTestApp(cfg config.AppConfig, factory fit.SolverFactory) *Application {
	return &Application{Config: cfg, Factory: factory, ErrWriter: io.Discard}
}

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("Valid args create application", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		app, err := New([]string{"yieldfit", "--solver", "bfgs", "--speed", "0.05"}, &errBuf)
		if err != nil {
			t.Fatalf("New() returned unexpected error: %v", err)
		}
		if app.Config.Solver != "bfgs" || app.Config.Speed != 0.05 {
			t.Errorf("unexpected config %+v", app.Config)
		}
		if app.Factory == nil || app.Logger == nil {
			t.Error("Factory and Logger should be set")
		}
	})

	t.Run("Invalid args return error", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		app, err := New([]string{"yieldfit", "-invalid-flag"}, &errBuf)
		if err == nil {
			t.Error("New() should return error for invalid args")
		}
		if app != nil {
			t.Error("New() should return nil application on error")
		}
	})

	t.Run("Unknown solver is a config error", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		_, err := New([]string{"yieldfit", "--solver", "newton"}, &errBuf)
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("expected config error, got %v", err)
		}
		if !strings.Contains(errBuf.String(), "unrecognized solver") {
			t.Errorf("error output should name the problem, got %q", errBuf.String())
		}
	})

	t.Run("Empty args use defaults", func(t *testing.T) {
		t.Parallel()
		app, err := New([]string{}, io.Discard)
		if err != nil {
			t.Fatalf("New() should handle empty args without error, got: %v", err)
		}
		if app.Config.Solver != config.DefaultSolver {
			t.Errorf("expected default solver %q, got %q", config.DefaultSolver, app.Config.Solver)
		}
	})
}

func TestApplicationRun(t *testing.T) {
	t.Parallel()

	t.Run("Reference curve converges", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cfg := testConfig()
		cfg.Quiet = true
		app := newTestApp(cfg, fit.NewDefaultFactory())

		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("expected exit code %d, got %d", apperrors.ExitSuccess, code)
		}
		fields := strings.Fields(out.String())
		if len(fields) != nelsonsiegel.NumParams {
			t.Fatalf("quiet output should hold the parameters only, got %q", out.String())
		}
	})

	t.Run("Text report", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		app := newTestApp(testConfig(), stubFactory(false))

		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Errorf("expected exit code %d, got %d", apperrors.ExitSuccess, code)
		}
		output := testutil.StripAnsiCodes(out.String())
		for _, want := range []string{"reference", "descent", "2.8294"} {
			if !strings.Contains(output, want) {
				t.Errorf("output should contain %q. Output:\n%s", want, output)
			}
		}
	})

	t.Run("Comparison of all solvers", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cfg := testConfig()
		cfg.Solver = config.AllSolvers
		app := newTestApp(cfg, stubFactory(false))

		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Errorf("expected exit code %d, got %d", apperrors.ExitSuccess, code)
		}
		output := testutil.StripAnsiCodes(out.String())
		if !strings.Contains(output, "Global Status: Success") {
			t.Errorf("output should report success. Output:\n%s", output)
		}
	})

	t.Run("JSON report", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cfg := testConfig()
		cfg.JSONOutput = true
		app := newTestApp(cfg, stubFactory(false))

		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Fatalf("expected exit code %d, got %d", apperrors.ExitSuccess, code)
		}
		var doc map[string]any
		if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
			t.Fatalf("output is not JSON: %v\n%s", err, out.String())
		}
		if _, ok := doc["params"]; !ok {
			t.Errorf("JSON report should contain params: %s", out.String())
		}
	})

	t.Run("Timeout failure", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cfg := testConfig()
		cfg.Timeout = time.Millisecond
		app := newTestApp(cfg, stubFactory(true))

		if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorTimeout {
			t.Errorf("expected exit code %d (timeout), got %d", apperrors.ExitErrorTimeout, code)
		}
		if !strings.Contains(testutil.StripAnsiCodes(out.String()), "Timeout") {
			t.Errorf("output should mention timeout. Output:\n%s", out.String())
		}
	})

	t.Run("Context cancellation", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		app := newTestApp(testConfig(), stubFactory(true))

		if code := app.Run(ctx, io.Discard); code != apperrors.ExitErrorCanceled {
			t.Errorf("expected exit code %d (canceled), got %d", apperrors.ExitErrorCanceled, code)
		}
	})

	t.Run("Invalid curve", func(t *testing.T) {
		t.Parallel()
		var errBuf bytes.Buffer
		cfg := testConfig()
		cfg.Terms = "1,2,2"
		cfg.Yields = "1.5,1.7,1.8"
		app := &Application{Config: cfg, Factory: stubFactory(false), ErrWriter: &errBuf}

		if code := app.Run(context.Background(), io.Discard); code != apperrors.ExitErrorInvalidInput {
			t.Errorf("expected exit code %d, got %d", apperrors.ExitErrorInvalidInput, code)
		}
		if !strings.Contains(errBuf.String(), "Invalid input") {
			t.Errorf("error output should explain the failure, got %q", errBuf.String())
		}
	})

	t.Run("Version", func(t *testing.T) {
		t.Parallel()
		var out bytes.Buffer
		cfg := testConfig()
		cfg.ShowVersion = true
		app := newTestApp(cfg, stubFactory(false))

		if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
			t.Errorf("expected exit code %d, got %d", apperrors.ExitSuccess, code)
		}
		if !strings.HasPrefix(out.String(), "yieldfit ") {
			t.Errorf("unexpected version output %q", out.String())
		}
	})
}

func TestIsHelpError(t *testing.T) {
	t.Parallel()
	_, err := New([]string{"yieldfit", "-h"}, io.Discard)
	if !IsHelpError(err) {
		t.Error("IsHelpError should return true for help flag error")
	}
}

func TestRunCompletion(t *testing.T) {
	t.Parallel()
	tests := []struct {
		shell string
		code  int
	}{
		{"bash", apperrors.ExitSuccess},
		{"zsh", apperrors.ExitSuccess},
		{"tcsh", apperrors.ExitErrorConfig},
	}
	for _, tt := range tests {
		t.Run(tt.shell, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			app := newTestApp(config.AppConfig{Completion: tt.shell}, stubFactory(false))

			if code := app.Run(context.Background(), &out); code != tt.code {
				t.Fatalf("expected exit code %d, got %d", tt.code, code)
			}
			if tt.code == apperrors.ExitSuccess && !strings.Contains(out.String(), "nelder-mead") {
				t.Errorf("completion script should list the solvers. Got:\n%s", out.String())
			}
		})
	}
}

func TestSetupLifecycle(t *testing.T) {
	t.Parallel()
	ctx, funcs := SetupLifecycle(context.Background(), time.Millisecond)
	defer funcs.Cleanup()
	<-ctx.Done()
	if ctx.Err() != context.DeadlineExceeded {
		t.Errorf("expected deadline exceeded, got %v", ctx.Err())
	}

	ctx, funcs = SetupLifecycle(context.Background(), 0)
	if _, ok := ctx.Deadline(); ok {
		t.Error("a zero timeout should not set a deadline")
	}
	funcs.Cleanup()
	if ctx.Err() != context.Canceled {
		t.Errorf("Cleanup should cancel the context, got %v", ctx.Err())
	}
}
