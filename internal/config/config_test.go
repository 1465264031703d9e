package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
)

var testSolvers = []string{"bfgs", "descent", "nelder-mead"}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg, err := ParseConfig("yieldfit", nil, &bytes.Buffer{}, testSolvers)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Solver != DefaultSolver || cfg.Preset != "reference" || cfg.Port != DefaultPort {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Speed != fit.DefaultSpeed || cfg.Tolerance != fit.DefaultTolerance ||
		cfg.MaxIterations != fit.DefaultMaxIterations || cfg.Epsilon != fit.DefaultEpsilon {
		t.Errorf("unexpected fit defaults: %+v", cfg)
	}
	if cfg.Timeout != DefaultTimeout || cfg.Stagnation != fit.PolicyLiteral {
		t.Errorf("unexpected defaults: timeout %v, stagnation %q", cfg.Timeout, cfg.Stagnation)
	}
}

func TestParseConfigFlags(t *testing.T) {
	t.Parallel()
	args := []string{
		"--solver", "ALL", "--terms", "1,2,3,5", "--yields", "2,2.1,2.2,2.3",
		"--start", "2,-1,-1,2", "--speed", "0.01", "--tolerance", "0.001",
		"--max-iterations", "500", "--epsilon", "0.001", "--stagnation", "rolling",
		"--parallel-gradient", "-v", "-o", "out.txt", "--plot", "fit.png", "--timeout", "10s",
	}
	cfg, err := ParseConfig("yieldfit", args, &bytes.Buffer{}, testSolvers)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Solver != AllSolvers {
		t.Errorf("Solver = %q, want lower-cased %q", cfg.Solver, AllSolvers)
	}
	if cfg.Speed != 0.01 || cfg.Tolerance != 0.001 || cfg.MaxIterations != 500 || cfg.Epsilon != 0.001 {
		t.Errorf("numeric flags not applied: %+v", cfg)
	}
	if !cfg.ParallelGradient || !cfg.Verbose || cfg.OutputFile != "out.txt" || cfg.Plot != "fit.png" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}

	opts, err := cfg.ToFitOptions()
	if err != nil {
		t.Fatalf("ToFitOptions() error: %v", err)
	}
	if opts.Start == nil || opts.Start.B != 2 || opts.Start.A2 != -1 {
		t.Errorf("Start = %v", opts.Start)
	}
	if opts.Stagnation.Name() != fit.PolicyRolling || !opts.KeepHistory || !opts.ParallelGradient {
		t.Errorf("options = %+v", opts)
	}

	c, err := cfg.LoadCurve()
	if err != nil {
		t.Fatalf("LoadCurve() error: %v", err)
	}
	if c.Len() != 4 || c.Name() != "inline" {
		t.Errorf("inline curve = %d points named %q", c.Len(), c.Name())
	}
}

func TestParseConfigErrors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown solver", []string{"--solver", "newton"}, "unrecognized solver"},
		{"zero timeout", []string{"--timeout", "0s"}, "timeout"},
		{"negative speed", []string{"--speed", "-1"}, "speed"},
		{"negative tolerance", []string{"--tolerance", "-0.1"}, "tolerance"},
		{"negative iterations", []string{"--max-iterations", "-1"}, "max-iterations"},
		{"zero speed", []string{"--speed", "0"}, "speed must be a positive"},
		{"zero tolerance", []string{"--tolerance", "0"}, "tolerance must be a positive"},
		{"zero iterations", []string{"--max-iterations", "0"}, "max-iterations must be positive"},
		{"zero epsilon", []string{"--epsilon", "0"}, "epsilon must be a positive"},
		{"NaN speed", []string{"--speed", "NaN"}, "speed"},
		{"terms without yields", []string{"--terms", "1,2"}, "--terms and --yields"},
		{"bad stagnation", []string{"--stagnation", "panic"}, "stagnation"},
		{"bad start", []string{"--start", "1,2,3"}, "--start"},
		{"quiet json", []string{"-q", "--json"}, "mutually exclusive"},
		{"positional", []string{"extra"}, "unexpected argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var errOut bytes.Buffer
			_, err := ParseConfig("yieldfit", tt.args, &errOut, testSolvers)
			var cfgErr apperrors.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error = %v, want ConfigError", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
			if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
				t.Errorf("exit code = %d", apperrors.ExitCodeFor(err))
			}
		})
	}
}

func TestParseConfigHelp(t *testing.T) {
	t.Parallel()
	var errOut bytes.Buffer
	_, err := ParseConfig("yieldfit", []string{"-h"}, &errOut, testSolvers)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	usage := errOut.String()
	for _, section := range []string{"Usage: yieldfit", "Curve:", "Fit:", "Output:", "Server:", "--tolerance", "YIELDFIT_"} {
		if !strings.Contains(usage, section) {
			t.Errorf("usage is missing %q:\n%s", section, usage)
		}
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("YIELDFIT_SOLVER", "bfgs")
	t.Setenv("YIELDFIT_TOLERANCE", "0.01")
	t.Setenv("YIELDFIT_MAX_ITERATIONS", "42")
	t.Setenv("YIELDFIT_TIMEOUT", "15s")
	t.Setenv("YIELDFIT_QUIET", "yes")
	t.Setenv("YIELDFIT_PORT", "9000")

	cfg, err := ParseConfig("yieldfit", []string{"--max-iterations", "7"}, &bytes.Buffer{}, testSolvers)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Solver != "bfgs" || cfg.Tolerance != 0.01 || cfg.Timeout != 15*time.Second || !cfg.Quiet || cfg.Port != "9000" {
		t.Errorf("environment not applied: %+v", cfg)
	}
	if cfg.MaxIterations != 7 {
		t.Errorf("MaxIterations = %d, flag should beat the environment", cfg.MaxIterations)
	}
}

func TestEnvInvalidValuesKeepDefaults(t *testing.T) {
	t.Setenv("YIELDFIT_SPEED", "fast")
	t.Setenv("YIELDFIT_JSON", "maybe")
	cfg, err := ParseConfig("yieldfit", nil, &bytes.Buffer{}, testSolvers)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Speed != fit.DefaultSpeed || cfg.JSONOutput {
		t.Errorf("invalid environment values leaked: %+v", cfg)
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "yieldfit.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigFilePrecedence(t *testing.T) {
	path := writeConfigFile(t, `
solver = "nelder-mead"
tolerance = 0.002
max_iterations = 300
timeout = "45s"
preset = "inverted"

[log]
level = "debug"

[server]
port = "7070"
`)
	t.Setenv("YIELDFIT_TOLERANCE", "0.005")

	cfg, err := ParseConfig("yieldfit", []string{"--config", path, "--max-iterations", "50"}, &bytes.Buffer{}, testSolvers)
	if err != nil {
		t.Fatalf("ParseConfig() error: %v", err)
	}
	if cfg.Solver != "nelder-mead" || cfg.Timeout != 45*time.Second || cfg.Preset != "inverted" ||
		cfg.LogLevel != "debug" || cfg.Port != "7070" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Tolerance != 0.005 {
		t.Errorf("Tolerance = %v, environment should beat the file", cfg.Tolerance)
	}
	if cfg.MaxIterations != 50 {
		t.Errorf("MaxIterations = %d, flag should beat the file", cfg.MaxIterations)
	}
}

func TestConfigFileErrors(t *testing.T) {
	t.Parallel()
	for name, content := range map[string]string{
		"syntax":  "solver = ",
		"timeout": `timeout = "soon"`,
	} {
		path := writeConfigFile(t, content)
		_, err := ParseConfig("yieldfit", []string{"--config", path}, &bytes.Buffer{}, testSolvers)
		if apperrors.ExitCodeFor(err) != apperrors.ExitErrorConfig {
			t.Errorf("%s: error = %v, want config error", name, err)
		}
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("LoadFile() of a missing file should fail")
	}
}

func TestLoadCurveSources(t *testing.T) {
	t.Parallel()
	c, err := AppConfig{}.LoadCurve()
	if err != nil || c.Name() != "reference" {
		t.Fatalf("default curve = %v, %v", c, err)
	}

	path := filepath.Join(t.TempDir(), "mine.csv")
	if err := os.WriteFile(path, []byte("term,yield\n1,2.0\n5,2.5\n10,3.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err = AppConfig{CurveFile: path, Preset: "inverted"}.LoadCurve()
	if err != nil {
		t.Fatalf("LoadCurve() error: %v", err)
	}
	if c.Name() != "mine" || c.Len() != 3 {
		t.Errorf("curve file = %q with %d points", c.Name(), c.Len())
	}

	for name, cfg := range map[string]AppConfig{
		"bad term":   {Terms: "1,x", Yields: "1,2"},
		"bad yield":  {Terms: "1,2", Yields: "1,y"},
		"mismatch":   {Terms: "1,2,3", Yields: "1,2"},
		"bad preset": {Preset: "flat-earth"},
	} {
		if _, err := cfg.LoadCurve(); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("%s: error = %v, want invalid input", name, err)
		}
	}
}
