// Package config provides the configuration management for the yieldfit
// application. It defines the configuration structure, parses command-line
// flags, applies YIELDFIT_* environment and TOML file overrides, and
// validates the result.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
)

const (
	// EnvPrefix is the prefix for all environment variables used by yieldfit.
	EnvPrefix = "YIELDFIT_"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a whole CLI run.
	DefaultTimeout = 2 * time.Minute
	// DefaultPort is the default server port.
	DefaultPort = "8080"
	// DefaultSolver runs the gradient descent only.
	DefaultSolver = fit.DefaultSolver
	// AllSolvers runs every registered solver and compares them.
	AllSolvers = "all"
	// DefaultLogLevel is the level of the CLI logger.
	DefaultLogLevel = "warn"
	// DefaultTheme is the color theme for terminals.
	DefaultTheme = "dark"
)

// AppConfig aggregates the application's configuration parameters.
type AppConfig struct {
	// ConfigFile is an optional TOML file providing defaults.
	ConfigFile string

	// Solver is a registered solver name or "all".
	Solver string
	// Terms and Yields are comma separated inline observations.
	Terms  string
	Yields string
	// CurveFile is a JSON, TOML, YAML or CSV curve file.
	CurveFile string
	// Preset names a built-in curve, used when no other source is given.
	Preset string

	// Start overrides the initial parameters, as "a1,a2,a3,b".
	Start string
	// Speed is the descent step size.
	Speed float64
	// Tolerance is the convergence threshold on the sum of squared errors.
	Tolerance float64
	// MaxIterations is the iteration budget of every solver.
	MaxIterations int
	// Epsilon is the central-difference perturbation.
	Epsilon float64
	// ParallelGradient evaluates the gradient's perturbed errors concurrently.
	ParallelGradient bool
	// Stagnation names the speed-up policy: "literal" or "rolling".
	Stagnation string
	// TraceEvery logs every Nth iteration at debug level (0 disables).
	TraceEvery int

	// Timeout sets the maximum duration of a CLI run.
	Timeout time.Duration

	// Plot writes a PNG chart of the fitted curve to this path.
	Plot string
	// JSONOutput prints the report as JSON.
	JSONOutput bool
	// OutputFile saves the report to this path.
	OutputFile string
	// Quiet prints the fitted parameters only.
	Quiet bool
	// Verbose adds the residual table and error history summary.
	Verbose bool

	// ServerMode starts the HTTP API instead of fitting once.
	ServerMode bool
	// Port specifies the port to listen on in server mode.
	Port string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogJSON switches the logger from console to JSON lines.
	LogJSON bool
	// NoColor disables all color output. NO_COLOR is also honored.
	NoColor bool
	// Theme is the color theme: dark, light or none.
	Theme string

	// Completion generates a shell completion script for the named shell.
	Completion string
	// ShowVersion prints version information and exits.
	ShowVersion bool
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate(availableSolvers []string) error {
	if c.Timeout <= 0 {
		return apperrors.NewConfigError("timeout value must be strictly positive")
	}
	// fit.Options reads zero as "use the default", so an explicit zero
	// would be replaced silently.
	if !positiveFinite(c.Speed) {
		return apperrors.NewConfigError("speed must be a positive finite number: %g", c.Speed)
	}
	if !positiveFinite(c.Tolerance) {
		return apperrors.NewConfigError("tolerance must be a positive finite number: %g", c.Tolerance)
	}
	if c.MaxIterations <= 0 {
		return apperrors.NewConfigError("max-iterations must be positive: %d", c.MaxIterations)
	}
	if !positiveFinite(c.Epsilon) {
		return apperrors.NewConfigError("epsilon must be a positive finite number: %g", c.Epsilon)
	}
	if c.TraceEvery < 0 {
		return apperrors.NewConfigError("trace-every cannot be negative: %d", c.TraceEvery)
	}
	if (c.Terms == "") != (c.Yields == "") {
		return apperrors.NewConfigError("--terms and --yields must be given together")
	}
	if c.Quiet && c.JSONOutput {
		return apperrors.NewConfigError("--quiet and --json are mutually exclusive")
	}
	if _, err := fit.NewStagnationPolicy(c.Stagnation); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if c.Start != "" {
		if _, err := nelsonsiegel.ParseParams(c.Start); err != nil {
			return apperrors.NewConfigError("invalid --start: %v", err)
		}
	}
	if c.Solver != AllSolvers && !contains(availableSolvers, c.Solver) {
		return apperrors.NewConfigError("unrecognized solver: '%s'. Valid solvers are: '%s' or [%s]",
			c.Solver, AllSolvers, strings.Join(availableSolvers, ", "))
	}
	return nil
}

func positiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ToFitOptions converts the configuration into fit.Options.
func (c AppConfig) ToFitOptions() (fit.Options, error) {
	policy, err := fit.NewStagnationPolicy(c.Stagnation)
	if err != nil {
		return fit.Options{}, apperrors.NewConfigError("%v", err)
	}
	opts := fit.Options{
		Speed:            c.Speed,
		Tolerance:        c.Tolerance,
		MaxIterations:    c.MaxIterations,
		Epsilon:          c.Epsilon,
		ParallelGradient: c.ParallelGradient,
		KeepHistory:      c.Verbose,
		Stagnation:       policy,
	}
	if c.Start != "" {
		start, err := nelsonsiegel.ParseParams(c.Start)
		if err != nil {
			return fit.Options{}, err
		}
		opts.Start = &start
	}
	return opts, nil
}

// LoadCurve builds the observed curve from, in order of preference, the
// inline --terms/--yields lists, --curve-file, then --preset.
func (c AppConfig) LoadCurve() (*curve.Curve, error) {
	switch {
	case c.Terms != "":
		terms, err := parseInts("terms", c.Terms)
		if err != nil {
			return nil, err
		}
		yields, err := parseFloats("yields", c.Yields)
		if err != nil {
			return nil, err
		}
		return curve.New(terms, yields, curve.WithName("inline"))
	case c.CurveFile != "":
		return curve.Load(c.CurveFile)
	default:
		name := c.Preset
		if name == "" {
			name = curve.DefaultPreset
		}
		return curve.Preset(name)
	}
}

func parseInts(field, s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("invalid integer %q", strings.TrimSpace(p)), s)
		}
		out[i] = v
	}
	return out, nil
}

func parseFloats(field, s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, apperrors.NewValidationError(field, fmt.Sprintf("invalid number %q", strings.TrimSpace(p)), s)
		}
		out[i] = v
	}
	return out, nil
}

// ParseConfig parses the command-line arguments into an AppConfig and
// validates it. Values come from, highest priority first: flags,
// YIELDFIT_* environment variables, the --config TOML file, defaults.
//
// Parameters:
//   - programName: The name of the program, used in the usage message.
//   - args: The command-line arguments (typically os.Args[1:]).
//   - errorWriter: Where parsing errors and usage are printed.
//   - availableSolvers: The valid solver names.
//
// Returns:
//   - AppConfig: The populated configuration.
//   - error: flag.ErrHelp for -h, a ConfigError otherwise.
func ParseConfig(programName string, args []string, errorWriter io.Writer, availableSolvers []string) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)

	config := AppConfig{}
	fs.StringVar(&config.ConfigFile, "config", "", "TOML file with default settings.")
	fs.StringVar(&config.Solver, "solver", DefaultSolver,
		fmt.Sprintf("Solver to use: '%s' or one of [%s].", AllSolvers, strings.Join(availableSolvers, ", ")))
	fs.StringVar(&config.Terms, "terms", "", "Comma separated maturities in years, e.g. 1,2,3,5.")
	fs.StringVar(&config.Yields, "yields", "", "Comma separated yields matching --terms.")
	fs.StringVar(&config.CurveFile, "curve-file", "", "Curve file (.json, .toml, .yaml or .csv).")
	fs.StringVar(&config.Preset, "preset", curve.DefaultPreset,
		fmt.Sprintf("Built-in curve: one of [%s].", strings.Join(curve.PresetNames(), ", ")))
	fs.StringVar(&config.Start, "start", "", "Initial parameters a1,a2,a3,b.")
	fs.Float64Var(&config.Speed, "speed", fit.DefaultSpeed, "Descent step size.")
	fs.Float64Var(&config.Tolerance, "tolerance", fit.DefaultTolerance, "Sum of squared errors at which a fit has converged.")
	fs.IntVar(&config.MaxIterations, "max-iterations", fit.DefaultMaxIterations, "Iteration budget of each solver.")
	fs.Float64Var(&config.Epsilon, "epsilon", fit.DefaultEpsilon, "Central-difference perturbation.")
	fs.BoolVar(&config.ParallelGradient, "parallel-gradient", false, "Evaluate gradient components concurrently.")
	fs.StringVar(&config.Stagnation, "stagnation", fit.PolicyLiteral,
		fmt.Sprintf("Speed-up policy when the error stalls: %s or %s.", fit.PolicyLiteral, fit.PolicyRolling))
	fs.IntVar(&config.TraceEvery, "trace-every", 0, "Log every Nth iteration at debug level (0 disables).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum execution time.")
	fs.StringVar(&config.Plot, "plot", "", "Write a PNG chart of the fitted curve to this file.")
	fs.BoolVar(&config.JSONOutput, "json", false, "Output the report in JSON format.")
	fs.StringVar(&config.OutputFile, "output", "", "Save the report to this file.")
	fs.StringVar(&config.OutputFile, "o", "", "Save the report (shorthand).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Print the fitted parameters only.")
	fs.BoolVar(&config.Quiet, "q", false, "Quiet mode (shorthand).")
	fs.BoolVar(&config.Verbose, "v", false, "Show residuals and the error history.")
	fs.BoolVar(&config.ServerMode, "server", false, "Start in HTTP server mode.")
	fs.StringVar(&config.Port, "port", DefaultPort, "Port to listen on in server mode.")
	fs.StringVar(&config.LogLevel, "log-level", DefaultLogLevel, "Log level: debug, info, warn or error.")
	fs.BoolVar(&config.LogJSON, "log-json", false, "Log JSON lines instead of console output.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output (also respects NO_COLOR).")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color theme: dark, light or none.")
	fs.StringVar(&config.Completion, "completion", "", "Generate shell completion script (bash, zsh, fish, powershell).")
	fs.BoolVar(&config.ShowVersion, "version", false, "Print version information and exit.")

	setCustomUsage(fs)

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(errorWriter, "Configuration error: unexpected argument %q\n", fs.Arg(0))
		fs.Usage()
		return AppConfig{}, apperrors.NewConfigError("unexpected argument %q", fs.Arg(0))
	}

	if !isFlagSet(fs, "config") {
		config.ConfigFile = getEnvString("CONFIG", config.ConfigFile)
	}
	if config.ConfigFile != "" {
		file, err := LoadFile(config.ConfigFile)
		if err != nil {
			fmt.Fprintln(errorWriter, "Configuration error:", err)
			return AppConfig{}, err
		}
		file.apply(&config, fs)
	}
	applyEnvOverrides(&config, fs)

	config.Solver = strings.ToLower(config.Solver)
	if err := config.Validate(availableSolvers); err != nil {
		fmt.Fprintln(errorWriter, "Configuration error:", err)
		fs.Usage()
		var cfgErr apperrors.ConfigError
		if errors.As(err, &cfgErr) {
			return AppConfig{}, cfgErr
		}
		return AppConfig{}, apperrors.NewConfigError("invalid configuration")
	}
	return config, nil
}
