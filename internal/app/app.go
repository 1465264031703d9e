package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/agbru/yieldfit/internal/cli"
	"github.com/agbru/yieldfit/internal/config"
	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/logging"
	"github.com/agbru/yieldfit/internal/orchestration"
	"github.com/agbru/yieldfit/internal/server"
	"github.com/agbru/yieldfit/internal/ui"
)

// Application represents the yieldfit application instance.
// It encapsulates the configuration and provides methods to run
// the application in its modes (CLI fit, server, completion).
type Application struct {
	// Config holds the parsed application configuration.
	Config config.AppConfig
	// Factory provides access to the registered solvers.
	Factory fit.SolverFactory
	// ErrWriter is the writer for error output (typically os.Stderr).
	ErrWriter io.Writer
	// Logger receives diagnostics; it writes to ErrWriter. Run builds one
	// from Config when it is nil.
	Logger *logging.ZerologAdapter
}

// New creates a new Application instance by parsing command-line arguments.
// It validates the configuration and returns an error if parsing or validation fails.
//
// Parameters:
//   - args: The command-line arguments (typically os.Args).
//   - errWriter: The writer for error output.
//
// Returns:
//   - *Application: A new application instance.
//   - error: An error if configuration parsing or validation fails.
func New(args []string, errWriter io.Writer) (*Application, error) {
	factory := fit.GlobalFactory()

	programName := "yieldfit"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter, factory.List())
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:    cfg,
		Factory:   factory,
		ErrWriter: errWriter,
		Logger:    newLogger(cfg, errWriter),
	}, nil
}

// newLogger builds the CLI logger. Iteration tracing logs at debug level,
// so --trace-every lowers the level to debug.
func newLogger(cfg config.AppConfig, w io.Writer) *logging.ZerologAdapter {
	level := cfg.LogLevel
	if cfg.TraceEvery > 0 {
		level = zerolog.DebugLevel.String()
	}
	if cfg.LogJSON {
		return logging.NewZerologAdapter(
			zerolog.New(w).Level(logging.ParseLevel(level)).With().Timestamp().Logger(),
		)
	}
	return logging.NewConsoleLogger(w, level, cfg.NoColor)
}

// Run executes the application based on the configured mode.
// It dispatches to the appropriate handler (version, completion, server, or CLI).
//
// Parameters:
//   - ctx: The context for managing cancellation and timeouts.
//   - out: The writer for standard output.
//
// Returns:
//   - int: An exit code (0 for success, non-zero for errors).
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	if a.Config.ShowVersion {
		PrintVersion(out)
		return apperrors.ExitSuccess
	}

	if a.Config.Completion != "" {
		return a.runCompletion(out)
	}

	if a.Logger == nil {
		a.Logger = newLogger(a.Config, a.ErrWriter)
	}
	ui.InitTheme(a.Config.Theme, a.Config.NoColor, out)

	if a.Config.ServerMode {
		return a.runServer(ctx)
	}
	return a.runFit(ctx, out)
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion, a.Factory.List(), curve.PresetNames()); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// runServer starts the HTTP server mode until ctx is done or a signal arrives.
func (a *Application) runServer(ctx context.Context) int {
	srv := server.NewServer(a.Factory, a.Config, server.WithLogger(a.Logger))
	if err := srv.Start(ctx); err != nil {
		fmt.Fprintf(a.ErrWriter, "Server error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	return apperrors.ExitSuccess
}

// runFit loads the curve, runs the selected solvers and reports the best fit.
func (a *Application) runFit(ctx context.Context, out io.Writer) int {
	ctx, lifecycle := SetupLifecycle(ctx, a.Config.Timeout)
	defer lifecycle.Cleanup()

	c, err := a.Config.LoadCurve()
	if err != nil {
		a.Logger.Error("loading curve", err)
		return apperrors.HandleFitError(err, 0, a.ErrWriter, ui.ErrorColors{})
	}

	opts, err := a.Config.ToFitOptions()
	if err != nil {
		fmt.Fprintln(a.ErrWriter, "Configuration error:", err)
		return apperrors.ExitCodeFor(err)
	}
	tolerance := opts.Tolerance
	if tolerance == 0 {
		tolerance = fit.DefaultTolerance
	}

	solvers := cli.GetSolversToRun(a.Config, a.Factory)
	if len(solvers) == 0 {
		fmt.Fprintf(a.ErrWriter, "Configuration error: unknown solver %q\n", a.Config.Solver)
		return apperrors.ExitErrorConfig
	}

	if !a.Config.JSONOutput && !a.Config.Quiet {
		cli.PrintExecutionConfig(a.Config, c, out)
		cli.PrintExecutionMode(solvers, out)
	}

	progressOut := out
	if a.Config.Quiet || a.Config.JSONOutput {
		progressOut = io.Discard
	}

	names := make([]string, len(solvers))
	for i, s := range solvers {
		names[i] = s.Name()
	}
	metrics := fit.NewMetricsObserver(names...)
	metrics.ResetMetrics()
	observers := []fit.ProgressObserver{metrics}
	if a.Config.TraceEvery > 0 {
		observers = append(observers, fit.NewLoggingObserver(a.Logger.Zerolog(), a.Config.TraceEvery))
	}

	a.Logger.Debug("starting fit",
		logging.String("curve", c.Name()),
		logging.Int("points", c.Len()),
		logging.Int("solvers", len(solvers)),
	)
	outcomes := orchestration.ExecuteFits(ctx, solvers, c, opts, progressOut, observers...)

	return orchestration.AnalyzeComparisonResults(outcomes, c, tolerance, cli.OutputConfig{
		OutputFile: a.Config.OutputFile,
		Plot:       a.Config.Plot,
		JSON:       a.Config.JSONOutput,
		Quiet:      a.Config.Quiet,
		Verbose:    a.Config.Verbose,
	}, out)
}

// IsHelpError checks if the error is a help flag error (--help was used).
// The application should exit with success after displaying help text.
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
