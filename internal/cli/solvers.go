package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/agbru/yieldfit/internal/config"
	"github.com/agbru/yieldfit/internal/curve"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/ui"
)

// GetSolversToRun resolves cfg.Solver against the factory. "all" returns
// every registered solver in name order.
func GetSolversToRun(cfg config.AppConfig, factory fit.SolverFactory) []fit.Solver {
	if cfg.Solver == config.AllSolvers {
		names := factory.List()
		solvers := make([]fit.Solver, 0, len(names))
		for _, name := range names {
			if s, err := factory.Get(name); err == nil {
				solvers = append(solvers, s)
			}
		}
		return solvers
	}
	if s, err := factory.Get(cfg.Solver); err == nil {
		return []fit.Solver{s}
	}
	return nil
}

// PrintExecutionConfig describes the run about to start.
func PrintExecutionConfig(cfg config.AppConfig, c *curve.Curve, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Fitting curve %s (%d points, maturities %d..%d) with a timeout of %s.\n",
		ui.Paint(ui.ColorLabel(), c.Name()), c.Len(), c.At(0).Maturity, c.At(c.Len()-1).Maturity,
		ui.Paint(ui.ColorWarn(), cfg.Timeout.String()))
	fmt.Fprintf(out, "Tolerance %s, step size %s, epsilon %s, at most %s iterations.\n",
		ui.Paint(ui.ColorValue(), fmt.Sprint(cfg.Tolerance)), ui.Paint(ui.ColorValue(), fmt.Sprint(cfg.Speed)),
		ui.Paint(ui.ColorValue(), fmt.Sprint(cfg.Epsilon)), ui.Paint(ui.ColorValue(), fmt.Sprint(cfg.MaxIterations)))
	fmt.Fprintf(out, "Environment: %d logical processors, Go %s.\n", runtime.NumCPU(), runtime.Version())
}

// PrintExecutionMode states whether one solver runs or several are compared.
func PrintExecutionMode(solvers []fit.Solver, out io.Writer) {
	var mode string
	if len(solvers) > 1 {
		mode = fmt.Sprintf("Parallel comparison of %d solvers", len(solvers))
	} else {
		mode = fmt.Sprintf("Single fit with the %s solver", ui.Paint(ui.ColorGood(), solvers[0].Name()))
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", mode)
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
