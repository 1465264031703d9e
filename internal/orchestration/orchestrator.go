// Package orchestration runs one or several solvers concurrently against
// the same curve and summarizes their outcomes.
package orchestration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/yieldfit/internal/cli"
	"github.com/agbru/yieldfit/internal/curve"
	apperrors "github.com/agbru/yieldfit/internal/errors"
	"github.com/agbru/yieldfit/internal/fit"
	"github.com/agbru/yieldfit/internal/nelsonsiegel"
	"github.com/agbru/yieldfit/internal/report"
	"github.com/agbru/yieldfit/internal/ui"
)

// FitOutcome encapsulates the outcome of a single solver run.
type FitOutcome struct {
	// Name is the registry name of the solver.
	Name string
	// Result is the solver result. On non-convergence it holds the best
	// parameters reached.
	Result fit.Result
	// Duration is the wall time of the run.
	Duration time.Duration
	// Err is the error returned by the solver, if any.
	Err error
}

// usable reports whether the outcome carries fitted parameters.
func (o FitOutcome) usable() bool {
	return o.Err == nil || errors.Is(o.Err, apperrors.ErrNonConvergence)
}

// ProgressBufferMultiplier defines the buffer size multiplier for the progress
// channel. A larger buffer reduces the likelihood of blocking solver
// goroutines when the UI is slow to consume updates.
const ProgressBufferMultiplier = 5

// MismatchThreshold is the largest difference, in yield points, tolerated
// between two converged fits anywhere on the observed maturity range.
const MismatchThreshold = 0.25

// ExecuteFits runs every solver on c concurrently and collects their
// outcomes in solver order. Progress goes to a single display goroutine
// writing to out; extra observers (logging, metrics) receive every
// iteration as well.
func ExecuteFits(ctx context.Context, solvers []fit.Solver, c *curve.Curve, opts fit.Options, out io.Writer, observers ...fit.ProgressObserver) []FitOutcome {
	g, ctx := errgroup.WithContext(ctx)
	outcomes := make([]FitOutcome, len(solvers))
	progressChan := make(chan fit.ProgressUpdate, len(solvers)*ProgressBufferMultiplier)

	subject := fit.NewProgressSubject()
	subject.Register(fit.NewChannelObserver(progressChan))
	for _, o := range observers {
		subject.Register(o)
	}

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go cli.DisplayProgress(&displayWg, progressChan, len(solvers), out)

	for i, s := range solvers {
		idx, solver := i, s
		g.Go(func() error {
			startTime := time.Now()
			res, err := solver.RunWithObservers(ctx, subject, idx, c, opts)
			outcomes[idx] = FitOutcome{
				Name: solver.Name(), Result: res, Duration: time.Since(startTime), Err: err,
			}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return outcomes
}

// maxDisagreement returns the largest absolute difference between the
// curves of a and b, sampled every half year over c's maturity range.
func maxDisagreement(a, b nelsonsiegel.Params, c *curve.Curve) float64 {
	from, to := float64(c.At(0).Maturity), float64(c.At(c.Len()-1).Maturity)
	worst := 0.0
	for t := from; t <= to; t += 0.5 {
		ya, errA := nelsonsiegel.Yield(t, a)
		yb, errB := nelsonsiegel.Yield(t, b)
		if errA != nil || errB != nil {
			return math.Inf(1)
		}
		worst = max(worst, math.Abs(ya-yb))
	}
	return worst
}

// AnalyzeComparisonResults sorts the outcomes, prints a comparison table
// when more than one solver ran, checks that converged solvers agree on the
// fitted curve and displays the report of the best fit.
//
// Parameters:
//   - outcomes: The solver outcomes to analyze.
//   - c: The fitted curve.
//   - tolerance: The convergence threshold the solvers used.
//   - cfg: How the final report is shown and saved.
//   - out: The io.Writer for the summary.
//
// Returns:
//   - int: An exit code indicating success (0) or the type of failure.
func AnalyzeComparisonResults(outcomes []FitOutcome, c *curve.Curve, tolerance float64, cfg cli.OutputConfig, out io.Writer) int {
	sort.SliceStable(outcomes, func(i, j int) bool {
		a, b := outcomes[i], outcomes[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		if a.usable() != b.usable() {
			return a.usable()
		}
		if a.Result.Error != b.Result.Error {
			return a.Result.Error < b.Result.Error
		}
		return a.Duration < b.Duration
	})
	if len(outcomes) == 0 {
		fmt.Fprintln(out, "No solver was run.")
		return apperrors.ExitErrorGeneric
	}

	if len(outcomes) > 1 && !cfg.Quiet && !cfg.JSON {
		printComparison(outcomes, out)
	}

	best := outcomes[0]
	if best.Err == nil {
		for _, o := range outcomes[1:] {
			if o.Err != nil {
				continue
			}
			if d := maxDisagreement(best.Result.Params, o.Result.Params, c); d > MismatchThreshold {
				fmt.Fprintf(out, "\nGlobal Status: %sCRITICAL ERROR!%s Solvers %s and %s converged to curves %.4f apart.\n",
					ui.ColorBad(), ui.ColorReset(), best.Name, o.Name, d)
				return apperrors.ExitErrorMismatch
			}
		}
		if len(outcomes) > 1 && !cfg.Quiet && !cfg.JSON {
			fmt.Fprintf(out, "\nGlobal Status: Success. All converged fits are consistent.\n")
		}
	}

	if !best.usable() {
		if len(outcomes) > 1 {
			fmt.Fprintf(out, "\nGlobal Status: Failure. No solver produced a fit.\n")
		}
		return apperrors.HandleFitError(best.Err, best.Duration, out, ui.ErrorColors{})
	}

	r := report.New(c, best.Result, tolerance, best.Err)
	if err := cli.DisplayReport(out, r, cfg); err != nil {
		fmt.Fprintf(out, "Error: %v\n", err)
		return apperrors.ExitErrorGeneric
	}
	if best.Err != nil {
		return apperrors.HandleFitError(best.Err, 0, out, ui.ErrorColors{})
	}
	return apperrors.ExitSuccess
}

func printComparison(outcomes []FitOutcome, out io.Writer) {
	fmt.Fprintf(out, "\n--- Comparison Summary ---\n")
	tw := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintf(tw, "%sSolver%s\t%sIterations%s\t%sSSE%s\t%sDuration%s\t%sStatus%s\n",
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset(),
		ui.ColorBold(), ui.ColorReset(), ui.ColorBold(), ui.ColorReset())

	for _, o := range outcomes {
		var status string
		switch {
		case o.Err == nil:
			status = fmt.Sprintf("%s✅ Converged%s", ui.ColorGood(), ui.ColorReset())
		case o.usable():
			status = fmt.Sprintf("%s⚠️  Not converged%s", ui.ColorWarn(), ui.ColorReset())
		default:
			status = fmt.Sprintf("%s❌ Failure (%v)%s", ui.ColorBad(), o.Err, ui.ColorReset())
		}
		sse := "-"
		if o.usable() {
			sse = fmt.Sprintf("%.6g", o.Result.Error)
		}
		fmt.Fprintf(tw, "%s%s%s\t%d\t%s\t%s%s%s\t%s\n",
			ui.ColorLabel(), o.Name, ui.ColorReset(),
			o.Result.Iterations, sse,
			ui.ColorWarn(), report.FormatDuration(o.Duration), ui.ColorReset(),
			status)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(out, "Warning: failed to flush tabwriter: %v\n", err)
	}
}
