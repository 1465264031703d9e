// Package cli provides the terminal presentation of yieldfit: the spinner
// and progress bar shown while solvers run, the final report, file outputs
// and shell completion scripts.
package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/yieldfit/internal/fit"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 40
)

// Spinner abstracts the terminal spinner so DisplayProgress can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// ProgressState aggregates the progress of concurrently running solvers.
type ProgressState struct {
	progresses []float64
	errors     []float64
}

// NewProgressState tracks numSolvers solvers.
func NewProgressState(numSolvers int) *ProgressState {
	return &ProgressState{
		progresses: make([]float64, numSolvers),
		errors:     make([]float64, numSolvers),
	}
}

// Update records the progress and current error of one solver. Indices
// outside the tracked range are ignored.
func (ps *ProgressState) Update(index int, value, sse float64) {
	if index >= 0 && index < len(ps.progresses) {
		ps.progresses[index] = value
		ps.errors[index] = sse
	}
}

// CalculateAverage returns the mean progress across solvers.
func (ps *ProgressState) CalculateAverage() float64 {
	if len(ps.progresses) == 0 {
		return 0
	}
	var total float64
	for _, p := range ps.progresses {
		total += p
	}
	return total / float64(len(ps.progresses))
}

// BestError returns the lowest error reported so far, or 0 before any report.
func (ps *ProgressState) BestError() float64 {
	best := 0.0
	for _, e := range ps.errors {
		if e > 0 && (best == 0 || e < best) {
			best = e
		}
	}
	return best
}

// progressBar renders progress in [0, 1] as a bar of length characters.
func progressBar(progress float64, length int) string {
	progress = max(0, min(1, progress))
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length * 3)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

func progressLabel(numSolvers int) string {
	if numSolvers > 1 {
		return "Avg progress"
	}
	return "Progress"
}

// DisplayProgress shows a spinner with the aggregated progress bar, the
// best error so far and an ETA until progressChan is closed. It runs in its
// own goroutine and calls wg.Done when finished.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan fit.ProgressUpdate, numSolvers int, out io.Writer) {
	defer wg.Done()
	if numSolvers <= 0 {
		for range progressChan {
		}
		return
	}

	state := NewProgressWithETA(numSolvers)
	s := newSpinner(spinner.WithWriter(out))
	s.Start()
	spinnerStopped := false
	defer func() {
		if !spinnerStopped {
			s.Stop()
		}
	}()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	label := progressLabel(numSolvers)
	for {
		select {
		case update, ok := <-progressChan:
			if !ok {
				s.Stop()
				spinnerStopped = true
				fmt.Fprintf(out, "%s: %6.2f%% [%s] SSE: %.6f\n",
					label, 100.0, progressBar(1.0, ProgressBarWidth), state.BestError())
				return
			}
			state.UpdateWithETA(update.SolverIndex, update.Value, update.Error)
		case <-ticker.C:
			s.UpdateSuffix(fmt.Sprintf(" %s: %s SSE: %.6f",
				label, FormatProgressBarWithETA(state.CalculateAverage(), state.GetETA(), ProgressBarWidth), state.BestError()))
		}
	}
}
