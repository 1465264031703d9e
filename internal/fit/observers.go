package fit

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// ─────────────────────────────────────────────────────────────────────────────
// Channel Observer
// ─────────────────────────────────────────────────────────────────────────────

// ChannelObserver forwards progress to a channel read by the UI.
type ChannelObserver struct {
	channel chan<- ProgressUpdate
}

// NewChannelObserver creates an observer that sends updates to ch. The
// channel should be buffered; a nil channel discards updates.
func NewChannelObserver(ch chan<- ProgressUpdate) *ChannelObserver {
	return &ChannelObserver{channel: ch}
}

// Update implements ProgressObserver with a non-blocking send. Updates are
// dropped while the channel is full; the UI catches up on the next one.
func (o *ChannelObserver) Update(solverIndex int, it Iteration) {
	if o.channel == nil {
		return
	}
	update := ProgressUpdate{
		SolverIndex: solverIndex,
		Value:       clampProgress(it.Progress),
		Iteration:   it.Number,
		Error:       it.Error,
	}
	select {
	case o.channel <- update:
	default:
	}
}

func clampProgress(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < 0:
		return 0
	}
	return v
}

// ─────────────────────────────────────────────────────────────────────────────
// Logging Observer
// ─────────────────────────────────────────────────────────────────────────────

// LoggingObserver traces iterations at debug level. It logs the first
// iteration, every Every-th one, and the one that reaches full progress.
type LoggingObserver struct {
	logger zerolog.Logger
	every  int
	done   map[int]bool
	mu     sync.Mutex
}

// NewLoggingObserver creates an observer that logs one iteration in every.
// Values below 1 log every iteration.
func NewLoggingObserver(logger zerolog.Logger, every int) *LoggingObserver {
	if every < 1 {
		every = 1
	}
	return &LoggingObserver{
		logger: logger,
		every:  every,
		done:   make(map[int]bool),
	}
}

// Update implements ProgressObserver.
func (o *LoggingObserver) Update(solverIndex int, it Iteration) {
	o.mu.Lock()
	defer o.mu.Unlock()

	finished := it.Progress >= 1
	if finished && o.done[solverIndex] {
		return
	}
	if it.Number != 1 && it.Number%o.every != 0 && !finished {
		return
	}
	if finished {
		o.done[solverIndex] = true
	}
	o.logger.Debug().
		Int("solver", solverIndex).
		Int("iteration", it.Number).
		Float64("error", it.Error).
		Float64("speed", it.Speed).
		Floats64("params", it.Params.Vector()).
		Floats64("gradient", it.Gradient[:]).
		Float64("progress", it.Progress).
		Msg("fit iteration")
}

// ─────────────────────────────────────────────────────────────────────────────
// Metrics Observer (Prometheus)
// ─────────────────────────────────────────────────────────────────────────────

var (
	errorGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yieldfit_fit_error",
			Help: "Current sum of squared errors of running fits",
		},
		[]string{"solver"},
	)
	progressGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "yieldfit_fit_progress",
			Help: "Estimated progress of running fits (0.0 to 1.0)",
		},
		[]string{"solver"},
	)
)

// MetricsObserver exports the live error and progress to Prometheus,
// labeled by solver name.
type MetricsObserver struct {
	errors   *prometheus.GaugeVec
	progress *prometheus.GaugeVec
	names    []string
}

// NewMetricsObserver creates an observer that updates the fit gauges.
// names[i] labels the solver notified with index i; indices without a
// name are labeled with the index itself.
func NewMetricsObserver(names ...string) *MetricsObserver {
	return &MetricsObserver{errors: errorGauge, progress: progressGauge, names: names}
}

func (o *MetricsObserver) label(solverIndex int) string {
	if solverIndex >= 0 && solverIndex < len(o.names) {
		return o.names[solverIndex]
	}
	return strconv.Itoa(solverIndex)
}

// Update implements ProgressObserver.
func (o *MetricsObserver) Update(solverIndex int, it Iteration) {
	label := o.label(solverIndex)
	o.errors.WithLabelValues(label).Set(it.Error)
	o.progress.WithLabelValues(label).Set(clampProgress(it.Progress))
}

// ResetMetrics clears the gauges at the start of a new batch of fits.
func (o *MetricsObserver) ResetMetrics() {
	o.errors.Reset()
	o.progress.Reset()
}
