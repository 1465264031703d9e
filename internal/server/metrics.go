package server

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agbru/yieldfit/pkg/models"
)

// Metrics exposes HTTP and fit-response metrics in Prometheus format.
// Per-iteration fit metrics are recorded by the fit package itself.
type Metrics struct {
	handler http.Handler
}

var (
	activeRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "yieldfit_http_active_requests",
		Help: "Current number of active requests",
	})
	totalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldfit_http_requests_total",
		Help: "Total number of requests by path and status code",
	}, []string{"path", "code"})
	fitResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yieldfit_http_fit_responses_total",
		Help: "Fit responses by solver, status and cache use",
	}, []string{"solver", "status", "cached"})
	fitResponseError = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "yieldfit_http_fit_sse",
		Help:    "Sum of squared errors of served fits",
		Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
	}, []string{"solver"})
)

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{
		handler: promhttp.Handler(),
	}
}

// IncrementActiveRequests increments the active requests gauge.
func (m *Metrics) IncrementActiveRequests() {
	activeRequests.Inc()
}

// DecrementActiveRequests decrements the active requests gauge.
func (m *Metrics) DecrementActiveRequests() {
	activeRequests.Dec()
}

// ObserveRequest counts a finished request.
func (m *Metrics) ObserveRequest(path string, status int) {
	totalRequests.WithLabelValues(path, strconv.Itoa(status)).Inc()
}

// ObserveFit records a served fit. Cache hits do not feed the error
// histogram twice.
func (m *Metrics) ObserveFit(resp models.FitResponse) {
	fitResponses.WithLabelValues(resp.Solver, resp.Status, strconv.FormatBool(resp.Cached)).Inc()
	if !resp.Cached {
		fitResponseError.WithLabelValues(resp.Solver).Observe(resp.SSE)
	}
}

// WritePrometheus writes metrics in Prometheus text format to the HTTP response.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// handleMetrics is the HTTP handler for the /metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.metrics.WritePrometheus(w, r)
}

// metricsMiddleware tracks active requests and counts responses by status.
func (s *Server) metricsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementActiveRequests()
		defer s.metrics.DecrementActiveRequests()

		rec := wrapStatus(w)
		next(rec, r)
		s.metrics.ObserveRequest(r.URL.Path, rec.status)
	}
}
