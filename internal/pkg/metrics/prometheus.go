package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollout",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rollout",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rollout",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Resolution metrics
	resolutionRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rollout",
			Subsystem: "resolution",
			Name:      "runs_total",
			Help:      "Total number of phase resolution runs",
		},
		[]string{"status"},
	)

	resolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "rollout",
			Subsystem: "resolution",
			Name:      "duration_seconds",
			Help:      "Duration of a phase resolution run in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	phaseUsers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "rollout",
			Subsystem: "resolution",
			Name:      "phase_users",
			Help:      "Users currently resolved into each phase",
		},
		[]string{"phase", "region"},
	)

	driftUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "rollout",
			Subsystem: "resolution",
			Name:      "drift_users",
			Help:      "Users whose resolved phase disagrees with the latest audit record",
		},
	)

	snapshotWarnings = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "rollout",
			Subsystem: "resolution",
			Name:      "snapshot_warnings_total",
			Help:      "Malformed source records dropped during snapshot loading",
		},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordResolutionRun records the outcome and duration of a resolution run
func RecordResolutionRun(status string, duration time.Duration) {
	resolutionRunsTotal.WithLabelValues(status).Inc()
	resolutionDuration.Observe(duration.Seconds())
}

// SetPhaseUsers sets the per-phase user gauge
func SetPhaseUsers(phase, region string, count float64) {
	phaseUsers.WithLabelValues(phase, region).Set(count)
}

// ResetPhaseUsers clears the per-phase gauge before a refresh so stale
// phases from a previous run do not linger
func ResetPhaseUsers() {
	phaseUsers.Reset()
}

// SetDriftUsers sets the drift gauge
func SetDriftUsers(count float64) {
	driftUsers.Set(count)
}

// AddSnapshotWarnings counts dropped source records
func AddSnapshotWarnings(n int) {
	snapshotWarnings.Add(float64(n))
}
