package observability

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequests counts handled HTTP requests by route, method and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"path", "method", "status"},
	)

	// HTTPErrors counts requests that resolved to a domain error code.
	HTTPErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "http_errors_total",
			Help:      "Total number of requests resolved to an error code",
		},
		[]string{"path", "method", "code"},
	)

	// Logins counts activity recordings in the login cache.
	Logins = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "logins_total",
			Help:      "Total number of login recordings",
		},
	)

	// Logouts counts explicit logouts.
	Logouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "logouts_total",
			Help:      "Total number of explicit logouts",
		},
	)

	// SessionEvictions counts entries removed by the periodic purge sweep.
	SessionEvictions = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "session_evictions_total",
			Help:      "Total number of inactive sessions removed by the sweep",
		},
	)

	// LifecycleTransitions counts emitted lifecycle events by type.
	LifecycleTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "identity",
			Name:      "lifecycle_transitions_total",
			Help:      "Total number of user lifecycle events emitted",
		},
		[]string{"type"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call from multiple entry points.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(
			HTTPRequests,
			HTTPErrors,
			Logins,
			Logouts,
			SessionEvictions,
			LifecycleTransitions,
		)
	})
}

// RecordRequest increments the request counter.
func RecordRequest(path, method string, status int) {
	HTTPRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
}

// RecordError increments the error counter.
func RecordError(path, method, code string) {
	HTTPErrors.WithLabelValues(path, method, code).Inc()
}
