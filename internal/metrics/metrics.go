// Package metrics holds the prometheus collectors for record queries and exports.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobsite",
		Subsystem: "records",
		Name:      "queries_total",
		Help:      "Record list queries broken down by module and scope kind.",
	}, []string{"module", "scope"})

	queryResults = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobsite",
		Subsystem: "records",
		Name:      "query_result_size",
		Help:      "Number of records left after filtering.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	}, []string{"module"})

	exports = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobsite",
		Subsystem: "export",
		Name:      "requests_total",
		Help:      "Exports broken down by format and outcome.",
	}, []string{"format", "result"})

	exportLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "jobsite",
		Subsystem: "export",
		Name:      "latency_seconds",
		Help:      "Export latency including the simulated round trip.",
		Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"format", "result"})

	denials = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "jobsite",
		Subsystem: "scope",
		Name:      "denials_total",
		Help:      "Operations refused because the scope lacked a capability.",
	}, []string{"module", "action"})
)

// ObserveQuery records a filtered query.
func ObserveQuery(module, scopeKind string, results int) {
	queries.WithLabelValues(module, scopeKind).Inc()
	queryResults.WithLabelValues(module).Observe(float64(results))
}

// ObserveExport records an export attempt.
func ObserveExport(format, result string, latency time.Duration) {
	labels := prometheus.Labels{"format": format, "result": result}
	exports.With(labels).Inc()
	exportLatency.With(labels).Observe(latency.Seconds())
}

// ObserveDenial records a refused operation.
func ObserveDenial(module, action string) {
	denials.WithLabelValues(module, action).Inc()
}
