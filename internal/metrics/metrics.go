// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records sign-in attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdoc_auth_attempts_total",
			Help: "Total number of sign-in attempts",
		},
		[]string{"result"},
	)

	// StorageWrites counts collection rewrites by slot and result (ok|error).
	StorageWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flowdoc_storage_writes_total",
			Help: "Total number of persisted collection writes",
		},
		[]string{"slot", "result"},
	)

	// APILatency measures HTTP request latencies by route pattern.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flowdoc_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
