package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(backendRequestsTotal, backendLatencyMs) }

var (
	backendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Calls to the remote subscription backend by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"}, // outcome: ok|unauthenticated|validation|error|skipped
	)

	backendLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_ms",
			Help:    "Backend call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"endpoint"},
	)
)

func ObserveBackendCall(endpoint, outcome string, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(norm(endpoint), norm(outcome)).Inc()
	backendLatencyMs.WithLabelValues(norm(endpoint)).Observe(float64(elapsed.Milliseconds()))
}

func IncBackendSkipped(endpoint string) {
	backendRequestsTotal.WithLabelValues(norm(endpoint), "skipped").Inc()
}
