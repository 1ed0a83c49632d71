package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal, sessionsExpiredTotal) }

var (
	cacheRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_cache_requests_total",
			Help: "Session-scoped cache lookups (e.g. the FAQ list), by hit or miss.",
		},
		[]string{"cache", "result"}, // e.g., cache="faq", result="hit"
	)

	sessionsExpiredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "In-memory sessions dropped by the sweeper after their TTL.",
		},
	)
)

func IncCacheRequest(cacheName, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cacheName), norm(result)).Inc()
}

func IncSessionsExpired(n int) {
	sessionsExpiredTotal.Add(float64(n))
}
