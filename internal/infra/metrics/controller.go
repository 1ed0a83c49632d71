package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		pageTransitionsTotal,
		staleResponsesTotal,
		receiptUploadsTotal,
		uploadRateLimitedTotal,
	)
}

var (
	pageTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_transitions_total",
			Help: "Page controller transitions by target page.",
		},
		[]string{"page"},
	)

	staleResponsesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stale_responses_dropped_total",
			Help: "Backend responses discarded because a newer request for the same slot was dispatched.",
		},
		[]string{"slot"},
	)

	receiptUploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "receipt_uploads_total",
			Help: "Payment receipt submissions by result (succeeded/rejected/failed).",
		},
		[]string{"result"},
	)

	uploadRateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "receipt_upload_rate_limited_total",
			Help: "Total number of receipt submissions refused by the rate limiter.",
		},
	)
)

func IncPageTransition(page string) {
	pageTransitionsTotal.WithLabelValues(norm(page)).Inc()
}

func IncStaleResponse(slot string) {
	staleResponsesTotal.WithLabelValues(norm(slot)).Inc()
}

func IncReceiptUpload(result string) {
	receiptUploadsTotal.WithLabelValues(norm(result)).Inc()
}

func IncUploadRateLimited() {
	uploadRateLimitedTotal.Inc()
}
