package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal counts DexScreener requests by endpoint and outcome.
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_upstream_requests_total",
			Help: "The total number of DexScreener API requests",
		},
		[]string{"endpoint", "status"}, // search/tokens, ok/error/cache
	)

	UpstreamRequestSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dex_upstream_request_seconds",
			Help:    "Latency of DexScreener API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// BatchRunsTotal counts orchestrator runs by source and outcome.
	BatchRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_batch_runs_total",
			Help: "The total number of batch update runs",
		},
		[]string{"source", "status"},
	)

	BatchItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_batch_items_total",
			Help: "The total number of pairs processed by batch runs",
		},
		[]string{"status"}, // updated, skipped, failed
	)

	BatchDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "dex_batch_duration_seconds",
		Help:    "Time taken by one batch update run",
		Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
	})

	TokenRecommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_token_recommendations_total",
			Help: "Recommendations assigned by reconciliation",
		},
		[]string{"recommendation"},
	)

	StreamTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dex_stream_tasks_total",
			Help: "Update tasks published to or consumed from the stream",
		},
		[]string{"kind", "status"}, // published, done, failed, invalid
	)
)

// RecordUpstreamRequest records one upstream call.
func RecordUpstreamRequest(endpoint, status string, seconds float64) {
	UpstreamRequestsTotal.WithLabelValues(endpoint, status).Inc()
	if seconds > 0 {
		UpstreamRequestSeconds.WithLabelValues(endpoint).Observe(seconds)
	}
}

// RecordBatch records the outcome of one batch run.
func RecordBatch(source, status string, updated, skipped, failed int, seconds float64) {
	BatchRunsTotal.WithLabelValues(source, status).Inc()
	BatchItemsTotal.WithLabelValues("updated").Add(float64(updated))
	BatchItemsTotal.WithLabelValues("skipped").Add(float64(skipped))
	BatchItemsTotal.WithLabelValues("failed").Add(float64(failed))
	BatchDurationSeconds.Observe(seconds)
}

func RecordRecommendation(recommendation string) {
	TokenRecommendations.WithLabelValues(recommendation).Inc()
}

func RecordStreamTask(kind, status string) {
	StreamTasksTotal.WithLabelValues(kind, status).Inc()
}
