// Package metrics registers the Prometheus metrics exposed by the gateway.
// Import this package (via blank import or direct reference) from the
// server entry point to register all metrics before the /admin/metrics
// handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts requests that went through the dispatch queue
	// and were answered (buffered chat cache misses, embeddings, images),
	// labelled by capability, model, and outcome ("success" or "error").
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of requests processed by the gateway.",
		},
		[]string{"capability", "model", "status"},
	)

	// RequestDuration observes request latency in seconds for the same
	// requests, from the engine's Submit call to the worker's reply.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_request_duration_seconds",
			Help:    "End-to-end request duration in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"capability", "model"},
	)

	// QueueDepth reports the current number of envelopes sitting in the
	// dispatch queue, waiting for a worker to pick them up.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_queue_depth",
			Help: "Current number of envelopes waiting in the dispatch queue.",
		},
	)

	// WorkersBusy reports how many of the worker pool's permits are
	// currently held by an in-flight backend call.
	WorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_workers_busy",
			Help: "Current number of worker-pool permits held by in-flight backend calls.",
		},
	)

	// CacheHits / CacheMisses count response-cache lookups for buffered
	// chat requests. §4.5 requires a lookup-miss counter; hits are tracked
	// alongside it for the same property (testable property 10).
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_hits_total",
			Help: "Total response-cache hits for buffered chat requests.",
		},
	)
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_misses_total",
			Help: "Total response-cache misses for buffered chat requests.",
		},
	)

	// BackendErrors counts backend-runtime failures by capability.
	BackendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_backend_errors_total",
			Help: "Total backend runtime errors by capability.",
		},
		[]string{"capability"},
	)

	// RateLimitRejections counts requests rejected by the per-token rate
	// limiter.
	RateLimitRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting.",
		},
		[]string{"key_type"},
	)
)
