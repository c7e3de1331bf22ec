// Package metrics holds the Prometheus collectors exported at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinechat_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	// HTTPDuration observes request latency by route.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cinechat_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"route"})

	// Queries counts chat messages by outcome: recommended, empty, error.
	Queries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinechat_queries_total",
		Help: "Chat messages by outcome.",
	}, []string{"outcome"})

	// MetadataLookups counts TMDB lookups by outcome: hit, miss, error.
	MetadataLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cinechat_metadata_lookups_total",
		Help: "Movie metadata lookups by outcome.",
	}, []string{"outcome"})

	// CircuitBreakerState reports 0=closed, 1=half-open, 2=open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "cinechat_circuit_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open).",
	}, []string{"name"})

	// IndexedDocuments is the number of documents in the vector store after startup.
	IndexedDocuments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "cinechat_indexed_documents",
		Help: "Documents written to the vector store at startup.",
	})
)
