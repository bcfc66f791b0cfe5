package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "youkai"

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "Current number of HTTP requests being processed",
		},
	)
)

// Content store metrics
var (
	ContentQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_queries_total",
			Help:      "Total number of queries sent to the content store",
		},
		[]string{"kind", "status"},
	)

	ContentQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_query_duration_seconds",
			Help:      "Content store query latency distribution",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Query cache lookups by result",
		},
		[]string{"kind", "result"}, // result: "hit" or "miss"
	)
)

// Gallery metrics
var (
	GalleryFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gallery_fetches_total",
			Help:      "Gallery page fetches by type and outcome",
		},
		[]string{"type", "outcome"}, // type: "initial" or "more"
	)

	GalleryDuplicatesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gallery_duplicates_dropped_total",
			Help:      "Artworks dropped from incremental pages because they were already loaded",
		},
	)

	GallerySessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "gallery_sessions_active",
			Help:      "Current number of mounted gallery sessions",
		},
	)

	ScrollEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gallery_scroll_events_total",
			Help:      "Scroll evaluations by decision",
		},
		[]string{"decision"}, // "fetch", "below_threshold", "gated", "coalesced"
	)
)

// Export metrics
var (
	ExportedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exported_pages_total",
			Help:      "Pages handled by the static exporter by outcome",
		},
		[]string{"status"},
	)
)
