package metrics

import "time"

// ContentQueryCompleted records a successful content store query.
func ContentQueryCompleted(kind string, duration time.Duration) {
	ContentQueriesTotal.WithLabelValues(kind, "ok").Inc()
	ContentQueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// ContentQueryFailed records a failed content store query.
func ContentQueryFailed(kind string, duration time.Duration) {
	ContentQueriesTotal.WithLabelValues(kind, "error").Inc()
	ContentQueryDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// GalleryFetched records the outcome of a gallery page fetch.
func GalleryFetched(fetchType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	GalleryFetchesTotal.WithLabelValues(fetchType, outcome).Inc()
}

// CacheLookup records a query cache hit or miss.
func CacheLookup(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(kind, result).Inc()
}

// ScrollDecision records what a scroll evaluation decided.
func ScrollDecision(decision string) {
	ScrollEventsTotal.WithLabelValues(decision).Inc()
}

// PageExported records one exported document. An empty reason is a
// success.
func PageExported(reason string) {
	if reason == "" {
		reason = "success"
	}
	ExportedPagesTotal.WithLabelValues(reason).Inc()
}
