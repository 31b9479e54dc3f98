package main

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"
)

// HTTP metrics
var (
	httpRequestsTotal atomic.Int64
	httpErrorsTotal   atomic.Int64
)

// Upstream forum API metrics
var (
	apiCallsTotal    atomic.Int64
	apiFailuresTotal atomic.Int64
	staleDiscarded   atomic.Int64
)

// Cache metrics
var (
	cacheHitsTotal   atomic.Int64
	cacheMissesTotal atomic.Int64
)

// In-flight single-shot actions (uploads, profile saves)
var inflightActions atomic.Int64

var serverStartTime = time.Now()

// IncrementCacheHit increments the cache hit counter
func IncrementCacheHit() {
	cacheHitsTotal.Add(1)
}

// IncrementCacheMiss increments the cache miss counter
func IncrementCacheMiss() {
	cacheMissesTotal.Add(1)
}

// CountAPICall records one upstream API call and, when failed is true, one
// failure.
func CountAPICall(failed bool) {
	apiCallsTotal.Add(1)
	if failed {
		apiFailuresTotal.Add(1)
	}
}

// CountStaleDiscard records a fetch result discarded by the stale-response
// guard.
func CountStaleDiscard() {
	staleDiscarded.Add(1)
}

// metricsHandler serves Prometheus-compatible metrics
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

	fmt.Fprintf(w, "# HELP forum_build_info Build and configuration information\n")
	fmt.Fprintf(w, "# TYPE forum_build_info gauge\n")
	fmt.Fprintf(w, "forum_build_info{cache_backend=%q,go_version=%q} 1\n\n", cacheBackendType, runtime.Version())

	fmt.Fprintf(w, "# HELP process_start_time_seconds Unix timestamp of process start\n")
	fmt.Fprintf(w, "# TYPE process_start_time_seconds gauge\n")
	fmt.Fprintf(w, "process_start_time_seconds %d\n\n", serverStartTime.Unix())

	fmt.Fprintf(w, "# HELP process_uptime_seconds Time since process started\n")
	fmt.Fprintf(w, "# TYPE process_uptime_seconds gauge\n")
	fmt.Fprintf(w, "process_uptime_seconds %.0f\n\n", time.Since(serverStartTime).Seconds())

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	fmt.Fprintf(w, "# HELP go_goroutines Number of active goroutines\n")
	fmt.Fprintf(w, "# TYPE go_goroutines gauge\n")
	fmt.Fprintf(w, "go_goroutines %d\n\n", runtime.NumGoroutine())

	fmt.Fprintf(w, "# HELP go_memstats_alloc_bytes Currently allocated memory in bytes\n")
	fmt.Fprintf(w, "# TYPE go_memstats_alloc_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_alloc_bytes %d\n\n", memStats.Alloc)

	fmt.Fprintf(w, "# HELP go_memstats_heap_inuse_bytes Heap memory in use\n")
	fmt.Fprintf(w, "# TYPE go_memstats_heap_inuse_bytes gauge\n")
	fmt.Fprintf(w, "go_memstats_heap_inuse_bytes %d\n\n", memStats.HeapInuse)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", httpRequestsTotal.Load())

	fmt.Fprintf(w, "# HELP http_errors_total Total number of HTTP 5xx errors\n")
	fmt.Fprintf(w, "# TYPE http_errors_total counter\n")
	fmt.Fprintf(w, "http_errors_total %d\n\n", httpErrorsTotal.Load())

	fmt.Fprintf(w, "# HELP forum_api_calls_total Total calls to the upstream forum API\n")
	fmt.Fprintf(w, "# TYPE forum_api_calls_total counter\n")
	fmt.Fprintf(w, "forum_api_calls_total %d\n\n", apiCallsTotal.Load())

	fmt.Fprintf(w, "# HELP forum_api_failures_total Upstream forum API calls that failed\n")
	fmt.Fprintf(w, "# TYPE forum_api_failures_total counter\n")
	fmt.Fprintf(w, "forum_api_failures_total %d\n\n", apiFailuresTotal.Load())

	fmt.Fprintf(w, "# HELP forum_stale_results_discarded_total Fetch results discarded by the stale-response guard\n")
	fmt.Fprintf(w, "# TYPE forum_stale_results_discarded_total counter\n")
	fmt.Fprintf(w, "forum_stale_results_discarded_total %d\n\n", staleDiscarded.Load())

	fmt.Fprintf(w, "# HELP forum_inflight_actions Current in-flight uploads and profile saves\n")
	fmt.Fprintf(w, "# TYPE forum_inflight_actions gauge\n")
	fmt.Fprintf(w, "forum_inflight_actions %d\n\n", inflightActions.Load())

	cacheHits := cacheHitsTotal.Load()
	cacheMisses := cacheMissesTotal.Load()

	fmt.Fprintf(w, "# HELP cache_hits_total Total cache hits\n")
	fmt.Fprintf(w, "# TYPE cache_hits_total counter\n")
	fmt.Fprintf(w, "cache_hits_total %d\n\n", cacheHits)

	fmt.Fprintf(w, "# HELP cache_misses_total Total cache misses\n")
	fmt.Fprintf(w, "# TYPE cache_misses_total counter\n")
	fmt.Fprintf(w, "cache_misses_total %d\n\n", cacheMisses)

	var hitRatio float64
	if total := cacheHits + cacheMisses; total > 0 {
		hitRatio = float64(cacheHits) / float64(total)
	}
	fmt.Fprintf(w, "# HELP cache_hit_ratio Cache hit ratio (0-1)\n")
	fmt.Fprintf(w, "# TYPE cache_hit_ratio gauge\n")
	fmt.Fprintf(w, "cache_hit_ratio %.4f\n", hitRatio)
}
