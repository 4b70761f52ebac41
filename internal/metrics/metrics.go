package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()
	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// CacheHits counts itinerary reads served from cache
	CacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_cache_hits_total", Help: "Itinerary reads served from cache."},
	)
	// CacheMisses counts itinerary reads that fell through to the store
	CacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "itinerary_cache_misses_total", Help: "Itinerary reads loaded from the store."},
	)
	// CacheEvictions counts cache invalidations by scope (targeted or all)
	CacheEvictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "itinerary_cache_evictions_total", Help: "Cache evictions by scope."},
		[]string{"scope"},
	)
	// OptimizeRuns counts route optimizations by outcome
	OptimizeRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_optimize_runs_total", Help: "Route optimizations by outcome (ok, noop, partial, error)."},
		[]string{"outcome"},
	)
)

// RegisterDefault registers collectors to the default registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(CacheHits)
		Registry.MustRegister(CacheMisses)
		Registry.MustRegister(CacheEvictions)
		Registry.MustRegister(OptimizeRuns)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
