package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Every method
// is safe to call on a nil *Collector, which is how metrics are disabled.
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Cache metrics
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter
}

// NewCollector creates a collector with its own registry
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of repository operations",
			},
			[]string{"operation", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Repository operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		CacheHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
		),
		CacheMisses: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache misses",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.StoreOperations,
		c.StoreDuration,
		c.CacheHits,
		c.CacheMisses,
	)
	return c
}

// ObserveHTTP records one served request
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStore records one repository call. status is "success" or "error".
func (c *Collector) ObserveStore(operation, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.StoreOperations.WithLabelValues(operation, status).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// CacheHit counts a cache hit
func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.CacheHits.Inc()
}

// CacheMiss counts a cache miss
func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.CacheMisses.Inc()
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler exposes the registry in the Prometheus text format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
