package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lrclib/lrclib/src/catalog"
)

// collectors bundles every Prometheus metric the service exports.
type collectors struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	queueDepth    prometheus.GaugeFunc
	scrapeResults *prometheus.CounterVec
	publishes     prometheus.Counter
}

func newCollectors(queue catalog.MissingQueue) *collectors {
	c := &collectors{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lrclib_http_requests_total",
			Help: "HTTP requests processed, by method, route and status.",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lrclib_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		queueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lrclib_missing_queue_depth",
			Help: "Missing tracks currently waiting on the in-memory queue.",
		}, func() float64 {
			return float64(queue.Len())
		}),
		scrapeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lrclib_scrape_results_total",
			Help: "Provider lookups by workers, by outcome.",
		}, []string{"outcome"}),
		publishes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lrclib_publishes_total",
			Help: "Lyrics accepted through the publish endpoint.",
		}),
	}

	c.registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.queueDepth,
		c.scrapeResults,
		c.publishes,
	)
	return c
}
