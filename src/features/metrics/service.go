package metrics

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lrclib/lrclib/src/catalog"
)

// Service tracks request volume and exports Prometheus metrics. A
// plain atomic counter backs the once-a-minute request log line; the
// Prometheus collectors carry everything else.
type Service struct {
	collectors     *collectors
	requestCounter atomic.Int64
}

// NewService creates a new metrics service observing the given queue.
func NewService(queue catalog.MissingQueue) *Service {
	return &Service{collectors: newCollectors(queue)}
}

// Registry exposes the Prometheus registry for the /metrics handler.
func (s *Service) Registry() *prometheus.Registry {
	return s.collectors.registry
}

// RecordRequest counts one finished HTTP request.
func (s *Service) RecordRequest(method, path string, status int, duration time.Duration) {
	s.requestCounter.Add(1)
	s.collectors.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	s.collectors.httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordScrapeResult counts one provider lookup by a worker. Outcome is
// one of "found", "not_found" or "error".
func (s *Service) RecordScrapeResult(outcome string) {
	s.collectors.scrapeResults.WithLabelValues(outcome).Inc()
}

// RecordPublish counts one accepted publish.
func (s *Service) RecordPublish() {
	s.collectors.publishes.Inc()
}

// Start spawns the task that logs and zeroes the request counter every
// minute. It runs until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				count := s.requestCounter.Swap(0)
				slog.Info("Requests in the last minute", "count", count)
			}
		}
	}()
}
