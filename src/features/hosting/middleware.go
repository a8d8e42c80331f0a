package hosting

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lrclib/lrclib/src/features/config"
	"github.com/lrclib/lrclib/src/features/metrics"
)

// RequestIDKey is the fiber.Ctx locals key carrying the per-request id.
const RequestIDKey = "request_id"

// ClientHeader returns the client-identifying header of the request,
// preferring Lrclib-Client, then X-User-Agent, then User-Agent.
func ClientHeader(c *fiber.Ctx) string {
	if client := c.Get("Lrclib-Client"); client != "" {
		return client
	}
	if client := c.Get("X-User-Agent"); client != "" {
		return client
	}
	return c.Get("User-Agent")
}

// RequestLogger logs every request with its client header and feeds the
// request counters. Handler errors are rendered here so the logged
// status code is the one the client actually receives.
func RequestLogger(m *metrics.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		requestID := uuid.NewString()
		c.Locals(RequestIDKey, requestID)

		err := c.Next()
		if err != nil {
			if handleErr := ErrorHandler(c, err); handleErr != nil {
				slog.Error("Failed to render error response", "error", handleErr)
				c.Status(fiber.StatusInternalServerError)
			}
		}

		duration := time.Since(start)
		status := c.Response().StatusCode()
		m.RecordRequest(c.Method(), c.Path(), status, duration)

		if status >= fiber.StatusInternalServerError {
			slog.Error("HTTP request",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
				"client", ClientHeader(c),
				"request_id", requestID,
			)
		} else {
			slog.Debug("HTTP request",
				"method", c.Method(),
				"path", c.Path(),
				"status", status,
				"duration", duration.String(),
				"client", ClientHeader(c),
			)
		}
		return nil
	}
}

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter hands out one token bucket per client IP. Buckets idle
// for ten minutes are pruned on the next lookup.
type IPRateLimiter struct {
	mu    sync.Mutex
	ips   map[string]*ipLimiter
	rps   rate.Limit
	burst int

	lastPrune time.Time
}

// NewIPRateLimiter creates a per-IP limiter allowing rps sustained
// requests per second with the given burst.
func NewIPRateLimiter(rps float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		ips:       make(map[string]*ipLimiter),
		rps:       rate.Limit(rps),
		burst:     burst,
		lastPrune: time.Now(),
	}
}

// Allow reports whether a request from ip may proceed now.
func (l *IPRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if now.Sub(l.lastPrune) > time.Minute {
		for addr, entry := range l.ips {
			if now.Sub(entry.lastSeen) > 10*time.Minute {
				delete(l.ips, addr)
			}
		}
		l.lastPrune = now
	}

	entry, ok := l.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.ips[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.Allow()
}

// RateLimit rejects clients exceeding the configured per-IP budget with
// 429. The enabled flag is read live so a config reload takes effect.
func RateLimit(cfg *config.Manager, limiter *IPRateLimiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !cfg.Get().RateLimit.Enabled {
			return c.Next()
		}
		if !limiter.Allow(c.IP()) {
			return c.SendStatus(fiber.StatusTooManyRequests)
		}
		return c.Next()
	}
}
