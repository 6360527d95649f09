package ratelimit

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/metrics"
)

// window is one fixed rate window for a single caller.
type window struct {
	count   int
	resetAt time.Time
}

// Limiter is a fixed-window rate limiter keyed by user id (falling back to
// client IP). The window does not slide: counts reset in full at the window
// boundary, matching the product's 10-requests-per-minute contract.
type Limiter struct {
	mu       sync.Mutex
	windows  map[string]*window
	max      int
	duration time.Duration
	logger   *zap.Logger

	cleanupTicker *time.Ticker
}

type Config struct {
	MaxRequestsPerWindow int
	WindowDuration       time.Duration
	Logger               *zap.Logger
}

func New(cfg Config) *Limiter {
	if cfg.MaxRequestsPerWindow == 0 {
		cfg.MaxRequestsPerWindow = 10
	}
	if cfg.WindowDuration == 0 {
		cfg.WindowDuration = time.Minute
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	l := &Limiter{
		windows:       make(map[string]*window),
		max:           cfg.MaxRequestsPerWindow,
		duration:      cfg.WindowDuration,
		logger:        cfg.Logger,
		cleanupTicker: time.NewTicker(5 * time.Minute),
	}

	go l.cleanup()

	return l
}

func (l *Limiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get("X-User-ID")
		if key == "" {
			key = c.IP()
		}

		ok, retryAfter := l.Allow(key)
		if !ok {
			l.logger.Warn("Rate limit exceeded",
				zap.String("key", key),
				zap.String("path", c.Path()),
			)
			metrics.RateLimitRejections.Inc()

			c.Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		}

		return c.Next()
	}
}

// Allow records one request against the caller's current window. When the
// window is exhausted it returns false and the time until the window resets.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()

	w, exists := l.windows[key]
	if !exists || now.After(w.resetAt) {
		l.windows[key] = &window{count: 1, resetAt: now.Add(l.duration)}
		return true, 0
	}

	if w.count >= l.max {
		return false, time.Until(w.resetAt)
	}

	w.count++
	return true, 0
}

func (l *Limiter) cleanup() {
	for range l.cleanupTicker.C {
		l.mu.Lock()
		now := time.Now()
		for key, w := range l.windows {
			if now.After(w.resetAt) {
				delete(l.windows, key)
			}
		}
		l.mu.Unlock()
	}
}

func (l *Limiter) Stop() {
	l.cleanupTicker.Stop()
}
