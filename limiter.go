package shigure

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter is a per-key sliding-window limiter. It guards admin logins and
// the UI state API.
type RateLimiter struct {
	mu     sync.Mutex
	hits   map[string][]time.Time
	max    int
	window time.Duration
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter allows max events per key within window. Call Stop to end the
// background cleanup.
func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	l := &RateLimiter{
		hits:   make(map[string][]time.Time),
		max:    max,
		window: window,
		stop:   make(chan struct{}),
	}
	go l.cleanup()
	return l
}

func (l *RateLimiter) cleanup() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-l.window)
			l.mu.Lock()
			for key := range l.hits {
				if kept := l.prune(key, cutoff); len(kept) == 0 {
					delete(l.hits, key)
				}
			}
			l.mu.Unlock()
		case <-l.stop:
			return
		}
	}
}

// prune drops events older than cutoff. Callers hold l.mu.
func (l *RateLimiter) prune(key string, cutoff time.Time) []time.Time {
	hits := l.hits[key]
	kept := hits[:0]
	for _, t := range hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.hits[key] = kept
	return kept
}

// Allow checks the limit for key and records the event when allowed.
func (l *RateLimiter) Allow(key string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prune(key, now.Add(-l.window))) >= l.max {
		return false
	}
	l.hits[key] = append(l.hits[key], now)
	return true
}

// Check reports whether key is under the limit without recording anything.
// Pair it with Record to count only failures.
func (l *RateLimiter) Check(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(key, time.Now().Add(-l.window))) < l.max
}

// Record registers one event for key.
func (l *RateLimiter) Record(key string) {
	l.mu.Lock()
	l.hits[key] = append(l.hits[key], time.Now())
	l.mu.Unlock()
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (l *RateLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

// Middleware rejects requests from client IPs over the limit with 429.
func (l *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.Allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
