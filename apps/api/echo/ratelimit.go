package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	authRateWindow      = 15 * time.Minute
	authRateMaxAttempts = 20
)

// authRateLimiter applies a fixed window limit per client IP to the
// authentication endpoints. Windows are kept in memory; expired ones are
// evicted lazily on each pass.
type authRateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	entries map[string]*rateEntry
	nowFunc func() time.Time
}

type rateEntry struct {
	count int
	start time.Time
}

func newAuthRateLimiter() *authRateLimiter {
	return &authRateLimiter{
		window:  authRateWindow,
		max:     authRateMaxAttempts,
		entries: make(map[string]*rateEntry),
		nowFunc: time.Now,
	}
}

func (rl *authRateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.nowFunc()
	rl.evict(now)

	entry, ok := rl.entries[key]
	if !ok || now.Sub(entry.start) > rl.window {
		rl.entries[key] = &rateEntry{count: 1, start: now}
		return true
	}
	if entry.count >= rl.max {
		return false
	}
	entry.count++
	return true
}

func (rl *authRateLimiter) evict(now time.Time) {
	for key, entry := range rl.entries {
		if now.Sub(entry.start) > rl.window {
			delete(rl.entries, key)
		}
	}
}

func (rl *authRateLimiter) middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !rl.allow(ctx.RealIP()) {
				return errTooManyAttempts
			}
			return next(ctx)
		}
	}
}
