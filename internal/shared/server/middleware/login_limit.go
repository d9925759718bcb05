package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"medicloud-backend/internal/shared/server/respond"
)

// LoginLimiter caps login attempts per source address in a fixed window.
// It sits in front of the credential check and is independent of the
// authorization model.
type LoginLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	windows   map[string]*loginWindow
	now       func() time.Time
	lastSweep time.Time
}

type loginWindow struct {
	start time.Time
	count int
}

// NewLoginLimiter builds a limiter allowing max attempts per window.
func NewLoginLimiter(window time.Duration, max int, now func() time.Time) *LoginLimiter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	if max <= 0 {
		max = 5
	}
	if now == nil {
		now = time.Now
	}
	return &LoginLimiter{
		window:  window,
		max:     max,
		windows: make(map[string]*loginWindow),
		now:     now,
	}
}

// Allow atomically records an attempt from addr and reports whether it is
// within the window's budget.
func (l *LoginLimiter) Allow(addr string) (bool, time.Duration) {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	// Drop expired windows at most once per window so the map does not
	// accumulate an entry per source address forever.
	if now.Sub(l.lastSweep) >= l.window {
		for key, w := range l.windows {
			if now.Sub(w.start) >= l.window {
				delete(l.windows, key)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[addr]
	if !ok || now.Sub(w.start) >= l.window {
		l.windows[addr] = &loginWindow{start: now, count: 1}
		return true, 0
	}
	w.count++
	if w.count <= l.max {
		return true, 0
	}
	return false, w.start.Add(l.window).Sub(now)
}

// LoginRateLimit rejects over-budget login attempts with 429 before they
// reach the credential check.
func LoginRateLimit(l *LoginLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, retryAfter := l.Allow(c.ClientIP())
		if allowed {
			c.Next()
			return
		}
		seconds := int(retryAfter/time.Second) + 1
		c.Header("Retry-After", strconv.Itoa(seconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many login attempts, try again later", nil)
	}
}
