package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"resume-uploads/internal/shared/metrics"
	"resume-uploads/internal/shared/server/respond"
	"resume-uploads/internal/shared/telemetry"
)

const (
	defaultRateLimitMax    = 100
	defaultRateLimitWindow = 15 * time.Minute
	rateLimitMessage       = "Too many requests from this IP, try again later"
	memorySweepThreshold   = 4096
)

// WindowStore counts hits per key inside a fixed window that starts at the key's first hit.
type WindowStore interface {
	// Hit records one request and returns the count in the current window
	// together with the time remaining until the window resets.
	Hit(ctx context.Context, key string, window time.Duration) (count int64, resetIn time.Duration, err error)
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
	// KeyFor derives the throttling key; defaults to the client address.
	KeyFor func(*gin.Context) string
	Store  WindowStore
}

// RateLimit rejects requests beyond cfg.Max per key per cfg.Window with 429.
// Store failures are logged and the request is let through.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Max <= 0 {
		cfg.Max = defaultRateLimitMax
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultRateLimitWindow
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryWindowStore(nil)
	}
	if cfg.KeyFor == nil {
		cfg.KeyFor = func(c *gin.Context) string { return c.ClientIP() }
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(cfg.KeyFor(c))
		if key == "" {
			key = "unknown"
		}
		count, resetIn, err := cfg.Store.Hit(c.Request.Context(), "ratelimit:"+key, cfg.Window)
		if err != nil {
			telemetry.Error("ratelimit.store_failed", map[string]any{
				"request_id": RequestIDFromContext(c),
				"key":        key,
				"err":        err.Error(),
			})
			c.Next()
			return
		}

		remaining := int64(cfg.Max) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("RateLimit-Limit", strconv.Itoa(cfg.Max))
		c.Header("RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count <= int64(cfg.Max) {
			c.Next()
			return
		}

		retryAfterSeconds := int(math.Ceil(resetIn.Seconds()))
		if retryAfterSeconds <= 0 {
			retryAfterSeconds = 1
		}
		metrics.IncRateLimited()
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", rateLimitMessage, gin.H{
			"retryAfterMs": retryAfterSeconds * 1000,
		})
	}
}

// MemoryWindowStore is a process-local WindowStore.
type MemoryWindowStore struct {
	mu      sync.Mutex
	windows map[string]*rateWindow
	now     func() time.Time
}

type rateWindow struct {
	start time.Time
	ends  time.Time
	count int64
}

func NewMemoryWindowStore(now func() time.Time) *MemoryWindowStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryWindowStore{
		windows: make(map[string]*rateWindow),
		now:     now,
	}
}

func (s *MemoryWindowStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.windows) >= memorySweepThreshold {
		s.sweep(now)
	}

	w, ok := s.windows[key]
	if !ok || !now.Before(w.ends) {
		w = &rateWindow{start: now, ends: now.Add(window)}
		s.windows[key] = w
	}
	w.count++
	return w.count, w.ends.Sub(now), nil
}

func (s *MemoryWindowStore) sweep(now time.Time) {
	for key, w := range s.windows {
		if !now.Before(w.ends) {
			delete(s.windows, key)
		}
	}
}
