package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterStore holds per-key rate limiters with automatic cleanup of stale
// entries. The key is chosen by the middleware: client IP before any
// identity exists, the bearer token once one does.
type limiterStore struct {
	limiters sync.Map // map[string]*limiterEntry
	rps      float64
	burst    int
}

// limiterEntry holds a rate limiter and last access time for cleanup.
type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
	mu         sync.Mutex
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	store := &limiterStore{
		rps:   rps,
		burst: burst,
	}

	// Cleanup goroutine for stale limiters (every 5 minutes)
	go store.cleanupStale(context.Background(), 5*time.Minute)

	return store
}

// getLimiter retrieves or creates a rate limiter for a key.
func (s *limiterStore) getLimiter(key string) *rate.Limiter {
	if val, ok := s.limiters.Load(key); ok {
		entry := val.(*limiterEntry)
		entry.mu.Lock()
		entry.lastAccess = time.Now()
		entry.mu.Unlock()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(s.rps), s.burst)
	entry := &limiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}

	s.limiters.Store(key, entry)
	return limiter
}

// cleanupStale removes rate limiters that haven't been accessed recently.
// Runs periodically to prevent unbounded memory growth.
func (s *limiterStore) cleanupStale(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Remove limiters not accessed in the last hour
			threshold := time.Now().Add(-1 * time.Hour)
			s.limiters.Range(func(key, value interface{}) bool {
				entry := value.(*limiterEntry)
				entry.mu.Lock()
				shouldDelete := entry.lastAccess.Before(threshold)
				entry.mu.Unlock()

				if shouldDelete {
					s.limiters.Delete(key)
				}
				return true
			})
		}
	}
}

// rejectTooManyRequests writes a 429 response with a Retry-After hint
// derived from the limiter's next available slot.
func rejectTooManyRequests(c *gin.Context, limiter *rate.Limiter, logger *slog.Logger, key string) {
	reservation := limiter.Reserve()
	retryAfter := int(reservation.Delay().Seconds())
	reservation.Cancel()

	logger.Debug("rate limit exceeded",
		slog.String("key", key),
		slog.Int("retry_after", retryAfter))

	c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":   "rate_limit_exceeded",
		"message": "Too many requests. Please retry after the specified delay.",
	})
	c.Abort()
}

// RateLimitMiddleware throttles authenticated endpoints per bearer token
// using a token bucket. Requests without a token fall back to the client IP
// so unauthenticated probing of protected routes is throttled too.
//
// Configuration:
//   - rps: Requests per second allowed per token
//   - burst: Maximum burst capacity for temporary spikes
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func RateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		key, ok := BearerToken(c)
		if !ok {
			key = c.ClientIP()
		}

		limiter := store.getLimiter(key)
		if !limiter.Allow() {
			rejectTooManyRequests(c, limiter, logger, c.ClientIP())
			return
		}

		c.Next()
	}
}
