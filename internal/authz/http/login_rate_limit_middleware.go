// Package http provides HTTP middleware and handlers for authentication and
// capability-based authorization.
package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// LoginRateLimitMiddleware throttles credential submissions per client IP
// using a token bucket, slowing online password guessing independently of
// the per-account lockout. Login runs before any identity exists, so the
// client IP is the only available throttling key.
//
// Configuration:
//   - rps: Login attempts per second allowed per IP
//   - burst: Maximum burst capacity for temporary spikes
//
// Returns:
//   - 429 Too Many Requests: Rate limit exceeded (includes Retry-After header)
//   - Continues: Request allowed within rate limit
func LoginRateLimitMiddleware(rps float64, burst int, logger *slog.Logger) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)

	return func(c *gin.Context) {
		limiter := store.getLimiter(c.ClientIP())
		if !limiter.Allow() {
			rejectTooManyRequests(c, limiter, logger, c.ClientIP())
			return
		}

		c.Next()
	}
}
