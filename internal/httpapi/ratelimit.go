package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/quadro/internal/metrics"
)

const rateLimitTimeout = 200 * time.Millisecond

// RateLimiter is a fixed-window limiter backed by Redis INCR/EXPIRE.
// It fails open: without a client, or when Redis errors, requests pass.
type RateLimiter struct {
	client  *redis.Client
	max     int
	window  time.Duration
	metrics *metrics.Metrics
}

// NewRateLimiter creates a limiter allowing max requests per window per
// client and route. A nil client disables limiting.
func NewRateLimiter(client *redis.Client, max int, window time.Duration, m *metrics.Metrics) *RateLimiter {
	return &RateLimiter{client: client, max: max, window: window, metrics: m}
}

// Middleware returns the gin handler. Authenticated requests are keyed by
// user, anonymous ones by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl == nil || rl.client == nil || rl.max <= 0 {
			c.Next()
			return
		}

		endpoint := routeOf(c)
		ident := currentUser(c)
		if ident == "" {
			ident = c.ClientIP()
		}
		key := rl.key(endpoint, ident)

		ctx, cancel := context.WithTimeout(c.Request.Context(), rateLimitTimeout)
		defer cancel()

		val, err := rl.hit(ctx, key)
		if err != nil {
			// fail open but let the client see why limiting is off
			c.Header("X-RateLimit-Error", "redis-error")
			c.Next()
			return
		}

		remaining := int64(rl.max) - val
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if val > int64(rl.max) {
			rl.metrics.ObserveRateLimit(endpoint, true)
			c.Header("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: "rate limit exceeded"})
			return
		}

		rl.metrics.ObserveRateLimit(endpoint, false)
		c.Next()
	}
}

// hit counts a request and returns the window's count. INCR and TTL run in
// one MULTI; a key left without expiry (first hit, or an earlier EXPIRE that
// failed) gets one now, and is dropped if that fails so no client stays
// blocked forever.
func (rl *RateLimiter) hit(ctx context.Context, key string) (int64, error) {
	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	if _, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return 0, err
	}

	if ttl.Val() < 0 {
		if err := rl.client.Expire(ctx, key, rl.window).Err(); err != nil {
			rl.client.Del(context.WithoutCancel(ctx), key)
			return 0, err
		}
	}
	return incr.Val(), nil
}

// key format: quadro:rl:<window_seconds>:<route>:<identifier>
func (rl *RateLimiter) key(endpoint, ident string) string {
	return "quadro:rl:" + strconv.FormatInt(int64(rl.window.Seconds()), 10) + ":" + endpoint + ":" + ident
}
