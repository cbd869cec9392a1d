package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/metrics"
)

func limitedRouter(rl *RateLimiter) *gin.Engine {
	r := gin.New()
	r.GET("/ping", rl.Middleware(), func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func ping(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	return w
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	tests := []struct {
		name string
		rl   *RateLimiter
	}{
		{"nil limiter", nil},
		{"nil client", NewRateLimiter(nil, 1, time.Minute, nil)},
		{"zero max", NewRateLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}), 0, time.Minute, nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := limitedRouter(tt.rl)
			for range 3 {
				w := ping(r)
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
			}
		})
	}
}

func TestRateLimiter_FailsOpenWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	r := limitedRouter(NewRateLimiter(client, 1, time.Minute, metrics.New()))

	for range 2 {
		w := ping(r)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "redis-error", w.Header().Get("X-RateLimit-Error"))
	}
}

func TestRateLimiter_Key(t *testing.T) {
	rl := NewRateLimiter(nil, 10, time.Minute, nil)
	assert.Equal(t, "quadro:rl:60:/api/kanban/boards:user-1", rl.key("/api/kanban/boards", "user-1"))
}

// Runs only against a real Redis, e.g. REDIS_ADDR=localhost:6379
func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	m := metrics.New()
	rl := NewRateLimiter(client, 2, time.Minute, m)
	r := limitedRouter(rl)

	// httptest requests come from 192.0.2.1
	key := rl.key("/ping", "192.0.2.1")
	require.NoError(t, client.Del(context.Background(), key).Err())
	defer client.Del(context.Background(), key)

	w := ping(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = ping(r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = ping(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	ttl, err := client.TTL(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}

// Runs only against a real Redis, e.g. REDIS_ADDR=localhost:6379
func TestRateLimiter_RestoresMissingExpiry(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	rl := NewRateLimiter(client, 2, time.Minute, metrics.New())
	r := limitedRouter(rl)

	// a counter already over the limit whose EXPIRE never landed
	key := rl.key("/ping", "192.0.2.1")
	require.NoError(t, client.Set(context.Background(), key, 5, 0).Err())
	defer client.Del(context.Background(), key)

	w := ping(r)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	ttl, err := client.TTL(context.Background(), key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
	assert.LessOrEqual(t, ttl, time.Minute)
}
