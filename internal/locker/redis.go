package locker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/quadro/internal/models"
)

const (
	keyPrefix    = "quadro:lock:"
	defaultTTL   = 10 * time.Second
	defaultWait  = 2 * time.Second
	retryBackoff = 25 * time.Millisecond
)

// releaseScript deletes the key only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a lock shared by every process pointed at the same Redis.
// Each key is a SET NX PX entry holding a per-acquisition token.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
}

// NewRedis creates a Redis locker. Zero durations use the defaults.
func NewRedis(client *redis.Client, ttl, wait time.Duration) *Redis {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if wait <= 0 {
		wait = defaultWait
	}
	return &Redis{client: client, ttl: ttl, wait: wait}
}

// Lock acquires every key in sorted order, or none of them
func (r *Redis) Lock(ctx context.Context, keys []string) (func(), error) {
	keys = normalize(keys)
	token := uuid.NewString()

	ctx, cancel := context.WithTimeout(ctx, r.wait)
	defer cancel()

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := r.acquire(ctx, keyPrefix+key, token); err != nil {
			r.releaseAll(held, token)
			return nil, acquireError(err)
		}
		held = append(held, keyPrefix+key)
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		r.releaseAll(held, token)
	}, nil
}

// acquire polls SET NX until it wins or ctx ends. A command that fails
// after the key was seen held is the wait running out, anything else is
// the backend failing.
func (r *Redis) acquire(ctx context.Context, key, token string) error {
	contended := false
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && (contended || errors.Is(ctxErr, context.Canceled)) {
				return ctxErr
			}
			return models.Storage(backendUnavailable, err)
		}
		if ok {
			return nil
		}
		contended = true

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
}

// releaseAll runs on its own context so a cancelled request still unlocks
func (r *Redis) releaseAll(keys []string, token string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := len(keys) - 1; i >= 0; i-- {
		if err := releaseScript.Run(ctx, r.client, []string{keys[i]}, token).Err(); err != nil {
			slog.Warn("failed to release lock", "key", keys[i], "error", err)
		}
	}
}
