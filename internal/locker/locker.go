// Package locker serializes mutations that touch the same parent list.
// Locks are an optimization on top of the store's own isolation; the
// store remains the source of truth for conflicts.
package locker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/quadro/internal/models"
)

// Backend names accepted by New
const (
	BackendNone  = "none"
	BackendLocal = "local"
	BackendRedis = "redis"
)

// ErrLockTimeout is returned when a lock could not be acquired in time
var ErrLockTimeout = models.Conflict("parent list is locked by another request", nil)

// backendUnavailable is the message of storage errors raised when the
// lock backend itself fails
const backendUnavailable = "lock backend unavailable"

// Locker acquires exclusive locks on a set of keys.
// The returned release function must be called exactly once.
type Locker interface {
	Lock(ctx context.Context, keys []string) (release func(), err error)
}

// Options configures New
type Options struct {
	Backend string
	Redis   *redis.Client
	TTL     time.Duration // redis key expiry, bounds a crashed holder
	Wait    time.Duration // how long to wait before reporting a conflict
}

// New returns the locker for opts.Backend
func New(opts Options) (Locker, error) {
	switch opts.Backend {
	case "", BackendNone:
		return nil, nil
	case BackendLocal:
		return NewLocal(), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("redis locker requires a redis client")
		}
		return NewRedis(opts.Redis, opts.TTL, opts.Wait), nil
	default:
		return nil, fmt.Errorf("unknown locker backend %q", opts.Backend)
	}
}

// normalize sorts and dedups keys so every caller acquires in the same order
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// acquireError reports a failed acquisition. Only a wait that ran out is a
// conflict; cancellation and backend failures keep their own kind.
func acquireError(err error) error {
	var classified *models.Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	return err
}
