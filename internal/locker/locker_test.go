package locker

import (
	"context"
	"errors"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thenoetrevino/quadro/internal/models"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"a", "b", "c"}, normalize([]string{"c", "", "a", "b", "a"}))
	assert.Empty(t, normalize(nil))
}

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := New(Options{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, l)

	l, err = New(Options{Backend: BackendLocal})
	require.NoError(t, err)
	assert.IsType(t, &Local{}, l)

	_, err = New(Options{Backend: BackendRedis})
	assert.Error(t, err)

	_, err = New(Options{Backend: "etcd"})
	assert.Error(t, err)
}

// ============================================================================
// Local Locker Tests
// ============================================================================

func TestLocal_MutualExclusion(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), []string{"col-1", "col-2"})
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				m := maxInside.Load()
				if n <= m || maxInside.CompareAndSwap(m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Zero(t, l.held(), "slots should be reclaimed")
}

func TestLocal_OppositeKeyOrderDoesNotDeadlock(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		keys := []string{"a", "b"}
		if i%2 == 1 {
			keys = []string{"b", "a"}
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Lock(context.Background(), keys)
			if assert.NoError(t, err) {
				release()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lockers deadlocked")
	}
}

func TestLocal_ContextCancelWhileWaiting(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	release, err := l.Lock(context.Background(), []string{"a"})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, []string{"a", "z"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLockTimeout))
	assert.True(t, errors.Is(err, models.ErrConflict))
	assert.Equal(t, models.KindConflict, models.KindOf(err))

	release()
	release()
	assert.Zero(t, l.held())

	release, err = l.Lock(context.Background(), []string{"a", "z"})
	require.NoError(t, err)
	release()
}

func TestLocal_CallerCancelIsNotConflict(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	release, err := l.Lock(context.Background(), []string{"a"})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err = l.Lock(ctx, []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.NotEqual(t, models.KindConflict, models.KindOf(err))
}

func TestLocal_DisjointKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := NewLocal()
	r1, err := l.Lock(context.Background(), []string{"a"})
	require.NoError(t, err)
	defer r1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	r2, err := l.Lock(ctx, []string{"b"})
	require.NoError(t, err)
	r2()
}

// ============================================================================
// Redis Locker Tests
// ============================================================================

func TestRedis_UnreachableBackendIsStorageError(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, time.Second, time.Second)
	release, err := l.Lock(context.Background(), []string{"col-1"})
	require.Error(t, err)
	assert.Nil(t, release)

	assert.NotErrorIs(t, err, ErrLockTimeout)
	assert.ErrorIs(t, err, models.ErrStorage)
	assert.Equal(t, models.KindStorage, models.KindOf(err))
	assert.Contains(t, err.Error(), backendUnavailable)
}

// Integration-style test: runs only if REDIS_ADDR env is set.
func TestRedis_Integration(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}
	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			db = n
		}
	}

	client := redis.NewClient(&redis.Options{Addr: addr, Password: os.Getenv("REDIS_PASSWORD"), DB: db})
	t.Cleanup(func() { _ = client.Close() })

	l := NewRedis(client, time.Second, 100*time.Millisecond)
	key := "test-" + strconv.FormatInt(time.Now().UnixNano(), 10)

	release, err := l.Lock(context.Background(), []string{key})
	require.NoError(t, err)

	_, err = l.Lock(context.Background(), []string{key})
	assert.ErrorIs(t, err, ErrLockTimeout)

	release()
	release()

	release, err = l.Lock(context.Background(), []string{key})
	require.NoError(t, err)
	release()
}
