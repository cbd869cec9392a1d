package locker

import (
	"context"
	"sync"
)

// Local is an in-process keyed mutex. It only serializes callers that share
// the same process, which is enough for a single-node deployment.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an empty Local locker
func NewLocal() *Local {
	return &Local{slots: make(map[string]*slot)}
}

// Lock acquires every key in sorted order, or none of them
func (l *Local) Lock(ctx context.Context, keys []string) (func(), error) {
	keys = normalize(keys)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquire(ctx, key); err != nil {
			l.releaseAll(held)
			return nil, acquireError(err)
		}
		held = append(held, key)
	}

	var once sync.Once
	return func() { once.Do(func() { l.releaseAll(held) }) }, nil
}

func (l *Local) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s := l.slots[key]
	if s == nil {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		l.unref(key, s)
		l.mu.Unlock()
		return ctx.Err()
	}
}

func (l *Local) releaseAll(keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(keys) - 1; i >= 0; i-- {
		s := l.slots[keys[i]]
		<-s.ch
		l.unref(keys[i], s)
	}
}

// unref drops a reference; the caller holds l.mu
func (l *Local) unref(key string, s *slot) {
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// held reports how many keys currently have a slot
func (l *Local) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
