package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// ErrNotAcquired is returned when a lock could not be taken in time.
var ErrNotAcquired = errors.New("lock not acquired")

// Release unlocks a held lock. Calling it more than once is a no-op.
type Release func()

// Locker serializes work per key.
type Locker interface {
	Acquire(ctx context.Context, key string) (Release, error)
}

// Deduper remembers which events were already claimed.
type Deduper interface {
	// Claim returns false when key was claimed before.
	Claim(ctx context.Context, key string) (bool, error)
	// Forget drops a claim so the event can be retried.
	Forget(ctx context.Context, key string) error
}

// New builds the Locker selected by cfg.LockMode. client may be nil unless the
// mode is redis.
func New(cfg Config, client redis.UniversalClient) (Locker, error) {
	switch cfg.LockMode {
	case ModeLocal, "":
		return NewLocal(), nil
	case ModeNone:
		return Noop{}, nil
	case ModeRedis:
		if client == nil {
			return nil, fmt.Errorf("lock mode %q requires redis.addr", ModeRedis)
		}
		return NewRedisLocker(client, cfg.LockTTL(), cfg.LockWait()), nil
	default:
		return nil, fmt.Errorf("unknown lock mode: %s", cfg.LockMode)
	}
}

// NewDeduper returns a redis deduper when enabled, or a Noop otherwise.
func NewDeduper(cfg Config, client redis.UniversalClient) Deduper {
	if !cfg.Dedupe || client == nil {
		return Noop{}
	}
	return NewRedisDeduper(client, cfg.DedupeTTL())
}

// Local is an in-process keyed mutex. Entries are dropped once nobody holds or
// waits on them.
type Local struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

// NewLocal creates an empty keyed mutex.
func NewLocal() *Local {
	return &Local{locks: make(map[string]*localEntry)}
}

// Acquire blocks until key is free or ctx is done.
func (l *Local) Acquire(ctx context.Context, key string) (Release, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, fmt.Errorf("%w: %s: %v", ErrNotAcquired, key, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
	}, nil
}

func (l *Local) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

func (l *Local) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Noop never blocks and never reports duplicates.
type Noop struct{}

func (Noop) Acquire(context.Context, string) (Release, error) { return func() {}, nil }
func (Noop) Claim(context.Context, string) (bool, error) { return true, nil }
func (Noop) Forget(context.Context, string) error { return nil }
