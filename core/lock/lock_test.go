package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_SerializesSameKey(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, "device:fridge-1")
			if !assert.NoError(t, err) {
				return
			}
			defer release()

			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Equal(t, 0, l.size())
}

func TestLocal_DifferentKeysDoNotBlock(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	r1, err := l.Acquire(ctx, "device:a")
	require.NoError(t, err)
	defer r1()

	ctx2, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	r2, err := l.Acquire(ctx2, "device:b")
	require.NoError(t, err)
	r2()
}

func TestLocal_ContextCancelled(t *testing.T) {
	l := NewLocal()

	held, err := l.Acquire(context.Background(), "device:a")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Acquire(ctx, "device:a")
	assert.ErrorIs(t, err, ErrNotAcquired)

	held()
	held() // second call is a no-op
	assert.Equal(t, 0, l.size())
}

func TestNew_Modes(t *testing.T) {
	locker, err := New(Config{LockMode: ModeLocal}, nil)
	require.NoError(t, err)
	assert.IsType(t, &Local{}, locker)

	locker, err = New(Config{LockMode: ModeNone}, nil)
	require.NoError(t, err)
	assert.IsType(t, Noop{}, locker)

	_, err = New(Config{LockMode: ModeRedis}, nil)
	assert.Error(t, err)

	_, err = New(Config{LockMode: "zookeeper"}, nil)
	assert.Error(t, err)

	assert.IsType(t, Noop{}, NewDeduper(Config{Dedupe: true}, nil))
}

func TestConfig_Defaults(t *testing.T) {
	var c Config
	assert.Equal(t, 120*time.Second, c.LockTTL())
	assert.Equal(t, 30*time.Second, c.LockWait())
	assert.Equal(t, 24*time.Hour, c.DedupeTTL())
	assert.False(t, c.IsValidMode())
	assert.True(t, Config{LockMode: ModeRedis}.IsValidMode())
}
