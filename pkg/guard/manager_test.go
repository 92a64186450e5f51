package guard_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/strata/pkg/guard"
	"github.com/aretw0/strata/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SerializesSameKey(t *testing.T) {
	m := guard.NewManager()
	ctx := context.Background()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(ctx, "c/d", func(ctx context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					cur := atomic.LoadInt32(&maxInside)
					if n <= cur || atomic.CompareAndSwapInt32(&maxInside, cur, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside)
	assert.Zero(t, m.Active())
}

func TestManager_DifferentKeysDoNotBlock(t *testing.T) {
	m := guard.NewManager()
	ctx := context.Background()

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = m.WithLock(ctx, "a", func(ctx context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	err := m.WithLock(ctx, "b", func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	close(done)
}

func TestManager_LockLifecycle(t *testing.T) {
	m := guard.NewManager()
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		_ = m.WithLock(ctx, fmt.Sprintf("corpus/doc-%d", i), func(ctx context.Context) error { return nil })
	}
	assert.Zero(t, m.Active(), "locks must be released once unused")
}

func TestManager_PropagatesError(t *testing.T) {
	m := guard.NewManager()
	boom := errors.New("boom")
	err := m.WithLock(context.Background(), "k", func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	unlocked []string
	ttl      time.Duration
	fail     error
}

func (f *fakeLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	f.locked = append(f.locked, key)
	f.ttl = ttl
	return func(ctx context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked = append(f.unlocked, key)
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &fakeLocker{}
	m := guard.NewManager(guard.WithLocker(locker), guard.WithTTL(5*time.Second))

	called := false
	err := m.WithLock(context.Background(), "c/d", func(ctx context.Context) error {
		called = true
		assert.Equal(t, []string{"c/d"}, locker.locked)
		assert.Empty(t, locker.unlocked)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, []string{"c/d"}, locker.unlocked)
	assert.Equal(t, 5*time.Second, locker.ttl)

	t.Run("Lock Failure Skips Work", func(t *testing.T) {
		failing := &fakeLocker{fail: errors.New("busy")}
		m := guard.NewManager(guard.WithLocker(failing))
		err := m.WithLock(context.Background(), "c/d", func(ctx context.Context) error {
			t.Fatal("must not run")
			return nil
		})
		assert.ErrorContains(t, err, "busy")
		assert.Zero(t, m.Active())
	})
}

func TestManager_Reentrant(t *testing.T) {
	locker := &fakeLocker{}
	m := guard.NewManager(guard.WithLocker(locker))
	ctx := context.Background()

	assert.False(t, m.Held(ctx, "c/d"))

	done := make(chan error, 1)
	go func() {
		done <- m.WithLock(ctx, "c/d", func(ctx context.Context) error {
			assert.True(t, m.Held(ctx, "c/d"))
			assert.False(t, m.Held(ctx, "c/other"))
			return m.WithLock(ctx, "c/d", func(ctx context.Context) error {
				return nil
			})
		})
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("nested WithLock deadlocked")
	}
	assert.Equal(t, []string{"c/d"}, locker.locked, "nested call must not lock again")

	other := guard.NewManager()
	err := m.WithLock(ctx, "c/d", func(ctx context.Context) error {
		assert.False(t, other.Held(ctx, "c/d"), "held state is per manager")
		return nil
	})
	require.NoError(t, err)
}
