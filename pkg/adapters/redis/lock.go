package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/strata/pkg/ports"
	"github.com/google/uuid"
	backend "github.com/redis/go-redis/v9"
)

var (
	// ErrLockAcquire is returned when the lock cannot be acquired.
	ErrLockAcquire = errors.New("failed to acquire distributed lock")
)

// unlockScript deletes the lock only if it still holds our token.
var unlockScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// renewScript extends the lock only if it still holds our token.
var renewScript = backend.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	else
		return 0
	end
`)

// DefaultRetryInterval is how often a contended lock is retried.
const DefaultRetryInterval = 100 * time.Millisecond

// Locker implements ports.DistributedLocker using Redis.
// A held lock is renewed every third of its TTL until it is released,
// so the TTL only bounds how long a crashed holder blocks others.
type Locker struct {
	client backend.UniversalClient
	prefix string
	retry  time.Duration
	renew  time.Duration
}

// LockerOption configures the Locker.
type LockerOption func(*Locker)

// WithRetryInterval sets the polling interval while the lock is held elsewhere.
func WithRetryInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// WithRenewInterval sets how often a held lock is extended. The default is ttl/3.
func WithRenewInterval(d time.Duration) LockerOption {
	return func(l *Locker) {
		if d > 0 {
			l.renew = d
		}
	}
}

// NewLocker creates a new Redis locker.
func NewLocker(client backend.UniversalClient, prefix string, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		retry:  DefaultRetryInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock acquires a distributed lock for the given key using Redis SET NX PX.
// The value is a random token so only the holder can release it.
func (l *Locker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	lockKey := l.prefix + "lock:" + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, err)
		}
		if ok {
			stop := l.keepAlive(lockKey, token, ttl)
			return func(ctx context.Context) error {
				stop()
				return unlockScript.Run(ctx, l.client, []string{lockKey}, token).Err()
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrLockAcquire, ctx.Err())
		case <-ticker.C:
		}
	}
}

// keepAlive extends the lock until stop is called or the lock is no longer ours.
func (l *Locker) keepAlive(lockKey, token string, ttl time.Duration) (stop func()) {
	interval := l.renew
	if interval == 0 {
		interval = ttl / 3
	}
	if interval <= 0 || ttl.Milliseconds() <= 0 {
		return func() {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := renewScript.Run(ctx, l.client, []string{lockKey}, token, ttl.Milliseconds()).Int()
				if err == nil && n == 0 {
					return
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}
