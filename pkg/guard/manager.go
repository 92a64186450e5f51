package guard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/strata/internal/logging"
	"github.com/aretw0/strata/pkg/ports"
)

// DefaultTTL bounds how long a distributed lock survives a crashed holder.
const DefaultTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager hands out exclusive, per-key critical sections.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	mu    sync.Mutex
	locks map[string]*lockEntry

	locker ports.DistributedLocker
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithTTL sets the distributed lock TTL.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a Manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		locks:  make(map[string]*lockEntry),
		ttl:    DefaultTTL,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu and call release(key) after unlocking.
func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Active returns the number of keys currently held or waited on.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.locks)
}

// heldKey marks a context whose caller already holds key on this manager.
type heldKey struct {
	m   *Manager
	key string
}

// Held reports whether ctx was derived inside WithLock for key on this manager.
func (m *Manager) Held(ctx context.Context, key string) bool {
	return ctx.Value(heldKey{m: m, key: key}) != nil
}

// WithLock executes fn while holding the lock for key.
// Calls for the same key run one at a time; different keys do not block each other.
// A nested call for a key the context already holds runs fn directly.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	if m.Held(ctx, key) {
		return fn(ctx)
	}

	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.ttl)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"document", key,
					"err", err,
				)
			}
		}()
	}

	return fn(context.WithValue(ctx, heldKey{m: m, key: key}, struct{}{}))
}
