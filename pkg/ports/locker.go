package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a distributed lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for distributed concurrency control.
// It lets the document guard serialize annotation of the same document across replicas.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g., a document key).
	// It blocks until the lock is acquired or the context is canceled.
	// The lock expires after ttl if never released. Implementations keep a held
	// lock alive until UnlockFunc runs, so ttl need not cover the slowest plan.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
