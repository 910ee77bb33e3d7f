// Package locker serializes the cache load-modify-save cycle so concurrent
// sweeps cannot overwrite each other's snapshot updates.
package locker

import (
	"context"
	"sync"
	"time"
)

// DistributedLocker guards a critical section across goroutines and, for the
// Redis-backed implementation, across service instances.
type DistributedLocker interface {
	// Acquire attempts to take the lock. Returns false (not an error) when
	// another holder has it. The lock expires after ttl if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release gives the lock back. A no-op when this instance does not hold it.
	Release(ctx context.Context, key string) error
}

// LocalLocker is the in-process fallback used when no Redis is configured.
// It provides the same single-writer discipline within one process. The ttl
// is ignored: a crashed process releases everything anyway.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]bool)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return false, nil
	}
	l.held[key] = true
	return true, nil
}

func (l *LocalLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}
