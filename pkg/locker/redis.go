package locker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
	goredsync "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"tab-sweeper/infrastructure/logger"
)

// RedisLocker implements DistributedLocker with Redsync (Redlock), so two
// sweeper instances sharing one Redis also share one writer slot.
type RedisLocker struct {
	rs      *redsync.Redsync
	mu      sync.Mutex
	mutexes map[string]*redsync.Mutex
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		rs:      redsync.New(goredsync.NewPool(client)),
		mutexes: make(map[string]*redsync.Mutex),
	}
}

// Acquire is non-blocking: a single try, false when the lock is taken.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	mutex := r.rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
	)
	if err := mutex.LockContext(ctx); err != nil {
		if err == redsync.ErrFailed || strings.Contains(err.Error(), "lock already taken") {
			return false, nil
		}
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	r.mu.Lock()
	r.mutexes[key] = mutex
	r.mu.Unlock()
	return true, nil
}

func (r *RedisLocker) Release(ctx context.Context, key string) error {
	r.mu.Lock()
	mutex, exists := r.mutexes[key]
	if exists {
		delete(r.mutexes, key)
	}
	r.mu.Unlock()

	if !exists {
		return nil
	}
	ok, err := mutex.UnlockContext(ctx)
	if err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	if !ok {
		logger.GetLogger().WithField("key", key).Debug("Lock already expired on release")
	}
	return nil
}
