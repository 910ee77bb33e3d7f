package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tab-sweeper/domain/dto"
	"tab-sweeper/domain/model"
	"tab-sweeper/domain/repository"
	"tab-sweeper/infrastructure/logger"
	"tab-sweeper/infrastructure/utils"
	"tab-sweeper/pkg/locker"
)

// ErrCredentialMissing means the YouTube API credential is absent or still a
// sample placeholder. The call performed no network or storage I/O. Callers
// must not read this as "zero videos matched".
var ErrCredentialMissing = errors.New("youtube api credential missing or placeholder")

const (
	cacheLockKey = "tabsweeper:videos:lock"
	lockMargin   = 30 * time.Second
	lockRetry    = 50 * time.Millisecond
)

// IResolverUseCase resolves video IDs to metadata through the cache.
type IResolverUseCase interface {
	// Resolve returns metadata for the requested IDs: valid cache hits plus
	// freshly fetched misses, in that order (not request order). IDs that
	// neither the cache nor the API know are absent from the result. Chunk
	// fetch failures reduce the result and bump FailedChunks; they do not
	// fail the call. Storage faults and a missing credential do.
	Resolve(ctx context.Context, ids []string) (*dto.ResolveResult, error)
}

// ResolverUseCase implements the cache lookup/partition/fetch/prune/persist
// cycle over the snapshot store.
type ResolverUseCase struct {
	store         repository.IVideoCache
	youtube       repository.IYouTube
	notifier      repository.INotifier
	locker        locker.DistributedLocker
	credentialSet bool
	chunkTimeout  time.Duration
	now           func() time.Time
}

// NewResolverUseCase creates a resolver. credentialSet reflects whether a
// real upstream credential is configured (placeholders count as unset).
func NewResolverUseCase(
	store repository.IVideoCache,
	youtube repository.IYouTube,
	notifier repository.INotifier,
	lk locker.DistributedLocker,
	credentialSet bool,
	chunkTimeout time.Duration,
) *ResolverUseCase {
	return &ResolverUseCase{
		store:         store,
		youtube:       youtube,
		notifier:      notifier,
		locker:        lk,
		credentialSet: credentialSet,
		chunkTimeout:  chunkTimeout,
		now:           utils.GetCurrentTime,
	}
}

// WithClock overrides the time source (fluent, for tests).
func (u *ResolverUseCase) WithClock(now func() time.Time) *ResolverUseCase {
	u.now = now
	return u
}

func (u *ResolverUseCase) Resolve(ctx context.Context, ids []string) (*dto.ResolveResult, error) {
	if !u.credentialSet {
		u.notifier.Notify(ctx, "YouTube API key is not configured; set YOUTUBE_API_KEY")
		return nil, ErrCredentialMissing
	}
	if len(ids) == 0 {
		return &dto.ResolveResult{Videos: []model.VideoMeta{}}, nil
	}

	// Single-writer discipline around load-modify-prune-save: without it two
	// concurrent sweeps lose each other's snapshot updates.
	if err := u.acquireLock(ctx, u.lockTTL(len(ids))); err != nil {
		return nil, err
	}
	defer func() {
		if err := u.locker.Release(ctx, cacheLockKey); err != nil {
			logger.GetLogger().WithField("error", err).Warn("Failed to release cache lock")
		}
	}()

	snapshot, err := u.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	now := u.now()
	hits := make([]model.VideoMeta, 0, len(ids))
	misses := make([]string, 0)
	for _, id := range ids {
		if entry, ok := snapshot[id]; ok && entry.Valid(now) {
			hits = append(hits, entry.Video)
		} else {
			misses = append(misses, id)
		}
	}

	fetched := make([]model.VideoMeta, 0, len(misses))
	failedChunks := 0
	for _, chunk := range chunkIDs(misses, repository.MaxBatchSize) {
		chunkCtx, cancel := context.WithTimeout(ctx, u.chunkTimeout)
		items, err := u.youtube.ListVideos(chunkCtx, chunk)
		cancel()
		if err != nil {
			failedChunks++
			logger.GetLogger().
				WithField("chunk_size", len(chunk)).
				WithField("error", err).
				Error("Chunk fetch failed, continuing with remaining chunks")
			u.notifier.Notify(ctx, fmt.Sprintf("Failed to fetch metadata for %d videos", len(chunk)))
			continue
		}
		for _, video := range items {
			// Keyed by the ID the upstream payload declares, which is the
			// canonical form even if the request string differed.
			snapshot.Put(video, now)
			fetched = append(fetched, video)
		}
	}

	// Prune and persist on every call, so stale entries leave the store even
	// on hit-only runs.
	snapshot = snapshot.Prune(now)
	if err := u.store.Save(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	return &dto.ResolveResult{
		Videos:       append(hits, fetched...),
		FailedChunks: failedChunks,
	}, nil
}

// lockTTL sizes the lock to the worst-case fetch time of the request plus a
// fixed margin. Every ID could be a miss, so a resolve may spend up to one
// chunk timeout per chunk; a fixed TTL would let a slow multi-chunk batch
// outlive its lock and hand the writer slot to a second instance mid-cycle.
func (u *ResolverUseCase) lockTTL(idCount int) time.Duration {
	chunks := (idCount + repository.MaxBatchSize - 1) / repository.MaxBatchSize
	return lockMargin + time.Duration(chunks)*u.chunkTimeout
}

// acquireLock blocks until the cache lock is ours or the context ends.
func (u *ResolverUseCase) acquireLock(ctx context.Context, ttl time.Duration) error {
	for {
		acquired, err := u.locker.Acquire(ctx, cacheLockKey, ttl)
		if err != nil {
			return fmt.Errorf("acquire cache lock: %w", err)
		}
		if acquired {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(lockRetry):
		}
	}
}

// chunkIDs splits ids into groups of at most size, preserving order. The
// union of the chunks is exactly the input.
func chunkIDs(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
