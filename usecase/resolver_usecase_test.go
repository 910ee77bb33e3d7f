package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tab-sweeper/domain/model"
	"tab-sweeper/pkg/locker"
	"tab-sweeper/usecase"
)

// Mock implementations

type MockVideoCache struct {
	mock.Mock
}

func (m *MockVideoCache) Load(ctx context.Context) (model.VideoSnapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.VideoSnapshot), args.Error(1)
}

func (m *MockVideoCache) Save(ctx context.Context, snapshot model.VideoSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockVideoCache) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockYouTube struct {
	mock.Mock
}

func (m *MockYouTube) ListVideos(ctx context.Context, ids []string) ([]model.VideoMeta, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VideoMeta), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, message string) {
	m.Called(ctx, message)
}

// recordingLocker wraps the local locker and remembers the TTL the resolver
// asked for.
type recordingLocker struct {
	locker.DistributedLocker
	ttl time.Duration
}

func (r *recordingLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	r.ttl = ttl
	return r.DistributedLocker.Acquire(ctx, key, ttl)
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newResolver(store *MockVideoCache, yt *MockYouTube, notifier *MockNotifier, credentialSet bool) *usecase.ResolverUseCase {
	return usecase.NewResolverUseCase(store, yt, notifier, locker.NewLocalLocker(), credentialSet, time.Second).
		WithClock(func() time.Time { return testNow })
}

func TestResolve_MissFetchedAndPersisted(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	store.On("Load", mock.Anything).Return(model.VideoSnapshot{}, nil)
	yt.On("ListVideos", mock.Anything, []string{"abc123"}).
		Return([]model.VideoMeta{{ID: "abc123", ChannelID: "UC1", ChannelTitle: "Channel One"}}, nil)

	var saved model.VideoSnapshot
	store.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.VideoSnapshot) }).
		Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"abc123"})

	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "UC1", result.Videos[0].ChannelID)
	assert.Zero(t, result.FailedChunks)

	require.Contains(t, saved, "abc123")
	assert.Equal(t, testNow, saved["abc123"].FetchedAt)
}

func TestResolve_FreshEntryServedFromCache(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	snapshot := model.VideoSnapshot{
		"abc123": {FetchedAt: testNow.Add(-1 * time.Hour), Video: model.VideoMeta{ID: "abc123", ChannelID: "UC1"}},
	}
	store.On("Load", mock.Anything).Return(snapshot, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"abc123"})

	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "UC1", result.Videos[0].ChannelID)

	// No upstream call, but prune+persist still ran.
	yt.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
	store.AssertCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestResolve_ExpiredEntryRefetched(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	snapshot := model.VideoSnapshot{
		"abc123": {FetchedAt: testNow.Add(-25 * time.Hour), Video: model.VideoMeta{ID: "abc123", ChannelID: "old"}},
	}
	store.On("Load", mock.Anything).Return(snapshot, nil)
	yt.On("ListVideos", mock.Anything, []string{"abc123"}).
		Return([]model.VideoMeta{{ID: "abc123", ChannelID: "UC1"}}, nil)

	var saved model.VideoSnapshot
	store.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.VideoSnapshot) }).
		Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"abc123"})

	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.Equal(t, "UC1", result.Videos[0].ChannelID, "stale entry must not be returned")
	assert.Equal(t, testNow, saved["abc123"].FetchedAt, "expired entry overwritten with fresh fetch")
}

func TestResolve_ChunksOfFifty(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("video-%03d", i)
	}

	store.On("Load", mock.Anything).Return(model.VideoSnapshot{}, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	var chunkSizes []int
	var fetched []string
	yt.On("ListVideos", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			chunk := args.Get(1).([]string)
			chunkSizes = append(chunkSizes, len(chunk))
			fetched = append(fetched, chunk...)
		}).
		Return([]model.VideoMeta{}, nil)

	_, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), ids)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 20}, chunkSizes)
	assert.Equal(t, ids, fetched, "union of chunks must be exactly the miss queue")
}

func TestResolve_FailedChunkDoesNotAbortBatch(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("video-%03d", i)
	}

	store.On("Load", mock.Anything).Return(model.VideoSnapshot{}, nil)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()

	var saved model.VideoSnapshot
	store.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.VideoSnapshot) }).
		Return(nil)

	metasFor := func(chunk []string) []model.VideoMeta {
		out := make([]model.VideoMeta, len(chunk))
		for i, id := range chunk {
			out[i] = model.VideoMeta{ID: id, ChannelID: "UC1"}
		}
		return out
	}
	yt.On("ListVideos", mock.Anything, mock.Anything).Return(metasFor(ids[:50]), nil).Once()
	yt.On("ListVideos", mock.Anything, mock.Anything).Return(nil, errors.New("network down")).Once()
	yt.On("ListVideos", mock.Anything, mock.Anything).Return(metasFor(ids[100:]), nil).Once()

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), ids)

	require.NoError(t, err)
	assert.Equal(t, 1, result.FailedChunks)
	assert.Len(t, result.Videos, 70, "chunks 1 and 3 still resolve")
	assert.Len(t, saved, 70, "successful chunks persisted despite chunk 2 failing")
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestResolve_MissingCredentialIsFatalWithoutIO(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return()

	result, err := newResolver(store, yt, notifier, false).Resolve(context.Background(), []string{"abc123"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, usecase.ErrCredentialMissing)
	store.AssertNotCalled(t, "Load", mock.Anything)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	yt.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
	notifier.AssertCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestResolve_EmptyRequestSkipsStore(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, result.Videos)
	store.AssertNotCalled(t, "Load", mock.Anything)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestResolve_StaleEntriesPrunedOnHitOnlyRun(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	snapshot := model.VideoSnapshot{
		"hit":   {FetchedAt: testNow.Add(-1 * time.Hour), Video: model.VideoMeta{ID: "hit"}},
		"stale": {FetchedAt: testNow.Add(-30 * time.Hour), Video: model.VideoMeta{ID: "stale"}},
	}
	store.On("Load", mock.Anything).Return(snapshot, nil)

	var saved model.VideoSnapshot
	store.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.VideoSnapshot) }).
		Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"hit"})

	require.NoError(t, err)
	require.Len(t, result.Videos, 1)
	assert.NotContains(t, saved, "stale", "prune runs even when nothing was fetched")
	assert.Contains(t, saved, "hit")
}

func TestResolve_LockOutlivesWorstCaseFetch(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	ids := make([]string, 151) // 4 chunks
	for i := range ids {
		ids[i] = fmt.Sprintf("video-%03d", i)
	}

	store.On("Load", mock.Anything).Return(model.VideoSnapshot{}, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)
	yt.On("ListVideos", mock.Anything, mock.Anything).Return([]model.VideoMeta{}, nil)

	chunkTimeout := 10 * time.Second
	lk := &recordingLocker{DistributedLocker: locker.NewLocalLocker()}
	resolver := usecase.NewResolverUseCase(store, yt, notifier, lk, true, chunkTimeout).
		WithClock(func() time.Time { return testNow })

	_, err := resolver.Resolve(context.Background(), ids)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, lk.ttl, 4*chunkTimeout,
		"lock TTL must cover a resolve that spends the full timeout on every chunk")
}

func TestResolve_DuplicateIDAcrossChunkBoundary(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	// No dedup: a duplicate lands in the miss queue twice and simply gets
	// fetched twice, here once per chunk.
	ids := make([]string, 51)
	for i := range ids {
		ids[i] = fmt.Sprintf("video-%03d", i)
	}
	ids[50] = ids[0]

	metasFor := func(chunk []string) []model.VideoMeta {
		out := make([]model.VideoMeta, len(chunk))
		for i, id := range chunk {
			out[i] = model.VideoMeta{ID: id, ChannelID: "UC1"}
		}
		return out
	}
	store.On("Load", mock.Anything).Return(model.VideoSnapshot{}, nil)
	yt.On("ListVideos", mock.Anything, ids[:50]).Return(metasFor(ids[:50]), nil).Once()
	yt.On("ListVideos", mock.Anything, []string{ids[0]}).Return(metasFor(ids[:1]), nil).Once()

	var saved model.VideoSnapshot
	store.On("Save", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(model.VideoSnapshot) }).
		Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), ids)

	require.NoError(t, err)
	assert.Len(t, result.Videos, 51, "the duplicate resolves to the same data twice")
	assert.Len(t, saved, 50, "snapshot stays keyed by ID")
	yt.AssertNumberOfCalls(t, "ListVideos", 2)
}

func TestResolve_DuplicateCachedIDResolvesTwice(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	snapshot := model.VideoSnapshot{
		"dup": {FetchedAt: testNow.Add(-1 * time.Hour), Video: model.VideoMeta{ID: "dup", ChannelID: "UC1"}},
	}
	store.On("Load", mock.Anything).Return(snapshot, nil)
	store.On("Save", mock.Anything, mock.Anything).Return(nil)

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"dup", "dup"})

	require.NoError(t, err)
	require.Len(t, result.Videos, 2)
	assert.Equal(t, result.Videos[0], result.Videos[1])
	yt.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
}

func TestResolve_LoadFailurePropagates(t *testing.T) {
	store := new(MockVideoCache)
	yt := new(MockYouTube)
	notifier := new(MockNotifier)

	store.On("Load", mock.Anything).Return(nil, errors.New("storage quota exceeded"))

	result, err := newResolver(store, yt, notifier, true).Resolve(context.Background(), []string{"abc123"})

	assert.Nil(t, result)
	assert.Error(t, err)
	store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
