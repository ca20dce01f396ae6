package frontier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/stretchr/testify/require"
)

// fakeStore implements the store port in memory so the Redis-backed
// frontier's logic is testable without a server.
type fakeStore struct {
	sets    map[string]Set[string]
	pingErr error
	popErr  error
	flushed bool
	closed  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sets: map[string]Set[string]{},
	}
}

func (s *fakeStore) set(key string) Set[string] {
	if _, ok := s.sets[key]; !ok {
		s.sets[key] = NewSet[string]()
	}
	return s.sets[key]
}

func (s *fakeStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func (s *fakeStore) SPop(ctx context.Context, key string) (string, bool, error) {
	if s.popErr != nil {
		return "", false, s.popErr
	}
	member, ok := s.set(key).Pop()
	return member, ok, nil
}

func (s *fakeStore) SAdd(ctx context.Context, key string, member string) error {
	s.set(key).Add(member)
	return nil
}

func (s *fakeStore) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	return s.set(key).Contains(member), nil
}

func (s *fakeStore) SCard(ctx context.Context, key string) (int64, error) {
	return int64(s.set(key).Size()), nil
}

func (s *fakeStore) FlushDB(ctx context.Context) error {
	s.sets = map[string]Set[string]{}
	s.flushed = true
	return nil
}

func (s *fakeStore) Close() error {
	s.closed = true
	return nil
}

func newFakeFrontier(store *fakeStore) *RedisFrontier {
	return &RedisFrontier{
		store:      store,
		toVisitKey: "to_visit",
		visitedKey: "visited",
		poll:       10 * time.Millisecond,
	}
}

func TestRedisFrontierAddCandidateSkipsVisited(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	f := newFakeFrontier(store)

	require.NoError(t, f.MarkVisited(ctx, "http://"))
	require.NoError(t, f.AddCandidate(ctx, "http://"))

	require.False(t, store.set("to_visit").Contains("http://"))
}

func TestRedisFrontierAcquireMovesURLToVisited(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	f := newFakeFrontier(store)

	require.NoError(t, f.AddCandidate(ctx, "http://x"))

	got, err := f.AcquireNext(ctx)
	require.NoError(t, err)
	require.Equal(t, "http://x", got)
	require.True(t, store.set("visited").Contains("http://x"))

	pending, err := f.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestRedisFrontierQuiescesWhenPredicateHolds(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	f := newFakeFrontier(newFakeStore())
	f.SetQuiescencePredicate(func() bool { return true })

	got, err := f.AcquireNext(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestRedisFrontierInitFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.pingErr = errors.New("connection refused")
	f := newFakeFrontier(store)

	err := f.Init(context.Background())
	require.Error(t, err)

	var frontierErr *FrontierError
	require.ErrorAs(t, err, &frontierErr)
	require.Equal(t, ErrCauseUnavailable, frontierErr.Cause)
	require.Equal(t, failure.SeverityFatal, frontierErr.Severity())
}

func TestRedisFrontierAcquireErrorIsRecoverable(t *testing.T) {
	store := newFakeStore()
	store.popErr = errors.New("i/o timeout")
	f := newFakeFrontier(store)

	_, err := f.AcquireNext(context.Background())
	require.Error(t, err)

	var frontierErr *FrontierError
	require.ErrorAs(t, err, &frontierErr)
	require.Equal(t, failure.SeverityRecoverable, frontierErr.Severity())
}

func TestRedisFrontierClearFlushesStore(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	f := newFakeFrontier(store)

	require.NoError(t, f.AddCandidate(ctx, "http://x"))
	require.NoError(t, f.Clear(ctx))
	require.True(t, store.flushed)

	pending, err := f.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestRedisFrontierCloseClosesStore(t *testing.T) {
	store := newFakeStore()
	f := newFakeFrontier(store)
	require.NoError(t, f.Close())
	require.True(t, store.closed)
}
