package frontier_test

import (
	"context"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/frontier"
	"github.com/stretchr/testify/require"
)

// compile-time interface checks
var _ frontier.Frontier = (*frontier.MemoryFrontier)(nil)
var _ frontier.QuiescenceAware = (*frontier.MemoryFrontier)(nil)
var _ frontier.Frontier = (*frontier.RedisFrontier)(nil)
var _ frontier.QuiescenceAware = (*frontier.RedisFrontier)(nil)

func TestMemoryFrontierDiscardsVisitedCandidates(t *testing.T) {
	ctx := context.Background()
	f := frontier.NewMemoryFrontier()

	require.NoError(t, f.MarkVisited(ctx, "http://x"))
	require.NoError(t, f.AddCandidate(ctx, "http://x"))

	pending, err := f.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
}

func TestMemoryFrontierQueueProgression(t *testing.T) {
	ctx := context.Background()
	f := frontier.NewMemoryFrontier()
	url := "http://dobreprogramy.pl"

	require.NoError(t, f.AddCandidate(ctx, url))

	got, err := f.AcquireNext(ctx)
	require.NoError(t, err)
	require.Equal(t, url, got)

	// re-adding a visited URL must not re-enter the pending set
	require.NoError(t, f.AddCandidate(ctx, url))

	pending, err := f.PendingCount(ctx)
	require.NoError(t, err)
	require.Zero(t, pending)
	require.Equal(t, 1, f.VisitedCount())
}

func TestMemoryFrontierAddCandidateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := frontier.NewMemoryFrontier()

	require.NoError(t, f.AddCandidate(ctx, "http://x"))
	require.NoError(t, f.AddCandidate(ctx, "http://x"))

	pending, err := f.PendingCount(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, pending)
}

func TestMemoryFrontierQuiescence(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	f := frontier.NewMemoryFrontier()
	f.SetQuiescencePredicate(func() bool { return true })

	got, err := f.AcquireNext(ctx)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestMemoryFrontierWaitsForLateCandidate(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	f := frontier.NewMemoryFrontier()
	f.SetQuiescencePredicate(func() bool { return false })

	go func() {
		time.Sleep(100 * time.Millisecond)
		_ = f.AddCandidate(context.Background(), "http://late")
	}()

	got, err := f.AcquireNext(ctx)
	require.NoError(t, err)
	require.Equal(t, "http://late", got)
}
