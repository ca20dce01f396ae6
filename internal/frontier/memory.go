package frontier

import (
	"context"
	"sync"
	"time"
)

// quiescencePollInterval is how often a waiting AcquireNext re-checks
// the pending set and the quiescence predicate.
const quiescencePollInterval = 300 * time.Millisecond

// MemoryFrontier keeps the pending and visited sets in-process. Used
// for single-process crawls and tests; the sets are guarded by a mutex
// so that many workers can share one instance.
type MemoryFrontier struct {
	mu      sync.Mutex
	toVisit Set[string]
	visited Set[string]
	pred    QuiescencePredicate
	poll    time.Duration
}

func NewMemoryFrontier() *MemoryFrontier {
	return &MemoryFrontier{
		toVisit: NewSet[string](),
		visited: NewSet[string](),
		poll:    quiescencePollInterval,
	}
}

func (f *MemoryFrontier) SetQuiescencePredicate(pred QuiescencePredicate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pred = pred
}

func (f *MemoryFrontier) Init(ctx context.Context) error {
	return nil
}

func (f *MemoryFrontier) AddCandidate(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visited.Contains(rawURL) {
		return nil
	}
	f.toVisit.Add(rawURL)
	return nil
}

func (f *MemoryFrontier) AcquireNext(ctx context.Context) (string, error) {
	for {
		f.mu.Lock()
		if url, ok := f.toVisit.Pop(); ok {
			f.visited.Add(url)
			f.mu.Unlock()
			return url, nil
		}
		pred := f.pred
		f.mu.Unlock()

		if pred != nil && pred() {
			return "", nil
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(f.poll):
		}
	}
}

func (f *MemoryFrontier) MarkVisited(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visited.Add(rawURL)
	f.toVisit.Remove(rawURL)
	return nil
}

func (f *MemoryFrontier) PendingCount(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(f.toVisit.Size()), nil
}

// VisitedCount is exposed for tests and final stats.
func (f *MemoryFrontier) VisitedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visited.Size()
}

func (f *MemoryFrontier) Close() error {
	return nil
}
