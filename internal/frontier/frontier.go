package frontier

import "context"

/*
Frontier Responsibilities
- Deduplicate URLs across every attached crawler process
- Hand out pending URLs, moving each to the visited set exactly once
- Detect global quiescence and end the crawl
- Knows nothing about:
	- fetching
	- extraction
	- processing

It is shared state behind a narrow port, not a pipeline executor.
*/

// Frontier is the shared URL work queue. Implementations keep two
// disjoint sets: pending (to visit) and visited. A URL moves from
// pending to visited exactly once, at acquire time, and never moves
// back.
type Frontier interface {
	Init(ctx context.Context) error
	// AddCandidate inserts the URL into the pending set unless it was
	// already visited. Idempotent for a single URL. The visited check
	// is advisory; correctness rests on AcquireNext's atomic move.
	AddCandidate(ctx context.Context, rawURL string) error
	// AcquireNext removes one URL from the pending set, records it as
	// visited and returns it. When the pending set is empty it waits,
	// re-checking the quiescence predicate on every poll; a quiesced
	// crawl yields ("", nil).
	AcquireNext(ctx context.Context) (string, error)
	// MarkVisited records the URL as visited. Idempotent.
	MarkVisited(ctx context.Context, rawURL string) error
	PendingCount(ctx context.Context) (int64, error)
	Close() error
}

// QuiescencePredicate reports whether the whole crawl has gone quiet:
// no pending URLs and no worker positioned to produce new ones. The
// manager provides it so the frontier stays ignorant of worker
// internals.
type QuiescencePredicate func() bool

// QuiescenceAware is implemented by frontiers that poll for
// termination. The manager installs its predicate before Run.
type QuiescenceAware interface {
	SetQuiescencePredicate(pred QuiescencePredicate)
}
