package balancer

import (
	"context"
	"sync"
	"time"
)

/*
LoadBalancer paces outbound requests across one or more trailing rate
windows.

- A leaf node carries (limit, window) and a FIFO of admission instants
  inside its trailing window.
- A composite node aggregates children; a request is admitted only when
  every node in the tree has room. This supports per-domain throttles
  nested inside a global throttle.

Invariant: at any wall-clock instant, no node has recorded more than
limit admissions within its trailing window.

Fairness is loose: waiters are not queued, they wake after the shortest
rest and re-race. Strict FIFO is not required.
*/

type LoadBalancer struct {
	mu       sync.Mutex
	limit    int // 0 means this node admits unconditionally
	window   Window
	acquired []time.Time
	children []*LoadBalancer
}

// New creates a leaf balancer admitting at most limit requests per
// trailing window.
func New(limit int, window Window) *LoadBalancer {
	return &LoadBalancer{
		limit:  limit,
		window: window,
	}
}

// NewComposite creates an unlimited node meant to aggregate children
// added with AddLimit or AddChild.
func NewComposite() *LoadBalancer {
	return &LoadBalancer{}
}

// SetLimit replaces this node's own limit. The admission history is
// reset so the new limit takes effect immediately.
func (b *LoadBalancer) SetLimit(limit int, window Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.limit = limit
	b.window = window
	b.acquired = nil
}

// CurrentLimit reports this node's own limit and window.
func (b *LoadBalancer) CurrentLimit() (int, Window) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.limit, b.window
}

// AddLimit attaches an additional (limit, window) constraint as a leaf
// child. Every constraint must admit before a request proceeds.
func (b *LoadBalancer) AddLimit(limit int, window Window) {
	b.AddChild(New(limit, window))
}

// AddChild nests a sub-balancer. The composite acquires only when
// every subtree acquires.
func (b *LoadBalancer) AddChild(child *LoadBalancer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.children = append(b.children, child)
}

// NodeCount reports the number of nodes in the tree, self included.
func (b *LoadBalancer) NodeCount() int {
	b.mu.Lock()
	children := b.children
	b.mu.Unlock()
	count := 1
	for _, c := range children {
		count += c.NodeCount()
	}
	return count
}

// Acquire blocks until every window in the tree admits one more
// request, then records the admission on all of them. Returns early
// with the context error on cancellation.
func (b *LoadBalancer) Acquire(ctx context.Context) error {
	for {
		wait := b.tryAdmit(time.Now())
		if wait == 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}

// tryAdmit locks the whole tree, computes the longest rest over all
// nodes, and either records the admission everywhere (rest 0) or
// reports how long the caller must wait. Holding all node locks across
// check-and-record keeps the per-node invariant exact under
// contention.
func (b *LoadBalancer) tryAdmit(now time.Time) time.Duration {
	nodes := b.lockTree()
	defer unlockTree(nodes)

	var wait time.Duration
	for _, n := range nodes {
		if r := n.rest(now); r > wait {
			wait = r
		}
	}
	if wait > 0 {
		return wait
	}
	for _, n := range nodes {
		n.record(now)
	}
	return 0
}

// lockTree locks nodes in pre-order and returns them in that order.
// Composition is append-only, so traversal order is stable and two
// concurrent acquisitions cannot deadlock.
func (b *LoadBalancer) lockTree() []*LoadBalancer {
	b.mu.Lock()
	nodes := []*LoadBalancer{b}
	for _, c := range b.children {
		nodes = append(nodes, c.lockTree()...)
	}
	return nodes
}

func unlockTree(nodes []*LoadBalancer) {
	for i := len(nodes) - 1; i >= 0; i-- {
		nodes[i].mu.Unlock()
	}
}

// rest reports how long until this node has room for one more
// admission. Caller must hold b.mu.
func (b *LoadBalancer) rest(now time.Time) time.Duration {
	if b.limit <= 0 {
		return 0
	}
	b.prune(now)
	if len(b.acquired) < b.limit {
		return 0
	}
	oldest := b.acquired[0]
	rest := b.window.Duration() - now.Sub(oldest)
	if rest < 0 {
		return 0
	}
	return rest
}

// record stamps an admission. Caller must hold b.mu.
func (b *LoadBalancer) record(now time.Time) {
	if b.limit <= 0 {
		return
	}
	b.acquired = append(b.acquired, now)
}

// prune drops admissions that fell out of the trailing window. Caller
// must hold b.mu.
func (b *LoadBalancer) prune(now time.Time) {
	cutoff := now.Add(-b.window.Duration())
	i := 0
	for i < len(b.acquired) && !b.acquired[i].After(cutoff) {
		i++
	}
	b.acquired = b.acquired[i:]
}
