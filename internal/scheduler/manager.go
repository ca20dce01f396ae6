package scheduler

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/extractor"
	"github.com/rohmanhakim/web-scrapper/internal/fetcher"
	"github.com/rohmanhakim/web-scrapper/internal/frontier"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/internal/normalize"
	"github.com/rohmanhakim/web-scrapper/internal/processor"
	"github.com/rohmanhakim/web-scrapper/internal/worker"
	"github.com/rohmanhakim/web-scrapper/pkg/balancer"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
)

/*
Manager is the sole control-plane authority of the crawl.

Responsibilities
- Own the worker pool and keep it saturated up to maxConcurrent
- Own the frontier handle, the balancer and the processor handle;
  workers hold borrowed references only
- Provide the quiescence predicate to the frontier
- Orchestrate shutdown (signal-driven or quiescence-driven) and join
  every outstanding worker before closing external connections

The manager never observes worker failure, only worker completion; a
single bad page must not take down the crawl.
*/

type ManagerState int32

const (
	Running ManagerState = iota
	Stopped
)

type Manager struct {
	mu          sync.Mutex
	state       ManagerState
	workers     map[*worker.Worker]struct{}
	constraints []normalize.Constraint

	maxConcurrent int
	startURL      string
	userAgent     string

	semaphore  chan struct{}
	concurrent atomic.Int32
	wg         sync.WaitGroup

	frontier      frontier.Frontier
	loadBalancer  *balancer.LoadBalancer
	htmlFetcher   fetcher.Fetcher
	linkExtractor extractor.LinkExtractor
	normalizer    normalize.Normalizer
	dataProcessor processor.DataProcessor
	metadataSink  metadata.MetadataSink
	finalizer     metadata.CrawlFinalizer
	retryParam    retry.RetryParam

	completedCycles atomic.Int32

	stopOnce  sync.Once
	done      chan struct{}
	startedAt time.Time
}

func NewManager(
	fr frontier.Frontier,
	lb *balancer.LoadBalancer,
	htmlFetcher fetcher.Fetcher,
	linkExtractor extractor.LinkExtractor,
	normalizer normalize.Normalizer,
	dataProcessor processor.DataProcessor,
	metadataSink metadata.MetadataSink,
	finalizer metadata.CrawlFinalizer,
	retryParam retry.RetryParam,
	userAgent string,
) *Manager {
	return &Manager{
		state:         Running,
		workers:       make(map[*worker.Worker]struct{}),
		maxConcurrent: 10,
		semaphore:     make(chan struct{}, 10),
		userAgent:     userAgent,
		frontier:      fr,
		loadBalancer:  lb,
		htmlFetcher:   htmlFetcher,
		linkExtractor: linkExtractor,
		normalizer:    normalizer,
		dataProcessor: dataProcessor,
		metadataSink:  metadataSink,
		finalizer:     finalizer,
		retryParam:    retryParam,
		done:          make(chan struct{}),
	}
}

// Configure sets the constraint list, pool size and seed URL. Must be
// called before Run.
func (m *Manager) Configure(constraints []normalize.Constraint, maxConcurrent int, startURL string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = constraints
	if maxConcurrent > 0 {
		m.maxConcurrent = maxConcurrent
		m.semaphore = make(chan struct{}, maxConcurrent)
	}
	m.startURL = startURL
}

// SetURLConstraint replaces the constraint list with a single
// constraint.
func (m *Manager) SetURLConstraint(constraint normalize.Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = []normalize.Constraint{constraint}
}

// AppendConstraint adds a constraint. Only workers spawned afterwards
// see the updated list.
func (m *Manager) AppendConstraint(constraint normalize.Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.constraints = append(m.constraints, constraint)
}

// Acquire takes one concurrency slot; paired with exactly one Release
// per worker cycle.
func (m *Manager) Acquire(ctx context.Context) error {
	select {
	case m.semaphore <- struct{}{}:
		m.concurrent.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) Release() {
	<-m.semaphore
	m.concurrent.Add(-1)
}

// Concurrent reports how many slots are currently held.
func (m *Manager) Concurrent() int {
	return int(m.concurrent.Load())
}

// State reads the manager state.
func (m *Manager) State() ManagerState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Run seeds the frontier, spawns the pool and blocks until shutdown
// completes, whether by quiescence or by signal.
func (m *Manager) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	m.startedAt = time.Now()

	m.mu.Lock()
	m.state = Running
	maxConcurrent := m.maxConcurrent
	m.mu.Unlock()

	if err := m.frontier.Init(runCtx); err != nil {
		// fatal: the crawl cannot start without its shared store
		return err
	}
	if err := m.dataProcessor.Init(runCtx); err != nil {
		return err
	}

	if qa, ok := m.frontier.(frontier.QuiescenceAware); ok {
		qa.SetQuiescencePredicate(m.quiescencePredicate(runCtx))
	}

	if m.startURL != "" {
		if err := m.frontier.AddCandidate(runCtx, m.startURL); err != nil {
			return err
		}
	}

	m.installSignalHandler()

	for i := 0; i < maxConcurrent; i++ {
		m.fireOne(runCtx)
	}

	<-m.done
	return nil
}

// Stop drains the pool and closes external connections. Idempotent;
// safe to call from the signal handler, the quiescence predicate and
// user code at once.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		m.state = Stopped
		// no replacements from here on; in-flight workers run their
		// cycle to completion
		m.maxConcurrent = 0
		m.mu.Unlock()

		m.wg.Wait()

		m.frontier.Close()
		m.dataProcessor.Close()
		m.finalizer.RecordFinalCrawlStats(
			int(m.completedCycles.Load()),
			0,
			time.Since(m.startedAt),
		)
		close(m.done)
	})
}

// quiescencePredicate holds when no URLs are pending and every worker
// sits at or before GettingURL: nothing can produce new work. The
// predicate also begins shutdown, matching the frontier contract that
// a quiesced crawl stops itself.
func (m *Manager) quiescencePredicate(ctx context.Context) frontier.QuiescencePredicate {
	return func() bool {
		pending, err := m.frontier.PendingCount(ctx)
		if err != nil || pending > 0 {
			return false
		}
		m.mu.Lock()
		idle := true
		for w := range m.workers {
			if w.State() > worker.GettingURL && w.State() != worker.Done {
				idle = false
				break
			}
		}
		if idle {
			// flip the state before the caller's worker finishes so
			// workerDone does not spawn a replacement
			m.state = Stopped
		}
		m.mu.Unlock()
		if !idle {
			return false
		}
		go m.Stop()
		return true
	}
}

// fireOne spawns one worker unless the manager has stopped. The
// constraint slice is shared by reference; mutations affect workers
// spawned thereafter.
func (m *Manager) fireOne(ctx context.Context) {
	m.mu.Lock()
	if m.state != Running {
		m.mu.Unlock()
		return
	}
	w := worker.New(
		m,
		m.frontier,
		m.loadBalancer,
		m.htmlFetcher,
		m.linkExtractor,
		m.normalizer,
		m.constraints,
		m.dataProcessor,
		m.metadataSink,
		m.retryParam,
		m.userAgent,
	)
	m.workers[w] = struct{}{}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		w.Run(ctx)
		m.workerDone(ctx, w)
		m.wg.Done()
	}()
}

// workerDone retires a finished worker and starts a replacement while
// the crawl is still running, keeping the pool saturated.
func (m *Manager) workerDone(ctx context.Context, w *worker.Worker) {
	m.completedCycles.Add(1)
	m.mu.Lock()
	delete(m.workers, w)
	running := m.state == Running
	m.mu.Unlock()
	if running {
		m.fireOne(ctx)
	}
}

// installSignalHandler wires SIGINT and SIGTERM to graceful shutdown.
// Progress output is silenced during the drain; a second signal is a
// no-op because Stop is idempotent.
func (m *Manager) installSignalHandler() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			if s, ok := m.metadataSink.(interface{ Silence() }); ok {
				s.Silence()
			}
			m.Stop()
		case <-m.done:
		}
	}()
}
