package worker

import (
	"context"
	"net/url"
	"sync/atomic"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/extractor"
	"github.com/rohmanhakim/web-scrapper/internal/fetcher"
	"github.com/rohmanhakim/web-scrapper/internal/frontier"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/internal/normalize"
	"github.com/rohmanhakim/web-scrapper/internal/processor"
	"github.com/rohmanhakim/web-scrapper/pkg/balancer"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
)

/*
Responsibilities
- Perform exactly one crawl cycle, then terminate
- Publish lifecycle state for the quiescence predicate
- Keep every failure local: the manager only ever observes completion

Cycle
 1. Wait for a concurrency slot from the pool
 2. Acquire the load balancer
 3. Pull a URL from the frontier (quiesced → done)
 4. Fetch the page
 5. Extract, normalize and filter outbound links; enqueue survivors
 6. Feed the body downstream
 7. Release the slot, signal completion
*/

// SlotPool is the worker's borrowed, non-owning handle back to the
// manager: slot acquisition only, so the worker/manager reference
// cycle stays one-way in ownership terms.
type SlotPool interface {
	Acquire(ctx context.Context) error
	Release()
}

type Worker struct {
	pool         SlotPool
	frontier     frontier.Frontier
	balancer     *balancer.LoadBalancer
	htmlFetcher  fetcher.Fetcher
	extractor    extractor.LinkExtractor
	normalizer   normalize.Normalizer
	constraints  []normalize.Constraint
	processor    processor.DataProcessor
	metadataSink metadata.MetadataSink
	retryParam   retry.RetryParam
	userAgent    string

	// single-writer, multi-reader; reads may be slightly stale and the
	// quiescence poll tolerates that
	state atomic.Int32
	done  chan struct{}
}

func New(
	pool SlotPool,
	fr frontier.Frontier,
	lb *balancer.LoadBalancer,
	htmlFetcher fetcher.Fetcher,
	linkExtractor extractor.LinkExtractor,
	normalizer normalize.Normalizer,
	constraints []normalize.Constraint,
	dataProcessor processor.DataProcessor,
	metadataSink metadata.MetadataSink,
	retryParam retry.RetryParam,
	userAgent string,
) *Worker {
	w := &Worker{
		pool:         pool,
		frontier:     fr,
		balancer:     lb,
		htmlFetcher:  htmlFetcher,
		extractor:    linkExtractor,
		normalizer:   normalizer,
		constraints:  constraints,
		processor:    dataProcessor,
		metadataSink: metadataSink,
		retryParam:   retryParam,
		userAgent:    userAgent,
		done:         make(chan struct{}),
	}
	w.state.Store(int32(Created))
	return w
}

// State reads the published lifecycle state.
func (w *Worker) State() State {
	return State(w.state.Load())
}

// Done is closed once the cycle has fully finished, after the slot is
// released and the state reads Done.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) setState(s State) {
	w.state.Store(int32(s))
}

// Run performs one crawl cycle. Every error path ends the cycle in
// Done with the slot released; nothing propagates to the manager.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	defer w.setState(Done)

	if err := w.pool.Acquire(ctx); err != nil {
		return
	}
	defer w.pool.Release()

	if err := w.balancer.Acquire(ctx); err != nil {
		return
	}

	w.setState(GettingURL)
	rawURL, err := w.frontier.AcquireNext(ctx)
	if err != nil {
		w.recordError("Worker.Run", metadata.CauseFrontierFailure, err, rawURL)
		return
	}
	if rawURL == "" {
		// quiesced
		return
	}

	sourceURL, perr := url.Parse(rawURL)
	if perr != nil {
		w.recordError("Worker.Run", metadata.CauseContentInvalid, perr, rawURL)
		return
	}

	w.setState(DownloadingSite)
	fetchParam := fetcher.NewFetchParam(*sourceURL, w.userAgent)
	fetchResult, ferr := w.htmlFetcher.Fetch(ctx, fetchParam, w.retryParam)
	if ferr != nil {
		// The URL is already marked visited; it is deliberately not
		// retried. The fetcher has recorded the failure.
		return
	}

	w.setState(PushingURLs)
	w.pushLinks(ctx, fetchResult)

	w.setState(FeedingData)
	if perr := w.processor.Feed(ctx, fetchResult.Body()); perr != nil {
		w.recordError("Worker.Run", metadata.CauseUnknown, perr, rawURL)
	}
}

// pushLinks extracts, normalizes and filters the page's outbound
// links, then enqueues the survivors. A candidate that fails
// normalization costs that candidate only.
func (w *Worker) pushLinks(ctx context.Context, fetchResult fetcher.FetchResult) {
	sourceURL := fetchResult.URL()
	links, err := w.extractor.ExtractLinks(sourceURL, fetchResult.Body())
	if err != nil {
		// recorded by the extractor; the page still gets fed downstream
		return
	}

	for _, candidate := range links {
		normalized, nerr := w.normalizer.Normalize(candidate, sourceURL)
		if nerr != nil {
			continue
		}
		if !normalize.Admitted(normalized, w.constraints) {
			continue
		}
		if aerr := w.frontier.AddCandidate(ctx, normalized.String()); aerr != nil {
			w.recordError("Worker.pushLinks", metadata.CauseFrontierFailure, aerr, normalized.String())
			return
		}
	}
}

func (w *Worker) recordError(action string, cause metadata.ErrorCause, err error, rawURL string) {
	attrs := []metadata.Attribute{}
	if rawURL != "" {
		attrs = append(attrs, metadata.NewAttr(metadata.AttrURL, rawURL))
	}
	w.metadataSink.RecordError(
		time.Now(),
		"worker",
		action,
		cause,
		err.Error(),
		attrs,
	)
}
