package processor

import (
	"context"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

// DataProcessor ingests raw page bodies downstream of the crawl.
// Feed errors are logged by the worker and never block the pool.
type DataProcessor interface {
	Init(ctx context.Context) failure.ClassifiedError
	Feed(ctx context.Context, body []byte) failure.ClassifiedError
	Close() error
}
