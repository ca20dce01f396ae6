package fetcher

import (
	"context"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
)

type Fetcher interface {
	Fetch(
		ctx context.Context,
		fetchParam FetchParam,
		retryParam retry.RetryParam,
	) (FetchResult, failure.ClassifiedError)
}
