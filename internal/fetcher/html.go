package fetcher

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
	"github.com/rohmanhakim/web-scrapper/pkg/timeutil"
)

/*
Responsibilities

- Perform HTTP requests
- Apply headers and timeouts
- Handle redirects safely
- Classify responses

Fetch Semantics

- Only successful responses are processed
- Redirect chains are bounded
- Transport failures may be retried within a single Fetch call;
  an HTTP-level bad response is terminal for the URL
- All fetches are logged with metadata

The fetcher never parses content; it only returns bytes and metadata.
*/

const (
	maxRedirects = 10
	// pages larger than this are truncated at read time
	maxBodyBytes = 10 << 20
)

type HtmlFetcher struct {
	metadataSink metadata.MetadataSink
	httpClient   *http.Client
	sleeper      timeutil.Sleeper
}

func NewHtmlFetcher(
	metadataSink metadata.MetadataSink,
	timeout time.Duration,
) HtmlFetcher {
	sleeper := timeutil.NewRealSleeper()
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return errors.New("stopped after too many redirects")
				}
				return nil
			},
		},
		sleeper: &sleeper,
	}
}

// NewHtmlFetcherWithClient is used by tests to inject a transport.
func NewHtmlFetcherWithClient(
	metadataSink metadata.MetadataSink,
	client *http.Client,
) HtmlFetcher {
	sleeper := timeutil.NewRealSleeper()
	return HtmlFetcher{
		metadataSink: metadataSink,
		httpClient:   client,
		sleeper:      &sleeper,
	}
}

func (h *HtmlFetcher) Fetch(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	callerMethod := "HtmlFetcher.Fetch"
	startTime := time.Now()

	result, err := h.fetchWithRetry(ctx, fetchParam, retryParam)

	duration := time.Since(startTime)

	var statusCode int
	var retryCount int
	if err != nil {
		var retryErr *retry.RetryError
		if errors.As(err, &retryErr) {
			retryCount = retryParam.MaxAttempts
		}
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			statusCode = fetchErr.Status
		}
	} else {
		statusCode = result.Code()
	}

	h.metadataSink.RecordFetch(
		fetchParam.fetchUrl.String(),
		statusCode,
		duration,
		result.SizeByte(),
		retryCount,
	)

	if err != nil {
		if errors.Is(err, &retry.RetryError{}) {
			h.recordRetryError(callerMethod, fetchParam.fetchUrl, err)
		} else {
			h.recordFetchError(callerMethod, fetchParam.fetchUrl, err)
		}
		return FetchResult{}, err
	}

	return result, nil
}

func (h *HtmlFetcher) fetchWithRetry(
	ctx context.Context,
	fetchParam FetchParam,
	retryParam retry.RetryParam,
) (FetchResult, failure.ClassifiedError) {
	fetchTask := func() (FetchResult, failure.ClassifiedError) {
		return h.performFetch(ctx, fetchParam)
	}
	return retry.Retry(retryParam, h.sleeper, fetchTask)
}

func (h *HtmlFetcher) performFetch(
	ctx context.Context,
	fetchParam FetchParam,
) (FetchResult, failure.ClassifiedError) {
	fetchUrl := fetchParam.fetchUrl
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchUrl.String(), nil)
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseRequestInvalid,
		}
	}
	req.Header.Set("User-Agent", fetchParam.EffectiveUserAgent())

	resp, err := h.httpClient.Do(req)
	if err != nil {
		cause := ErrCauseNetworkFailure
		if errors.Is(err, context.DeadlineExceeded) {
			cause = ErrCauseTimeout
		}
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     cause,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return FetchResult{}, &FetchError{
			Message:   resp.Status,
			Retryable: false,
			Cause:     ErrCauseBadResponse,
			Status:    resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return FetchResult{}, &FetchError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseReadResponseBodyError,
		}
	}

	headers := make(map[string]string, len(resp.Header))
	for key := range resp.Header {
		headers[key] = resp.Header.Get(key)
	}

	return FetchResult{
		url:       fetchUrl,
		body:      body,
		fetchedAt: time.Now(),
		meta: ResponseMeta{
			statusCode:      resp.StatusCode,
			responseHeaders: headers,
		},
	}, nil
}

func (h *HtmlFetcher) recordFetchError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var fetchError *FetchError
	if errors.As(err, &fetchError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			mapFetchErrorToMetadataCause(fetchError),
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}

func (h *HtmlFetcher) recordRetryError(callerMethod string, fetchUrl url.URL, err failure.ClassifiedError) {
	var retryError *retry.RetryError
	if errors.As(err, &retryError) {
		h.metadataSink.RecordError(
			time.Now(),
			"fetcher",
			callerMethod,
			metadata.CauseRetryFailure,
			err.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrMessage, retryError.Error()),
				metadata.NewAttr(metadata.AttrURL, fetchUrl.String()),
			},
		)
	}
}
