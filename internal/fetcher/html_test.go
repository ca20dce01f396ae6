package fetcher_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/fetcher"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/retry"
	"github.com/rohmanhakim/web-scrapper/pkg/timeutil"
	"github.com/stretchr/testify/require"
)

// compile-time interface check
var _ fetcher.Fetcher = (*fetcher.HtmlFetcher)(nil)

func testRetryParam(maxAttempts int) retry.RetryParam {
	return retry.NewRetryParam(
		0,
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 5*time.Millisecond),
	)
}

func serverURL(t *testing.T, server *httptest.Server) url.URL {
	t.Helper()
	u, err := url.Parse(server.URL)
	require.NoError(t, err)
	return *u
}

func TestFetchSendsDefaultUserAgent(t *testing.T) {
	var gotUserAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("<html></html>"))
	}))
	defer server.Close()

	htmlFetcher := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, 5*time.Second)
	_, err := htmlFetcher.Fetch(
		context.Background(),
		fetcher.NewFetchParam(serverURL(t, server), ""),
		testRetryParam(1),
	)
	require.Nil(t, err)
	require.Equal(t, "Web Scrapper", gotUserAgent.Load())
}

func TestFetchReturnsBody(t *testing.T) {
	body := "<html><body>hello</body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer server.Close()

	htmlFetcher := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, 5*time.Second)
	result, err := htmlFetcher.Fetch(
		context.Background(),
		fetcher.NewFetchParam(serverURL(t, server), "custom-agent"),
		testRetryParam(1),
	)
	require.Nil(t, err)
	require.Equal(t, []byte(body), result.Body())
	require.Equal(t, http.StatusOK, result.Code())
	require.Equal(t, uint64(len(body)), result.SizeByte())
}

func TestFetchBadResponseIsTerminal(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	htmlFetcher := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, 5*time.Second)
	_, err := htmlFetcher.Fetch(
		context.Background(),
		fetcher.NewFetchParam(serverURL(t, server), ""),
		testRetryParam(3),
	)
	require.NotNil(t, err)

	var fetchErr *fetcher.FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, fetcher.ErrCauseBadResponse, fetchErr.Cause)
	require.Equal(t, http.StatusNotFound, fetchErr.Status)
	// HTTP-level failures are not retried within a fetch
	require.EqualValues(t, 1, hits.Load())
}

func TestFetchTransportFailureExhaustsRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	target := serverURL(t, server)
	server.Close()

	htmlFetcher := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, time.Second)
	_, err := htmlFetcher.Fetch(
		context.Background(),
		fetcher.NewFetchParam(target, ""),
		testRetryParam(2),
	)
	require.NotNil(t, err)

	var retryErr *retry.RetryError
	require.True(t, errors.As(err, &retryErr))
	require.Equal(t, retry.ErrExhaustedAttempts, retryErr.Cause)
}

func TestFetchCustomUserAgentWins(t *testing.T) {
	var gotUserAgent atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent.Store(r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	htmlFetcher := fetcher.NewHtmlFetcher(&metadata.NoopSink{}, 5*time.Second)
	_, err := htmlFetcher.Fetch(
		context.Background(),
		fetcher.NewFetchParam(serverURL(t, server), "my-crawler/2.0"),
		testRetryParam(1),
	)
	require.Nil(t, err)
	require.Equal(t, "my-crawler/2.0", gotUserAgent.Load())
}
