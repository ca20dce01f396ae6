package extractor_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/web-scrapper/internal/extractor"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/stretchr/testify/require"
)

// compile-time interface check
var _ extractor.LinkExtractor = (*extractor.AnchorExtractor)(nil)

func sourceURL(t *testing.T) url.URL {
	t.Helper()
	u, err := url.Parse("http://example.com/docs/")
	require.NoError(t, err)
	return *u
}

func TestExtractLinksKeepsCrawlableReferences(t *testing.T) {
	body := []byte(`<html><body>
		<a href="http://example.com/a">absolute</a>
		<a href="https://secure.example.com/b">absolute https</a>
		<a href="ftp://files.example.com/c">ftp</a>
		<a href="/rooted/path">rooted relative</a>
	</body></html>`)

	anchorExtractor := extractor.NewAnchorExtractor(&metadata.NoopSink{})
	links, err := anchorExtractor.ExtractLinks(sourceURL(t), body)
	require.Nil(t, err)
	require.Equal(t, []string{
		"http://example.com/a",
		"https://secure.example.com/b",
		"ftp://files.example.com/c",
		"/rooted/path",
	}, links)
}

func TestExtractLinksDropsUncrawlableReferences(t *testing.T) {
	body := []byte(`<html><body>
		<a href="#section">fragment</a>
		<a href="mailto:a@example.com">mail</a>
		<a href="javascript:void(0)">script</a>
		<a href="relative/path">bare relative</a>
		<a href="">empty</a>
		<a>no href</a>
	</body></html>`)

	anchorExtractor := extractor.NewAnchorExtractor(&metadata.NoopSink{})
	links, err := anchorExtractor.ExtractLinks(sourceURL(t), body)
	require.Nil(t, err)
	require.Empty(t, links)
}

func TestExtractLinksToleratesBrokenMarkup(t *testing.T) {
	body := []byte(`<html><body><a href="/ok">fine<div></a></body>`)

	anchorExtractor := extractor.NewAnchorExtractor(&metadata.NoopSink{})
	links, err := anchorExtractor.ExtractLinks(sourceURL(t), body)
	require.Nil(t, err)
	require.Equal(t, []string{"/ok"}, links)
}
