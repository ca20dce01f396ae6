package normalize_test

import (
	"net/url"
	"testing"

	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/internal/normalize"
	"github.com/stretchr/testify/require"
)

// compile-time interface check
var _ normalize.Normalizer = (*normalize.URLNormalizer)(nil)

func base(t *testing.T) url.URL {
	t.Helper()
	u, err := url.Parse("http://example.com/docs/page")
	require.NoError(t, err)
	return *u
}

func TestNormalizeResolvesRelativeCandidates(t *testing.T) {
	n := normalize.NewURLNormalizer(&metadata.NoopSink{})

	got, err := n.Normalize("/asdf/", base(t))
	require.Nil(t, err)
	require.Equal(t, "http://example.com/asdf", got.String())
}

func TestNormalizePassesAbsoluteCandidates(t *testing.T) {
	n := normalize.NewURLNormalizer(&metadata.NoopSink{})

	got, err := n.Normalize("HTTP://Other.ORG/X/", base(t))
	require.Nil(t, err)
	require.Equal(t, "http://other.org/X", got.String())
}

func TestNormalizeRejectsUnparseableCandidate(t *testing.T) {
	n := normalize.NewURLNormalizer(&metadata.NoopSink{})

	_, err := n.Normalize("http://bad url with spaces", base(t))
	require.NotNil(t, err)
}

func TestNormalizeRejectsHostlessResult(t *testing.T) {
	n := normalize.NewURLNormalizer(&metadata.NoopSink{})

	// base with no host can't anchor a relative candidate
	_, err := n.Normalize("relative", url.URL{Path: "/only/path"})
	require.NotNil(t, err)
}
