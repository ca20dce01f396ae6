package normalize

import (
	"net/url"
	"time"

	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/urlutil"
)

/*
Responsibilities
- Resolve extracted references against their source page
- Produce one canonical spelling per URL so frontier dedup works
- Reject candidates that cannot address a fetchable resource

A normalization failure is scoped to its candidate; the rest of the
page's links proceed.
*/

type Normalizer interface {
	Normalize(candidate string, base url.URL) (url.URL, failure.ClassifiedError)
}

type URLNormalizer struct {
	metadataSink metadata.MetadataSink
}

func NewURLNormalizer(metadataSink metadata.MetadataSink) URLNormalizer {
	return URLNormalizer{
		metadataSink: metadataSink,
	}
}

func (n *URLNormalizer) Normalize(candidate string, base url.URL) (url.URL, failure.ClassifiedError) {
	parsed, err := url.Parse(candidate)
	if err != nil {
		return url.URL{}, n.reject(candidate, base, err.Error())
	}

	resolved := urlutil.Resolve(*parsed, base)
	canonical := urlutil.Canonicalize(resolved)

	if canonical.Scheme == "" || canonical.Host == "" {
		return url.URL{}, n.reject(candidate, base, "not an absolute URL after resolution")
	}
	return canonical, nil
}

func (n *URLNormalizer) reject(candidate string, base url.URL, message string) failure.ClassifiedError {
	normErr := &NormalizeError{
		Message:   message,
		Candidate: candidate,
	}
	n.metadataSink.RecordError(
		time.Now(),
		"normalize",
		"URLNormalizer.Normalize",
		metadata.CauseContentInvalid,
		normErr.Error(),
		[]metadata.Attribute{
			metadata.NewAttr(metadata.AttrURL, base.String()),
			metadata.NewAttr(metadata.AttrField, candidate),
		},
	)
	return normErr
}
