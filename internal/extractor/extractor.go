package extractor

import (
	"bytes"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

/*
Responsibilities
- Parse HTML into a DOM tree
- Collect anchor hrefs
- Discard references that can never become crawlable URLs

Extraction is syntactic only: resolution against the source URL and
admission policy belong to the normalizer and its constraints.
*/

type LinkExtractor interface {
	ExtractLinks(sourceUrl url.URL, body []byte) ([]string, failure.ClassifiedError)
}

type AnchorExtractor struct {
	metadataSink metadata.MetadataSink
}

func NewAnchorExtractor(metadataSink metadata.MetadataSink) AnchorExtractor {
	return AnchorExtractor{
		metadataSink: metadataSink,
	}
}

func (a *AnchorExtractor) ExtractLinks(sourceUrl url.URL, body []byte) ([]string, failure.ClassifiedError) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		extractErr := &ExtractError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseUnparseableBody,
		}
		a.metadataSink.RecordError(
			time.Now(),
			"extractor",
			"AnchorExtractor.ExtractLinks",
			metadata.CauseContentInvalid,
			extractErr.Error(),
			[]metadata.Attribute{
				metadata.NewAttr(metadata.AttrURL, sourceUrl.String()),
			},
		)
		return nil, extractErr
	}

	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		href = strings.TrimSpace(href)
		if crawlableReference(href) {
			links = append(links, href)
		}
	})
	return links, nil
}

// crawlableReference accepts absolute http(s)/ftp(s) URLs and rooted
// relative paths; everything else (fragments, mailto:, javascript:,
// protocol-relative noise) is dropped at the source.
func crawlableReference(href string) bool {
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//") {
		return true
	}
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "ftp", "ftps":
		return u.Host != ""
	default:
		return false
	}
}
