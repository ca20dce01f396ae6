package extractor

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type ExtractErrorCause string

const (
	ErrCauseUnparseableBody ExtractErrorCause = "unparseable body"
)

type ExtractError struct {
	Message   string
	Retryable bool
	Cause     ExtractErrorCause
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extractor error: %s", e.Cause)
}

// A page that cannot be parsed costs its own links only; the crawl
// keeps running.
func (e *ExtractError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
