package fetcher

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/internal/metadata"
	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type FetchErrorCause string

const (
	ErrCauseBadResponse           FetchErrorCause = "bad response"
	ErrCauseTimeout               FetchErrorCause = "timeout"
	ErrCauseNetworkFailure        FetchErrorCause = "network issues"
	ErrCauseReadResponseBodyError FetchErrorCause = "failed to read response body"
	ErrCauseRedirectLimitExceeded FetchErrorCause = "reached redirect limit"
	ErrCauseRequestInvalid        FetchErrorCause = "invalid request"
)

type FetchError struct {
	Message   string
	Retryable bool
	Cause     FetchErrorCause
	Status    int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetcher error: %s", e.Cause)
}

// A fetch error never brings down the crawl: the worker logs it and
// ends its cycle, so every cause is recoverable at pool level.
func (e *FetchError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}

// IsRetryable returns whether this error is retryable within a single
// fetch attempt. HTTP-level bad responses are terminal for the URL.
func (e *FetchError) IsRetryable() bool {
	return e.Retryable
}

// mapFetchErrorToMetadataCause maps fetcher-local error semantics
// to the canonical metadata.ErrorCause table.
//
// This mapping is observational only and MUST NOT be used
// to derive control-flow decisions.
func mapFetchErrorToMetadataCause(err *FetchError) metadata.ErrorCause {
	switch err.Cause {
	case ErrCauseTimeout, ErrCauseNetworkFailure:
		return metadata.CauseNetworkFailure
	case ErrCauseBadResponse:
		if err.Status == 401 || err.Status == 403 || err.Status == 429 {
			return metadata.CausePolicyDisallow
		}
		return metadata.CauseContentInvalid
	default:
		return metadata.CauseUnknown
	}
}
