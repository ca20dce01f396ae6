package frontier

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type FrontierErrorCause string

const (
	// the backing store could not be reached
	ErrCauseUnavailable FrontierErrorCause = "frontier unavailable"
	// operation on a closed frontier
	ErrCauseClosed FrontierErrorCause = "frontier closed"
)

type FrontierError struct {
	Message   string
	Retryable bool
	Cause     FrontierErrorCause
}

func (e *FrontierError) Error() string {
	return fmt.Sprintf("frontier error: %s: %s", e.Cause, e.Message)
}

func (e *FrontierError) Severity() failure.Severity {
	if e.Retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}

func (e *FrontierError) IsRetryable() bool {
	return e.Retryable
}
