package processor

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type ProcessorErrorCause string

const (
	ErrCauseConversionFailure ProcessorErrorCause = "conversion failure"
	ErrCauseFeedRejected      ProcessorErrorCause = "feed rejected"
)

type ProcessorError struct {
	Message string
	Cause   ProcessorErrorCause
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("processor error: %s: %s", e.Cause, e.Message)
}

// Processor failures are logged and never halt the pool.
func (e *ProcessorError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
