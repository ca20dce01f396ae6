package normalize

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type NormalizeError struct {
	Message   string
	Candidate string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("normalize error: %q: %s", e.Candidate, e.Message)
}

// Scoped to a single candidate link.
func (e *NormalizeError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
