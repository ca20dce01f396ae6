package storage

import (
	"fmt"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
)

type StorageErrorCause string

const (
	ErrCausePathError    StorageErrorCause = "path error"
	ErrCauseWriteFailure StorageErrorCause = "write failure"
	ErrCauseHashFailure  StorageErrorCause = "hash failure"
)

type StorageError struct {
	Message string
	Cause   StorageErrorCause
	Path    string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s: %s", e.Cause, e.Message)
}

// A failed artifact write loses that artifact only.
func (e *StorageError) Severity() failure.Severity {
	return failure.SeverityRecoverable
}
