package retry

import (
	"fmt"
	"math/rand"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/timeutil"
)

// Retry executes the provided function with retry logic.
// It calls the function at most MaxAttempts times in total, applying
// exponential backoff with jitter between attempts. Only retryable
// errors trigger a retry; the first non-retryable error is returned
// as-is.
func Retry[T any](retryParam RetryParam, sleeper timeutil.Sleeper, fn func() (T, failure.ClassifiedError)) (T, failure.ClassifiedError) {
	var lastErr failure.ClassifiedError
	var zero T

	if retryParam.MaxAttempts < 1 {
		return zero, &RetryError{
			Message:   "max attempt cannot be 0",
			Cause:     ErrZeroAttempt,
			Retryable: true,
		}
	}

	rng := rand.New(rand.NewSource(retryParam.RandomSeed))

	for attempt := 1; attempt <= retryParam.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !isErrorRetryable(err) {
			return zero, err
		}

		if attempt == retryParam.MaxAttempts {
			break
		}

		backoffDelay := timeutil.ExponentialBackoffDelay(
			attempt,
			retryParam.Jitter,
			*rng,
			retryParam.BackoffParam,
		)
		sleeper.Sleep(backoffDelay)
	}

	return zero, &RetryError{
		Message: fmt.Sprintf("exhausted %d attempts. Last error: %v", retryParam.MaxAttempts, lastErr),
		Cause:   ErrExhaustedAttempts,
		// recoverable at the worker level
		Retryable: true,
	}
}

// isErrorRetryable checks if an error should be retried.
func isErrorRetryable(err failure.ClassifiedError) bool {
	type hasRetryable interface {
		IsRetryable() bool
	}
	if r, ok := err.(hasRetryable); ok {
		return r.IsRetryable()
	}
	// Unknown error types default to retryable.
	return true
}
