package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/rohmanhakim/web-scrapper/pkg/failure"
	"github.com/rohmanhakim/web-scrapper/pkg/timeutil"
)

type taskError struct {
	retryable bool
}

func (e *taskError) Error() string { return "task error" }
func (e *taskError) Severity() failure.Severity {
	if e.retryable {
		return failure.SeverityRecoverable
	}
	return failure.SeverityFatal
}
func (e *taskError) IsRetryable() bool { return e.retryable }

type recordingSleeper struct {
	slept []time.Duration
}

func (s *recordingSleeper) Sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

func testParam(maxAttempts int) RetryParam {
	return NewRetryParam(
		0,
		0,
		42,
		maxAttempts,
		timeutil.NewBackoffParam(time.Millisecond, 2.0, 10*time.Millisecond),
	)
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	got, err := Retry(testParam(3), sleeper, func() (string, failure.ClassifiedError) {
		calls++
		if calls < 3 {
			return "", &taskError{retryable: true}
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Retry() error = %v", err)
	}
	if got != "ok" || calls != 3 {
		t.Errorf("got %q after %d calls, want \"ok\" after 3", got, calls)
	}
	if len(sleeper.slept) != 2 {
		t.Errorf("slept %d times, want 2", len(sleeper.slept))
	}
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	_, err := Retry(testParam(5), sleeper, func() (int, failure.ClassifiedError) {
		calls++
		return 0, &taskError{retryable: false}
	})
	if err == nil {
		t.Fatal("Retry() should return the task error")
	}
	if calls != 1 {
		t.Errorf("task ran %d times, want 1", calls)
	}
	var taskErr *taskError
	if !errors.As(err, &taskErr) {
		t.Errorf("error should be the original task error, got %T", err)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	_, err := Retry(testParam(3), sleeper, func() (int, failure.ClassifiedError) {
		calls++
		return 0, &taskError{retryable: true}
	})
	if calls != 3 {
		t.Errorf("task ran %d times, want 3", calls)
	}
	var retryErr *RetryError
	if !errors.As(err, &retryErr) {
		t.Fatalf("error should be a RetryError, got %T", err)
	}
	if retryErr.Cause != ErrExhaustedAttempts {
		t.Errorf("cause = %q, want %q", retryErr.Cause, ErrExhaustedAttempts)
	}
}

func TestRetryRejectsZeroAttempts(t *testing.T) {
	sleeper := &recordingSleeper{}
	_, err := Retry(testParam(0), sleeper, func() (int, failure.ClassifiedError) {
		t.Fatal("task must not run")
		return 0, nil
	})
	var retryErr *RetryError
	if !errors.As(err, &retryErr) || retryErr.Cause != ErrZeroAttempt {
		t.Fatalf("want zero-attempt RetryError, got %v", err)
	}
}
