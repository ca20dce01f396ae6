package timeutil

import (
	"math"
	"math/rand"
	"time"
)

// Sleeper abstracts blocking waits so that tests can observe requested
// delays instead of actually sleeping.
type Sleeper interface {
	Sleep(d time.Duration)
}

type RealSleeper struct{}

func NewRealSleeper() RealSleeper {
	return RealSleeper{}
}

func (s *RealSleeper) Sleep(d time.Duration) {
	time.Sleep(d)
}

// MaxDuration returns the largest duration in the slice, or zero for an
// empty slice. The input is not mutated.
func MaxDuration(durations []time.Duration) time.Duration {
	var max time.Duration
	for _, d := range durations {
		if d > max {
			max = d
		}
	}
	return max
}

// ExponentialBackoffDelay computes the delay before retry attempt
// backoffCount using the given backoff parameters, plus a pseudo-random
// jitter in [0, jitter).
//
// First backoff (backoffCount=1) yields the initial duration.
func ExponentialBackoffDelay(
	backoffCount int,
	jitter time.Duration,
	rng rand.Rand,
	backoffParam BackoffParam,
) time.Duration {
	if backoffCount < 1 {
		backoffCount = 1
	}

	exponent := float64(backoffCount - 1)
	delay := float64(backoffParam.InitialDuration()) * math.Pow(backoffParam.Multiplier(), exponent)
	if delay > float64(backoffParam.MaxDuration()) {
		delay = float64(backoffParam.MaxDuration())
	}

	if jitter > 0 {
		delay += float64(rng.Int63n(int64(jitter)))
	}

	return time.Duration(delay)
}

func DurationPtr(d time.Duration) *time.Duration {
	return &d
}
