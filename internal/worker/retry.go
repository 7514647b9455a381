package worker

import (
	"math"
	"time"
)

// RetryPolicy is the backoff shared by the outbox and sheets workers.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// PolicyFrom builds a RetryPolicy from outbox settings.
func PolicyFrom(maxRetries int, initial, maxDelay time.Duration) RetryPolicy {
	return RetryPolicy{MaxRetries: maxRetries, InitialDelay: initial, MaxDelay: maxDelay, BackoffFactor: 2}
}

func (r RetryPolicy) withDefaults() RetryPolicy {
	if r.MaxRetries == 0 {
		r.MaxRetries = 5
	}
	if r.InitialDelay == 0 {
		r.InitialDelay = 2 * time.Second
	}
	if r.MaxDelay == 0 {
		r.MaxDelay = time.Minute
	}
	if r.BackoffFactor == 0 {
		r.BackoffFactor = 2
	}
	return r
}

// Exhausted reports whether a failed attempt (1-based) was the last one allowed.
func (r RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= r.MaxRetries
}

// NextDelay is InitialDelay*BackoffFactor^(attempt-1), capped at MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	d := time.Duration(float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
