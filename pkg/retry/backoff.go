package retry

import (
	"context"
	"time"
)

// BackoffStrategy defines the interface for computing inter-attempt delays
type BackoffStrategy interface {
	// NextDelay returns the delay to wait before the given attempt.
	// Attempt numbering starts at 1; the first attempt never waits.
	NextDelay(attempt int) time.Duration
}

// LinearBackoff escalates the delay by a fixed increment per attempt:
// base, base+increment, base+2*increment, capped at MaxDelay
type LinearBackoff struct {
	// BaseDelay is the delay before the first retry
	BaseDelay time.Duration
	// Increment is the amount added for each further attempt
	Increment time.Duration
	// MaxDelay caps the computed delay; zero means no cap
	MaxDelay time.Duration
}

// NextDelay calculates the next delay with linear backoff
func (lb *LinearBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := lb.BaseDelay + lb.Increment*time.Duration(attempt-1)
	if lb.MaxDelay > 0 && delay > lb.MaxDelay {
		delay = lb.MaxDelay
	}
	if delay < 0 {
		delay = 0
	}
	return delay
}

// ConstantBackoff waits the same delay before every retry
type ConstantBackoff struct {
	Delay time.Duration
}

// NextDelay returns a constant delay
func (cb *ConstantBackoff) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	return cb.Delay
}

// Wait waits for the specified duration or until the context is cancelled
func Wait(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
