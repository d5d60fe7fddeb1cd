// Package retry provides a bounded retry loop with linearly increasing delays.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// ErrContextCancelled is returned when the context ends while waiting to retry
var ErrContextCancelled = errors.New("context cancelled during retry")

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy configures retry behavior
type Policy struct {
	// MaxRetries is the number of retries after the first attempt
	MaxRetries int
	// BaseDelay is multiplied by the retry number to get each delay
	BaseDelay time.Duration
	// Sleep waits between attempts; defaults to a timer honouring ctx
	Sleep SleepFunc
}

// DefaultPolicy returns two retries at 5s and 10s
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 2,
		BaseDelay:  5 * time.Second,
		Sleep:      Sleep,
	}
}

// Backoff returns the delay before the retry that follows attempt (0-based).
func (p Policy) Backoff(attempt int) time.Duration {
	return p.BaseDelay * time.Duration(attempt+1)
}

// NewBackoff returns a fresh linear backoff that stops after MaxRetries delays
func (p Policy) NewBackoff() goretry.Backoff {
	retries := 0
	linear := goretry.BackoffFunc(func() (time.Duration, bool) {
		delay := p.Backoff(retries)
		retries++
		return delay, false
	})
	return goretry.WithMaxRetries(uint64(max(p.MaxRetries, 0)), linear)
}

// Do calls fn until it succeeds, returns a non-retryable error, or retries
// are exhausted. The returned int is the number of attempts made.
func (p Policy) Do(ctx context.Context, isRetryable func(error) bool, fn func(ctx context.Context) error) (int, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = Sleep
	}
	backoff := p.NewBackoff()

	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if err == nil {
			return attempt, nil
		}
		if !isRetryable(err) {
			return attempt, err
		}

		delay, stop := backoff.Next()
		if stop {
			return attempt, err
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return attempt, fmt.Errorf("%w: %w", ErrContextCancelled, sleepErr)
		}
	}
}

// Sleep waits for d with context cancellation support
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
