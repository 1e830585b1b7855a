// Package retry provides a bounded retry policy for remote calls.
package retry

import (
	"context"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Policy describes how an operation is retried.
type Policy struct {
	MaxAttempts int                             // Total attempts, including the first
	Backoff     func(attempt int) time.Duration // Delay after the given failed attempt (1-based)
	Retryable   func(err error) bool            // Nil retries every error
}

// ErrExhausted marks an error that was still retryable when the attempts ran out.
// Callers treat it like a miss rather than a failure.
var ErrExhausted = errors.New("retries exhausted")

// Linear returns a backoff that waits base, 2*base, 3*base, ...
func Linear(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Exponential returns a backoff that waits base, 2*base, 4*base, ...
func Exponential(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(1<<uint(attempt-1))
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, or runs out of attempts.
// The error returned after the last attempt is marked with ErrExhausted.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		if i < attempts {
			var delay time.Duration
			if p.Backoff != nil {
				delay = p.Backoff(i)
			}
			select {
			case <-ctx.Done():
				return errors.WithSecondaryError(ctx.Err(), lastErr)
			case <-time.After(delay):
			}
		}
	}
	return errors.Mark(errors.Wrapf(lastErr, "max retries exceeded (%d attempts)", attempts), ErrExhausted)
}

// IsTransient reports whether err looks like a rate limit, server error or network failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	for _, s := range []string{
		"rate limit", "429", "500", "502", "503", "504",
		"timeout", "connection refused", "connection reset", "eof",
	} {
		if strings.Contains(errStr, s) {
			return true
		}
	}
	return false
}
