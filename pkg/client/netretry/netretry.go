// Package netretry provides retry utilities for transient network errors
// when talking to the Ververica Platform API.
package netretry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"regexp"
	"strings"
	"syscall"
	"time"
)

// httpStatusCodePattern matches HTTP 5xx status codes at word boundaries
// to avoid false positives on port numbers like ":5000".
var httpStatusCodePattern = regexp.MustCompile(`\b50[0-4]\b`)

// ErrInvalidPolicy is returned when a Policy cannot be used.
var ErrInvalidPolicy = errors.New("invalid retry policy")

// Retryable is implemented by errors that know whether they are transient,
// such as API errors carrying an HTTP status.
type Retryable interface {
	Retryable() bool
}

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first one.
	MaxAttempts int `mapstructure:"maxAttempts"`
	// BaseWait is the delay after the first failed attempt.
	BaseWait time.Duration `mapstructure:"baseWait"`
	// MaxWait caps the delay between attempts.
	MaxWait time.Duration `mapstructure:"maxWait"`
}

// DefaultPolicy returns the policy used when none is configured.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 4,
		BaseWait:    500 * time.Millisecond,
		MaxWait:     10 * time.Second,
	}
}

// Validate checks that the policy allows at least one attempt.
func (p Policy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: maxAttempts must be at least 1 (got %d)", ErrInvalidPolicy, p.MaxAttempts)
	}

	if p.BaseWait < 0 || p.MaxWait < 0 {
		return fmt.Errorf("%w: waits must not be negative", ErrInvalidPolicy)
	}

	return nil
}

// IsRetryable returns true if the error indicates a transient network error
// that should be retried. This covers HTTP 5xx and 429 responses and TCP-level
// errors such as connection resets, timeouts, and unexpected EOF.
// Cancellation of the caller's context is never retryable.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var retryable Retryable
	if errors.As(err, &retryable) {
		return retryable.Retryable()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	errMsg := err.Error()

	// HTTP 5xx status text patterns and TCP-level transient network errors.
	textPatterns := []string{
		"Internal Server Error", "Bad Gateway",
		"Service Unavailable", "Gateway Timeout", "Too Many Requests",
		"connection reset by peer", "connection refused",
		"i/o timeout", "TLS handshake timeout", "Client.Timeout exceeded",
		"unexpected EOF", "no such host",
	}

	for _, pattern := range textPatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}

	return httpStatusCodePattern.MatchString(errMsg)
}

// ExponentialDelay returns the delay for the given retry attempt
// using exponential backoff.
// Uses the formula: min(baseWait * 2^(attempt-1), maxWait).
func ExponentialDelay(
	attempt int,
	baseWait, maxWait time.Duration,
) time.Duration {
	delay := baseWait

	for i := 1; i < attempt; i++ {
		// doubling past maxWait/2 would exceed the cap or overflow
		if delay > maxWait/2 {
			return maxWait
		}

		delay *= 2
	}

	return min(delay, maxWait)
}

// Jitter scales delay by a random factor in [0.5, 1).
func Jitter(delay time.Duration) time.Duration {
	if delay <= 1 {
		return delay
	}

	half := delay / 2

	return half + rand.N(delay-half)
}

// Do calls fn until it succeeds, returns an error that is not retryable,
// the policy runs out of attempts or ctx is done. It returns the number of
// attempts made and the last error.
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) (int, error) {
	err := policy.Validate()
	if err != nil {
		return 0, err
	}

	var lastErr error

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return attempt, nil
		}

		if ctx.Err() != nil || !IsRetryable(lastErr) || attempt == policy.MaxAttempts {
			return attempt, lastErr
		}

		delay := Jitter(ExponentialDelay(attempt, policy.BaseWait, policy.MaxWait))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			if !timer.Stop() {
				<-timer.C
			}

			return attempt, fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-timer.C:
		}
	}

	return policy.MaxAttempts, lastErr
}
