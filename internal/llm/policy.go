// internal/llm/policy.go
package llm

import (
	"context"
	stderrors "errors"
	"net"
	"time"

	"gt-analyzer/internal/common/errors"
)

// RetryPolicy computes backoff delays for a bounded retry budget.
// MaxRetries is the total attempt count, not the count of re-attempts.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// DelayFor returns the sleep before retrying after failed attempt number
// attempt (0-based). Doubling per attempt keeps the sequence
// monotonically non-decreasing.
func (p RetryPolicy) DelayFor(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt))
}

// Disposition is the retry decision for one failed attempt.
type Disposition int

const (
	DispositionRetryable Disposition = iota
	DispositionFatal
)

// Classify maps a completion failure to its retry disposition. Structured
// errors carry their own retryability; timeouts and transport timeouts are
// transient; anything unrecognized is fatal.
func Classify(err error) Disposition {
	if stdErr, ok := err.(*errors.StandardError); ok {
		if stdErr.Retryable {
			return DispositionRetryable
		}
		return DispositionFatal
	}

	if stderrors.Is(err, context.DeadlineExceeded) {
		return DispositionRetryable
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return DispositionRetryable
	}

	return DispositionFatal
}

// CircuitBreaker counts consecutive failures for one client instance. It
// is not safe for concurrent use; every client owns exactly one breaker
// and runs its calls sequentially.
type CircuitBreaker struct {
	Threshold int
	Cooldown  time.Duration

	failures int
	lastTrip time.Time
}

func NewCircuitBreaker(threshold int, cooldown time.Duration) *CircuitBreaker {
	if threshold < 1 {
		threshold = 1
	}
	return &CircuitBreaker{Threshold: threshold, Cooldown: cooldown}
}

// RecordFailure increments the counter. While at or past the threshold
// every further failure refreshes the trip time, so a failed probe starts
// a fresh cool-down.
func (b *CircuitBreaker) RecordFailure() {
	b.failures++
	if b.failures >= b.Threshold {
		b.lastTrip = time.Now().UTC()
	}
}

// RecordSuccess resets the counter.
func (b *CircuitBreaker) RecordSuccess() {
	b.failures = 0
}

// ShouldBreak reports whether consecutive failures have reached the
// threshold.
func (b *CircuitBreaker) ShouldBreak() bool {
	return b.failures >= b.Threshold
}

// FailureCount returns the consecutive failure count.
func (b *CircuitBreaker) FailureCount() int {
	return b.failures
}

// LastTrip returns when the breaker most recently tripped.
func (b *CircuitBreaker) LastTrip() time.Time {
	return b.lastTrip
}

// CooledDown reports whether the cool-down window has elapsed since the
// last trip. The breaker never closes itself; callers use this to decide
// when to probe again.
func (b *CircuitBreaker) CooledDown(now time.Time) bool {
	if b.lastTrip.IsZero() {
		return true
	}
	return now.Sub(b.lastTrip) >= b.Cooldown
}
