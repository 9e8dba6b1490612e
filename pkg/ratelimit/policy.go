// Package ratelimit implements the adaptive request pacing for the market
// crawler: a sliding-window request ledger, exponential backoff with jitter,
// client identity rotation, and a blocking admission gate. Steam publishes no
// rate limit contract for the community market endpoints, so the pacing here
// is deliberately conservative and reacts to observed 429s.
package ratelimit

import (
	"fmt"
	"time"
)

// Policy holds the rate limit configuration. It is read-only at runtime;
// all mutable state lives in the Ledger.
type Policy struct {
	// MaxRequests is the maximum number of requests allowed inside Window.
	MaxRequests int

	// Window is the sliding window duration over which requests are counted.
	Window time.Duration

	// MaxRetries is the retry budget per logical request.
	MaxRetries int

	// BackoffBase is the first-attempt backoff delay.
	BackoffBase time.Duration

	// JitterFraction is the relative jitter applied to waits, in [0, 1).
	JitterFraction float64
}

// DefaultPolicy returns the conservative defaults tuned against the live
// market endpoints: one request per 20 second window keeps a long crawl
// under the observed throttling threshold.
func DefaultPolicy() Policy {
	return Policy{
		MaxRequests:    1,
		Window:         20 * time.Second,
		MaxRetries:     3,
		BackoffBase:    30 * time.Second,
		JitterFraction: 0.3,
	}
}

// Validate checks the policy for values that would break the admission math.
func (p Policy) Validate() error {
	if p.MaxRequests <= 0 {
		return fmt.Errorf("max_requests must be positive (got %d)", p.MaxRequests)
	}
	if p.Window <= 0 {
		return fmt.Errorf("window must be positive (got %v)", p.Window)
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative (got %d)", p.MaxRetries)
	}
	if p.BackoffBase <= 0 {
		return fmt.Errorf("backoff_base must be positive (got %v)", p.BackoffBase)
	}
	if p.JitterFraction < 0 || p.JitterFraction >= 1 {
		return fmt.Errorf("jitter_fraction must be in [0, 1) (got %v)", p.JitterFraction)
	}
	return nil
}
