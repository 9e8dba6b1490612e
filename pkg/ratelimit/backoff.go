package ratelimit

import (
	"math"
	"math/rand"
	"time"
)

const (
	// maxBackoff caps any computed backoff delay.
	maxBackoff = 15 * time.Minute

	// rateLimitPenaltyWindow is how long after a 429 the backoff stays doubled.
	rateLimitPenaltyWindow = 5 * time.Minute

	// minWait is the floor for jittered window waits.
	minWait = 1 * time.Second
)

// Backoff computes retry and window-wait delays. It is a pure calculator:
// deterministic given a fixed random source, with no mutable state of its own.
type Backoff struct {
	base   time.Duration
	jitter float64

	rand func() float64
	now  func() time.Time
}

// NewBackoff creates a backoff calculator from the policy.
func NewBackoff(policy Policy) *Backoff {
	return &Backoff{
		base:   policy.BackoffBase,
		jitter: policy.JitterFraction,
		rand:   rand.Float64,
		now:    time.Now,
	}
}

// ForAttempt returns the delay before retry number attempt (1-based):
// base * 2^(attempt-1) plus jitter drawn uniformly from [0, jitter*delay].
// The result doubles while a 429 is less than rateLimitPenaltyWindow old,
// and is clamped to maxBackoff. Always at least base.
func (b *Backoff) ForAttempt(attempt int, lastRateLimited time.Time) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	exponential := float64(b.base) * math.Pow(2, float64(attempt-1))
	delay := exponential + b.rand()*b.jitter*exponential

	if !lastRateLimited.IsZero() && b.now().Sub(lastRateLimited) < rateLimitPenaltyWindow {
		delay *= 2
	}

	if delay > float64(maxBackoff) {
		return maxBackoff
	}
	return time.Duration(delay)
}

// Jittered perturbs a window wait by ±jitter so idle sessions don't wake in
// lockstep. Floored at minWait.
func (b *Backoff) Jittered(base time.Duration) time.Duration {
	spread := (b.rand()*2 - 1) * b.jitter
	wait := time.Duration(float64(base) * (1 + spread))
	if wait < minWait {
		return minWait
	}
	return wait
}

// SetRand overrides the random source (for testing).
func (b *Backoff) SetRand(f func() float64) {
	b.rand = f
}

// SetClock overrides the time source (for testing).
func (b *Backoff) SetClock(now func() time.Time) {
	b.now = now
}
