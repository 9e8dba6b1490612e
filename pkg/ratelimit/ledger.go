package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// degradedFailureThreshold is the consecutive-failure count at which the
// remote service is flagged as degraded. The flag is an observability
// signal; scheduling only changes through the backoff already applied.
const degradedFailureThreshold = 3

// RequestRecord is the immutable outcome of one request attempt.
// StatusCode 0 means the request never produced a response (network error).
type RequestRecord struct {
	Timestamp    time.Time
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
}

// Ledger tracks timestamped request outcomes inside a sliding window and
// derives the failure streak used for backoff decisions.
//
// A Ledger is owned by a single crawl session. Its operations read then
// write shared counters, so they are mutex-guarded; concurrent sessions
// must each own their own Ledger.
type Ledger struct {
	mu     sync.Mutex
	policy Policy

	window              []RequestRecord
	consecutiveFailures int
	degraded            bool
	lastRateLimited     time.Time

	now    func() time.Time
	logger zerolog.Logger
}

// NewLedger creates an empty ledger for one crawl session.
func NewLedger(policy Policy, logger zerolog.Logger) *Ledger {
	return &Ledger{
		policy: policy,
		window: make([]RequestRecord, 0, policy.MaxRequests),
		now:    time.Now,
		logger: logger,
	}
}

// Record appends the outcome of a request attempt and updates the failure
// streak. A 429 additionally stamps lastRateLimited; the first success after
// a degraded stretch clears the degraded flag.
func (l *Ledger) Record(success bool, responseTime time.Duration, statusCode int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.window = append(l.window, RequestRecord{
		Timestamp:    now,
		Success:      success,
		ResponseTime: responseTime,
		StatusCode:   statusCode,
	})

	if success {
		l.consecutiveFailures = 0
		if l.degraded {
			l.degraded = false
			degradedGauge.Set(0)
			l.logger.Info().Msg("Market service has recovered")
		}
	} else {
		l.consecutiveFailures++
		if statusCode == http.StatusTooManyRequests {
			l.lastRateLimited = now
			rateLimitedTotal.Inc()
			l.logger.Error().
				Int("consecutive_failures", l.consecutiveFailures).
				Msg("Rate limited by market (429)")
		} else {
			l.logger.Warn().
				Int("status_code", statusCode).
				Int("consecutive_failures", l.consecutiveFailures).
				Msg("Request failed")
		}
	}

	consecutiveFailuresGauge.Set(float64(l.consecutiveFailures))
}

// CanAdmit prunes expired records and reports whether another request fits
// inside the window right now.
func (l *Ledger) CanAdmit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	return len(l.window) < l.policy.MaxRequests
}

// TimeUntilAdmit returns how long until the oldest record leaves the window.
// Returns 0 when a request would be admitted immediately.
func (l *Ledger) TimeUntilAdmit() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	if len(l.window) < l.policy.MaxRequests {
		return 0
	}

	oldest := l.window[0]
	wait := oldest.Timestamp.Add(l.policy.Window).Sub(l.now())
	if wait < 0 {
		return 0
	}
	return wait
}

// ConsecutiveFailures returns the current trailing failure run length.
func (l *Ledger) ConsecutiveFailures() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.consecutiveFailures
}

// LastRateLimited returns the time of the most recent 429, or the zero time.
func (l *Ledger) LastRateLimited() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastRateLimited
}

// Degraded reports whether the remote service is flagged as degraded.
func (l *Ledger) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

// MarkDegraded flags the remote service as degraded. Logged only on the
// transition so repeated gate passes stay quiet.
func (l *Ledger) MarkDegraded() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.degraded {
		return
	}
	l.degraded = true
	degradedGauge.Set(1)
	l.logger.Error().
		Int("consecutive_failures", l.consecutiveFailures).
		Msg("Market service possibly degraded, increasing caution")
}

// WindowCount returns the number of non-expired records in the window.
func (l *Ledger) WindowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked()
	return len(l.window)
}

// pruneLocked drops records older than the sliding window. Records are
// appended in time order, so the suffix starting at the first live record
// is the new window.
func (l *Ledger) pruneLocked() {
	cutoff := l.now().Add(-l.policy.Window)
	i := 0
	for i < len(l.window) && !l.window[i].Timestamp.After(cutoff) {
		i++
	}
	if i > 0 {
		l.window = append(l.window[:0], l.window[i:]...)
	}
	windowOccupancy.Set(float64(len(l.window)))
}

// SetClock overrides the time source (for testing).
func (l *Ledger) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
