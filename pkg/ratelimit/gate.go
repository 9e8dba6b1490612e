package ratelimit

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Gate decides, before each request, whether to proceed immediately or
// sleep. It never drops or rejects a request, only delays it; the sleep is
// the single suspension point of a crawl session, so independent sessions
// can run concurrently as long as each owns its own Ledger and Gate.
type Gate struct {
	ledger  *Ledger
	backoff *Backoff
	logger  zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// NewGate wires a gate to the session's ledger and backoff calculator.
func NewGate(ledger *Ledger, backoff *Backoff, logger zerolog.Logger) *Gate {
	return &Gate{
		ledger:  ledger,
		backoff: backoff,
		logger:  logger,
		sleep:   sleepContext,
	}
}

// AwaitAdmission blocks until the ledger admits another request or the
// context is cancelled. The wait is the jittered time until the oldest
// window record expires, raised to the failure backoff while the session
// is in a failure streak.
func (g *Gate) AwaitAdmission(ctx context.Context) error {
	for {
		if g.ledger.CanAdmit() {
			return nil
		}

		wait := g.backoff.Jittered(g.ledger.TimeUntilAdmit())

		failures := g.ledger.ConsecutiveFailures()
		if failures > 0 {
			if bo := g.backoff.ForAttempt(failures, g.ledger.LastRateLimited()); bo > wait {
				wait = bo
			}
			g.logger.Warn().
				Dur("wait", wait).
				Int("consecutive_failures", failures).
				Msg("Rate limit plus failure backoff, sleeping")
		} else {
			g.logger.Info().
				Dur("wait", wait).
				Msg("Rate limit window full, sleeping")
		}

		if failures >= degradedFailureThreshold {
			g.ledger.MarkDegraded()
		}

		gateWaitsTotal.Inc()
		gateWaitSeconds.Observe(wait.Seconds())

		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// sleepContext sleeps for d unless the context is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
