package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// newTestGate wires a gate whose sleep advances the shared fake clock
// instead of blocking, recording each wait.
func newTestGate(clock *fakeClock) (*Gate, *Ledger, *[]time.Duration) {
	ledger := newTestLedger(clock)

	backoff := NewBackoff(testPolicy())
	backoff.SetRand(func() float64 { return 0.5 }) // midpoint: jitter is a no-op
	backoff.SetClock(clock.now)

	gate := NewGate(ledger, backoff, zerolog.Nop())

	waits := &[]time.Duration{}
	gate.sleep = func(_ context.Context, d time.Duration) error {
		*waits = append(*waits, d)
		clock.advance(d)
		return nil
	}

	return gate, ledger, waits
}

func TestGate_AdmitsImmediately(t *testing.T) {
	gate, _, waits := newTestGate(newFakeClock())

	if err := gate.AwaitAdmission(context.Background()); err != nil {
		t.Fatalf("AwaitAdmission() error = %v", err)
	}
	if len(*waits) != 0 {
		t.Errorf("gate slept %d times on empty ledger, want 0", len(*waits))
	}
}

func TestGate_WaitsOutWindow(t *testing.T) {
	clock := newFakeClock()
	gate, ledger, waits := newTestGate(clock)

	for i := 0; i < testPolicy().MaxRequests; i++ {
		ledger.Record(true, 0, 200)
	}

	if err := gate.AwaitAdmission(context.Background()); err != nil {
		t.Fatalf("AwaitAdmission() error = %v", err)
	}

	if len(*waits) == 0 {
		t.Fatal("gate never slept with a full window")
	}
	// Full window, no failures: the wait is the jittered window remainder,
	// which with midpoint rand equals the window itself.
	if (*waits)[0] != testPolicy().Window {
		t.Errorf("first wait = %v, want %v", (*waits)[0], testPolicy().Window)
	}
	if !ledger.CanAdmit() {
		t.Error("ledger should admit after waiting out the window")
	}
}

func TestGate_FailureStreakRaisesWait(t *testing.T) {
	clock := newFakeClock()
	gate, ledger, waits := newTestGate(clock)

	// Two failures: backoff for attempt 2 is base*2 = 2s, smaller than the
	// 60s window remainder, so the window wait wins.
	ledger.Record(false, 0, 503)
	ledger.Record(false, 0, 503)
	ledger.Record(false, 0, 503)

	if err := gate.AwaitAdmission(context.Background()); err != nil {
		t.Fatalf("AwaitAdmission() error = %v", err)
	}

	if len(*waits) == 0 {
		t.Fatal("gate never slept")
	}
	if (*waits)[0] < testPolicy().Window {
		t.Errorf("wait = %v, want at least the window remainder %v", (*waits)[0], testPolicy().Window)
	}
}

func TestGate_MarksDegradedAtThreshold(t *testing.T) {
	clock := newFakeClock()
	gate, ledger, _ := newTestGate(clock)

	for i := 0; i < degradedFailureThreshold; i++ {
		ledger.Record(false, 0, 500)
	}

	if err := gate.AwaitAdmission(context.Background()); err != nil {
		t.Fatalf("AwaitAdmission() error = %v", err)
	}
	if !ledger.Degraded() {
		t.Error("ledger not marked degraded after threshold failures")
	}
}

func TestGate_ContextCancellation(t *testing.T) {
	clock := newFakeClock()
	gate, ledger, _ := newTestGate(clock)
	gate.sleep = sleepContext // real ctx-aware sleep

	for i := 0; i < testPolicy().MaxRequests; i++ {
		ledger.Record(true, 0, 200)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := gate.AwaitAdmission(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("AwaitAdmission() error = %v, want context.Canceled", err)
	}
}
