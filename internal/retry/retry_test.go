package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestDo_FirstAttemptSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 5, 10*time.Millisecond, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call, got %d", calls)
	}
}

func TestDo_RecoversAfterTransientFailures(t *testing.T) {
	calls := 0
	err := Do(context.Background(), 4, 5*time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	sentinel := errors.New("still down")
	err := Do(context.Background(), 3, 5*time.Millisecond, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestDo_PermanentErrorShortCircuits(t *testing.T) {
	calls := 0
	sentinel := errors.New("bad credentials")
	err := Do(context.Background(), 5, 5*time.Millisecond, func() error {
		calls++
		return Permanent(sentinel)
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("permanent error must not be retried, got %d calls", calls)
	}
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, 10, 200*time.Millisecond, func() error {
		calls.Add(1)
		return errors.New("fail")
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	// The long backoff means cancellation lands during a sleep, after only
	// a couple of attempts.
	if c := calls.Load(); c > 2 {
		t.Fatalf("expected at most 2 calls, got %d", c)
	}
}

func TestDo_NonPositiveAttemptsRoundsUpToOne(t *testing.T) {
	for _, attempts := range []int{0, -3} {
		calls := 0
		err := Do(context.Background(), attempts, time.Millisecond, func() error {
			calls++
			return nil
		})
		if err != nil {
			t.Fatalf("maxAttempts=%d: expected nil, got %v", attempts, err)
		}
		if calls != 1 {
			t.Fatalf("maxAttempts=%d: expected 1 call, got %d", attempts, calls)
		}
	}
}

func TestDo_SleepsBetweenAttempts(t *testing.T) {
	var stamps []time.Time
	err := Do(context.Background(), 3, 20*time.Millisecond, func() error {
		stamps = append(stamps, time.Now())
		if len(stamps) < 3 {
			return errors.New("fail")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}

	// Jitter is +-25%, so every gap should still be at least three quarters
	// of the base delay. Keep the bound loose for slow CI machines.
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < 10*time.Millisecond {
			t.Errorf("gap %d too short: %v", i, gap)
		}
	}
}

func TestPermanent_WrapsAndUnwraps(t *testing.T) {
	inner := errors.New("inner")
	pe := Permanent(inner)
	if pe.Error() != "inner" {
		t.Fatalf("expected message passthrough, got %q", pe.Error())
	}
	if !errors.Is(pe, inner) {
		t.Fatal("Permanent error should unwrap to the inner error")
	}
}
