package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreaker_AllowWhenClosed(t *testing.T) {
	b := New(3, 100*time.Millisecond)
	if !b.Allow("/api/stats") {
		t.Fatal("expected closed circuit to allow")
	}
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	// Two failures: still closed.
	b.RecordFailure("/api/stats")
	b.RecordFailure("/api/stats")
	if !b.Allow("/api/stats") {
		t.Fatal("should still allow before threshold")
	}

	// Third failure trips it open.
	b.RecordFailure("/api/stats")
	if b.Allow("/api/stats") {
		t.Fatal("should be open after 3 failures")
	}
	if b.State("/api/stats") != StateOpen {
		t.Fatalf("expected StateOpen, got %v", b.State("/api/stats"))
	}
}

func TestBreaker_OpenToHalfOpenAfterDuration(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("/api/stats")
	b.RecordFailure("/api/stats")
	if b.Allow("/api/stats") {
		t.Fatal("should be open")
	}

	// Wait out the open duration.
	time.Sleep(60 * time.Millisecond)

	// Should transition to half-open and allow one probe.
	if !b.Allow("/api/stats") {
		t.Fatal("should allow probe in half-open")
	}
	if b.State("/api/stats") != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen, got %v", b.State("/api/stats"))
	}

	// Second request while half-open should be rejected.
	if b.Allow("/api/stats") {
		t.Fatal("should reject second request in half-open")
	}
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("/api/stats")
	b.RecordFailure("/api/stats")
	time.Sleep(60 * time.Millisecond)
	b.Allow("/api/stats") // Transitions to half-open

	b.RecordSuccess("/api/stats")
	if b.State("/api/stats") != StateClosed {
		t.Fatalf("expected StateClosed after success, got %v", b.State("/api/stats"))
	}
	if !b.Allow("/api/stats") {
		t.Fatal("should allow after recovery")
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("/api/stats")
	b.RecordFailure("/api/stats")
	time.Sleep(60 * time.Millisecond)
	b.Allow("/api/stats") // Transitions to half-open

	b.RecordFailure("/api/stats")
	if b.State("/api/stats") != StateOpen {
		t.Fatalf("expected StateOpen after half-open failure, got %v", b.State("/api/stats"))
	}
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("/api/stats")
	b.RecordFailure("/api/stats")
	b.RecordSuccess("/api/stats")

	// One more failure must not trip it; the counter was reset.
	b.RecordFailure("/api/stats")
	if !b.Allow("/api/stats") {
		t.Fatal("should still be closed after reset")
	}
}

func TestBreaker_KeysAreIndependent(t *testing.T) {
	b := New(2, 100*time.Millisecond)

	b.RecordFailure("/api/refresh")
	b.RecordFailure("/api/refresh")

	if b.Allow("/api/refresh") {
		t.Fatal("/api/refresh should be open")
	}
	if !b.Allow("/api/search") {
		t.Fatal("/api/search should be unaffected")
	}
}

func TestBreaker_UnknownKeyIsClosed(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	if b.State("unknown") != StateClosed {
		t.Fatalf("expected StateClosed for unknown key, got %v", b.State("unknown"))
	}
}

func TestBreaker_DefaultsApplied(t *testing.T) {
	b := New(0, 0)
	for i := 0; i < 4; i++ {
		b.RecordFailure("/api/stats")
	}
	if !b.Allow("/api/stats") {
		t.Fatal("default threshold is 5, four failures must not trip it")
	}
	b.RecordFailure("/api/stats")
	if b.Allow("/api/stats") {
		t.Fatal("fifth failure should trip the default breaker")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
