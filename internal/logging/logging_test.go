package logging

import (
	"context"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"nonsense", slog.LevelInfo},
	}
	for _, tc := range cases {
		if got := parseLevel(tc.in); got != tc.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestNew_LevelGates(t *testing.T) {
	logger := New("error", "text")
	if logger == nil {
		t.Fatal("Expected non-nil logger")
	}
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Expected info to be disabled at error level")
	}

	logger = New("debug", "json")
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Expected debug to be enabled at debug level")
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := context.Background()

	if id := RequestID(ctx); id != "" {
		t.Errorf("Expected empty request ID, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-abc")
	if id := RequestID(ctx); id != "req-abc" {
		t.Errorf("Expected req-abc, got %q", id)
	}

	ctx = WithRequestID(ctx, "req-def")
	if id := RequestID(ctx); id != "req-def" {
		t.Errorf("Expected latest request ID to win, got %q", id)
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("Expected default logger when none in context")
	}

	custom := New("info", "text")
	ctx := WithLogger(context.Background(), custom)
	if FromContext(ctx) != custom {
		t.Error("Expected custom logger from context")
	}
}

func TestL_TagsRequestID(t *testing.T) {
	ctx := WithLogger(context.Background(), New("info", "text"))
	if L(ctx) == nil {
		t.Fatal("Expected non-nil logger without request ID")
	}

	ctx = WithRequestID(ctx, "req-1")
	if L(ctx) == nil {
		t.Fatal("Expected non-nil logger with request ID")
	}
}
