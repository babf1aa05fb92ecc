package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestFromContextFallsBackToDefault(t *testing.T) {
	if got := FromContext(context.Background()); got != slog.Default() {
		t.Fatal("expected default logger")
	}
	if got := FromContext(nil); got != slog.Default() {
		t.Fatal("expected default logger for nil context")
	}
}

func TestWithLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "backoffice", "debug")
	ctx := WithLogger(context.Background(), logger)

	FromContext(ctx).Debug("loaded", "module", "contacts")

	out := buf.String()
	if !strings.Contains(out, "service=backoffice") || !strings.Contains(out, "module=contacts") {
		t.Fatalf("unexpected log output %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        slog.LevelInfo,
		"DEBUG":   slog.LevelDebug,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
