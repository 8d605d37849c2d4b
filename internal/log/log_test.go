package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	ctx := NewContext(context.Background(), New(&buf, Options{Lambda: true}))

	ctx, logger := With(ctx, "id", "abc1234")
	logger.Info("first")
	FromContextOrDiscard(ctx).Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}
	for _, line := range lines {
		var entry map[string]any
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		if entry["id"] != "abc1234" {
			t.Errorf("id = %v, want abc1234", entry["id"])
		}
		if _, ok := entry[slog.TimeKey]; ok {
			t.Errorf("time attribute present in lambda mode: %s", line)
		}
	}
}

func TestFromContextOrDiscard(t *testing.T) {
	if FromContextOrDiscard(context.Background()) == nil {
		t.Fatal("FromContextOrDiscard() returned nil")
	}
}
