package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var text, js bytes.Buffer
	logger := New(&text, &js, slog.LevelInfo, "json")

	logger.Debug("hidden")
	logger.Info("session created", "session_id", "abc")

	if text.Len() != 0 {
		t.Errorf("expected nothing on text output, got %q", text.String())
	}

	lines := strings.Split(strings.TrimSpace(js.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 JSON line, got %d: %q", len(lines), js.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid JSON log line: %v", err)
	}
	if entry["session_id"] != "abc" {
		t.Errorf("session_id = %v, want abc", entry["session_id"])
	}
}

func TestNewText(t *testing.T) {
	var text, js bytes.Buffer
	logger := New(&text, &js, slog.LevelDebug, "")

	logger.Debug("friend joined", "name", "Alice")

	if js.Len() != 0 {
		t.Errorf("expected nothing on JSON output, got %q", js.String())
	}
	if !strings.Contains(text.String(), "friend joined") {
		t.Errorf("text output missing message: %q", text.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
