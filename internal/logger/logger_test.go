package logger

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogEntryShape(t *testing.T) {
	var buf strings.Builder
	l := New(LevelDebug, &buf)

	l.Info("poll cycle complete", Fields{"parsed": 42, "inserted": 3})

	var entry Entry
	if err := json.Unmarshal([]byte(buf.String()), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry.Level != "INFO" {
		t.Errorf("level = %q", entry.Level)
	}
	if entry.Message != "poll cycle complete" {
		t.Errorf("message = %q", entry.Message)
	}
	if entry.Fields["parsed"].(float64) != 42 {
		t.Errorf("fields = %v", entry.Fields)
	}
	if entry.Timestamp == "" {
		t.Error("missing timestamp")
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf strings.Builder
	l := New(LevelWarn, &buf)

	l.Debug("hidden", nil)
	l.Info("hidden", nil)
	l.Warn("visible", nil)
	l.Error("visible", nil, errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "boom") {
		t.Errorf("error entry missing error string: %q", lines[1])
	}
}
