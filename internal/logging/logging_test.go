package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

// captureJSON points the global logger at a buffer for the duration of f
// and returns each emitted record decoded.
func captureJSON(t *testing.T, level Level, f func()) []map[string]any {
	t.Helper()
	var buf bytes.Buffer
	InitLogger(level, FormatJSON, &buf)
	t.Cleanup(func() { InitLogger(LevelInfo, FormatText, os.Stderr) })

	f()

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		records = append(records, rec)
	}
	return records
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{"Debug level JSON format", LevelDebug, FormatJSON},
		{"Warn level JSON format", LevelWarn, FormatJSON},
		{"Info level Text format", LevelInfo, FormatText},
		{"Default level (invalid value)", Level(999), FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			InitLogger(tt.level, tt.format, &buf)
			if GetLogger() == nil {
				t.Fatal("Expected logger to be initialized, got nil")
			}
			Error("boom")
			if buf.Len() == 0 {
				t.Error("expected error record to be written")
			}
		})
	}
	InitLogger(LevelInfo, FormatText, os.Stderr)
}

func TestLevelFiltering(t *testing.T) {
	records := captureJSON(t, LevelWarn, func() {
		Debug("hidden")
		Info("hidden")
		Warn("shown")
		Error("shown")
	})
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec["msg"] != "shown" {
			t.Errorf("unexpected record %v", rec)
		}
	}
}

func TestTimestampFormat(t *testing.T) {
	records := captureJSON(t, LevelInfo, func() { Info("tick") })
	ts, ok := records[0]["time"].(string)
	if !ok {
		t.Fatalf("time attribute missing: %v", records[0])
	}
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("JSON"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(JSON) = %v, %v", f, err)
	}
	if f, err := ParseFormat("text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) expected error")
	}
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("NewRunID() = %q, not a UUID: %v", id, err)
	}
	if NewRunID() == id {
		t.Error("NewRunID() returned the same id twice")
	}

	ctx := WithRunID(context.Background(), id)
	if got := GetRunID(ctx); got != id {
		t.Errorf("GetRunID() = %q, want %q", got, id)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID(empty) = %q, want empty", got)
	}
}

func TestLoggerFromContext(t *testing.T) {
	records := captureJSON(t, LevelDebug, func() {
		InfoContext(WithRunID(context.Background(), "run-1"), "with")
		InfoContext(context.Background(), "without")
	})
	if records[0]["run_id"] != "run-1" {
		t.Errorf("run_id = %v, want run-1", records[0]["run_id"])
	}
	if _, ok := records[1]["run_id"]; ok {
		t.Errorf("unexpected run_id in %v", records[1])
	}
}

func TestDocumentEvents(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-2")
	records := captureJSON(t, LevelDebug, func() {
		DocumentLoaded(ctx, "a.docx", 120)
		DocumentFailed(ctx, "b.docx", errors.New("corrupt"), "size", 7)
		DocumentParsed(ctx, "a.docx", 25, 1, 2)
		RunSummary(ctx, 2, 25, 2, 2, 1500*time.Millisecond)
	})
	if len(records) != 4 {
		t.Fatalf("got %d records, want 4", len(records))
	}

	tests := []struct {
		msg   string
		level string
		key   string
		want  any
	}{
		{"document_loaded", "DEBUG", "lines", float64(120)},
		{"document_failed", "ERROR", "error", "corrupt"},
		{"document_parsed", "INFO", "songs", float64(25)},
		{"run_summary", "INFO", "duration_ms", float64(1500)},
	}
	for i, tt := range tests {
		rec := records[i]
		if rec["msg"] != tt.msg || rec["level"] != tt.level {
			t.Errorf("record %d = %v %v, want %s %s", i, rec["level"], rec["msg"], tt.level, tt.msg)
		}
		if rec[tt.key] != tt.want {
			t.Errorf("%s[%s] = %v, want %v", tt.msg, tt.key, rec[tt.key], tt.want)
		}
		if rec["run_id"] != "run-2" {
			t.Errorf("%s missing run_id", tt.msg)
		}
	}
	if records[1]["size"] != float64(7) {
		t.Errorf("extra args not forwarded: %v", records[1])
	}
}
