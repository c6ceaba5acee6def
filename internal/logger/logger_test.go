package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" DEBUG ": slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
		"":        slog.LevelInfo,
	}

	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNew_TextFiltersLevel(t *testing.T) {
	var buf bytes.Buffer

	log := New("warn", FormatText, &buf)
	log.Info("hidden")
	log.Warn("shown", "column", "dim1")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}

	if !strings.Contains(out, "shown") || !strings.Contains(out, "column=dim1") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	log := New("info", FormatJSON, &buf).With("run", "r1")
	log.Info("batch done", "records", 3)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}

	if rec["msg"] != "batch done" || rec["run"] != "r1" || rec["records"] != float64(3) {
		t.Errorf("unexpected record: %v", rec)
	}
}

func TestLogger_SetLevel(t *testing.T) {
	var buf bytes.Buffer

	log := New("info", FormatText, &buf)
	if log.Enabled(slog.LevelDebug) {
		t.Fatal("debug enabled at info level")
	}

	log.SetLevel("debug")

	if !log.Enabled(slog.LevelDebug) {
		t.Error("debug not enabled after SetLevel")
	}
}
