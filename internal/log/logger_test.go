package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelInfo, Component: ComponentStorage, Writer: &buf})

	logger.Info("record saved", FieldBackend, "file")
	out := buf.String()
	if !strings.Contains(out, "component=storage") || !strings.Contains(out, "backend=file") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	logger.WithComponent(ComponentReport).Warn("pdf skipped")
	if !strings.Contains(buf.String(), "component=report") {
		t.Fatalf("expected report component, got %q", buf.String())
	}
}

func TestLoggerJSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, Component: ComponentApp, Format: "json", Writer: &buf})

	logger.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	logger.Error("boom", FieldError, "x")
	if !strings.Contains(buf.String(), `"component":"app"`) {
		t.Fatalf("expected json output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"", slog.LevelInfo, true},
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.ok && (err != nil || got != tt.want) {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
		if !tt.ok && err == nil {
			t.Errorf("ParseLevel(%q) expected error", tt.in)
		}
	}
}

func TestFromContext(t *testing.T) {
	logger := New(Config{Component: ComponentCLI, Writer: &bytes.Buffer{}})
	ctx := WithLogger(context.Background(), logger)
	fallback := New(Config{Component: ComponentStorage, Writer: &bytes.Buffer{}})
	if FromContext(ctx, fallback) != logger {
		t.Fatalf("expected stored logger")
	}
	if FromContext(context.Background(), fallback) != fallback {
		t.Fatalf("expected fallback logger")
	}
	if got := FromContext(context.Background(), nil); got.Component() != "unknown" {
		t.Fatalf("expected default logger, got component %q", got.Component())
	}
}

func TestLogFields(t *testing.T) {
	f := NewFields().
		WithOperation(OpGenerate).
		WithLoan("10000.00", 12, "6", "860.66").
		WithError(errors.New("bad"))
	if len(f.ToSlice()) != 2*len(f) {
		t.Fatalf("slice should hold key/value pairs")
	}
	if f[FieldTermMonths] != 12 || f[FieldError] != "bad" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if _, ok := NewFields().WithError(nil)[FieldError]; ok {
		t.Fatalf("nil error should not be recorded")
	}
}
