package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := New(&Config{Level: level, Format: FormatJSON, Writer: &buf}, "test-svc")
	return l, &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected a log line, got nothing")
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestNew_WritesJSONToWriter(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.Info("hello", Fields("k", "v"))

	m := decodeLine(t, buf)
	if m["message"] != "hello" {
		t.Errorf("expected message 'hello', got %v", m["message"])
	}
	if m["k"] != "v" {
		t.Errorf("expected k=v, got %v", m["k"])
	}
	if m[FieldService] != "test-svc" {
		t.Errorf("expected service field, got %v", m[FieldService])
	}
}

func TestNew_RespectsLevel(t *testing.T) {
	l, buf := newBufferLogger("warn")
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("expected info to be filtered, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("expected warn message to be written")
	}
}

func TestNewInvalidLevelFallsBackToInfo(t *testing.T) {
	l, buf := newBufferLogger("nonsense")
	l.Debug("dropped")
	l.Info("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Error("debug should be filtered at info level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Error("info should be written")
	}
}

func TestWithComponent(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithComponent("rest").Info("x")
	m := decodeLine(t, buf)
	if m[FieldComponent] != "rest" {
		t.Errorf("expected component=rest, got %v", m[FieldComponent])
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newBufferLogger("info")
	l.WithFields(map[string]interface{}{"a": 1}).WithError(errors.New("bad")).Error("failed")
	m := decodeLine(t, buf)
	if m["a"] != float64(1) {
		t.Errorf("expected a=1, got %v", m["a"])
	}
	if m["error"] != "bad" {
		t.Errorf("expected error=bad, got %v", m["error"])
	}
}

func TestWithContext_AddsTraceIDs(t *testing.T) {
	l, buf := newBufferLogger("info")

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	l.WithContext(ctx).Info("traced")
	m := decodeLine(t, buf)
	if m[FieldTraceID] != traceID.String() {
		t.Errorf("expected trace id, got %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != spanID.String() {
		t.Errorf("expected span id, got %v", m[FieldSpanID])
	}
}

func TestWithContext_NoSpanReturnsSameLogger(t *testing.T) {
	l, _ := newBufferLogger("info")
	if l.WithContext(context.Background()) != l {
		t.Error("expected same logger when no span is active")
	}
}

func TestEnabled(t *testing.T) {
	l, _ := newBufferLogger("info")
	if l.Enabled("debug") {
		t.Error("debug should not be enabled at info level")
	}
	if !l.Enabled("error") {
		t.Error("error should be enabled at info level")
	}
	if l.Enabled("bogus") {
		t.Error("unknown levels are never enabled")
	}
}

func TestNop(t *testing.T) {
	Nop().Info("nothing happens")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" {
		t.Errorf("expected level=info, got %q", cfg.Level)
	}
	if cfg.Format != FormatConsole {
		t.Errorf("expected format=console, got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output=stderr, got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected timestamp=true")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "debug", Format: FormatJSON}, false},
		{"bad level", Config{Level: "loud", Format: FormatJSON}, true},
		{"bad format", Config{Level: "info", Format: "xml"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l, buf := newBufferLogger("info")
	Register("registry-test", l)
	defer Unregister("registry-test")

	Get("registry-test").Info("via registry")
	if !strings.Contains(buf.String(), "via registry") {
		t.Error("expected registered logger to be returned")
	}
}

func TestGetUnregisteredReturnsComponentLogger(t *testing.T) {
	if Get("not-registered") == nil {
		t.Fatal("expected a logger")
	}
}

func TestFields(t *testing.T) {
	m := Fields("a", 1, "b", "two", 3, "ignored", "dangling")
	if len(m) != 2 {
		t.Errorf("expected 2 fields, got %d: %v", len(m), m)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestMergeHelpers(t *testing.T) {
	m := MergeWithError(nil, errors.New("boom"))
	if m[FieldError] != "boom" {
		t.Errorf("expected error field, got %v", m)
	}
	m = MergeWithDuration(m, 1500*time.Millisecond)
	if m[FieldDuration] != int64(1500) {
		t.Errorf("expected duration 1500, got %v", m[FieldDuration])
	}
}
