package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"product-dashboard/internal/config"
)

func TestNewLogger_Formats(t *testing.T) {
	tests := []struct {
		format string
		check  func(string) bool
	}{
		{"json", func(s string) bool { return json.Valid([]byte(strings.TrimSpace(s))) }},
		{"", func(s string) bool { return json.Valid([]byte(strings.TrimSpace(s))) }},
		{"text", func(s string) bool { return strings.Contains(s, "msg=hello") }},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerTo(&buf, config.LoggerConfig{Level: "info", Format: tt.format, Service: "svc"})
			logger.Info("hello")
			if !tt.check(buf.String()) {
				t.Errorf("unexpected %q output: %s", tt.format, buf.String())
			}
			if !strings.Contains(buf.String(), "svc") {
				t.Errorf("service attribute missing: %s", buf.String())
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARNING": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSpan_InheritsTrace(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")

	ctx, parent := StartSpan(ctx, "parent")
	if parent.TraceID != "req-1" {
		t.Errorf("root span should adopt the request id, got %q", parent.TraceID)
	}

	_, child := StartSpan(ctx, "child")
	if child.ParentID != parent.SpanID || child.TraceID != parent.TraceID {
		t.Errorf("child span not linked to parent: %+v", child)
	}
}

func TestSpan_EndLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, span := StartSpan(context.Background(), "fetch")
	span.SetTag("url", "http://upstream")
	span.SetError(errors.New("boom"))
	span.End(logger)

	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, "boom") {
		t.Errorf("expected warn log with error, got %s", out)
	}
	if span.Duration < 0 {
		t.Error("duration should not be negative")
	}
}
