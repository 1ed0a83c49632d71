//go:build !integration

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"parallel-muhit-webapp/internal/config"
)

func TestWithAddsContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := newWithWriter(config.LogConfig{Level: "debug", Format: "json"}, false, &buf)

	ctx := WithSessID(WithTraceID(context.Background(), "trace-1"), "sess-1")
	With(ctx, base).Info().Msg("hello")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json log line, got %q: %v", buf.String(), err)
	}
	if entry["trace_id"] != "trace-1" || entry["session_id"] != "sess-1" {
		t.Errorf("missing context fields: %v", entry)
	}
	if TraceID(ctx) != "trace-1" {
		t.Errorf("unexpected trace id %q", TraceID(ctx))
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := newWithWriter(config.LogConfig{Level: "warn", Format: "json"}, false, &buf)
	l.Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info must be filtered at warn level, got %q", buf.String())
	}
	l.Warn().Msg("kept")
	if buf.Len() == 0 {
		t.Error("warn must be written")
	}
}

func TestRedact(t *testing.T) {
	if Redact("short", false) != "***" {
		t.Error("short values must be fully hidden")
	}
	if got := Redact("abcdefghijklmnop", false); got != "abcd...op" {
		t.Errorf("unexpected redaction %q", got)
	}
	if Redact("abcdefghijklmnop", true) != "abcdefghijklmnop" {
		t.Error("dev mode shows values as-is")
	}
}
