package observe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			t.Fatalf("invalid JSON log line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"error", LevelError},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.in); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if tt.in != "bogus" && ParseLogLevel(tt.in).String() != tt.in {
			t.Errorf("String() round trip failed for %q", tt.in)
		}
	}
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("warn", &buf)
	ctx := context.Background()

	l.Debug(ctx, "debug")
	l.Info(ctx, "info")
	l.Warn(ctx, "warn")
	l.Error(ctx, "error")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0]["msg"] != "warn" || lines[1]["level"] != "error" {
		t.Errorf("unexpected lines: %v", lines)
	}
}

func TestLogger_Redaction(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("debug", &buf)

	l.Info(context.Background(), "signed",
		F("Authorization", "AWS4-HMAC-SHA256 Credential=AKID/..."),
		F("x-amz-security-token", "FQoG..."),
		F("session_token", "abc"),
		F("secret_key", "wJalr"),
		F("signature", "deadbeef"),
		F("endpoint", "https://ec2.amazonaws.com/"),
	)

	out := buf.String()
	for _, leaked := range []string{"AKID", "FQoG", "abc", "wJalr", "deadbeef"} {
		if strings.Contains(out, leaked) {
			t.Errorf("log output leaks %q: %s", leaked, out)
		}
	}
	line := decodeLines(t, &buf)[0]
	if line["endpoint"] != "https://ec2.amazonaws.com/" {
		t.Errorf("endpoint = %v, want unredacted", line["endpoint"])
	}
	if line["Authorization"] != "[REDACTED]" {
		t.Errorf("Authorization = %v, want [REDACTED]", line["Authorization"])
	}
}

func TestLogger_WithOperationAndFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter("info", &buf)
	l := base.WithOperation(Operation{Provider: "aws", Service: "ec2", Name: "DescribeInstances"}).
		With(F("invocation_id", "abc-123"))

	l.Info(context.Background(), "operation completed", F("error", errors.New("boom")))
	base.Info(context.Background(), "plain")

	lines := decodeLines(t, &buf)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	first := lines[0]
	if first["operation"] != "aws.ec2.DescribeInstances" || first["provider"] != "aws" || first["service"] != "ec2" {
		t.Errorf("operation attrs missing: %v", first)
	}
	if first["invocation_id"] != "abc-123" {
		t.Errorf("invocation_id = %v", first["invocation_id"])
	}
	if first["error"] != "boom" {
		t.Errorf("error = %v, want boom", first["error"])
	}
	if _, ok := lines[1]["operation"]; ok {
		t.Error("WithOperation mutated the parent logger")
	}
}

func TestLogger_ConcurrentWrites(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter("info", &buf)
	child := l.WithOperation(Operation{Name: "op"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() { defer wg.Done(); l.Info(context.Background(), "parent") }()
		go func() { defer wg.Done(); child.Info(context.Background(), "child") }()
	}
	wg.Wait()

	if got := len(decodeLines(t, &buf)); got != 100 {
		t.Errorf("got %d lines, want 100", got)
	}
}

func TestNopLogger(t *testing.T) {
	l := NopLogger()
	l.Info(context.Background(), "ignored")
	if l.WithOperation(Operation{Name: "x"}) == nil || l.With(F("k", "v")) == nil {
		t.Error("NopLogger derived loggers must be non-nil")
	}
}
