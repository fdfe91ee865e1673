package http

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"webhookutil/internal/core"
)

func newTestDebugLogger(buf *bytes.Buffer) *DebugLogger {
	return NewDebugLogger(zerolog.New(buf).Level(zerolog.DebugLevel))
}

func TestDebugLogger_LogRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestDebugLogger(&buf)

	ctx := core.ContextWithAttempt(context.Background(), 2, 5)
	header := http.Header{"Content-Type": {"application/json"}}
	logger.LogRequest(ctx, "POST", "http://example.com/hook", header, []byte(`{"content":"hi"}`))

	output := buf.String()

	for _, want := range []string{`"worker":2`, `"attempt":5`, `"method":"POST"`, "http://example.com/hook", "Content-Type", `content`, ">>> request"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestDebugLogger_LogResponse(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestDebugLogger(&buf)

	header := http.Header{"Content-Type": {"application/json"}}
	logger.LogResponse(context.Background(), 201, header, []byte(`{"id": 123}`), 150*time.Millisecond)

	output := buf.String()

	if !strings.Contains(output, "201 Created") {
		t.Errorf("expected status in output, got: %s", output)
	}
	if !strings.Contains(output, `"duration":150`) {
		t.Errorf("expected duration in output, got: %s", output)
	}
	if !strings.Contains(output, `123`) {
		t.Errorf("expected response body in output, got: %s", output)
	}
}

func TestDebugLogger_LogError(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestDebugLogger(&buf)

	logger.LogError(core.ContextWithAttempt(context.Background(), 1, 1), "connection refused", 50*time.Millisecond)

	output := buf.String()
	if !strings.Contains(output, "request failed") {
		t.Errorf("expected failure message in output, got: %s", output)
	}
	if !strings.Contains(output, "connection refused") {
		t.Errorf("expected error message in output, got: %s", output)
	}
}

func TestDebugLogger_TruncatesLongBodies(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestDebugLogger(&buf)

	longBody := bytes.Repeat([]byte("x"), 2000)
	logger.LogRequest(context.Background(), "POST", "http://example.com/hook", nil, longBody)

	if !strings.Contains(buf.String(), "truncated") {
		t.Errorf("expected long body to be truncated, got: %s", buf.String())
	}
}

func TestDebugLogger_SilentAboveDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewDebugLogger(zerolog.New(&buf).Level(zerolog.InfoLevel))

	logger.LogRequest(context.Background(), "POST", "http://example.com", nil, nil)

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got: %s", buf.String())
	}
}

func TestDebugLogger_NilLogger(t *testing.T) {
	var logger *DebugLogger

	// These should not panic
	logger.LogRequest(context.Background(), "POST", "http://example.com", nil, nil)
	logger.LogResponse(context.Background(), 200, nil, nil, time.Millisecond)
	logger.LogError(context.Background(), "error", time.Millisecond)
}
