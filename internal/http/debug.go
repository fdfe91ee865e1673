package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"webhookutil/internal/core"
)

const maxBodyLogSize = 1024

// DebugLogger dumps requests and responses at debug level.
// A nil *DebugLogger is valid and logs nothing.
type DebugLogger struct {
	log zerolog.Logger
}

func NewDebugLogger(log zerolog.Logger) *DebugLogger {
	return &DebugLogger{log: log}
}

func (d *DebugLogger) LogRequest(ctx context.Context, method, url string, header http.Header, body []byte) {
	if d == nil {
		return
	}
	worker, attempt := core.AttemptFromContext(ctx)
	ev := d.log.Debug().
		Int("worker", worker).
		Int("attempt", attempt).
		Str("method", method).
		Str("url", url)
	if len(header) > 0 {
		ev = ev.Dict("headers", headerDict(header))
	}
	if len(body) > 0 {
		ev = ev.Str("body", truncateBody(body))
	}
	ev.Msg(">>> request")
}

func (d *DebugLogger) LogResponse(ctx context.Context, status int, header http.Header, body []byte, duration time.Duration) {
	if d == nil {
		return
	}
	worker, attempt := core.AttemptFromContext(ctx)
	ev := d.log.Debug().
		Int("worker", worker).
		Int("attempt", attempt).
		Str("status", fmt.Sprintf("%d %s", status, http.StatusText(status))).
		Dur("duration", duration.Round(time.Millisecond))
	if len(header) > 0 {
		ev = ev.Dict("headers", headerDict(header))
	}
	if len(body) > 0 {
		ev = ev.Str("body", truncateBody(body))
	}
	ev.Msg("<<< response")
}

func (d *DebugLogger) LogError(ctx context.Context, errMsg string, duration time.Duration) {
	if d == nil {
		return
	}
	worker, attempt := core.AttemptFromContext(ctx)
	d.log.Debug().
		Int("worker", worker).
		Int("attempt", attempt).
		Dur("duration", duration.Round(time.Millisecond)).
		Str("error", errMsg).
		Msg("!!! request failed")
}

func headerDict(header http.Header) *zerolog.Event {
	dict := zerolog.Dict()
	for name, values := range header {
		dict = dict.Str(name, strings.Join(values, ", "))
	}
	return dict
}

func truncateBody(body []byte) string {
	if len(body) <= maxBodyLogSize {
		return string(body)
	}
	return string(body[:maxBodyLogSize]) + fmt.Sprintf("... (truncated, %d bytes total)", len(body))
}
