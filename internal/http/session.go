package http

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"webhookutil/internal/core"
)

// Transport engines.
const (
	EngineHTTP     = "http"
	EngineFastHTTP = "fasthttp"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 30 * time.Second

var ErrUnknownEngine = errors.New("unknown transport engine")

// Options configures a Session.
type Options struct {
	Engine  string
	Timeout time.Duration
	// Workers sizes the connection pool; each worker has at most one request in flight.
	Workers int
	Pin     *core.PinnedResolution
	Debug   *DebugLogger
}

// Session owns the process-wide transport state of one run. Open it once
// before dispatch and Close it once after every worker has returned.
type Session struct {
	engine    string
	sender    core.Sender
	closeIdle func()
	closeOnce sync.Once
}

// Open builds the client for the requested engine.
func Open(opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	switch opts.Engine {
	case "", EngineHTTP:
		client := newHTTPClient(opts.Timeout, opts.Workers, opts.Pin)
		return &Session{
			engine:    EngineHTTP,
			sender:    NewSender(client, opts.Debug),
			closeIdle: client.CloseIdleConnections,
		}, nil
	case EngineFastHTTP:
		client := newFastClient(opts.Workers, opts.Pin)
		return &Session{
			engine:    EngineFastHTTP,
			sender:    NewFastSender(client, opts.Timeout, opts.Debug),
			closeIdle: client.CloseIdleConnections,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, opts.Engine)
	}
}

// Sender returns the sender shared by all workers.
func (s *Session) Sender() core.Sender {
	return s.sender
}

// Engine returns the engine name the session was opened with.
func (s *Session) Engine() string {
	return s.engine
}

// Close releases pooled connections. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.closeIdle != nil {
			s.closeIdle()
		}
	})
}
