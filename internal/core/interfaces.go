// Package core defines the fundamental types and interfaces shared by the dispatcher.
package core

import (
	"context"
	"time"
)

// ContentTypeJSON is the Content-Type every attempt is sent with.
const ContentTypeJSON = "application/json"

// Attempt is the outcome of a single POST issued by a worker.
type Attempt struct {
	Worker     int
	Attempt    int // 1-indexed within the worker
	Timestamp  time.Time
	Duration   time.Duration
	Success    bool
	Err        error
	StatusCode int // informational only, never decides Success
}

// Delivery describes what the transport observed for one POST.
type Delivery struct {
	StatusCode int
	Duration   time.Duration
	BytesSent  int64
	BytesRecv  int64
}

// Sender posts one JSON body to a URL. Connection-level concerns such as
// address pinning belong to the implementation, not the caller.
type Sender interface {
	Post(ctx context.Context, url string, body []byte) (Delivery, error)
}

// Reporter receives attempt outcomes from workers. Implementations must be
// safe for concurrent use.
type Reporter interface {
	Report(Attempt)
}
