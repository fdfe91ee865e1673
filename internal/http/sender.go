// Package http implements the POST primitive on top of net/http and fasthttp.
package http

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"webhookutil/internal/core"
)

// maxDebugBodySize limits the response body captured in verbose mode.
const maxDebugBodySize = 4096

// Sender posts bodies with a net/http client.
type Sender struct {
	client *http.Client
	debug  *DebugLogger
}

func NewSender(client *http.Client, debug *DebugLogger) *Sender {
	return &Sender{
		client: client,
		debug:  debug,
	}
}

// newHTTPClient returns a client whose transport dials the pinned address, if any.
func newHTTPClient(timeout time.Duration, maxConns int, pin *core.PinnedResolution) *http.Client {
	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: dialKeepAlive,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          maxConns,
		MaxIdleConnsPerHost:   maxConns,
		ForceAttemptHTTP2:     true,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		DialContext:           pinnedDialContext(dialer.DialContext, pin),
	}
	// A proxy would receive the dial instead of the pinned host.
	if pin != nil {
		transport.Proxy = nil
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		// One POST per attempt: a 3xx is the answer, never a second request.
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Post issues one POST. The request and its response body never outlive the call.
func (s *Sender) Post(ctx context.Context, url string, body []byte) (core.Delivery, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		duration := time.Since(start)
		s.debug.LogError(ctx, err.Error(), duration)
		return core.Delivery{Duration: duration}, err
	}
	req.Header.Set("Content-Type", core.ContentTypeJSON)
	s.debug.LogRequest(ctx, req.Method, url, req.Header, body)

	resp, err := s.client.Do(req)
	duration := time.Since(start)
	if err != nil {
		s.debug.LogError(ctx, err.Error(), duration)
		return core.Delivery{Duration: duration, BytesSent: int64(len(body))}, err
	}
	defer resp.Body.Close()

	// Only verbose mode keeps any of the body, and only for this attempt.
	var captured bytes.Buffer
	var recv int64
	if s.debug != nil {
		recv, _ = io.Copy(&captured, io.LimitReader(resp.Body, maxDebugBodySize))
	}
	rest, _ := io.Copy(io.Discard, resp.Body) // drain errors are ignorable
	recv += rest

	s.debug.LogResponse(ctx, resp.StatusCode, resp.Header, captured.Bytes(), duration)

	return core.Delivery{
		StatusCode: resp.StatusCode,
		Duration:   duration,
		BytesSent:  int64(len(body)),
		BytesRecv:  recv,
	}, nil
}
