package http

import (
	"context"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"

	"webhookutil/internal/core"
)

// FastSender posts bodies with a fasthttp client. fasthttp cannot abort an
// in-flight request on context cancellation, so each attempt is bounded by
// the context deadline or the configured timeout, whichever is sooner.
type FastSender struct {
	client  *fasthttp.Client
	timeout time.Duration
	debug   *DebugLogger
}

func NewFastSender(client *fasthttp.Client, timeout time.Duration, debug *DebugLogger) *FastSender {
	return &FastSender{
		client:  client,
		timeout: timeout,
		debug:   debug,
	}
}

func newFastClient(maxConns int, pin *core.PinnedResolution) *fasthttp.Client {
	client := &fasthttp.Client{
		Name:                "webhookutil",
		MaxConnsPerHost:     maxConns,
		MaxIdleConnDuration: 90 * time.Second,
	}
	if pin != nil {
		client.Dial = pinnedFastDial(pin)
	}
	return client
}

// Post issues one POST. Request and response are pooled objects released before returning.
func (s *FastSender) Post(ctx context.Context, url string, body []byte) (core.Delivery, error) {
	if err := ctx.Err(); err != nil {
		return core.Delivery{}, err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType(core.ContentTypeJSON)
	req.SetBody(body)

	deadline := time.Now().Add(s.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	s.debug.LogRequest(ctx, fasthttp.MethodPost, url, http.Header{"Content-Type": {core.ContentTypeJSON}}, body)

	start := time.Now()
	err := s.client.DoDeadline(req, resp, deadline)
	duration := time.Since(start)
	if err != nil {
		s.debug.LogError(ctx, err.Error(), duration)
		return core.Delivery{Duration: duration, BytesSent: int64(len(body))}, err
	}

	respBody := resp.Body()
	if s.debug != nil {
		header := http.Header{}
		resp.Header.VisitAll(func(k, v []byte) {
			header.Add(string(k), string(v))
		})
		captured := respBody
		if len(captured) > maxDebugBodySize {
			captured = captured[:maxDebugBodySize]
		}
		s.debug.LogResponse(ctx, resp.StatusCode(), header, captured, duration)
	}

	return core.Delivery{
		StatusCode: resp.StatusCode(),
		Duration:   duration,
		BytesSent:  int64(len(body)),
		BytesRecv:  int64(len(respBody)),
	}, nil
}
