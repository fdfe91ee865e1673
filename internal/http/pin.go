package http

import (
	"context"
	"net"
	"time"

	"github.com/valyala/fasthttp"

	"webhookutil/internal/core"
)

const (
	dialTimeout   = 5 * time.Second
	dialKeepAlive = 30 * time.Second
)

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// pinnedDialContext redirects dials for the pinned host to the pinned address.
// The request URL, Host header and TLS server name keep the original hostname.
func pinnedDialContext(dial dialContextFunc, pin *core.PinnedResolution) dialContextFunc {
	if pin == nil {
		return dial
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if pin.Matches(addr) {
			addr = pin.Address()
		}
		return dial(ctx, network, addr)
	}
}

// pinnedFastDial is the fasthttp counterpart of pinnedDialContext.
func pinnedFastDial(pin *core.PinnedResolution) fasthttp.DialFunc {
	return func(addr string) (net.Conn, error) {
		if pin.Matches(addr) {
			addr = pin.Address()
		}
		return fasthttp.DialTimeout(addr, dialTimeout)
	}
}
