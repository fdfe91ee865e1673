// Package resolve turns a target URL into a pinned IP address, once per run.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"webhookutil/internal/core"
)

// DefaultPort is the port pinning applies to when the URL names none.
const DefaultPort = 443

// ResolutionError reports a hostname that could not be turned into an address.
type ResolutionError struct {
	Host string
	Err  error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %q: %v", e.Host, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// ErrNoAddress is returned when a lookup succeeds without yielding any address.
var ErrNoAddress = errors.New("no addresses returned")

// Lookuper is the name resolution service. *net.Resolver satisfies it.
type Lookuper interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Resolver resolves hostnames through a Lookuper. It keeps no cache.
type Resolver struct {
	lookup Lookuper
}

// New creates a Resolver backed by the system resolver.
func New() *Resolver {
	return &Resolver{lookup: net.DefaultResolver}
}

// NewWithLookup creates a Resolver with a custom Lookuper (for testing).
func NewWithLookup(l Lookuper) *Resolver {
	return &Resolver{lookup: l}
}

// Resolve returns the first address the lookup yields for host, whatever its family.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	if host == "" {
		return "", &ResolutionError{Host: host, Err: errors.New("empty hostname")}
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}

	addrs, err := r.lookup.LookupIPAddr(ctx, host)
	if err != nil {
		return "", &ResolutionError{Host: host, Err: err}
	}
	if len(addrs) == 0 {
		return "", &ResolutionError{Host: host, Err: ErrNoAddress}
	}
	return addrs[0].IP.String(), nil
}

// Pin resolves the host of rawURL and returns the resolution every worker will use.
// A non-empty ip skips the lookup and pins to that address instead.
func (r *Resolver) Pin(ctx context.Context, rawURL, ip string) (*core.PinnedResolution, error) {
	host := Hostname(rawURL)
	port := Port(rawURL)

	if ip != "" {
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return nil, &ResolutionError{Host: host, Err: fmt.Errorf("invalid pinned address %q", ip)}
		}
		if host == "" {
			return nil, &ResolutionError{Host: host, Err: errors.New("empty hostname")}
		}
		return &core.PinnedResolution{Hostname: host, IP: parsed.String(), Port: port}, nil
	}

	addr, err := r.Resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	return &core.PinnedResolution{Hostname: host, IP: addr, Port: port}, nil
}

// Hostname extracts the bare host from a URL with plain string operations:
// everything after "://" (or the whole input) up to the first '/', '?' or '#',
// without userinfo, port or IPv6 brackets.
func Hostname(rawURL string) string {
	host, _ := splitAuthority(rawURL)
	return host
}

// NormalizeURL prefixes "http://" to a URL that has no scheme, as curl does.
// The HTTP engines reject scheme-less URLs, and the pinned port must match
// the address they will actually dial.
func NormalizeURL(rawURL string) string {
	if rawURL == "" || strings.Contains(rawURL, "://") {
		return rawURL
	}
	return "http://" + rawURL
}

// Port returns the explicit port of rawURL, or the scheme's default.
func Port(rawURL string) int {
	_, port := splitAuthority(rawURL)
	if port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 && n < 65536 {
			return n
		}
	}
	if scheme, _, ok := strings.Cut(rawURL, "://"); ok && strings.EqualFold(scheme, "http") {
		return 80
	}
	return DefaultPort
}

func splitAuthority(rawURL string) (host, port string) {
	rest := rawURL
	if _, after, ok := strings.Cut(rawURL, "://"); ok {
		rest = after
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	if i := strings.LastIndex(rest, "@"); i >= 0 {
		rest = rest[i+1:]
	}

	if h, p, err := net.SplitHostPort(rest); err == nil {
		return h, p
	}
	return strings.TrimSuffix(strings.TrimPrefix(rest, "["), "]"), ""
}
