package core

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"
)

// DefaultLatency is the pause between two attempts of the same worker.
const DefaultLatency = time.Second

// PinnedResolution routes connections for Hostname:Port to IP:Port.
// It is produced once before any worker starts and only read afterwards.
type PinnedResolution struct {
	Hostname string
	IP       string
	Port     int
}

// Address returns the dial address connections are redirected to.
func (p *PinnedResolution) Address() string {
	return net.JoinHostPort(p.IP, strconv.Itoa(p.Port))
}

// Matches reports whether a dial address ("host:port") targets the pinned host.
func (p *PinnedResolution) Matches(addr string) bool {
	if p == nil {
		return false
	}
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return false
	}
	return strings.EqualFold(host, p.Hostname) && port == strconv.Itoa(p.Port)
}

// RunConfig is the configuration shared by every worker of a run.
// It must not be modified once dispatch has started.
type RunConfig struct {
	URL     string
	Payload []byte
	Times   int
	Latency time.Duration
	Quiet   bool
	Workers int
	Pin     *PinnedResolution
}

// Validate checks the invariants the dispatcher relies on.
func (c *RunConfig) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Times < 1 {
		errs = append(errs, errors.New("times must be >= 1"))
	}
	if c.Workers < 1 {
		errs = append(errs, errors.New("workers must be >= 1"))
	}
	if c.Latency < 0 {
		errs = append(errs, errors.New("latency must not be negative"))
	}
	return errors.Join(errs...)
}

// TotalAttempts is the number of POSTs a complete run issues.
func (c *RunConfig) TotalAttempts() int {
	return c.Times * c.Workers
}
