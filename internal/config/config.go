// Package config handles YAML configuration parsing.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"webhookutil/internal/core"
	"webhookutil/internal/http"
	"webhookutil/internal/payload"
)

// Config is the root configuration structure. Every field can also be set from the command line.
type Config struct {
	URL        string          `yaml:"url"`
	Latency    time.Duration   `yaml:"latency"`
	Times      int             `yaml:"times"`
	Threads    int             `yaml:"threads"`
	Quiet      bool            `yaml:"quiet"`
	RawPayload bool            `yaml:"raw_payload"`
	Verbose    bool            `yaml:"verbose"`
	Message    payload.Message `yaml:"message"`
	Pin        PinConfig       `yaml:"pin"`
	Transport  TransportConfig `yaml:"transport"`
}

// PinConfig controls resolve-once pinning of the target host.
type PinConfig struct {
	Enabled bool   `yaml:"enabled"`
	IP      string `yaml:"ip"` // skips the lookup; implies Enabled
}

// Active reports whether connections should be pinned.
func (p PinConfig) Active() bool {
	return p.Enabled || p.IP != ""
}

// TransportConfig selects the HTTP engine.
type TransportConfig struct {
	Engine  string        `yaml:"engine"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the configuration used when neither a file nor flags say otherwise.
func Default() *Config {
	return &Config{
		Latency: core.DefaultLatency,
		Times:   1,
		Threads: 1,
		Message: payload.DefaultMessage(),
		Transport: TransportConfig{
			Engine:  http.EngineHTTP,
			Timeout: http.DefaultTimeout,
		},
	}
}

// LoadConfig reads a YAML configuration file on top of Default.
// Keys missing from the file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Validate reports every problem at once. The URL is checked by the caller
// since it usually comes from the command line.
func (c *Config) Validate() error {
	var errs []error
	if c.Times < 1 {
		errs = append(errs, fmt.Errorf("times must be >= 1, got %d", c.Times))
	}
	if c.Threads < 1 {
		errs = append(errs, fmt.Errorf("threads must be >= 1, got %d", c.Threads))
	}
	if c.Latency < 0 {
		errs = append(errs, fmt.Errorf("latency must not be negative, got %s", c.Latency))
	}
	if c.Transport.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("transport timeout must be positive, got %s", c.Transport.Timeout))
	}
	switch c.Transport.Engine {
	case "", http.EngineHTTP, http.EngineFastHTTP:
	default:
		errs = append(errs, fmt.Errorf("%w: %q", http.ErrUnknownEngine, c.Transport.Engine))
	}
	if c.Pin.IP != "" && net.ParseIP(c.Pin.IP) == nil {
		errs = append(errs, fmt.Errorf("pin ip %q is not an IP address", c.Pin.IP))
	}
	return errors.Join(errs...)
}
