package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"webhookutil/internal/http"
	"webhookutil/internal/payload"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Latency != time.Second {
		t.Errorf("expected latency 1s, got %v", cfg.Latency)
	}
	if cfg.Times != 1 || cfg.Threads != 1 {
		t.Errorf("expected times=1 threads=1, got times=%d threads=%d", cfg.Times, cfg.Threads)
	}
	if cfg.Message != payload.DefaultMessage() {
		t.Errorf("expected default message, got %+v", cfg.Message)
	}
	if cfg.Transport.Engine != http.EngineHTTP {
		t.Errorf("expected engine %q, got %q", http.EngineHTTP, cfg.Transport.Engine)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadConfig_Full(t *testing.T) {
	content := `
url: https://example.com/hook
latency: 250ms
times: 3
threads: 2
quiet: true
raw_payload: true
verbose: true
message:
  content: "deploy finished"
  username: "ci-bot"
  avatar_url: "https://example.com/bot.png"
pin:
  enabled: true
  ip: 10.0.0.7
transport:
  engine: fasthttp
  timeout: 5s
`
	cfg := loadConfigFromString(t, content)

	if cfg.URL != "https://example.com/hook" {
		t.Errorf("expected URL 'https://example.com/hook', got %q", cfg.URL)
	}
	if cfg.Latency != 250*time.Millisecond {
		t.Errorf("expected latency 250ms, got %v", cfg.Latency)
	}
	if cfg.Times != 3 || cfg.Threads != 2 {
		t.Errorf("expected times=3 threads=2, got times=%d threads=%d", cfg.Times, cfg.Threads)
	}
	if !cfg.Quiet || !cfg.RawPayload || !cfg.Verbose {
		t.Errorf("expected quiet, raw_payload and verbose set, got %+v", cfg)
	}
	if cfg.Message.Content != "deploy finished" || cfg.Message.Username != "ci-bot" {
		t.Errorf("unexpected message %+v", cfg.Message)
	}
	if cfg.Message.AvatarURL != "https://example.com/bot.png" {
		t.Errorf("expected avatar URL, got %q", cfg.Message.AvatarURL)
	}
	if !cfg.Pin.Enabled || cfg.Pin.IP != "10.0.0.7" {
		t.Errorf("unexpected pin %+v", cfg.Pin)
	}
	if cfg.Transport.Engine != http.EngineFastHTTP || cfg.Transport.Timeout != 5*time.Second {
		t.Errorf("unexpected transport %+v", cfg.Transport)
	}
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	content := `
times: 4
message:
  content: "only content"
`
	cfg := loadConfigFromString(t, content)

	if cfg.Times != 4 {
		t.Errorf("expected times 4, got %d", cfg.Times)
	}
	if cfg.Threads != 1 {
		t.Errorf("expected default threads 1, got %d", cfg.Threads)
	}
	if cfg.Latency != time.Second {
		t.Errorf("expected default latency 1s, got %v", cfg.Latency)
	}
	if cfg.Message.Content != "only content" {
		t.Errorf("expected content override, got %q", cfg.Message.Content)
	}
	if cfg.Message.Username != payload.DefaultUsername {
		t.Errorf("expected default username, got %q", cfg.Message.Username)
	}
	if cfg.Transport.Timeout != http.DefaultTimeout {
		t.Errorf("expected default timeout, got %v", cfg.Transport.Timeout)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist in chain, got %v", err)
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	content := `
times: [not, a, number
`
	tmpFile := createTempFile(t, content)

	_, err := LoadConfig(tmpFile)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestLoadConfig_EmptyFile(t *testing.T) {
	cfg := loadConfigFromString(t, "")

	if cfg.Times != 1 || cfg.Latency != time.Second {
		t.Errorf("expected defaults for empty file, got %+v", cfg)
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Times = 0
	cfg.Threads = -1
	cfg.Latency = -time.Second
	cfg.Transport.Engine = "carrier-pigeon"
	cfg.Transport.Timeout = 0
	cfg.Pin.IP = "not-an-ip"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}

	msg := err.Error()
	for _, want := range []string{"times", "threads", "latency", "timeout", "carrier-pigeon", "not-an-ip"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
	if !errors.Is(err, http.ErrUnknownEngine) {
		t.Errorf("expected ErrUnknownEngine in chain, got %v", err)
	}
}

func TestValidate_EmptyEngineAllowed(t *testing.T) {
	cfg := Default()
	cfg.Transport.Engine = ""

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected empty engine to fall back to default, got %v", err)
	}
}

func TestPinConfig_Active(t *testing.T) {
	tests := []struct {
		pin  PinConfig
		want bool
	}{
		{PinConfig{}, false},
		{PinConfig{Enabled: true}, true},
		{PinConfig{IP: "127.0.0.1"}, true},
	}
	for _, tt := range tests {
		if got := tt.pin.Active(); got != tt.want {
			t.Errorf("%+v: expected %v, got %v", tt.pin, tt.want, got)
		}
	}
}

func loadConfigFromString(t *testing.T, content string) *Config {
	t.Helper()
	tmpFile := createTempFile(t, content)
	defer os.Remove(tmpFile)

	cfg, err := LoadConfig(tmpFile)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func createTempFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	return tmpFile
}
