package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/logging"
)

// ─── Defaults ───

func TestDefaultConfig_IsValid(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if !cfg.Guard.EnforceOnDial {
		t.Error("dial-time enforcement should default to on")
	}
	if cfg.Server.RateLimit != 30 {
		t.Errorf("RateLimit = %d, want 30", cfg.Server.RateLimit)
	}
	if got := config.Duration(cfg.Timeouts.Fetch, 0); got != 8*time.Second {
		t.Errorf("fetch timeout = %v, want 8s", got)
	}
}

func TestDuration_FallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"750ms", 750 * time.Millisecond},
		{"", time.Second},
		{"soon", time.Second},
		{"-3s", time.Second},
	}
	for _, tt := range tests {
		if got := config.Duration(tt.raw, time.Second); got != tt.want {
			t.Errorf("Duration(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestLogLevel(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Log.Level = "debug"
	if cfg.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel())
	}
}

// ─── Validate ───

func TestValidate_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Server.Addr = " "
	cfg.Server.RateLimit = 0
	cfg.Log.Level = "loud"
	cfg.Timeouts.DNS = "never"
	cfg.Fetch.MaxBodyBytes = 0
	cfg.Providers.Shodan.BaseURL = "ftp://api.shodan.io"
	cfg.History.Path = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{
		"server.addr",
		"server.rate_limit",
		"log.level",
		"timeouts.dns",
		"fetch.max_body_bytes",
		"providers.shodan.base_url",
		"history.path",
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error missing %q: %v", want, err)
		}
	}
}

func TestValidate_HistoryPathOptionalWhenDisabled(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.History.Enabled = false
	cfg.History.Path = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// ─── Load ───

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phishscan.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_ExplicitFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
server:
  addr: "127.0.0.1:9090"
timeouts:
  dns: "2s"
providers:
  shodan:
    api_key: "file-key"
`)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:9090" {
		t.Errorf("Addr = %q", cfg.Server.Addr)
	}
	if cfg.Timeouts.DNS != "2s" {
		t.Errorf("DNS = %q", cfg.Timeouts.DNS)
	}
	if cfg.Providers.Shodan.APIKey != "file-key" {
		t.Errorf("shodan key = %q", cfg.Providers.Shodan.APIKey)
	}
	// untouched keys keep their defaults
	if cfg.Timeouts.Request != "30s" {
		t.Errorf("Request = %q, want default", cfg.Timeouts.Request)
	}
	if cfg.Providers.VirusTotal.BaseURL != "https://www.virustotal.com" {
		t.Errorf("VT base = %q", cfg.Providers.VirusTotal.BaseURL)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_InvalidFileFailsValidation(t *testing.T) {
	path := writeFile(t, "server:\n  rate_limit: -1\n")
	_, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "server.rate_limit") {
		t.Fatalf("expected rate_limit validation error, got %v", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "server:\n  addr: \":7000\"\n")
	t.Setenv("PHISHSCAN_SERVER_ADDR", ":7001")
	t.Setenv("PHISHSCAN_LOG_LEVEL", "warn")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":7001" {
		t.Errorf("Addr = %q, want env override", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
}

func TestLoad_ProviderKeysFromWellKnownEnv(t *testing.T) {
	path := writeFile(t, "log:\n  level: info\n")
	t.Setenv("SHODAN_API_KEY", "shodan-env")
	t.Setenv("VT_API_KEY", "vt-env")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.Shodan.APIKey != "shodan-env" {
		t.Errorf("shodan key = %q", cfg.Providers.Shodan.APIKey)
	}
	if cfg.Providers.VirusTotal.APIKey != "vt-env" {
		t.Errorf("vt key = %q", cfg.Providers.VirusTotal.APIKey)
	}
}

func TestLoad_PrefixedKeyWinsOverWellKnown(t *testing.T) {
	path := writeFile(t, "log:\n  level: info\n")
	t.Setenv("SHODAN_API_KEY", "plain")
	t.Setenv("PHISHSCAN_PROVIDERS_SHODAN_API_KEY", "prefixed")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Providers.Shodan.APIKey != "prefixed" {
		t.Errorf("shodan key = %q, want prefixed", cfg.Providers.Shodan.APIKey)
	}
}

// ─── WriteDefault ───

func TestWriteDefault_RoundTrips(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "phishscan.yaml")
	if err := config.WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "enforce_on_dial: true") {
		t.Errorf("written config missing guard section:\n%s", data)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load written default: %v", err)
	}
	if cfg.Fetch.MaxBodyBytes != config.DefaultConfig().Fetch.MaxBodyBytes {
		t.Errorf("MaxBodyBytes = %d", cfg.Fetch.MaxBodyBytes)
	}
}
