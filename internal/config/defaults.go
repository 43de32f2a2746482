package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RateLimit:      30,
			AllowedOrigins: []string{"*"},
			ShutdownGrace:  "10s",
		},
		Log: LogConfig{
			Level: "info",
		},
		Timeouts: TimeoutsConfig{
			DNS:      "5s",
			Fetch:    "8s",
			Provider: "10s",
			Request:  "30s",
		},
		Fetch: FetchConfig{
			UserAgent:    "Mozilla/5.0 (compatible; phishscan/1.0)",
			MaxBodyBytes: 1 << 20,
			MaxRedirects: 5,
		},
		Guard: GuardConfig{
			EnforceOnDial: true,
		},
		Providers: ProvidersConfig{
			Shodan: ProviderConfig{
				BaseURL: "https://api.shodan.io",
			},
			VirusTotal: ProviderConfig{
				BaseURL: "https://www.virustotal.com",
			},
			MaxBodyBytes: 8 << 20,
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "phishscan.db",
		},
	}
}

// WriteDefault writes a default configuration to the specified path
func WriteDefault(path string) error {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
