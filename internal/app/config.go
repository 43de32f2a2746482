package app

import (
	"time"

	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/enrich"
	"github.com/raysh454/phishscan/internal/favicon"
	"github.com/raysh454/phishscan/internal/guard"
	"github.com/raysh454/phishscan/internal/providers"
	"github.com/raysh454/phishscan/internal/webclient"
)

// The helpers below translate the file/env configuration into the
// per-component configs. Durations were validated by config.Validate, the
// fallbacks only matter for hand-built configs.

func guardConfig(cfg *config.Config) guard.Config {
	return guard.Config{
		LookupTimeout: config.Duration(cfg.Timeouts.DNS, 5*time.Second),
		EnforceOnDial: cfg.Guard.EnforceOnDial,
	}
}

func targetClientConfig(cfg *config.Config, g *guard.Guard) webclient.Config {
	return webclient.Config{
		Timeout:      config.Duration(cfg.Timeouts.Fetch, webclient.DefaultTimeout),
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
		MaxRedirects: cfg.Fetch.MaxRedirects,
		Control:      g.DialControl,
	}
}

// Provider endpoints are fixed public APIs, or test servers on loopback,
// so their client skips the dial guard.
func providerClientConfig(cfg *config.Config) webclient.Config {
	return webclient.Config{
		Timeout:      config.Duration(cfg.Timeouts.Provider, enrich.DefaultProviderTimeout),
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Providers.MaxBodyBytes,
		MaxRedirects: cfg.Fetch.MaxRedirects,
	}
}

func faviconConfig(cfg *config.Config) favicon.Config {
	return favicon.Config{FetchTimeout: config.Duration(cfg.Timeouts.Fetch, favicon.DefaultFetchTimeout)}
}

func enrichConfig(cfg *config.Config) enrich.Config {
	return enrich.Config{ProviderTimeout: config.Duration(cfg.Timeouts.Provider, enrich.DefaultProviderTimeout)}
}

func shodanConfig(cfg *config.Config) providers.ShodanConfig {
	return providers.ShodanConfig{APIKey: cfg.Providers.Shodan.APIKey, BaseURL: cfg.Providers.Shodan.BaseURL}
}

func virusTotalConfig(cfg *config.Config) providers.VirusTotalConfig {
	return providers.VirusTotalConfig{APIKey: cfg.Providers.VirusTotal.APIKey, BaseURL: cfg.Providers.VirusTotal.BaseURL}
}
