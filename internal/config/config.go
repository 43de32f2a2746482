package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/raysh454/phishscan/internal/logging"
)

// EnvPrefix prefixes every environment override, e.g. PHISHSCAN_SERVER_ADDR.
const EnvPrefix = "PHISHSCAN"

// Config represents the application configuration. It is built once at
// startup and treated as read-only afterwards.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Timeouts  TimeoutsConfig  `mapstructure:"timeouts" yaml:"timeouts"`
	Fetch     FetchConfig     `mapstructure:"fetch" yaml:"fetch"`
	Guard     GuardConfig     `mapstructure:"guard" yaml:"guard"`
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	History   HistoryConfig   `mapstructure:"history" yaml:"history"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
	// RateLimit is the number of analyses one client IP may request per minute.
	RateLimit      int      `mapstructure:"rate_limit" yaml:"rate_limit"`
	AllowedOrigins []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownGrace  string   `mapstructure:"shutdown_grace" yaml:"shutdown_grace"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// TimeoutsConfig holds Go duration strings ("5s", "750ms").
type TimeoutsConfig struct {
	DNS      string `mapstructure:"dns" yaml:"dns"`
	Fetch    string `mapstructure:"fetch" yaml:"fetch"`
	Provider string `mapstructure:"provider" yaml:"provider"`
	Request  string `mapstructure:"request" yaml:"request"`
}

type FetchConfig struct {
	UserAgent    string `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes int64  `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	MaxRedirects int    `mapstructure:"max_redirects" yaml:"max_redirects"`
}

type GuardConfig struct {
	// EnforceOnDial re-checks the remote address of every outbound connection.
	EnforceOnDial bool `mapstructure:"enforce_on_dial" yaml:"enforce_on_dial"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

type ProvidersConfig struct {
	Shodan     ProviderConfig `mapstructure:"shodan" yaml:"shodan"`
	VirusTotal ProviderConfig `mapstructure:"virustotal" yaml:"virustotal"`
	// MaxBodyBytes caps provider responses, which can be far larger than icons.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Load reads configuration from a YAML file and the environment.
// If path is empty, searches for phishscan.yaml in ., ./configs and
// ~/.config/phishscan/; finding none there is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The unprefixed names are what operators of the hosted service already export.
	_ = v.BindEnv("providers.shodan.api_key", EnvPrefix+"_PROVIDERS_SHODAN_API_KEY", "SHODAN_API_KEY")
	_ = v.BindEnv("providers.virustotal.api_key", EnvPrefix+"_PROVIDERS_VIRUSTOTAL_API_KEY", "VT_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("phishscan")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if homeDir, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(homeDir, ".config", "phishscan"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.shutdown_grace", d.Server.ShutdownGrace)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("timeouts.dns", d.Timeouts.DNS)
	v.SetDefault("timeouts.fetch", d.Timeouts.Fetch)
	v.SetDefault("timeouts.provider", d.Timeouts.Provider)
	v.SetDefault("timeouts.request", d.Timeouts.Request)
	v.SetDefault("fetch.user_agent", d.Fetch.UserAgent)
	v.SetDefault("fetch.max_body_bytes", d.Fetch.MaxBodyBytes)
	v.SetDefault("fetch.max_redirects", d.Fetch.MaxRedirects)
	v.SetDefault("guard.enforce_on_dial", d.Guard.EnforceOnDial)
	v.SetDefault("providers.shodan.api_key", d.Providers.Shodan.APIKey)
	v.SetDefault("providers.shodan.base_url", d.Providers.Shodan.BaseURL)
	v.SetDefault("providers.virustotal.api_key", d.Providers.VirusTotal.APIKey)
	v.SetDefault("providers.virustotal.base_url", d.Providers.VirusTotal.BaseURL)
	v.SetDefault("providers.max_body_bytes", d.Providers.MaxBodyBytes)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr cannot be empty"))
	}
	if c.Server.RateLimit <= 0 {
		errs = append(errs, errors.New("server.rate_limit must be positive"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Log.Level)) {
	case "debug", "info", "warn", "warning", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}

	for name, raw := range map[string]string{
		"server.shutdown_grace": c.Server.ShutdownGrace,
		"timeouts.dns":          c.Timeouts.DNS,
		"timeouts.fetch":        c.Timeouts.Fetch,
		"timeouts.provider":     c.Timeouts.Provider,
		"timeouts.request":      c.Timeouts.Request,
	} {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		} else if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}

	if c.Fetch.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("fetch.max_body_bytes must be positive"))
	}
	if c.Fetch.MaxRedirects <= 0 {
		errs = append(errs, errors.New("fetch.max_redirects must be positive"))
	}
	if c.Providers.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("providers.max_body_bytes must be positive"))
	}
	for name, raw := range map[string]string{
		"providers.shodan.base_url":     c.Providers.Shodan.BaseURL,
		"providers.virustotal.base_url": c.Providers.VirusTotal.BaseURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute http(s) URL", name))
		}
	}
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		errs = append(errs, errors.New("history.path cannot be empty when history is enabled"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Duration parses a validated duration string, falling back to def.
func Duration(raw string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// LogLevel returns the configured minimum level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}
