package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the site every article identifier is resolved against.
const DefaultBaseURL = "http://www.information.dk"

// Config holds the application configuration loaded from flags, files and environment variables.
type Config struct {
	AppName            string        `mapstructure:"app_name"`
	Env                string        `mapstructure:"app_env"`
	LogLevel           string        `mapstructure:"log_level"`
	BaseURL            string        `mapstructure:"base_url"`
	UserAgent          string        `mapstructure:"user_agent"`
	HTTPTimeoutSeconds int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout        time.Duration `mapstructure:"-"`
	RequestDelayMs     int64         `mapstructure:"request_delay_ms"`
	RequestDelay       time.Duration `mapstructure:"-"`
	PublishersFile     string        `mapstructure:"publishers_file"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// flagKeys maps CLI flag names onto config keys.
var flagKeys = map[string]string{
	"base-url":        "base_url",
	"log-level":       "log_level",
	"timeout":         "http_timeout_seconds",
	"user-agent":      "user_agent",
	"publishers-file": "publishers_file",
	"storage":         "storage_type",
}

// Load reads configuration from environment variables, configs/.env and,
// when flags is non-nil, any of the known command-line flags that were set.
func Load(flags *pflag.FlagSet) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()

	v.SetDefault("app_name", "infodk-scraper")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "warn")
	v.SetDefault("base_url", DefaultBaseURL)
	v.SetDefault("user_agent", "")
	v.SetDefault("http_timeout_seconds", 15)
	v.SetDefault("request_delay_ms", 500)
	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("storage_type", "bbolt")
	v.SetDefault("bbolt_path", "./data/published.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))

	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if err := validateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.RequestDelayMs < 0 {
		return nil, fmt.Errorf("invalid request_delay_ms (must not be negative)")
	}
	cfg.RequestDelay = time.Duration(cfg.RequestDelayMs) * time.Millisecond

	if cfg.StorageTTLSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return nil, fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return &cfg, nil
}

func validateBaseURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("base_url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url must be an http(s) address, got %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q has no host", raw)
	}
	return nil
}
