// Package config loads the dashboard client configuration from a YAML file,
// an optional .env file and environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	baseURLEnvVar = "DASHBOARD_API_BASE_URL"

	DefaultBaseURL = "http://127.0.0.1:8000/api"
	appDirName     = "dashboard-tui"
)

type Config struct {
	API       APIConfig       `yaml:"api"`
	Session   SessionConfig   `yaml:"session"`
	Log       LogConfig       `yaml:"log"`
	Toasts    ToastConfig     `yaml:"toasts"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Currency  string          `yaml:"currency"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type SessionConfig struct {
	File string `yaml:"file"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type ToastConfig struct {
	DefaultExpiry time.Duration `yaml:"default_expiry"`
}

type AnalyticsConfig struct {
	TopProductsLimit int `yaml:"top_products_limit"`
}

// Defaults returns the configuration used when no file is present.
func Defaults() *Config {
	dir := stateDir()
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			File: filepath.Join(configDir(), "session.yaml"),
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "dashboard-tui.log"),
			Level: "info",
		},
		Toasts: ToastConfig{
			DefaultExpiry: 3 * time.Second,
		},
		Analytics: AnalyticsConfig{
			TopProductsLimit: 5,
		},
		Currency: "₹",
	}
}

// DefaultPath is where Load looks when no -config flag is given.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
// Environment variables (optionally from ./.env) override file values.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, err
		}
	}

	// A missing .env is the normal case.
	_ = godotenv.Load()
	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(baseURLEnvVar); v != "" {
		c.API.BaseURL = v
	}
}

// normalize replaces an unset top-products limit with the default.
func (c *Config) normalize() {
	if c.Analytics.TopProductsLimit <= 0 {
		c.Analytics.TopProductsLimit = Defaults().Analytics.TopProductsLimit
	}
}

// Validate checks the fields the client cannot run without.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api.base_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("api.base_url: missing host")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Toasts.DefaultExpiry < 0 {
		return fmt.Errorf("toasts.default_expiry must not be negative")
	}
	if c.Analytics.TopProductsLimit <= 0 {
		return fmt.Errorf("analytics.top_products_limit must be positive")
	}
	if c.Session.File == "" {
		return fmt.Errorf("session.file must be set")
	}
	return nil
}

func configDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}
	return "." + appDirName
}

func stateDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, appDirName)
	}
	return "." + appDirName
}
