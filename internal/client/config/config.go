package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds runtime settings for the gophsocial CLI.
//
// RequestTimeout of zero leaves requests unbounded; RequestsPerSecond of zero
// disables client-side rate limiting.
type Config struct {
	ServerURL         string        `env:"GOPHSOCIAL_SERVER_URL"`
	DBPath            string        `env:"GOPHSOCIAL_DB_PATH"`
	RequestTimeout    time.Duration `env:"GOPHSOCIAL_REQUEST_TIMEOUT"`
	RequestsPerSecond float64       `env:"GOPHSOCIAL_RPS"`
	FeedPageSize      int           `env:"GOPHSOCIAL_FEED_PAGE_SIZE"`
	SessionCookieName string        `env:"GOPHSOCIAL_SESSION_COOKIE"`
	LogLevel          string        `env:"GOPHSOCIAL_LOG_LEVEL"`
	MetricsFile       string        `env:"GOPHSOCIAL_METRICS_FILE"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://localhost:8080"
	c.DBPath = "gophsocial.db"
	c.RequestTimeout = 0
	c.RequestsPerSecond = 0
	c.FeedPageSize = 10
	c.SessionCookieName = "token"
	c.LogLevel = "info"
	c.MetricsFile = ""
}

// Validate reports settings the client cannot run with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}
	if c.DBPath == "" {
		return errors.New("db path is empty")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request timeout must not be negative")
	}
	if c.RequestsPerSecond < 0 {
		return errors.New("requests per second must not be negative")
	}
	if c.FeedPageSize <= 0 {
		return errors.New("feed page size must be positive")
	}
	if c.SessionCookieName == "" {
		return errors.New("session cookie name is empty")
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
