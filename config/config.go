// Package config loads the redirector service configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v2"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
)

// Config is the top-level service configuration.
type Config struct {
	Addr          string             `yaml:"addr"`
	Log           LogConfig          `yaml:"log"`
	Storage       StorageConfig      `yaml:"storage"`
	History       HistoryConfig      `yaml:"history"`
	RateLimit     RateLimitConfig    `yaml:"rate_limit"`
	Notifications NotificationConfig `yaml:"notifications"`
}

// LogConfig controls application logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json or text
}

// StorageConfig selects and configures the persistence backend.
type StorageConfig struct {
	Backend  string `yaml:"backend"` // memory, bolt or redis
	Path     string `yaml:"path"`    // bolt database file
	RedisURL string `yaml:"redis_url"`
}

// HistoryConfig bounds the redirect log.
type HistoryConfig struct {
	Cap int `yaml:"cap"`
}

// RateLimitConfig bounds API requests per client IP.
type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// Window returns the rate-limit window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	if r.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(r.WindowSeconds) * time.Second
}

// NotificationConfig throttles redirect notifications.
type NotificationConfig struct {
	PerMinute float64 `yaml:"per_minute"`
	Burst     int     `yaml:"burst"`
}

// New returns a Config with sensible defaults.
func New() *Config {
	return &Config{
		Addr: ":8080",
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Backend: BackendBolt,
			Path:    "redirector.db",
		},
		History: HistoryConfig{
			Cap: 1000,
		},
		RateLimit: RateLimitConfig{
			Requests:      300,
			WindowSeconds: 60,
		},
		Notifications: NotificationConfig{
			PerMinute: 10,
			Burst:     3,
		},
	}
}

// Load reads configuration from a YAML file, applying defaults for
// unset fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg := New()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors and conflicts.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr cannot be empty")
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error (got %q)", c.Log.Level)
	}
	switch c.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log.format must be json or text (got %q)", c.Log.Format)
	}

	switch c.Storage.Backend {
	case BackendMemory:
	case BackendBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path is required for the bolt backend")
		}
	case BackendRedis:
		if c.Storage.RedisURL == "" {
			return fmt.Errorf("storage.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("storage.backend must be one of memory, bolt, redis (got %q)", c.Storage.Backend)
	}

	if c.History.Cap < 0 {
		return fmt.Errorf("history.cap must be >= 0")
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("rate_limit.requests must be >= 0")
	}
	if c.RateLimit.WindowSeconds < 0 {
		return fmt.Errorf("rate_limit.window_seconds must be >= 0")
	}
	if c.Notifications.PerMinute < 0 {
		return fmt.Errorf("notifications.per_minute must be >= 0")
	}

	return nil
}
