// Package config holds runtime settings for the dailyquest binary.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

// Config holds all runtime configuration.
type Config struct {
	// Store selects the progression backend.
	// Values: "sqlite", "redis", "memory"
	Store string `yaml:"store"`

	// DBPath is the sqlite file. Empty means the XDG default.
	DBPath string `yaml:"db"`

	Redis   RedisConfig   `yaml:"redis"`
	Periods PeriodsConfig `yaml:"periods"`
	Refresh RefreshConfig `yaml:"refresh"`

	// CommitAttempts bounds optimistic commit retries. Default: 5.
	CommitAttempts int `yaml:"commit_attempts"`

	// HTTPAddr is the listen address for `serve`. Default: ":8080".
	HTTPAddr string `yaml:"http_addr"`

	// LogMode is "dev" or "prod".
	LogMode string `yaml:"log_mode"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"` // Default: "dailyquest:progression:"
}

// PeriodsConfig holds countdown lengths.
type PeriodsConfig struct {
	Active   time.Duration `yaml:"active"`
	Cooldown time.Duration `yaml:"cooldown"`
}

// RefreshConfig drives the background refresher.
type RefreshConfig struct {
	Interval    time.Duration `yaml:"interval"`
	Concurrency int           `yaml:"concurrency"`
	// Throttle skips users whose record was written more recently than this.
	Throttle time.Duration `yaml:"throttle"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Store: StoreSQLite,
		Redis: RedisConfig{
			Addr:   "localhost:6379",
			Prefix: "dailyquest:progression:",
		},
		Periods: PeriodsConfig{
			Active:   24 * time.Hour,
			Cooldown: 24 * time.Hour,
		},
		Refresh: RefreshConfig{
			Interval:    time.Minute,
			Concurrency: 8,
			Throttle:    30 * time.Second,
		},
		CommitAttempts: 5,
		HTTPAddr:       ":8080",
		LogMode:        "dev",
	}
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv builds a Config from environment variables, falling back to
// defaults for unset values.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if p := os.Getenv("DAILYQUEST_CONFIG"); p != "" {
		var err error
		if cfg, err = Load(p); err != nil {
			return cfg, err
		}
	}
	return cfg, cfg.ApplyEnv()
}

// ApplyEnv overrides c with any DAILYQUEST_* variables that are set.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("DAILYQUEST_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("DAILYQUEST_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("DAILYQUEST_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("DAILYQUEST_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("DAILYQUEST_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("DAILYQUEST_LOG_MODE"); v != "" {
		c.LogMode = v
	}

	ints := []struct {
		env string
		dst *int
	}{
		{"DAILYQUEST_REDIS_DB", &c.Redis.DB},
		{"DAILYQUEST_COMMIT_ATTEMPTS", &c.CommitAttempts},
		{"DAILYQUEST_REFRESH_CONCURRENCY", &c.Refresh.Concurrency},
	}
	for _, i := range ints {
		v := os.Getenv(i.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", i.env, err)
		}
		*i.dst = n
	}

	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"DAILYQUEST_ACTIVE_PERIOD", &c.Periods.Active},
		{"DAILYQUEST_COOLDOWN_PERIOD", &c.Periods.Cooldown},
		{"DAILYQUEST_REFRESH_INTERVAL", &c.Refresh.Interval},
		{"DAILYQUEST_REFRESH_THROTTLE", &c.Refresh.Throttle},
	}
	for _, d := range durations {
		v := os.Getenv(d.env)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", d.env, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks that the selected backend is usable and all durations are
// positive.
func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMemory:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("DAILYQUEST_REDIS_ADDR is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown store: %q", c.Store)
	}

	if c.Periods.Active <= 0 {
		return fmt.Errorf("active period must be positive, got %s", c.Periods.Active)
	}
	if c.Periods.Cooldown <= 0 {
		return fmt.Errorf("cooldown period must be positive, got %s", c.Periods.Cooldown)
	}
	if c.CommitAttempts < 1 {
		return fmt.Errorf("commit attempts must be at least 1, got %d", c.CommitAttempts)
	}
	if c.Refresh.Interval <= 0 {
		return fmt.Errorf("refresh interval must be positive, got %s", c.Refresh.Interval)
	}
	if c.Refresh.Concurrency < 1 {
		return fmt.Errorf("refresh concurrency must be at least 1, got %d", c.Refresh.Concurrency)
	}
	return nil
}
