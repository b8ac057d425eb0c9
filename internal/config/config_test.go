package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DAILYQUEST_CONFIG", "DAILYQUEST_STORE", "DAILYQUEST_DB",
		"DAILYQUEST_REDIS_ADDR", "DAILYQUEST_REDIS_PASSWORD", "DAILYQUEST_REDIS_DB",
		"DAILYQUEST_ACTIVE_PERIOD", "DAILYQUEST_COOLDOWN_PERIOD", "DAILYQUEST_COMMIT_ATTEMPTS",
		"DAILYQUEST_HTTP_ADDR", "DAILYQUEST_REFRESH_INTERVAL", "DAILYQUEST_REFRESH_THROTTLE",
		"DAILYQUEST_REFRESH_CONCURRENCY", "DAILYQUEST_LOG_MODE",
	} {
		t.Setenv(k, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.Periods.Active)
	assert.Equal(t, 5, cfg.CommitAttempts)
}

func TestFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("DAILYQUEST_STORE", "redis")
	t.Setenv("DAILYQUEST_REDIS_ADDR", "cache:6380")
	t.Setenv("DAILYQUEST_REDIS_DB", "2")
	t.Setenv("DAILYQUEST_ACTIVE_PERIOD", "90m")
	t.Setenv("DAILYQUEST_COMMIT_ATTEMPTS", "9")
	t.Setenv("DAILYQUEST_LOG_MODE", "prod")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Minute, cfg.Periods.Active)
	assert.Equal(t, 24*time.Hour, cfg.Periods.Cooldown)
	assert.Equal(t, 9, cfg.CommitAttempts)
	assert.Equal(t, "prod", cfg.LogMode)
	assert.NoError(t, cfg.Validate())
}

func TestFromEnv_BadValues(t *testing.T) {
	tests := []struct {
		env, value string
	}{
		{"DAILYQUEST_REDIS_DB", "one"},
		{"DAILYQUEST_COOLDOWN_PERIOD", "a day"},
		{"DAILYQUEST_REFRESH_INTERVAL", "5"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.env, tt.value)
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.env)
		})
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "dailyquest.yaml")
	doc := "store: memory\nperiods:\n  active: 1h\nrefresh:\n  concurrency: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	t.Setenv("DAILYQUEST_CONFIG", path)
	t.Setenv("DAILYQUEST_HTTP_ADDR", "127.0.0.1:9000")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, time.Hour, cfg.Periods.Active)
	assert.Equal(t, 24*time.Hour, cfg.Periods.Cooldown)
	assert.Equal(t, 2, cfg.Refresh.Concurrency)
	assert.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown store", func(c *Config) { c.Store = "postgres" }},
		{"redis without addr", func(c *Config) { c.Store = StoreRedis; c.Redis.Addr = "" }},
		{"zero active", func(c *Config) { c.Periods.Active = 0 }},
		{"negative cooldown", func(c *Config) { c.Periods.Cooldown = -time.Hour }},
		{"no attempts", func(c *Config) { c.CommitAttempts = 0 }},
		{"zero interval", func(c *Config) { c.Refresh.Interval = 0 }},
		{"zero concurrency", func(c *Config) { c.Refresh.Concurrency = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
