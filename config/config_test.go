package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./data/catalog.db", cfg.DBPath)
	assert.Empty(t, cfg.RedisAddr)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "default", cfg.Dataset)
	assert.True(t, cfg.SeedOnStart)
	assert.Empty(t, cfg.DatasetFile)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("LOAN_PROJECTION_PORT", "9090")
	t.Setenv("LOAN_PROJECTION_REDIS_ADDR", "localhost:6379")
	t.Setenv("LOAN_PROJECTION_CACHE_TTL", "30s")
	t.Setenv("LOAN_PROJECTION_SEED", "false")
	t.Setenv("LOAN_PROJECTION_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.SeedOnStart)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("LOAN_PROJECTION_PORT", "not-an-int")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}

func TestValidate(t *testing.T) {
	base, err := Load()
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port", func(c *Config) { c.Port = 0 }},
		{"db path", func(c *Config) { c.DBPath = "" }},
		{"ttl", func(c *Config) { c.CacheTTL = -time.Second }},
		{"rate limit", func(c *Config) { c.RateLimit = 0 }},
		{"log level", func(c *Config) { c.LogLevel = "loud" }},
		{"refresh interval", func(c *Config) {
			c.DatasetFile = "d.json"
			c.RefreshInterval = 0
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(-1))

	_, err = NewLogger("nope")
	assert.Error(t, err)
}
