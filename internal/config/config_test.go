package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "http://localhost:4000", cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, "sqlite", cfg.StorageType)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.example.com")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("STORAGE_TYPE", "memory")

	cfg := Load()
	require.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "memory", cfg.StorageType)
}
