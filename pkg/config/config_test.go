package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LogJSON)
	assert.Equal(t, "/var/lib/fleetctl", cfg.DataDir)
	assert.Equal(t, "168h", cfg.RetentionMaxAge)
	assert.Equal(t, 3, cfg.RetentionMinKeep)
	assert.Equal(t, 16, cfg.MaxConcurrentSSH)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoadReadsOverridesFromEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RETENTION_MIN_KEEP", "7")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 7, cfg.RetentionMinKeep)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
}
</content>
