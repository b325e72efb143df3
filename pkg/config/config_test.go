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

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "https://publicapi.txdpsscheduler.com/api", cfg.Scheduler.BaseURL)
	assert.Equal(t, "https://public.txdpsscheduler.com", cfg.Scheduler.Origin)
	assert.Equal(t, 71, cfg.Scheduler.ServiceTypeID)
	assert.Equal(t, 30*time.Second, cfg.Scheduler.Timeout)
	assert.Equal(t, "", cfg.Redis.Host)
	assert.Equal(t, "zippopotam", cfg.Geo.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Poll.Interval)
	assert.Equal(t, 10, cfg.Poll.MaxConcurrentFetches)
	assert.Equal(t, "locations.csv", cfg.Snapshot.Path)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("SCHEDULER_SERVICE_TYPE_ID", "81")
	t.Setenv("POLL_INTERVAL", "90s")
	t.Setenv("REDIS_HOST", "cache.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 81, cfg.Scheduler.ServiceTypeID)
	assert.Equal(t, 90*time.Second, cfg.Poll.Interval)
	assert.Equal(t, "cache.internal:6380", cfg.Redis.RedisAddr())
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("SCHEDULER_SERVICE_TYPE_ID", "not-a-number")
	t.Setenv("POLL_INTERVAL", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 71, cfg.Scheduler.ServiceTypeID)
	assert.Equal(t, 5*time.Minute, cfg.Poll.Interval)
}
