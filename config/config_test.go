package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ReadsYAML(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "marketing_tracking", cfg.Postgres.Database)
	assert.Equal(t, int32(20), cfg.Postgres.MaxConns)
	assert.Equal(t, "Beacon", cfg.Beacon.CookieName)
	assert.Equal(t, ".adxtravel.com", cfg.Beacon.CookieDomain)
	assert.Equal(t, 11, cfg.Beacon.CookieMaxAgeYears)
	assert.Equal(t, 24*time.Hour, cfg.Beacon.IdentityCacheTTL)
	assert.Equal(t, QueueDriverJetStream, cfg.Queue.Driver)
	assert.Equal(t, 5*time.Second, cfg.Queue.FetchWait)
	assert.Len(t, cfg.Server.AllowedOrigins, 2)
}

func TestLoad_DefaultsFillGaps(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Beacon.CookieSecure)
	assert.Equal(t, "BeaconSession", cfg.Beacon.SessionCookieName)
	assert.Equal(t, 1024, cfg.Queue.Buffer)
	assert.Equal(t, 2*time.Second, cfg.Queue.PublishTimeout)
	assert.Equal(t, "/metrics", cfg.Prometheus.Path)
}

func TestLoad_LegacyEnvOverrides(t *testing.T) {
	t.Setenv("PG_HOST", "db.internal")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("QUEUE_DRIVER", "local")
	t.Setenv("BEACON_COOKIE_DOMAIN", ".example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 6543, cfg.Postgres.Port)
	assert.Equal(t, QueueDriverLocal, cfg.Queue.Driver)
	assert.Equal(t, ".example.com", cfg.Beacon.CookieDomain)
}

func TestLoad_RejectsUnknownQueueDriver(t *testing.T) {
	t.Setenv("QUEUE_DRIVER", "hangfire")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hangfire")
}
