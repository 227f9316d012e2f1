package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tracking/pkg/config"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Tracking.Store)
	assert.Equal(t, 2*time.Second, cfg.Tracking.LockTimeout)
	assert.Equal(t, 50, cfg.Tracking.HistoryPageSize)
	assert.False(t, cfg.Feed.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, time.Duration(0), cfg.Reconcile.Interval)
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRACKING_STORE", "MEMORY")
	t.Setenv("TRACKING_LOCK_TIMEOUT", "1500ms")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FEED_POLL_INTERVAL", "250")
	t.Setenv("DB_PORT", "6543")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Tracking.Store)
	assert.Equal(t, 1500*time.Millisecond, cfg.Tracking.LockTimeout)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Feed.PollInterval)
	assert.Equal(t, 6543, cfg.DB.Port)
}

func TestLoad_StoreDesconocido(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("TRACKING_STORE", "redis")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_ConciliacionSinURL(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RECONCILE_INTERVAL", "1m")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_FeedAsentamientoMenorQueBloqueo(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FEED_ENABLED", "true")
	t.Setenv("TRACKING_LOCK_TIMEOUT", "3s")
	t.Setenv("FEED_SETTLE", "2s")

	_, err := config.Load()
	assert.ErrorContains(t, err, "FEED_SETTLE")

	t.Setenv("FEED_SETTLE", "10s")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Feed.Settle)
}

func TestDBConfig_DSN(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "u", Password: "p@ss", DBName: "x", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p%40ss@db:5432/x?sslmode=disable", c.ConnectionString())
}
