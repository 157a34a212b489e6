package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"PORT", "SOLOSTACK_ADDR", "SOLOSTACK_DB_PATH", "SOLOSTACK_CATALOG", "SOLOSTACK_SEED",
		"SOLOSTACK_TICK_EVERY", "SOLOSTACK_ADMIN_KEY", "SOLOSTACK_LOG_LEVEL", "RANDOM_ORG_API_KEY",
		"SOLOSTACK_SNAPSHOT_EVERY",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "data/solostack.db", cfg.DBPath)
	assert.Empty(t, cfg.CatalogPath)
	assert.Zero(t, cfg.Seed)
	assert.Equal(t, 8*time.Second, cfg.TickEvery)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 12, cfg.SnapshotEvery)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("SOLOSTACK_SEED", "42")
	t.Setenv("SOLOSTACK_TICK_EVERY", "250ms")
	t.Setenv("SOLOSTACK_LOG_LEVEL", "debug")
	t.Setenv("SOLOSTACK_ADMIN_KEY", " secret ")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, int64(42), cfg.SeedOrNow())
	assert.Equal(t, 250*time.Millisecond, cfg.TickEvery)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "secret", cfg.AdminKey)
}

func TestLoadRejectsBadValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("SOLOSTACK_LOG_LEVEL", "loud")
	_, err := LoadFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SOLOSTACK_TICK_EVERY", "-1s")
	_, err = LoadFromEnv()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SOLOSTACK_SEED", "not-a-number")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Zero(t, cfg.Seed)
	assert.NotZero(t, cfg.SeedOrNow())
}
