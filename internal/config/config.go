package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr          string
	DBPath        string
	CatalogPath   string
	Seed          int64
	TickEvery     time.Duration
	AdminKey      string
	LogLevel      slog.Level
	RandomOrgKey  string
	SnapshotEvery int
}

func LoadFromEnv() (Config, error) {
	addr := os.Getenv("PORT")
	if addr != "" {
		if !strings.HasPrefix(addr, ":") {
			addr = ":" + addr
		}
	} else {
		addr = envDefault("SOLOSTACK_ADDR", ":8080")
	}

	cfg := Config{
		Addr:          addr,
		DBPath:        envDefault("SOLOSTACK_DB_PATH", "data/solostack.db"),
		CatalogPath:   strings.TrimSpace(os.Getenv("SOLOSTACK_CATALOG")),
		Seed:          envIntDefault("SOLOSTACK_SEED", 0),
		TickEvery:     envDurationDefault("SOLOSTACK_TICK_EVERY", 8*time.Second),
		AdminKey:      strings.TrimSpace(os.Getenv("SOLOSTACK_ADMIN_KEY")),
		RandomOrgKey:  strings.TrimSpace(os.Getenv("RANDOM_ORG_API_KEY")),
		SnapshotEvery: int(envIntDefault("SOLOSTACK_SNAPSHOT_EVERY", 12)),
	}
	level, err := ParseLevel(envDefault("SOLOSTACK_LOG_LEVEL", "info"))
	if err != nil {
		return cfg, err
	}
	cfg.LogLevel = level

	if cfg.TickEvery <= 0 {
		return cfg, fmt.Errorf("SOLOSTACK_TICK_EVERY must be positive, got %s", cfg.TickEvery)
	}
	if cfg.SnapshotEvery <= 0 {
		return cfg, fmt.Errorf("SOLOSTACK_SNAPSHOT_EVERY must be positive, got %d", cfg.SnapshotEvery)
	}
	return cfg, nil
}

// ParseLevel maps debug/info/warn/error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// SeedOrNow returns the configured seed, or a clock-derived one when unset.
func (c Config) SeedOrNow() int64 {
	if c.Seed != 0 {
		return c.Seed
	}
	return time.Now().UnixNano()
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDurationDefault(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envIntDefault(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
