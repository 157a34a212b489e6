package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/solostack/internal/api"
	"github.com/talgya/solostack/internal/config"
	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/game"
	"github.com/talgya/solostack/internal/persistence"
)

func newServeCmd() *cobra.Command {
	var fresh bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a live game on a real-time clock behind the HTTP API",
		Long: "serve reads its settings from SOLOSTACK_* environment variables, " +
			"resumes the latest snapshot in SOLOSTACK_DB_PATH and advances one month per SOLOSTACK_TICK_EVERY.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFromEnv()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, fresh)
		},
	}
	cmd.Flags().BoolVar(&fresh, "fresh", false, "ignore any saved snapshot and start a new run")
	return cmd
}

func serve(parent context.Context, cfg config.Config, fresh bool) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	eng := engine.New(cat)

	// ── Database ──────────────────────────────────────────────────────
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Load or start a run ───────────────────────────────────────────
	snap, ok, err := db.LatestSnapshot()
	if err != nil {
		return err
	}
	resume := ok && !fresh

	// A resumed run keeps the seed it was started with unless one is set.
	seed := cfg.Seed
	if resume && seed == 0 {
		seed = storedSeed(db)
	}
	if seed == 0 {
		seed = cfg.SeedOrNow()
	}
	src := newSource(seed, cfg.RandomOrgKey)

	var g *game.Game
	if resume {
		g = game.Restore(eng, src, snap)
		slog.Info("run restored", "month", snap.State.Month, "money", snap.State.Money, "seed", seed)
	} else {
		g = game.New(eng, src)
		if err := db.SaveMeta("seed", strconv.FormatInt(seed, 10)); err != nil {
			slog.Error("seed save failed", "error", err)
		}
		slog.Info("new run started", "seed", seed)
	}

	// ── Clock ─────────────────────────────────────────────────────────
	clock := game.NewClock(g, cfg.TickEvery)
	clock.OnMonth = func(rep game.MonthReport) {
		if err := db.RecordMonth(rep); err != nil {
			slog.Error("month record failed", "month", rep.Month, "error", err)
		}
		if rep.Month%cfg.SnapshotEvery == 0 {
			if err := db.SaveSnapshot(g.Snapshot()); err != nil {
				slog.Error("snapshot failed", "month", rep.Month, "error", err)
			}
		}
	}

	if cfg.AdminKey == "" {
		slog.Warn("SOLOSTACK_ADMIN_KEY not set, control endpoints will be disabled")
	}
	srv := &api.Server{Game: g, Clock: clock, DB: db, AdminKey: cfg.AdminKey}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		clock.Run(ctx)
	}()

	err = srv.ListenAndServe(ctx, cfg.Addr)
	stop()
	wg.Wait()

	slog.Info("final save...")
	if serr := db.SaveSnapshot(g.Snapshot()); serr != nil {
		slog.Error("final save failed", "error", serr)
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func storedSeed(db *persistence.DB) int64 {
	v, err := db.GetMeta("seed")
	if err != nil {
		return 0
	}
	seed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("stored seed unreadable", "value", v)
		return 0
	}
	return seed
}
