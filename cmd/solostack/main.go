// Command solostack runs the SoloStack software-tycoon simulation.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/config"
	"github.com/talgya/solostack/internal/entropy"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:          "solostack",
		Short:        "SoloStack solo-developer tycoon simulation",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := config.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			setupLogger(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", envOr("SOLOSTACK_LOG_LEVEL", "info"), "debug, info, warn or error")

	root.AddCommand(
		newSimulateCmd(),
		newServeCmd(),
		newStewardCmd(),
		newCatalogCmd(),
	)
	return root
}

// setupLogger writes text logs to a terminal and JSON logs otherwise.
func setupLogger(level slog.Level) {
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		h = slog.NewTextHandler(os.Stderr, opts)
	} else {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

// loadCatalog returns the embedded catalog when path is empty.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default(), nil
	}
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	for _, w := range cat.Warnings() {
		slog.Warn("catalog", "warning", w)
	}
	return cat, nil
}

// newSource picks random.org when a key is set, otherwise a seeded PRNG.
func newSource(seed int64, randomOrgKey string) entropy.Source {
	if c := entropy.NewClient(randomOrgKey); c.Enabled() {
		slog.Info("entropy source", "kind", "random.org")
		return c
	}
	slog.Info("entropy source", "kind", "seeded", "seed", seed)
	return entropy.NewSeeded(seed)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
