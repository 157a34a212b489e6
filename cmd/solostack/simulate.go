package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/entropy"
	"github.com/talgya/solostack/internal/game"
)

func newSimulateCmd() *cobra.Command {
	var (
		months      int
		seed        int64
		catalogPath string
		quiet       bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a run headless with the autopilot and print a summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			g := game.New(engine.New(cat), entropy.NewSeeded(seed))
			ap := &game.Autopilot{Game: g}
			out := cmd.OutOrStdout()

			for i := 0; i < months && ctx.Err() == nil; {
				rep, err := ap.Step()
				if err != nil {
					return err
				}
				if rep.Review != nil {
					continue
				}
				i++
				if !quiet {
					printMonth(out, rep)
				}
				if rep.Win != nil {
					break
				}
			}
			printSummary(out, g)
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 120, "months to simulate")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog YAML (default: embedded)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "only print the summary")
	return cmd
}
