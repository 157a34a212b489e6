package main

import (
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/steward"
)

func newStewardCmd() *cobra.Command {
	var (
		apiURL   string
		interval time.Duration
		pillar   string
		pol      = steward.DefaultPolicy()
	)
	cmd := &cobra.Command{
		Use:   "steward",
		Short: "Resolve reviews and housekeeping for a served run over the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := strings.TrimSpace(os.Getenv("SOLOSTACK_ADMIN_KEY"))
			if key == "" {
				return errors.New("SOLOSTACK_ADMIN_KEY is required")
			}
			pol.SlotPillar = catalog.Pillar(pillar)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s := steward.New(strings.TrimRight(apiURL, "/"), key)
			s.Policy = pol
			slog.Info("steward starting", "api_url", apiURL, "interval", interval)
			if err := s.WaitReady(ctx); err != nil {
				return err
			}
			s.Run(ctx, interval)
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", envOr("SOLOSTACK_API_URL", "http://localhost:8080"), "server base URL")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "time between cycles")
	cmd.Flags().StringVar(&pillar, "slot-pillar", string(pol.SlotPillar), "pillar for bonus slots")
	cmd.Flags().Float64Var(&pol.MinRating, "min-rating", pol.MinRating, "scrap risky reviews rated below this")
	cmd.Flags().Float64Var(&pol.MaxFailChance, "max-fail", pol.MaxFailChance, "failure chance at which low ratings are scrapped")
	cmd.Flags().IntVar(&pol.MinEnergy, "min-energy", pol.MinEnergy, "retire the weakest product below this free energy")
	return cmd
}
