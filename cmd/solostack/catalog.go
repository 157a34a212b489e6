package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talgya/solostack/internal/catalog"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and generate content catalogs",
	}
	cmd.AddCommand(newCatalogValidateCmd(), newCatalogSynthCmd())
	return cmd
}

func newCatalogValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Parse a catalog and report problems (embedded catalog when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cat, err := loadCatalog(path)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, w := range cat.Warnings() {
				warn.Fprintf(out, "warning: %s\n", w)
			}
			success.Fprintf(out, "ok: %d software types, %d components, %d synergies, %d trends, %d corporations\n",
				len(cat.SoftwareTypes), len(cat.Components), len(cat.Synergies), len(cat.Trends), len(cat.Corporations))
			return nil
		},
	}
}

func newCatalogSynthCmd() *cobra.Command {
	var (
		opts catalog.SynthOptions
		out  string
	)
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate a procedural balance-test catalog as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Synthesize(catalog.Default(), opts)
			if err != nil {
				return err
			}
			raw, err := cat.Marshal()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(raw)
				return err
			}
			if err := os.WriteFile(out, raw, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d components)\n", out, len(cat.Components))
			return nil
		},
	}
	cmd.Flags().Int64Var(&opts.Seed, "seed", 1, "noise seed")
	cmd.Flags().IntVar(&opts.PerPillar, "per-pillar", 12, "components per pillar")
	cmd.Flags().IntVar(&opts.Synergies, "synergies", 8, "synergy pairs to generate")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
