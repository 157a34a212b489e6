package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/game"
)

var (
	accent  = color.New(color.FgCyan, color.Bold)
	success = color.New(color.FgGreen, color.Bold)
	warn    = color.New(color.FgYellow, color.Bold)
	danger  = color.New(color.FgRed, color.Bold)
	neutral = color.New(color.FgHiWhite)
)

func money(v float64) string {
	return "$" + humanize.Commaf(float64(int64(v)))
}

func printMonth(w io.Writer, r game.MonthReport) {
	line := fmt.Sprintf("M%-4d %14s  %12s/mo  fans %-9s share %5.2f%%  live %d  rivals %d",
		r.Month, money(r.Money), humanize.Commaf(float64(int64(r.Income))),
		humanize.Comma(int64(r.Fanbase)), r.MarketShare*100, r.LiveProducts, r.Rivals)
	neutral.Fprintln(w, line)
	for _, n := range r.Notifications {
		switch n.Type {
		case engine.NotifyCorpRelease:
			warn.Fprintf(w, "      %s\n", n.Message)
		case engine.NotifyCorpBlockbuster:
			danger.Fprintf(w, "      %s\n", n.Message)
		default:
			accent.Fprintf(w, "      %s\n", n.Message)
		}
	}
}

func printSummary(w io.Writer, g *game.Game) {
	st := g.Status()
	fmt.Fprintln(w)
	accent.Fprintln(w, "== SoloStack run summary ==")
	fmt.Fprintf(w, "Month            %d\n", st.Month)
	fmt.Fprintf(w, "Money            %s\n", money(st.Money))
	fmt.Fprintf(w, "Lifetime revenue %s\n", money(st.LifetimeRevenue))
	fmt.Fprintf(w, "Fanbase          %s\n", humanize.Comma(int64(st.Fanbase)))
	fmt.Fprintf(w, "Market share     %.2f%%\n", st.MarketShare*100)
	fmt.Fprintf(w, "Releases         %d (%d live, %d archived)\n", st.Releases, st.LiveProducts, len(g.Archived()))

	legacy := g.Legacy()
	if len(legacy) > 0 {
		parts := make([]string, 0, len(legacy))
		for _, id := range slices.Sorted(maps.Keys(legacy)) {
			parts = append(parts, fmt.Sprintf("%s:%d", id, legacy[id]))
		}
		fmt.Fprintf(w, "Legacy           %s\n", strings.Join(parts, " "))
	}
	if syn := g.DiscoveredSynergies(); len(syn) > 0 {
		fmt.Fprintf(w, "Synergies        %s\n", strings.Join(syn, ", "))
	}

	if win := g.Win(); win != nil {
		success.Fprintf(w, "%s: %s\n", win.Title, win.Message)
	} else {
		warn.Fprintln(w, "No win condition reached.")
	}
}
