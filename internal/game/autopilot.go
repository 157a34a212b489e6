package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
)

// Autopilot plays a run headlessly: it keeps one project in development,
// publishes every review and retires the weakest product when energy runs
// out. Its choices are deterministic; all randomness comes from the run.
type Autopilot struct {
	Game *Game
	// SlotPillar receives any bonus slot. Defaults to Development.
	SlotPillar catalog.Pillar
}

// Step performs the autopilot's decisions and advances the run once.
func (a *Autopilot) Step() (MonthReport, error) {
	g := a.Game

	if p, err := g.PendingReview(); err == nil {
		if _, err := g.Publish(p.ID); err != nil {
			return MonthReport{}, fmt.Errorf("publish %s: %w", p.ID, err)
		}
	}
	if g.SlotPending() {
		pillar := a.SlotPillar
		if pillar == "" {
			pillar = catalog.PillarDevelopment
		}
		if err := g.ChooseSlotBonus(pillar); err != nil {
			return MonthReport{}, err
		}
	}
	if g.Status().ActiveProjects == 0 {
		if err := a.startProject(); err != nil {
			slog.Debug("autopilot idle", "error", err)
		}
	}
	return g.AdvanceTick()
}

// Run steps until the run has advanced the given number of months or ctx is
// done. Reports are returned for every advanced month.
func (a *Autopilot) Run(ctx context.Context, months int) ([]MonthReport, error) {
	target := a.Game.Status().Month + months
	var reports []MonthReport
	for a.Game.Status().Month < target {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		rep, err := a.Step()
		if err != nil {
			return reports, err
		}
		if rep.Review == nil {
			reports = append(reports, rep)
		}
	}
	return reports, nil
}

// startProject tries each software type, cheapest energy first, and starts
// the first build that validates. When energy is the only obstacle the
// lowest-earning product is retired and the build retried.
func (a *Autopilot) startProject() error {
	g := a.Game
	types := slices.Clone(g.Engine().Catalog.SoftwareTypes)
	slices.SortFunc(types, func(x, y catalog.SoftwareType) int {
		if x.EnergyCost != y.EnergyCost {
			return x.EnergyCost - y.EnergyCost
		}
		if x.ID < y.ID {
			return -1
		}
		return 1
	})

	var lastErr error = ErrNotEnoughMoney
	for _, t := range types {
		req, ok := a.plan(&t)
		if !ok {
			continue
		}
		_, err := g.StartProject(req)
		if errors.Is(err, ErrNotEnoughEnergy) && a.retireWeakest() {
			_, err = g.StartProject(req)
		}
		if err == nil {
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// plan picks the best affordable unlocked components for t, filling each
// pillar up to capacity.
func (a *Autopilot) plan(t *catalog.SoftwareType) (BuildRequest, bool) {
	g := a.Game
	budget := g.Status().Money

	var pool []catalog.Component
	for _, c := range g.Components() {
		if c.Unlocked && c.AllowedFor(t.ID) {
			pool = append(pool, c.Component)
		}
	}
	slices.SortStableFunc(pool, func(x, y catalog.Component) int {
		vx, vy := componentValue(&x), componentValue(&y)
		switch {
		case vx > vy:
			return -1
		case vx < vy:
			return 1
		}
		return 0
	})

	used := make(map[catalog.Pillar]int)
	var ids []string
	spent := 0.0
	for i := range pool {
		c := &pool[i]
		if used[c.Pillar]+c.Slots() > g.Capacity(c.Pillar) || spent+c.Cost > budget {
			continue
		}
		used[c.Pillar] += c.Slots()
		spent += c.Cost
		ids = append(ids, c.ID)
	}
	if len(ids) < t.MinComponents() {
		return BuildRequest{}, false
	}
	return BuildRequest{
		Name:           fmt.Sprintf("%s %d", t.Name, g.Status().Releases+1),
		SoftwareTypeID: t.ID,
		ComponentIDs:   ids,
	}, true
}

func componentValue(c *catalog.Component) float64 {
	return c.Quality + c.Innovation + c.MarketingPower + c.Retention*0.5 - c.Risk*10
}

// retireWeakest archives the player's lowest-earning product.
func (a *Autopilot) retireWeakest() bool {
	products := a.Game.Products()
	if len(products) == 0 {
		return false
	}
	weakest := slices.MinFunc(products, func(x, y engine.Product) int {
		switch {
		case x.CurrentRevenue < y.CurrentRevenue:
			return -1
		case x.CurrentRevenue > y.CurrentRevenue:
			return 1
		}
		return 0
	})
	_, err := a.Game.Archive(weakest.ID)
	return err == nil
}
