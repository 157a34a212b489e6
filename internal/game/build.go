package game

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
)

// BuildRequest is a player's component selection for a new project.
type BuildRequest struct {
	Name           string   `json:"name"`
	SoftwareTypeID string   `json:"software_type_id"`
	ComponentIDs   []string `json:"component_ids"`
}

// BuildPlan is what a validated build will cost and produce.
type BuildPlan struct {
	Stats             engine.Stats `json:"stats"`
	Cost              float64      `json:"cost"`
	Months            int          `json:"months"`
	EnergyCost        int          `json:"energy_cost"`
	LegacyRatingBonus float64      `json:"legacy_rating_bonus"`
}

// ValidateBuild checks req against every submission rule without changing
// state.
func (g *Game) ValidateBuild(req BuildRequest) (BuildPlan, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.validateLocked(req)
}

func (g *Game) validateLocked(req BuildRequest) (BuildPlan, error) {
	cat := g.eng.Catalog
	if strings.TrimSpace(req.Name) == "" {
		return BuildPlan{}, ErrEmptyName
	}
	t, ok := cat.SoftwareType(req.SoftwareTypeID)
	if !ok {
		return BuildPlan{}, fmt.Errorf("%w: %q", ErrUnknownSoftwareType, req.SoftwareTypeID)
	}
	if len(req.ComponentIDs) < t.MinComponents() {
		return BuildPlan{}, fmt.Errorf("%w: %s needs %d, got %d", ErrTooFewComponents, t.Name, t.MinComponents(), len(req.ComponentIDs))
	}

	seen := make(map[string]bool, len(req.ComponentIDs))
	used := make(map[catalog.Pillar]int)
	for _, id := range req.ComponentIDs {
		if seen[id] {
			return BuildPlan{}, fmt.Errorf("%w: %q", ErrDuplicateComponent, id)
		}
		seen[id] = true

		c, ok := cat.Component(id)
		if !ok {
			return BuildPlan{}, fmt.Errorf("%w: %q", ErrUnknownComponent, id)
		}
		if !c.AllowedFor(t.ID) {
			return BuildPlan{}, fmt.Errorf("%w: %s is for %s", ErrExclusiveComponent, c.Name, c.ExclusiveTo)
		}
		if !g.unlockedLocked(c) {
			return BuildPlan{}, fmt.Errorf("%w: %s", ErrComponentLocked, c.Name)
		}
		used[c.Pillar] += c.Slots()
	}
	for _, p := range catalog.Pillars {
		if limit := g.capacityLocked(p); used[p] > limit {
			return BuildPlan{}, fmt.Errorf("%w: %s uses %d of %d", ErrPillarCapacity, p, used[p], limit)
		}
	}

	s := g.eng.Aggregate(req.ComponentIDs)
	plan := BuildPlan{
		Stats:             s,
		Cost:              s.Cost,
		Months:            s.DevMonths(),
		EnergyCost:        t.EnergyCost,
		LegacyRatingBonus: float64(g.legacy[t.ID]) * LegacyRatingStep,
	}
	if g.state.Money < plan.Cost {
		return plan, fmt.Errorf("%w: need $%.0f, have $%.0f", ErrNotEnoughMoney, plan.Cost, g.state.Money)
	}
	if free := engine.BaseEnergy - g.eng.EnergyUsed(g.state.Projects, g.state.Products); free < plan.EnergyCost {
		return plan, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughEnergy, plan.EnergyCost, free)
	}
	return plan, nil
}

// StartProject validates req, pays for it up front and puts it into
// development.
func (g *Game) StartProject(req BuildRequest) (engine.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	plan, err := g.validateLocked(req)
	if err != nil {
		return engine.Project{}, err
	}

	g.nextProject++
	p := engine.Project{
		ID:                fmt.Sprintf("proj_%d", g.nextProject),
		Name:              strings.TrimSpace(req.Name),
		SoftwareTypeID:    req.SoftwareTypeID,
		ComponentIDs:      append([]string(nil), req.ComponentIDs...),
		TotalCost:         plan.Cost,
		MonthsLeft:        plan.Months,
		TotalMonths:       plan.Months,
		StartMonth:        g.state.Month,
		LegacyRatingBonus: plan.LegacyRatingBonus,
		Status:            engine.InDevelopment,
	}
	g.state.Money -= plan.Cost
	g.state.Projects = append(g.state.Projects, p)

	for _, syn := range plan.Stats.Synergies {
		if !g.discovered[syn.ID] {
			g.discovered[syn.ID] = true
			slog.Info("synergy discovered", "synergy", syn.ID, "project", p.ID)
		}
	}
	g.notify(g.noteLocked(NotifyProjectStarted, p.ID,
		fmt.Sprintf("%q is now in development! (%d months)", p.Name, p.TotalMonths)))
	slog.Info("project started", "id", p.ID, "type", p.SoftwareTypeID, "cost", p.TotalCost, "months", p.TotalMonths)
	return p, nil
}

// Unlocked reports whether the player may select the component right now.
func (g *Game) Unlocked(componentID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.eng.Catalog.Component(componentID)
	return ok && g.unlockedLocked(c)
}

func (g *Game) unlockedLocked(c *catalog.Component) bool {
	u := c.Unlock
	switch u.Type {
	case "", catalog.UnlockFree:
		return true
	case catalog.UnlockMoney:
		return g.state.LifetimeRevenue >= u.Amount
	case catalog.UnlockMastery:
		return g.releases >= u.Releases
	case catalog.UnlockFanbase:
		return float64(g.state.Fanbase) >= u.Amount
	case catalog.UnlockTrend:
		return g.state.Trend.TrendID == u.TrendID
	}
	return false
}

// Capacity is the slot count of pillar p including earned bonus slots.
func (g *Game) Capacity(p catalog.Pillar) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.capacityLocked(p)
}

func (g *Game) capacityLocked(p catalog.Pillar) int {
	return g.eng.Catalog.Capacity(p) + g.bonusSlots[p]
}

// ComponentView is a catalog component annotated with its lock state.
type ComponentView struct {
	catalog.Component
	Unlocked bool `json:"unlocked"`
}

// Components lists the catalog with the player's unlock state.
func (g *Game) Components() []ComponentView {
	g.mu.Lock()
	defer g.mu.Unlock()
	all := g.eng.Catalog.Components
	out := make([]ComponentView, len(all))
	for i := range all {
		out[i] = ComponentView{Component: all[i], Unlocked: g.unlockedLocked(&all[i])}
	}
	return out
}
