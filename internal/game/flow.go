package game

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
)

// MonthReport summarizes one call to AdvanceTick.
type MonthReport struct {
	Month         int                      `json:"month"`
	Money         float64                  `json:"money"`
	Income        float64                  `json:"income"`
	Fanbase       int                      `json:"fanbase"`
	MarketShare   float64                  `json:"market_share"`
	TrendID       string                   `json:"trend_id"`
	LiveProducts  int                      `json:"live_products"`
	Rivals        int                      `json:"rivals"`
	Archived      []engine.ArchivedProduct `json:"archived,omitempty"`
	Notifications []engine.Notification    `json:"notifications,omitempty"`
	// Review is set when the call stopped at the review checkpoint instead of
	// advancing the month.
	Review    *engine.Review `json:"review,omitempty"`
	ProjectID string         `json:"project_id,omitempty"`
	Win       *engine.Win    `json:"win,omitempty"`
}

// AdvanceTick moves the run forward. A finished project is routed to review
// first and the month does not advance; while a review is awaiting a
// decision it returns ErrReviewPending.
func (g *Game) AdvanceTick() (MonthReport, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i := range g.state.Projects {
		p := &g.state.Projects[i]
		if p.Status == engine.AwaitingReview {
			return MonthReport{}, fmt.Errorf("%w: %s", ErrReviewPending, p.ID)
		}
	}
	for i := range g.state.Projects {
		p := &g.state.Projects[i]
		if !p.Ready() {
			continue
		}
		r, err := g.reviewLocked(p)
		if err != nil {
			return MonthReport{}, err
		}
		rep := g.reportLocked()
		rep.Review = &r
		rep.ProjectID = p.ID
		return rep, nil
	}

	d, err := g.eng.RunMonthlyTick(g.state, g.src)
	if err != nil {
		return MonthReport{}, err
	}
	g.state.Apply(d)
	g.archive = append(g.archive, d.PlayerExpired...)
	g.notify(d.Notifications...)
	g.checkWin()

	rep := g.reportLocked()
	rep.Month = d.Month
	rep.Archived = d.PlayerExpired
	rep.Notifications = d.Notifications
	for _, a := range d.PlayerExpired {
		slog.Info("product retired", "id", a.ID, "name", a.Name, "reason", a.Reason, "lifetime", a.LifetimeRevenue)
	}
	slog.Debug("month advanced", "month", d.Month, "income", d.MonthlyIncome, "share", d.MarketShare)
	return rep, nil
}

func (g *Game) reportLocked() MonthReport {
	st := &g.state
	return MonthReport{
		Month:        st.Month,
		Money:        st.Money,
		Income:       st.MonthlyIncome,
		Fanbase:      st.Fanbase,
		MarketShare:  st.MarketShare,
		TrendID:      st.Trend.TrendID,
		LiveProducts: len(st.Products),
		Rivals:       len(st.CompetitorProducts),
		Win:          g.win,
	}
}

// PendingReview returns the project currently awaiting a decision.
func (g *Game) PendingReview() (engine.Project, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, p := range g.state.Projects {
		if p.Status == engine.AwaitingReview {
			return p, nil
		}
	}
	return engine.Project{}, ErrNoPendingReview
}

func (g *Game) reviewLocked(p *engine.Project) (engine.Review, error) {
	trend, _ := g.eng.Catalog.Trend(g.state.Trend.TrendID)
	r := g.eng.GenerateReviews(p.ComponentIDs, p.SoftwareTypeID, g.state.Player(), trend, g.src)
	if err := p.BeginReview(r); err != nil {
		return engine.Review{}, err
	}
	slog.Info("review ready", "project", p.ID, "rating", r.FinalRating, "viral", r.ViralLabel, "fail", r.FailLabel)
	return r, nil
}

// Publish launches a reviewed project. A launch failure is a valid outcome,
// reported through ReleaseOutcome.IsFail.
func (g *Game) Publish(projectID string) (engine.ReleaseOutcome, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.projectLocked(projectID)
	if err != nil {
		return engine.ReleaseOutcome{}, err
	}
	if p.Status != engine.AwaitingReview {
		return engine.ReleaseOutcome{}, fmt.Errorf("%w: %s is %s", ErrNoPendingReview, p.ID, p.Status)
	}

	trend, _ := g.eng.Catalog.Trend(g.state.Trend.TrendID)
	out := g.eng.ResolveRelease(p, g.state.Player(), trend, g.src)

	if out.IsFail {
		if err := p.Fail(); err != nil {
			return out, err
		}
		g.dropProjectLocked(p.ID)
		g.notify(g.noteLocked(NotifyLaunchFail, projectID, out.Message))
		slog.Info("launch failure", "project", projectID, "rating", out.Rating)
		return out, nil
	}

	if err := p.Publish(); err != nil {
		return out, err
	}
	// Mastery lifts the shipped product's rating only; the launch economics
	// above were resolved on the review rating.
	if p.LegacyRatingBonus > 0 {
		out.Product.Rating = math.Round(math.Min(10, out.Product.Rating+p.LegacyRatingBonus)*10) / 10
	}
	prod := *out.Product
	g.dropProjectLocked(projectID)
	kind := NotifyRelease
	if out.IsViral {
		kind = NotifyViral
	}
	g.notify(g.noteLocked(kind, projectID, out.Message))

	st := &g.state
	st.Products = append(st.Products, prod)
	st.Fanbase += out.FanGain
	st.Money += out.LaunchRevenue
	st.LifetimeRevenue += out.LaunchRevenue
	st.MarketShare = engine.UpdateMarketShare(st.MarketShare, out.ShareGain, g.corpSharesLocked())
	g.releases++

	g.checkSlotBonusLocked(&prod)
	g.checkWin()
	slog.Info("product published",
		"id", prod.ID, "name", prod.Name, "rating", prod.Rating, "viral", out.IsViral,
		"launch", out.LaunchRevenue, "fans", out.FanGain, "share", st.MarketShare)
	return out, nil
}

// AcceptFailure scraps a reviewed project without launching it. The spent
// money is gone.
func (g *Game) AcceptFailure(projectID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	p, err := g.projectLocked(projectID)
	if err != nil {
		return err
	}
	if p.Status != engine.AwaitingReview {
		return fmt.Errorf("%w: %s is %s", ErrNoPendingReview, p.ID, p.Status)
	}
	if err := p.Fail(); err != nil {
		return err
	}
	g.dropProjectLocked(projectID)
	slog.Info("project scrapped", "project", projectID)
	return nil
}

// Archive retires a live product by hand. Retiring raises the mastery level
// of its software type.
func (g *Game) Archive(productID string) (engine.ArchivedProduct, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := slices.IndexFunc(g.state.Products, func(p engine.Product) bool { return p.ID == productID })
	if i < 0 {
		return engine.ArchivedProduct{}, fmt.Errorf("%w: %s", ErrProductNotFound, productID)
	}
	a := engine.ArchivedProduct{Product: g.state.Products[i], ArchivedAt: g.state.Month, Reason: engine.ReasonManual}
	g.state.Products = slices.Delete(g.state.Products, i, i+1)
	g.archive = append(g.archive, a)

	if lvl := g.legacy[a.SoftwareTypeID]; lvl < MaxLegacyLevel {
		g.legacy[a.SoftwareTypeID] = lvl + 1
	}
	g.notify(g.noteLocked(NotifyArchive, a.ID,
		fmt.Sprintf("%q archived. Legacy established for %s!", a.Name, a.SoftwareTypeID)))
	slog.Info("product archived", "id", a.ID, "name", a.Name, "legacy", g.legacy[a.SoftwareTypeID])
	return a, nil
}

// SlotPending reports whether a bonus slot is waiting for a pillar choice.
func (g *Game) SlotPending() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.slotPending
}

// ChooseSlotBonus spends the pending bonus slot on pillar p.
func (g *Game) ChooseSlotBonus(p catalog.Pillar) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !p.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPillar, p)
	}
	if !g.slotPending {
		return ErrNoSlotChoice
	}
	g.bonusSlots[p]++
	g.slotPending = false
	g.notify(g.noteLocked(NotifyUnlock, "slot/"+string(p),
		fmt.Sprintf("Permanent upgrade: +1 slot for %s!", p)))
	slog.Info("slot bonus chosen", "pillar", p, "capacity", g.capacityLocked(p))
	return nil
}

// checkSlotBonusLocked awards the one-off bonus slot for reaching the share
// threshold or out-rating a giant's live product in the same category.
func (g *Game) checkSlotBonusLocked(prod *engine.Product) {
	if g.slotAwarded {
		return
	}
	earned := g.state.MarketShare >= SlotBonusShare
	if !earned {
		giants := make(map[string]bool)
		for _, c := range g.state.Corporations {
			if c.Archetype == slotBonusArchetype {
				giants[c.ID] = true
			}
		}
		for _, rival := range g.state.CompetitorProducts {
			if giants[rival.OwnerID] && rival.SoftwareTypeID == prod.SoftwareTypeID && prod.Rating > rival.Rating {
				earned = true
				break
			}
		}
	}
	if earned {
		g.slotAwarded = true
		g.slotPending = true
		g.notify(g.noteLocked(NotifyUnlock, "slot-earned",
			"LEGENDARY STATUS! Market dominance grants you a permanent +1 slot. Choose a pillar."))
		slog.Info("slot bonus earned", "product", prod.ID)
	}
}

func (g *Game) corpSharesLocked() map[string]float64 {
	shares := make(map[string]float64)
	for _, p := range g.state.CompetitorProducts {
		shares[p.OwnerID] += p.MarketShare
	}
	return shares
}

func (g *Game) projectLocked(id string) (*engine.Project, error) {
	for i := range g.state.Projects {
		if g.state.Projects[i].ID == id {
			return &g.state.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
}

func (g *Game) dropProjectLocked(id string) {
	g.state.Projects = slices.DeleteFunc(g.state.Projects, func(p engine.Project) bool { return p.ID == id })
}
