// Package game is the mutable state container around the engine. It owns the
// current snapshot, applies engine deltas, and enforces the preconditions the
// engine assumes (funds, energy, unlocks, the review checkpoint).
package game

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/entropy"
)

// Precondition errors. The HTTP layer reports them as unprocessable requests.
var (
	ErrNotEnoughMoney      = errors.New("not enough money")
	ErrNotEnoughEnergy     = errors.New("not enough energy")
	ErrEmptyName           = errors.New("project name is empty")
	ErrTooFewComponents    = errors.New("too few components")
	ErrUnknownSoftwareType = errors.New("unknown software type")
	ErrUnknownComponent    = errors.New("unknown component")
	ErrDuplicateComponent  = errors.New("duplicate component")
	ErrComponentLocked     = errors.New("component locked")
	ErrExclusiveComponent  = errors.New("component exclusive to another software type")
	ErrPillarCapacity      = errors.New("pillar capacity exceeded")
	ErrUnknownPillar       = errors.New("unknown pillar")
	ErrNoPendingReview     = errors.New("no project awaiting review")
	ErrProjectNotFound     = errors.New("project not found")
	ErrProductNotFound     = errors.New("product not found")
	ErrNotificationMissing = errors.New("notification not found")
	ErrNoSlotChoice        = errors.New("no slot bonus to choose")

	// ErrReviewPending is the engine's review checkpoint error.
	ErrReviewPending = engine.ErrReviewPending
)

// Tuning for the container-side rules.
const (
	MaxNotifications   = 10
	MaxLegacyLevel     = 5
	LegacyRatingStep   = 0.1
	SlotBonusShare     = 0.25
	slotBonusArchetype = "GIANT"
)

// Notification kinds raised by player actions. Tick notifications use the
// engine's kinds.
const (
	NotifyProjectStarted = "project_started"
	NotifyRelease        = "release"
	NotifyViral          = "viral"
	NotifyLaunchFail     = "fail"
	NotifyArchive        = "archive"
	NotifyUnlock         = "unlock"
)

var noteSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("solostack/game"))

// noteLocked builds a player notification stamped with the current month.
// Ids derive from the key so a replayed run produces the same ledger.
func (g *Game) noteLocked(kind, key, msg string) engine.Notification {
	return engine.Notification{
		ID:      uuid.NewSHA1(noteSpace, []byte(fmt.Sprintf("%s/%s", kind, key))).String(),
		Type:    kind,
		Message: msg,
		Month:   g.state.Month,
	}
}

// Game holds one run. All methods are safe for concurrent use.
type Game struct {
	mu  sync.Mutex
	eng *engine.Engine
	src entropy.Source

	state         engine.State
	archive       []engine.ArchivedProduct
	notifications []engine.Notification
	legacy        map[string]int
	bonusSlots    map[catalog.Pillar]int
	discovered    map[string]bool
	slotPending   bool
	slotAwarded   bool
	releases      int
	nextProject   int
	win           *engine.Win
}

// New starts a fresh run. src supplies every random draw for the run.
func New(eng *engine.Engine, src entropy.Source) *Game {
	g := &Game{
		eng:        eng,
		src:        src,
		legacy:     make(map[string]int),
		bonusSlots: make(map[catalog.Pillar]int),
		discovered: make(map[string]bool),
	}
	g.state = eng.NewState(src)
	slog.Info("new run", "trend", g.state.Trend.TrendID, "corporations", len(g.state.Corporations))
	return g
}

// Engine returns the engine the run evaluates against.
func (g *Game) Engine() *engine.Engine { return g.eng }

// Status is the headline view of the run.
type Status struct {
	Month           int                `json:"month"`
	Money           float64            `json:"money"`
	LifetimeRevenue float64            `json:"lifetime_revenue"`
	MonthlyIncome   float64            `json:"monthly_income"`
	Fanbase         int                `json:"fanbase"`
	MarketShare     float64            `json:"market_share"`
	Trend           engine.ActiveTrend `json:"trend"`
	TrendName       string             `json:"trend_name,omitempty"`
	EnergyUsed      int                `json:"energy_used"`
	EnergyAvailable int                `json:"energy_available"`
	LiveProducts    int                `json:"live_products"`
	ActiveProjects  int                `json:"active_projects"`
	Releases        int                `json:"releases"`
	ReviewPending   bool               `json:"review_pending"`
	SlotPending     bool               `json:"slot_pending"`
	Win             *engine.Win        `json:"win,omitempty"`
}

// Status reports the current headline numbers.
func (g *Game) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.statusLocked()
}

func (g *Game) statusLocked() Status {
	st := &g.state
	used := g.eng.EnergyUsed(st.Projects, st.Products)
	s := Status{
		Month:           st.Month,
		Money:           st.Money,
		LifetimeRevenue: st.LifetimeRevenue,
		MonthlyIncome:   st.MonthlyIncome,
		Fanbase:         st.Fanbase,
		MarketShare:     st.MarketShare,
		Trend:           st.Trend,
		EnergyUsed:      used,
		EnergyAvailable: engine.BaseEnergy - used,
		LiveProducts:    len(st.Products),
		Releases:        g.releases,
		SlotPending:     g.slotPending,
		Win:             g.win,
	}
	if t, ok := g.eng.Catalog.Trend(st.Trend.TrendID); ok {
		s.TrendName = t.Name
	}
	for i := range st.Projects {
		if st.Projects[i].Active() {
			s.ActiveProjects++
		}
		if st.Projects[i].Blocking() {
			s.ReviewPending = true
		}
	}
	return s
}

// Products returns the player's live products.
func (g *Game) Products() []engine.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.state.Products)
}

// Competitors returns the live corporation products.
func (g *Game) Competitors() []engine.Product {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.state.CompetitorProducts)
}

// Corporations returns the corporation roster.
func (g *Game) Corporations() []engine.Corporation {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.state.Corporations)
}

// Projects returns the projects still in flight.
func (g *Game) Projects() []engine.Project {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.state.Projects)
}

// Archived returns the player's product history, oldest first.
func (g *Game) Archived() []engine.ArchivedProduct {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.archive)
}

// Notifications returns the retained notifications, newest first.
func (g *Game) Notifications() []engine.Notification {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.notifications)
}

// Legacy returns the mastery level per software type.
func (g *Game) Legacy() map[string]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]int, len(g.legacy))
	for k, v := range g.legacy {
		out[k] = v
	}
	return out
}

// DiscoveredSynergies lists the synergy ids the player has triggered, sorted.
func (g *Game) DiscoveredSynergies() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, 0, len(g.discovered))
	for id := range g.discovered {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Win returns the first win reached, if any.
func (g *Game) Win() *engine.Win {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.win
}

// Dismiss drops a notification by id.
func (g *Game) Dismiss(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := slices.IndexFunc(g.notifications, func(n engine.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotificationMissing
	}
	g.notifications = slices.Delete(g.notifications, i, i+1)
	return nil
}

// notify prepends ns, keeping the newest MaxNotifications.
func (g *Game) notify(ns ...engine.Notification) {
	for _, n := range ns {
		g.notifications = slices.Insert(g.notifications, 0, n)
	}
	if len(g.notifications) > MaxNotifications {
		g.notifications = g.notifications[:MaxNotifications]
	}
}

// checkWin records the first satisfied win condition.
func (g *Game) checkWin() {
	if g.win != nil {
		return
	}
	if w := g.eng.CheckWinConditions(&g.state); w != nil {
		g.win = w
		slog.Info("win reached", "type", w.Type, "month", g.state.Month)
	}
}
