package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/talgya/solostack/internal/entropy"
)

// ErrReviewPending is returned by RunMonthlyTick while a finished project
// has not been through review and resolution.
var ErrReviewPending = errors.New("project awaiting review")

// Notification kinds.
const (
	NotifyCorpRelease     = "corp_release"
	NotifyCorpBlockbuster = "corp_blockbuster"
	NotifyTrendChange     = "trend_change"
)

// Notification is a display record. The engine produces them and never
// reads them back.
type Notification struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message string `json:"message"`
	Month   int    `json:"month"`
}

// ActiveTrend is the trend in force and when it started.
type ActiveTrend struct {
	TrendID    string `json:"trend_id"`
	StartMonth int    `json:"start_month"`
	MonthsLeft int    `json:"months_left"`
}

// State is the snapshot a monthly tick reads.
type State struct {
	Money              float64       `json:"money"`
	LifetimeRevenue    float64       `json:"lifetime_revenue"`
	MonthlyIncome      float64       `json:"monthly_income"`
	Fanbase            int           `json:"fanbase"`
	MarketShare        float64       `json:"market_share"`
	Month              int           `json:"month"`
	Products           []Product     `json:"products"`
	CompetitorProducts []Product     `json:"competitor_products"`
	Projects           []Project     `json:"projects"`
	Corporations       []Corporation `json:"corporations"`
	Trend              ActiveTrend   `json:"trend"`
}

// Player returns the scoring view of the player.
func (s *State) Player() PlayerContext {
	return PlayerContext{Fanbase: s.Fanbase, MarketShare: s.MarketShare, Month: s.Month}
}

// Delta is the complete next-state produced by one tick.
type Delta struct {
	Products           []Product         `json:"products"`
	CompetitorProducts []Product         `json:"competitor_products"`
	PlayerExpired      []ArchivedProduct `json:"player_expired"`
	CorpExpired        []ArchivedProduct `json:"corp_expired"`
	Projects           []Project         `json:"projects"`
	Corporations       []Corporation     `json:"corporations"`
	MarketShare        float64           `json:"market_share"`
	Money              float64           `json:"money"`
	LifetimeRevenue    float64           `json:"lifetime_revenue"`
	MonthlyIncome      float64           `json:"monthly_income"`
	Month              int               `json:"month"`
	Trend              ActiveTrend       `json:"trend"`
	Notifications      []Notification    `json:"notifications"`
}

// Apply merges d into s wholesale.
func (s *State) Apply(d Delta) {
	s.Products = d.Products
	s.CompetitorProducts = d.CompetitorProducts
	s.Projects = d.Projects
	s.Corporations = d.Corporations
	s.MarketShare = d.MarketShare
	s.Money = d.Money
	s.LifetimeRevenue = d.LifetimeRevenue
	s.MonthlyIncome = d.MonthlyIncome
	s.Month = d.Month
	s.Trend = d.Trend
}

// NewState returns the opening snapshot: starting funds, the corporation
// roster and a first trend starting this month.
func (e *Engine) NewState(src entropy.Source) State {
	st := State{
		Money:       StartingMoney,
		Fanbase:     StartingFans,
		MarketShare: StartingMarketShare,
		Month:       1,
	}
	st.Trend = e.nextTrend("", st.Month, src)
	st.Corporations = e.InitCorporations(src)
	return st
}

// RunMonthlyTick advances st by one month and returns the next state. st is
// not modified. Step order is fixed: player decay, competitor decay,
// corporations (on the pre-erosion share), merge, share erosion, project
// countdown, trend rotation.
func (e *Engine) RunMonthlyTick(st State, src entropy.Source) (Delta, error) {
	for i := range st.Projects {
		if st.Projects[i].Blocking() {
			return Delta{}, fmt.Errorf("%w: %s", ErrReviewPending, st.Projects[i].ID)
		}
	}

	trend, _ := e.Catalog.Trend(st.Trend.TrendID)

	player := e.TickProducts(st.Products, st.Fanbase, st.MarketShare, trend, st.Month)
	rivals := e.TickProducts(st.CompetitorProducts, 0, 0, trend, st.Month)

	corps := e.TickCorporations(st.Corporations, st.MarketShare, st.Month, trend, st.Trend.StartMonth, src)

	competitors := make([]Product, 0, len(rivals.Updated)+len(corps.NewProducts))
	competitors = append(competitors, rivals.Updated...)
	competitors = append(competitors, corps.NewProducts...)

	earned := make(map[string]float64)
	for _, p := range competitors {
		earned[p.OwnerID] += p.CurrentRevenue
	}
	for i := range corps.Corps {
		corps.Corps[i].LifetimeRevenue += earned[corps.Corps[i].ID]
	}

	share := st.MarketShare
	for _, c := range corps.Corps {
		if c.RecentRelease {
			share = math.Max(MinPlayerShare, share-CorpAggression*(c.Power/10))
		}
	}

	projects := make([]Project, len(st.Projects))
	for i, p := range st.Projects {
		p.advance()
		projects[i] = p
	}

	notifications := corps.Notifications
	next := st.Trend
	next.MonthsLeft--
	if next.MonthsLeft <= 0 {
		next = e.nextTrend(st.Trend.TrendID, st.Month+1, src)
		if t, ok := e.Catalog.Trend(next.TrendID); ok {
			notifications = append(notifications, Notification{
				ID:      deriveID("notify/trend/%d", st.Month),
				Type:    NotifyTrendChange,
				Month:   st.Month,
				Message: fmt.Sprintf("Trend shift! %q is now dominant.", t.Name),
			})
			slog.Debug("trend shift", "month", st.Month, "trend", t.ID, "months", next.MonthsLeft)
		}
	}

	return Delta{
		Products:           player.Updated,
		CompetitorProducts: competitors,
		PlayerExpired:      player.Expired,
		CorpExpired:        rivals.Expired,
		Projects:           projects,
		Corporations:       corps.Corps,
		MarketShare:        share,
		Money:              st.Money + player.Income,
		LifetimeRevenue:    st.LifetimeRevenue + player.Income,
		MonthlyIncome:      player.Income,
		Month:              st.Month + 1,
		Trend:              next,
		Notifications:      notifications,
	}, nil
}

// nextTrend picks a trend other than current with a fresh duration. With a
// single trend in the catalog it repeats; with none it yields the zero trend.
// Two draws whenever the catalog has trends.
func (e *Engine) nextTrend(current string, startMonth int, src entropy.Source) ActiveTrend {
	all := e.Catalog.Trends
	if len(all) == 0 {
		return ActiveTrend{StartMonth: startMonth}
	}
	pool := make([]int, 0, len(all))
	for i := range all {
		if all[i].ID != current {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, 0)
	}

	t := &all[pool[entropy.Intn(src, len(pool))]]
	span := t.Duration.Max - t.Duration.Min + 1
	return ActiveTrend{
		TrendID:    t.ID,
		StartMonth: startMonth,
		MonthsLeft: t.Duration.Min + entropy.Intn(src, span),
	}
}
