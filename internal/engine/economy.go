package engine

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/entropy"
)

// Archive reasons.
const (
	ReasonLifespan = "Lifespan Expired"
	ReasonDecayed  = "Revenue Decayed"
	ReasonManual   = "Manual Retirement"
)

// Product is a published, revenue-generating build owned by the player or a
// corporation.
type Product struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	SoftwareTypeID    string   `json:"software_type_id"`
	OwnerID           string   `json:"owner_id"`
	OwnerName         string   `json:"owner_name,omitempty"`
	ComponentIDs      []string `json:"component_ids,omitempty"`
	Rating            float64  `json:"rating"`
	Retention         float64  `json:"retention"`
	RevenueMultiplier float64  `json:"revenue_multiplier"`
	CurrentRevenue    float64  `json:"current_revenue"`
	LifetimeRevenue   float64  `json:"lifetime_revenue"`
	MonthsLive        int      `json:"months_live"`
	MaxMonths         int      `json:"max_months"`
	TrendAlignment    float64  `json:"trend_alignment,omitempty"`
	IsViral           bool     `json:"is_viral"`
	IsBlockbuster     bool     `json:"is_blockbuster,omitempty"`
	ReleasedAt        int      `json:"released_at"`
	MarketShare       float64  `json:"market_share"`
	Synergies         []string `json:"synergies,omitempty"`
}

// IsPlayer reports whether the player owns p.
func (p *Product) IsPlayer() bool { return p.OwnerID == PlayerID }

// ArchivedProduct is a product moved to history.
type ArchivedProduct struct {
	Product
	ArchivedAt int    `json:"archived_at"`
	Reason     string `json:"reason"`
}

// MonthlyRevenue converts a rating into one month of revenue, capped by the
// type's demand pool. An unknown (nil) type has no demand and earns nothing.
func MonthlyRevenue(rating float64, fanbase int, marketShare float64, trend *catalog.Trend, t *catalog.SoftwareType, revenueMultiplier float64) float64 {
	if t == nil {
		return 0
	}
	fans := float64(fanbase)
	effectiveFans := fans
	if fans > 10000 {
		effectiveFans = 10000 + math.Log10(math.Max(1, fans-10000))*2500
	}

	fanMult := 1 + effectiveFans*FanbaseRevenueMultiplier
	shareMult := 0.5 + marketShare*2
	trendMult := trend.CategoryBoost(t.ID)
	if t.TrendResistance != 0 {
		trendMult = 1.0 + (trendMult-1.0)*(1-t.TrendResistance)
	}

	revenue := math.Min(t.DemandPool, BaseRevenuePerRating*rating*fanMult*shareMult*trendMult*revenueMultiplier)
	return roundHalfUp(revenue)
}

// FanGain is the fan delta of a launch.
func FanGain(rating float64, viral bool, alignment, multiplier float64) int {
	base := roundHalfUp(rating * FanBaseMultiplier)
	if viral {
		base += FanViralBonus
	}
	if alignment >= FanTrendThreshold {
		base *= FanTrendBonus
	}
	return int(roundHalfUp(base * multiplier))
}

// ReleaseOutcome is the result of publishing a reviewed project. IsFail is a
// modeled outcome, not an error.
type ReleaseOutcome struct {
	IsFail        bool     `json:"is_fail"`
	IsViral       bool     `json:"is_viral"`
	Rating        float64  `json:"rating"`
	LaunchRevenue float64  `json:"launch_revenue"`
	FanGain       int      `json:"fan_gain"`
	ShareGain     float64  `json:"share_gain"`
	Product       *Product `json:"product,omitempty"`
	Message       string   `json:"message"`
}

// ResolveRelease turns a reviewed project into a product or a launch
// failure. Draws: the failure gate always; then either one draw for the
// failure rating, or the review's two (when p.Review is nil) plus the viral
// roll.
func (e *Engine) ResolveRelease(p *Project, player PlayerContext, trend *catalog.Trend, src entropy.Source) ReleaseOutcome {
	failChance := e.FailureChance(p.ComponentIDs, p.SoftwareTypeID)
	if src.Float64() < failChance && player.Fanbase < FailGateFanbase {
		return ReleaseOutcome{
			IsFail:  true,
			Rating:  round1(src.Float64() * 2),
			Message: "Launch Failure! The code was too messy to survive.",
		}
	}

	review := p.Review
	if review == nil {
		r := e.GenerateReviews(p.ComponentIDs, p.SoftwareTypeID, player, trend, src)
		review = &r
	}

	viral := src.Float64() < review.ViralChance

	s := e.Aggregate(p.ComponentIDs)
	fanGain := FanGain(review.FinalRating, viral, review.TrendAlignment, 1.0+s.SynergyMeta(catalog.MetaFanGain))

	t, _ := e.Catalog.SoftwareType(p.SoftwareTypeID)
	baseMonthly := MonthlyRevenue(review.FinalRating, player.Fanbase+fanGain, player.MarketShare, trend, t, s.RevenueMultiplier)
	launch := baseMonthly
	if viral {
		launch = roundHalfUp(baseMonthly * ViralMultiplier)
	}

	lifespan := FallbackLifespan
	if t != nil {
		lifespan = t.BaseLifespan
	}
	maxMonths := lifespan + int(s.SynergyMeta(catalog.MetaLifespan))

	shareGain := (review.FinalRating/10)*PlayerShareGain + s.SynergyMeta(catalog.MetaMarketShareGain)/100

	product := &Product{
		ID:                p.ID + "_rel",
		Name:              p.Name,
		SoftwareTypeID:    p.SoftwareTypeID,
		OwnerID:           PlayerID,
		ComponentIDs:      append([]string(nil), p.ComponentIDs...),
		Rating:            review.FinalRating,
		Retention:         s.Retention,
		RevenueMultiplier: s.RevenueMultiplier,
		CurrentRevenue:    baseMonthly,
		LifetimeRevenue:   launch,
		MonthsLive:        1,
		MaxMonths:         maxMonths,
		TrendAlignment:    review.TrendAlignment,
		IsViral:           viral,
		ReleasedAt:        player.Month,
		MarketShare:       math.Max(0.001, shareGain/5),
		Synergies:         s.SynergyLabels(),
	}

	msg := fmt.Sprintf("Shipped %q! Rating: %.1f/10.", p.Name, review.FinalRating)
	if viral {
		msg = fmt.Sprintf("VIRAL HIT! %q is everywhere! +%s fans.", p.Name, humanize.Comma(int64(fanGain)))
	}

	return ReleaseOutcome{
		IsViral:       viral,
		Rating:        review.FinalRating,
		LaunchRevenue: launch,
		FanGain:       fanGain,
		ShareGain:     shareGain,
		Product:       product,
		Message:       msg,
	}
}

// TickResult is one month of product decay.
type TickResult struct {
	Updated []Product         `json:"updated"`
	Expired []ArchivedProduct `json:"expired"`
	Income  float64           `json:"income"`
}

// TickProducts decays every product by one month. fanbase and marketShare are
// accepted for symmetry with the launch formulas; decay does not read them.
// Expired products carry month as their archive month. No draws.
func (e *Engine) TickProducts(products []Product, fanbase int, marketShare float64, trend *catalog.Trend, month int) TickResult {
	res := TickResult{Updated: make([]Product, 0, len(products))}

	for _, p := range products {
		if p.MonthsLive >= p.MaxMonths {
			res.Expired = append(res.Expired, ArchivedProduct{Product: p, ArchivedAt: month, Reason: ReasonLifespan})
			continue
		}

		decay := RevenueDecayRate + p.Retention*0.005
		if p.Rating >= 8 {
			decay += 0.02
		}
		decay = clamp(decay, MinDecay, MaxDecay)

		decayed := roundHalfUp(p.CurrentRevenue * decay)
		revenue := roundHalfUp(decayed * trend.CategoryBoost(p.SoftwareTypeID))
		if revenue <= ExpiryRevenue {
			res.Expired = append(res.Expired, ArchivedProduct{Product: p, ArchivedAt: month, Reason: ReasonDecayed})
			continue
		}

		if p.IsPlayer() {
			res.Income += revenue
		}
		p.CurrentRevenue = revenue
		p.LifetimeRevenue += revenue
		p.MonthsLive++
		res.Updated = append(res.Updated, p)
	}
	return res
}

// EnergyUsed sums the energy held by in-flight projects and live player
// products.
func (e *Engine) EnergyUsed(projects []Project, products []Product) int {
	used := 0
	for _, p := range projects {
		if !p.Active() {
			continue
		}
		if t, ok := e.Catalog.SoftwareType(p.SoftwareTypeID); ok {
			used += t.EnergyCost
		} else {
			used += UnknownTypeEnergy
		}
	}
	for i := range products {
		if products[i].IsPlayer() {
			used += ProductPassiveEnergy
		}
	}
	return used
}

// AvailableEnergy is the free part of the energy pool.
func (e *Engine) AvailableEnergy(projects []Project, products []Product) int {
	return BaseEnergy - e.EnergyUsed(projects, products)
}

// UpdateMarketShare adds gain to the player's share, bounded by what the
// corporations leave over, rounded to four places.
func UpdateMarketShare(current, gain float64, corpShares map[string]float64) float64 {
	taken := 0.0
	for _, s := range corpShares {
		taken += s
	}
	share := math.Min(1-taken, current+gain)
	return math.Round(share*10000) / 10000
}
