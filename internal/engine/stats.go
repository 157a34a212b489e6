// Package engine is the economic simulation core: stat aggregation, scoring,
// revenue and decay, competitor AI and the monthly tick. Every function is
// pure given its inputs and an entropy.Source; mutation belongs to callers.
package engine

import (
	"math"

	"github.com/talgya/solostack/internal/catalog"
)

// Engine evaluates formulas against one content catalog.
type Engine struct {
	Catalog *catalog.Catalog
}

// New returns an Engine over cat.
func New(cat *catalog.Catalog) *Engine {
	return &Engine{Catalog: cat}
}

// Stats is the composite bundle for a component selection.
type Stats struct {
	Quality           float64 `json:"quality"`
	Innovation        float64 `json:"innovation"`
	Retention         float64 `json:"retention"`
	MarketingPower    float64 `json:"marketing_power"`
	Risk              float64 `json:"risk"`
	DevTime           float64 `json:"dev_time"`
	Cost              float64 `json:"cost"`
	RevenueMultiplier float64 `json:"revenue_multiplier"`

	// Tags is the de-duplicated union of component tags, in first-seen order.
	Tags []string `json:"tags,omitempty"`
	// Synergies are the matched records in catalog order; their meta bonuses
	// are not folded into the fields above.
	Synergies []*catalog.Synergy `json:"synergies,omitempty"`
}

// Aggregate sums component stats for ids, then overlays matched synergy
// bonuses. Unknown ids contribute nothing.
func (e *Engine) Aggregate(ids []string) Stats {
	s := Stats{RevenueMultiplier: 1.0}
	seen := make(map[string]bool)

	for _, c := range e.Catalog.Resolve(ids) {
		s.Quality += c.Quality
		s.Innovation += c.Innovation
		s.Retention += c.Retention
		s.MarketingPower += c.MarketingPower
		s.Risk += c.Risk
		s.DevTime += c.DevTime
		s.Cost += c.Cost
		s.RevenueMultiplier *= c.RevenueMultiplier()
		for _, tag := range c.Tags {
			if !seen[tag] {
				seen[tag] = true
				s.Tags = append(s.Tags, tag)
			}
		}
	}

	s.Synergies = e.Catalog.DetectSynergies(ids)
	for _, syn := range s.Synergies {
		for _, b := range syn.Bonus {
			s.apply(b)
		}
	}
	return s
}

func (s *Stats) apply(b catalog.Bonus) {
	switch b.Kind {
	case catalog.BonusRevenue:
		s.RevenueMultiplier *= b.Value
	case catalog.BonusStat:
		switch b.Stat {
		case catalog.StatQuality:
			s.Quality += b.Value
		case catalog.StatInnovation:
			s.Innovation += b.Value
		case catalog.StatRetention:
			s.Retention += b.Value
		case catalog.StatMarketingPower:
			s.MarketingPower += b.Value
		case catalog.StatRisk:
			s.Risk += b.Value
		case catalog.StatDevTime:
			s.DevTime += b.Value
		case catalog.StatCost:
			s.Cost += b.Value
		}
	}
}

// SynergyMeta sums a meta bonus across the matched synergies.
func (s Stats) SynergyMeta(m catalog.Meta) float64 {
	total := 0.0
	for _, syn := range s.Synergies {
		total += syn.Bonus.Meta(m)
	}
	return total
}

// SynergyLabels returns the labels of the matched synergies.
func (s Stats) SynergyLabels() []string {
	out := make([]string, 0, len(s.Synergies))
	for _, syn := range s.Synergies {
		out = append(out, syn.Label)
	}
	return out
}

// DevMonths is the build duration: the summed dev time scaled by every
// matched devTimeMultiplier, rounded up, at least one month.
func (s Stats) DevMonths() int {
	mult := 1.0
	for _, syn := range s.Synergies {
		for _, b := range syn.Bonus {
			if b.Kind == catalog.BonusMeta && b.Meta == catalog.MetaDevTimeMultiplier {
				mult *= b.Value
			}
		}
	}
	months := int(math.Ceil(s.DevTime*mult - 1e-9))
	if months < 1 {
		return 1
	}
	return months
}

// TotalRisk is the non-negative risk of a build against its type.
// An unknown type contributes zero base risk.
func (s Stats) TotalRisk(t *catalog.SoftwareType) float64 {
	base := 0.0
	if t != nil {
		base = t.BaseRisk
	}
	return math.Max(0, base+s.Risk)
}
