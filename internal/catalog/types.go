// Package catalog holds the static content the simulation reads but never
// mutates: components, synergies, software types, trends and corporation
// archetypes.
package catalog

// Pillar is one of the four development phases that partition components.
type Pillar string

const (
	PillarIdeation    Pillar = "Ideation"
	PillarDesign      Pillar = "Design"
	PillarDevelopment Pillar = "Development"
	PillarMarketing   Pillar = "Marketing"
)

// Pillars lists the phases in builder order.
var Pillars = []Pillar{PillarIdeation, PillarDesign, PillarDevelopment, PillarMarketing}

// Valid reports whether p is a known pillar.
func (p Pillar) Valid() bool {
	switch p {
	case PillarIdeation, PillarDesign, PillarDevelopment, PillarMarketing:
		return true
	}
	return false
}

// DefaultPillarCapacity is the starting slot count per pillar.
var DefaultPillarCapacity = map[Pillar]int{
	PillarIdeation:    2,
	PillarDesign:      3,
	PillarDevelopment: 3,
	PillarMarketing:   2,
}

// Unlock condition kinds.
const (
	UnlockFree    = "free"
	UnlockMoney   = "money"
	UnlockMastery = "mastery"
	UnlockFanbase = "fanbase"
	UnlockTrend   = "trend"
)

// UnlockCondition gates a component behind player progress.
type UnlockCondition struct {
	Type     string  `yaml:"type" json:"type"`
	Amount   float64 `yaml:"amount,omitempty" json:"amount,omitempty"`     // money (lifetime revenue) or fans
	Releases int     `yaml:"releases,omitempty" json:"releases,omitempty"` // mastery
	TrendID  string  `yaml:"trend_id,omitempty" json:"trend_id,omitempty"`
}

// Component is an atomic building block selectable during project assembly.
type Component struct {
	ID             string          `yaml:"id" json:"id"`
	Name           string          `yaml:"name" json:"name"`
	Pillar         Pillar          `yaml:"pillar" json:"pillar"`
	Quality        float64         `yaml:"quality,omitempty" json:"quality,omitempty"`
	Innovation     float64         `yaml:"innovation,omitempty" json:"innovation,omitempty"`
	Retention      float64         `yaml:"retention,omitempty" json:"retention,omitempty"`
	MarketingPower float64         `yaml:"marketing_power,omitempty" json:"marketing_power,omitempty"`
	Risk           float64         `yaml:"risk,omitempty" json:"risk,omitempty"`
	Cost           float64         `yaml:"cost" json:"cost"`
	DevTime        float64         `yaml:"dev_time" json:"dev_time"`
	CapacityCost   int             `yaml:"capacity_cost,omitempty" json:"capacity_cost,omitempty"`
	Unlock         UnlockCondition `yaml:"unlock" json:"unlock"`
	ExclusiveTo    string          `yaml:"exclusive_to,omitempty" json:"exclusive_to,omitempty"`
	RevenueMult    float64         `yaml:"revenue_multiplier,omitempty" json:"revenue_multiplier,omitempty"`
	Tags           []string        `yaml:"tags,omitempty" json:"tags,omitempty"`
	Description    string          `yaml:"description,omitempty" json:"description,omitempty"`
}

// Slots returns the pillar capacity the component occupies (default 1).
func (c *Component) Slots() int {
	if c.CapacityCost <= 0 {
		return 1
	}
	return c.CapacityCost
}

// RevenueMultiplier returns the multiplicative revenue factor (default 1.0).
func (c *Component) RevenueMultiplier() float64 {
	if c.RevenueMult == 0 {
		return 1.0
	}
	return c.RevenueMult
}

// AllowedFor reports whether the component may be used in a build of typeID.
func (c *Component) AllowedFor(typeID string) bool {
	return c.ExclusiveTo == "" || c.ExclusiveTo == typeID
}

// Synergy is a bonus unlocked when every listed component is selected together.
type Synergy struct {
	ID          string   `yaml:"id" json:"id"`
	Label       string   `yaml:"label" json:"label"`
	Components  []string `yaml:"components" json:"components"`
	Bonus       Bonuses  `yaml:"bonus" json:"bonus"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// MatchedBy reports whether every required component is in selected.
func (s *Synergy) MatchedBy(selected map[string]bool) bool {
	for _, id := range s.Components {
		if !selected[id] {
			return false
		}
	}
	return true
}

// SoftwareType defines the market characteristics of a product category.
type SoftwareType struct {
	ID                string   `yaml:"id" json:"id"`
	Name              string   `yaml:"name" json:"name"`
	DemandPool        float64  `yaml:"demand_pool" json:"demand_pool"`
	BaseRisk          float64  `yaml:"base_risk" json:"base_risk"`
	BaseLifespan      int      `yaml:"base_lifespan" json:"base_lifespan"`
	EnergyCost        int      `yaml:"energy_cost" json:"energy_cost"`
	MinimumComponents int      `yaml:"minimum_components,omitempty" json:"minimum_components,omitempty"`
	ViralMult         *float64 `yaml:"viral_multiplier,omitempty" json:"viral_multiplier,omitempty"`
	TrendResistance   float64  `yaml:"trend_resistance,omitempty" json:"trend_resistance,omitempty"`
	Description       string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// ViralMultiplier dampens (or boosts) the whole viral chance. Default 1.0.
func (t *SoftwareType) ViralMultiplier() float64 {
	if t == nil || t.ViralMult == nil {
		return 1.0
	}
	return *t.ViralMult
}

// MinComponents returns the submission floor (default 1).
func (t *SoftwareType) MinComponents() int {
	if t.MinimumComponents <= 0 {
		return 1
	}
	return t.MinimumComponents
}

// Duration is an inclusive month range.
type Duration struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Trend is a time-boxed market-wide modifier.
type Trend struct {
	ID                string             `yaml:"id" json:"id"`
	Name              string             `yaml:"name" json:"name"`
	Duration          Duration           `yaml:"duration" json:"duration"`
	Category          string             `yaml:"category,omitempty" json:"category,omitempty"`
	CategoryBoosts    map[string]float64 `yaml:"category_boosts,omitempty" json:"category_boosts,omitempty"`
	CategoryPenalties map[string]float64 `yaml:"category_penalties,omitempty" json:"category_penalties,omitempty"`
	TagBoosts         map[string]float64 `yaml:"tag_boosts,omitempty" json:"tag_boosts,omitempty"`
	TagPenalties      map[string]float64 `yaml:"tag_penalties,omitempty" json:"tag_penalties,omitempty"`
	Description       string             `yaml:"description,omitempty" json:"description,omitempty"`
}

// CategoryBoost returns the boost for typeID, or 1.0. Safe on a nil trend.
func (t *Trend) CategoryBoost(typeID string) float64 {
	if t == nil {
		return 1.0
	}
	if b, ok := t.CategoryBoosts[typeID]; ok && b != 0 {
		return b
	}
	return 1.0
}

// PrimaryCategory is the category trend-chasing corporations pivot to:
// the explicit Category, else the most boosted category (ties by id).
func (t *Trend) PrimaryCategory() string {
	if t == nil {
		return ""
	}
	if t.Category != "" {
		return t.Category
	}
	best, bestBoost := "", 0.0
	for id, b := range t.CategoryBoosts {
		if b > bestBoost || (b == bestBoost && id < best) {
			best, bestBoost = id, b
		}
	}
	return best
}

// Archetype is the behavior template shared by a family of corporations.
type Archetype struct {
	ID            string   `yaml:"id" json:"id"`
	Power         float64  `yaml:"power" json:"power"`
	ReleaseChance float64  `yaml:"release_chance" json:"release_chance"`
	QualityBonus  float64  `yaml:"quality_bonus" json:"quality_bonus"`
	RevenueMult   float64  `yaml:"revenue_mult" json:"revenue_mult"`
	Categories    []string `yaml:"categories,omitempty" json:"categories,omitempty"`
	TrendDelay    int      `yaml:"trend_delay" json:"trend_delay"`
	TrendChaser   bool     `yaml:"trend_chaser,omitempty" json:"trend_chaser,omitempty"`
}

// CorporationDef is one AI competitor in the roster.
type CorporationDef struct {
	ID               string `yaml:"id" json:"id"`
	Name             string `yaml:"name" json:"name"`
	Archetype        string `yaml:"archetype" json:"archetype"`
	SpecificCategory string `yaml:"specific_category,omitempty" json:"specific_category,omitempty"`
}
