package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// BonusKind is the closed set of ways a synergy bonus can apply.
type BonusKind uint8

const (
	// BonusStat adds to one of the additive aggregate stats.
	BonusStat BonusKind = iota + 1
	// BonusRevenue multiplies the running revenue multiplier.
	BonusRevenue
	// BonusMeta is never folded into the aggregate; consumers sum it on demand.
	BonusMeta
)

// Stat names an additive aggregate field.
type Stat uint8

const (
	StatQuality Stat = iota + 1
	StatInnovation
	StatRetention
	StatMarketingPower
	StatRisk
	StatDevTime
	StatCost
)

// Meta names a bonus that only downstream formulas read.
type Meta uint8

const (
	MetaViralChance Meta = iota + 1
	MetaCriticsScore
	MetaPlayerScore
	MetaFanGain
	MetaLifespan
	MetaMarketShareGain
	MetaRetentionBoost
	MetaDevTimeMultiplier
)

var statKeys = map[string]Stat{
	"quality":        StatQuality,
	"innovation":     StatInnovation,
	"retention":      StatRetention,
	"marketingPower": StatMarketingPower,
	"risk":           StatRisk,
	"devTime":        StatDevTime,
	"cost":           StatCost,
}

var metaKeys = map[string]Meta{
	"viralChance":       MetaViralChance,
	"criticsScore":      MetaCriticsScore,
	"playerScore":       MetaPlayerScore,
	"fanGain":           MetaFanGain,
	"lifespan":          MetaLifespan,
	"marketShareGain":   MetaMarketShareGain,
	"retentionBoost":    MetaRetentionBoost,
	"devTimeMultiplier": MetaDevTimeMultiplier,
}

const revenueKey = "revenueMultiplier"

// Bonus is one entry of a synergy's bonus bundle. Exactly one of Stat or Meta
// is meaningful, selected by Kind.
type Bonus struct {
	Kind  BonusKind
	Stat  Stat
	Meta  Meta
	Value float64
}

// StatBonus builds an additive stat bonus.
func StatBonus(s Stat, v float64) Bonus { return Bonus{Kind: BonusStat, Stat: s, Value: v} }

// RevenueBonus builds a multiplicative revenue bonus.
func RevenueBonus(v float64) Bonus { return Bonus{Kind: BonusRevenue, Value: v} }

// MetaBonus builds a meta-only bonus.
func MetaBonus(m Meta, v float64) Bonus { return Bonus{Kind: BonusMeta, Meta: m, Value: v} }

// ParseBonus maps a content key onto its bonus variant. Unknown keys are an
// error so misspelled content fails at load time.
func ParseBonus(key string, v float64) (Bonus, error) {
	if s, ok := statKeys[key]; ok {
		return StatBonus(s, v), nil
	}
	if m, ok := metaKeys[key]; ok {
		return MetaBonus(m, v), nil
	}
	if key == revenueKey {
		return RevenueBonus(v), nil
	}
	return Bonus{}, fmt.Errorf("unknown bonus key %q", key)
}

// Key returns the content key for b.
func (b Bonus) Key() string {
	switch b.Kind {
	case BonusStat:
		for k, s := range statKeys {
			if s == b.Stat {
				return k
			}
		}
	case BonusMeta:
		for k, m := range metaKeys {
			if m == b.Meta {
				return k
			}
		}
	case BonusRevenue:
		return revenueKey
	}
	return ""
}

// Bonuses is a synergy's bonus bundle. In YAML it is a flat key→number map.
type Bonuses []Bonus

// Meta sums every meta bonus of kind m.
func (bs Bonuses) Meta(m Meta) float64 {
	total := 0.0
	for _, b := range bs {
		if b.Kind == BonusMeta && b.Meta == m {
			total += b.Value
		}
	}
	return total
}

// UnmarshalYAML decodes a mapping of bonus keys, rejecting unknown keys.
// Entries are sorted by key so application order is stable.
func (bs *Bonuses) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]float64
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("bonus must be a mapping of numbers: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Bonuses, 0, len(keys))
	for _, k := range keys {
		b, err := ParseBonus(k, raw[k])
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

// MarshalYAML encodes the bundle back to its key→number form.
func (bs Bonuses) MarshalYAML() (any, error) {
	out := make(map[string]float64, len(bs))
	for _, b := range bs {
		out[b.Key()] += b.Value
	}
	return out, nil
}

// MarshalJSON encodes the bundle as a key→number object.
func (bs Bonuses) MarshalJSON() ([]byte, error) {
	m, _ := bs.MarshalYAML()
	return json.Marshal(m)
}
