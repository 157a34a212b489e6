package catalog

import (
	"fmt"
	"math"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// SynthOptions controls procedural catalog generation.
type SynthOptions struct {
	Seed      int64
	PerPillar int // components per pillar
	Synergies int // synergy pairs to generate
}

var synthTags = []string{"innovation", "social", "hype", "trust", "security", "minimalism", "design", "tech", "data", "retention", "stable", "viral"}

var synthWords = map[Pillar][]string{
	PillarIdeation:    {"Pitch", "Vision", "Angle", "Bet", "Niche", "Hook"},
	PillarDesign:      {"Layout", "Palette", "Flow", "Motion", "Grid", "Theme"},
	PillarDevelopment: {"Engine", "Pipeline", "Cache", "Runtime", "Schema", "Stack"},
	PillarMarketing:   {"Launch", "Campaign", "Push", "Drop", "Buzz", "Promo"},
}

// Synthesize builds a balance-test catalog: software types, trends and the
// corporation roster are copied from base, while components and synergies
// are generated. Stat curves follow layered simplex noise over the tier
// index so neighbouring tiers stay coherent. Same seed, same catalog.
func Synthesize(base *Catalog, opts SynthOptions) (*Catalog, error) {
	if opts.PerPillar <= 0 {
		opts.PerPillar = 12
	}

	qualNoise := opensimplex.NewNormalized(opts.Seed)
	innovNoise := opensimplex.NewNormalized(opts.Seed + 1)
	riskNoise := opensimplex.NewNormalized(opts.Seed + 2)
	tagNoise := opensimplex.NewNormalized(opts.Seed + 3)

	out := &Catalog{
		PillarCapacity: base.PillarCapacity,
		SoftwareTypes:  append([]SoftwareType(nil), base.SoftwareTypes...),
		Trends:         append([]Trend(nil), base.Trends...),
		Archetypes:     append([]Archetype(nil), base.Archetypes...),
		Corporations:   append([]CorporationDef(nil), base.Corporations...),
	}

	for pi, pillar := range Pillars {
		words := synthWords[pillar]
		for tier := 0; tier < opts.PerPillar; tier++ {
			x := float64(tier) * 0.35
			y := float64(pi) * 3.1

			// Tiers grow geometrically in cost, stats scale with sqrt(cost).
			cost := math.Round(100 * math.Pow(1.9, float64(tier)))
			scale := math.Sqrt(cost / 100)

			comp := Component{
				ID:      fmt.Sprintf("synth_%s_%02d", strings.ToLower(string(pillar)), tier),
				Name:    fmt.Sprintf("%s %s %d", pillar, words[tier%len(words)], tier+1),
				Pillar:  pillar,
				Cost:    cost,
				DevTime: devTimeForCost(cost),
				Unlock:  UnlockCondition{Type: UnlockFree},
			}
			if tier > 2 {
				comp.Unlock = UnlockCondition{Type: UnlockMoney, Amount: math.Round(cost * 10)}
			}

			q := octaveNoise(qualNoise, x, y, 3, 1.0, 0.5)
			inn := octaveNoise(innovNoise, x, y, 3, 1.0, 0.5)
			comp.Risk = round2((octaveNoise(riskNoise, x, y, 2, 1.3, 0.5) - 0.5) * 0.6)

			switch pillar {
			case PillarMarketing:
				comp.MarketingPower = round2(scale * (0.5 + q*1.5))
				comp.Retention = round2(scale * inn * 0.4)
			case PillarIdeation:
				comp.Innovation = round2(scale * (0.3 + inn))
				comp.Quality = round2(scale * q * 0.6)
			default:
				comp.Quality = round2(scale * (0.3 + q))
				comp.Retention = round2(scale * inn * 0.8)
			}

			t := octaveNoise(tagNoise, x, y, 2, 2.0, 0.5)
			comp.Tags = []string{synthTags[int(t*float64(len(synthTags)))%len(synthTags)]}

			out.Components = append(out.Components, comp)
		}
	}

	// Pair components across pillars at matching tiers.
	for i := 0; i < opts.Synergies; i++ {
		tier := i % opts.PerPillar
		a := Pillars[i%len(Pillars)]
		b := Pillars[(i+1)%len(Pillars)]
		out.Synergies = append(out.Synergies, Synergy{
			ID:    fmt.Sprintf("synth_syn_%02d", i),
			Label: fmt.Sprintf("%s/%s Combo %d", a, b, tier+1),
			Components: []string{
				fmt.Sprintf("synth_%s_%02d", strings.ToLower(string(a)), tier),
				fmt.Sprintf("synth_%s_%02d", strings.ToLower(string(b)), tier),
			},
			Bonus: Bonuses{
				StatBonus(StatQuality, round2(1+float64(tier)*0.5)),
				MetaBonus(MetaCriticsScore, 0.5),
			},
		})
	}

	if err := out.index(); err != nil {
		return nil, fmt.Errorf("synthesized catalog invalid: %w", err)
	}
	return out, nil
}

// devTimeForCost is the tiered cost-to-months table used by the content tools.
func devTimeForCost(cost float64) float64 {
	switch {
	case cost > 50000:
		return 8.0
	case cost >= 20000:
		return 5.0
	case cost >= 8000:
		return 3.0
	case cost >= 3000:
		return 2.0
	case cost >= 1000:
		return 1.0
	}
	return 0.5
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
