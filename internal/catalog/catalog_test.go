package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()

	assert.Len(t, c.SoftwareTypes, 6)
	assert.Len(t, c.Trends, 6)
	assert.Len(t, c.Corporations, 12)
	assert.NotEmpty(t, c.Components)
	assert.Empty(t, c.Warnings(), "default catalog should have no dangling references")

	for _, p := range Pillars {
		assert.Greater(t, c.Capacity(p), 0, "pillar %s", p)
	}

	hustle, ok := c.SoftwareType("hustle_saas")
	require.True(t, ok)
	assert.InDelta(t, 0.2, hustle.ViralMultiplier(), 1e-9)

	toy, ok := c.SoftwareType("system_toy")
	require.True(t, ok)
	assert.InDelta(t, 0.8, toy.TrendResistance, 1e-9)

	indie, ok := c.SoftwareType("indie_hit")
	require.True(t, ok)
	assert.InDelta(t, 1.0, indie.ViralMultiplier(), 1e-9)
}

func TestComponentIDsUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, comp := range Default().Components {
		require.False(t, seen[comp.ID], "duplicate %s", comp.ID)
		seen[comp.ID] = true
	}
}

func TestDetectSynergiesSubset(t *testing.T) {
	c := Default()

	got := c.DetectSynergies([]string{"devlogs", "clear_idea"})
	require.Len(t, got, 1)
	assert.Equal(t, "indie_darling", got[0].ID)

	assert.Empty(t, c.DetectSynergies([]string{"clear_idea"}))
	assert.Empty(t, c.DetectSynergies(nil))
}

func TestDetectSynergiesMonotonic(t *testing.T) {
	c := Default()
	a := []string{"bug_squash", "modular_code"}
	b := append(append([]string(nil), a...), "auto_tests", "clear_idea", "devlogs")

	ids := func(ss []*Synergy) []string {
		var out []string
		for _, s := range ss {
			out = append(out, s.ID)
		}
		return out
	}
	small := ids(c.DetectSynergies(a))
	large := ids(c.DetectSynergies(b))
	assert.Subset(t, large, small)
	assert.Contains(t, large, "rock_solid")
	assert.Contains(t, large, "indie_darling")
}

func TestParseRejectsUnknownBonusKey(t *testing.T) {
	raw := `
software_types:
  - {id: t1, name: T, demand_pool: 100, base_risk: 0, base_lifespan: 12, energy_cost: 5}
components:
  - {id: a, name: A, pillar: Ideation, cost: 1, dev_time: 1}
synergies:
  - id: s1
    label: S
    components: [a]
    bonus: {qualty: 1}
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown bonus key "qualty"`)
}

func TestParseCollectsErrors(t *testing.T) {
	raw := `
components:
  - {id: a, name: A, pillar: Frontend, cost: -5, dev_time: 0}
trends:
  - {id: tr, name: Tr, duration: {min: 5, max: 2}}
corporations:
  - {id: c1, name: C, archetype: MISSING}
`
	_, err := Parse([]byte(raw))
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{"unknown pillar", "negative cost", "dev_time", "invalid duration", "unknown archetype"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %s", want, msg)
	}
}

func TestDanglingSynergyIsWarning(t *testing.T) {
	raw := `
components:
  - {id: a, name: A, pillar: Design, cost: 1, dev_time: 1}
synergies:
  - {id: s1, label: S, components: [a, ghost], bonus: {quality: 1}}
`
	c, err := Parse([]byte(raw))
	require.NoError(t, err)
	require.Len(t, c.Warnings(), 1)
	assert.Contains(t, c.Warnings()[0], "ghost")
	assert.Empty(t, c.DetectSynergies([]string{"a"}))
}

func TestBonusesDecodeSorted(t *testing.T) {
	raw := `
components:
  - {id: a, name: A, pillar: Design, cost: 1, dev_time: 1}
synergies:
  - {id: s1, label: S, components: [a], bonus: {viralChance: 0.2, revenueMultiplier: 1.3, quality: 2}}
`
	c, err := Parse([]byte(raw))
	require.NoError(t, err)
	bs := c.Synergies[0].Bonus
	require.Len(t, bs, 3)
	assert.Equal(t, RevenueBonus(1.3), bs[1])
	assert.Equal(t, StatBonus(StatQuality, 2), bs[0])
	assert.Equal(t, MetaBonus(MetaViralChance, 0.2), bs[2])
	assert.InDelta(t, 0.2, bs.Meta(MetaViralChance), 1e-9)
	assert.Zero(t, bs.Meta(MetaLifespan))
}

func TestMarshalRoundTripKeepsBonuses(t *testing.T) {
	c := Default()
	raw, err := c.Marshal()
	require.NoError(t, err)
	again, err := Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, len(c.Components), len(again.Components))
	assert.Equal(t, c.Synergies[0].Bonus, again.Synergies[0].Bonus)
}

func TestTrendHelpers(t *testing.T) {
	var nilTrend *Trend
	assert.Equal(t, 1.0, nilTrend.CategoryBoost("indie_hit"))
	assert.Equal(t, "", nilTrend.PrimaryCategory())

	tr := &Trend{CategoryBoosts: map[string]float64{"a": 1.2, "b": 1.6, "c": 1.6}}
	assert.Equal(t, 1.6, tr.CategoryBoost("b"))
	assert.Equal(t, 1.0, tr.CategoryBoost("z"))
	assert.Equal(t, "b", tr.PrimaryCategory())

	tr.Category = "a"
	assert.Equal(t, "a", tr.PrimaryCategory())
}

func TestComponentDefaults(t *testing.T) {
	comp := Component{}
	assert.Equal(t, 1, comp.Slots())
	assert.Equal(t, 1.0, comp.RevenueMultiplier())
	assert.True(t, comp.AllowedFor("anything"))

	comp.ExclusiveTo = "indie_hit"
	assert.False(t, comp.AllowedFor("hustle_saas"))
	assert.True(t, comp.AllowedFor("indie_hit"))
}

func TestSynthesizeDeterministic(t *testing.T) {
	base := Default()
	a, err := Synthesize(base, SynthOptions{Seed: 9, PerPillar: 6, Synergies: 4})
	require.NoError(t, err)
	b, err := Synthesize(base, SynthOptions{Seed: 9, PerPillar: 6, Synergies: 4})
	require.NoError(t, err)

	assert.Len(t, a.Components, 24)
	assert.Len(t, a.Synergies, 4)
	assert.Equal(t, a.Components, b.Components)
	assert.Empty(t, a.Warnings())
	assert.Len(t, a.SoftwareTypes, len(base.SoftwareTypes))

	matched := a.DetectSynergies(a.Synergies[0].Components)
	require.NotEmpty(t, matched)
	assert.Equal(t, a.Synergies[0].ID, matched[0].ID)
}
