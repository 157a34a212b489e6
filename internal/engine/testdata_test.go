package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/talgya/solostack/internal/catalog"
)

const testCatalog = `
software_types:
  - {id: flat, name: Flat, demand_pool: 100000, base_risk: 0, base_lifespan: 12, energy_cost: 6}
  - {id: risky, name: Risky, demand_pool: 50000, base_risk: 0.25, base_lifespan: 10, energy_cost: 10}
  - {id: damped, name: Damped, demand_pool: 80000, base_risk: 0.05, base_lifespan: 20, energy_cost: 15, viral_multiplier: 0.2}
  - {id: steady, name: Steady, demand_pool: 90000, base_risk: 0.05, base_lifespan: 30, energy_cost: 6, trend_resistance: 0.8}
components:
  - {id: q10, name: Q10, pillar: Design, quality: 10, cost: 100, dev_time: 1}
  - {id: zero, name: Zero, pillar: Design, cost: 0, dev_time: 0.5}
  - {id: idea, name: Idea, pillar: Ideation, quality: 1, innovation: 2, retention: 1, risk: 0.1, cost: 200, dev_time: 1.5, tags: [ai, hype]}
  - {id: code, name: Code, pillar: Development, quality: 2, risk: -0.05, cost: 300, dev_time: 2, revenue_multiplier: 1.5, tags: [tech, hype]}
  - {id: ads, name: Ads, pillar: Marketing, marketing_power: 5, risk: 0.2, cost: 400, dev_time: 1, tags: [social]}
  - {id: wild, name: Wild, pillar: Development, innovation: 50, risk: 9, cost: 50, dev_time: 1}
  - {id: flat_only, name: Flat Only, pillar: Design, quality: 1, cost: 10, dev_time: 1, exclusive_to: flat}
synergies:
  - {id: combo, label: Combo, components: [idea, code], bonus: {quality: 1, revenueMultiplier: 2, criticsScore: 1, lifespan: 6, fanGain: 0.5, marketShareGain: 2}}
  - {id: buzz, label: Buzz, components: [ads, idea], bonus: {viralChance: 0.2, marketingPower: 1, devTimeMultiplier: 0.5}}
trends:
  - id: boom
    name: Boom
    duration: {min: 3, max: 5}
    category_boosts: {flat: 1.5, steady: 1.5}
    category_penalties: {risky: 0.5}
    tag_boosts: {ai: 1.8, hype: 1.4}
    tag_penalties: {social: 0.5}
  - id: bust
    name: Bust
    duration: {min: 2, max: 2}
    category_boosts: {risky: 1.2}
archetypes:
  - {id: BIG, power: 9, release_chance: 1.0, quality_bonus: 2, revenue_mult: 3, categories: [flat, risky], trend_delay: 2}
  - {id: CHASER, power: 6, release_chance: 1.0, quality_bonus: 0, revenue_mult: 1, categories: [flat, risky], trend_delay: 0, trend_chaser: true}
  - {id: IDLE, power: 5, release_chance: 0, quality_bonus: 0, revenue_mult: 1, categories: [flat], trend_delay: 0}
corporations:
  - {id: big, name: BigCo, archetype: BIG}
  - {id: chase, name: ChaseCo, archetype: CHASER}
  - {id: idle, name: IdleCo, archetype: IDLE, specific_category: risky}
`

func testEngine(t *testing.T) *Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	return New(cat)
}

func mustType(t *testing.T, e *Engine, id string) *catalog.SoftwareType {
	t.Helper()
	st, ok := e.Catalog.SoftwareType(id)
	require.True(t, ok, id)
	return st
}

func mustTrend(t *testing.T, e *Engine, id string) *catalog.Trend {
	t.Helper()
	tr, ok := e.Catalog.Trend(id)
	require.True(t, ok, id)
	return tr
}
