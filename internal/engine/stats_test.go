package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/entropy"
)

func TestAggregateSumsComponents(t *testing.T) {
	e := testEngine(t)
	s := e.Aggregate([]string{"q10", "code"})

	assert.InDelta(t, 12.0, s.Quality, 1e-9)
	assert.InDelta(t, -0.05, s.Risk, 1e-9)
	assert.InDelta(t, 400.0, s.Cost, 1e-9)
	assert.InDelta(t, 3.0, s.DevTime, 1e-9)
	assert.InDelta(t, 1.5, s.RevenueMultiplier, 1e-9)
	assert.Equal(t, []string{"tech", "hype"}, s.Tags)
	assert.Empty(t, s.Synergies)
}

func TestAggregateZeroComponentKeepsStats(t *testing.T) {
	e := testEngine(t)
	base := e.Aggregate([]string{"q10", "code"})
	with := e.Aggregate([]string{"q10", "code", "zero"})

	assert.Equal(t, base.Quality, with.Quality)
	assert.Equal(t, base.Innovation, with.Innovation)
	assert.Equal(t, base.Retention, with.Retention)
	assert.Equal(t, base.MarketingPower, with.MarketingPower)
	assert.Equal(t, base.Risk, with.Risk)
	assert.Equal(t, base.RevenueMultiplier, with.RevenueMultiplier)
	assert.InDelta(t, base.DevTime+0.5, with.DevTime, 1e-9)
}

func TestAggregateSkipsUnknown(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, e.Aggregate([]string{"q10"}), e.Aggregate([]string{"ghost", "q10", "nope"}))

	empty := e.Aggregate(nil)
	assert.Zero(t, empty.Quality)
	assert.Equal(t, 1.0, empty.RevenueMultiplier)
}

func TestAggregateAppliesSynergies(t *testing.T) {
	e := testEngine(t)
	s := e.Aggregate([]string{"code", "idea"})

	require.Len(t, s.Synergies, 1)
	assert.Equal(t, "combo", s.Synergies[0].ID)
	// 1 + 2 from components, +1 from the synergy.
	assert.InDelta(t, 4.0, s.Quality, 1e-9)
	// 1.5 × 2: revenue bonuses multiply.
	assert.InDelta(t, 3.0, s.RevenueMultiplier, 1e-9)
	// Meta bonuses stay on the synergy record.
	assert.InDelta(t, 1.0, s.SynergyMeta(catalog.MetaCriticsScore), 1e-9)
	assert.InDelta(t, 6.0, s.SynergyMeta(catalog.MetaLifespan), 1e-9)
	assert.Equal(t, []string{"ai", "hype", "tech"}, s.Tags)
	assert.Equal(t, []string{"Combo"}, s.SynergyLabels())
}

func TestDevMonths(t *testing.T) {
	e := testEngine(t)

	// 1.5 + 1 months, halved by the buzz synergy, rounded up.
	assert.Equal(t, 2, e.Aggregate([]string{"idea", "ads"}).DevMonths())
	assert.Equal(t, 1, e.Aggregate([]string{"zero"}).DevMonths())
	assert.Equal(t, 1, e.Aggregate(nil).DevMonths())
	assert.Equal(t, 4, e.Aggregate([]string{"idea", "code"}).DevMonths())
}

func TestSynergyDetectionMonotonic(t *testing.T) {
	e := testEngine(t)
	src := entropy.NewSeeded(3)
	all := []string{"q10", "zero", "idea", "code", "ads", "wild", "flat_only"}

	for i := 0; i < 200; i++ {
		var a, b []string
		for _, id := range all {
			v := src.Float64()
			if v < 0.4 {
				a = append(a, id)
			}
			if v < 0.7 {
				b = append(b, id)
			}
		}
		small := e.Aggregate(a).SynergyLabels()
		large := e.Aggregate(b).SynergyLabels()
		require.Subset(t, large, small, "a=%v b=%v", a, b)
	}
}

func TestTotalRisk(t *testing.T) {
	e := testEngine(t)
	s := e.Aggregate([]string{"code"})
	assert.InDelta(t, 0.0, s.TotalRisk(nil), 1e-9)
	assert.InDelta(t, 0.2, s.TotalRisk(mustType(t, e, "risky")), 1e-9)
}
