package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solostack/internal/entropy"
)

func TestInitCorporations(t *testing.T) {
	e := testEngine(t)
	seq := entropy.NewSequence(0.5, 0.2)

	corps := e.InitCorporations(seq)
	require.Len(t, corps, 3)
	assert.Equal(t, 6, seq.Drawn())

	big := corps[0]
	assert.Equal(t, "big", big.ID)
	assert.Equal(t, "BigCo", big.Name)
	assert.Equal(t, 9.0, big.Power)
	assert.Equal(t, []string{"flat", "risky"}, big.Categories)
	assert.Equal(t, 2, big.TotalReleases)
	assert.Equal(t, 10000.0, big.LifetimeRevenue)

	assert.True(t, corps[1].TrendChaser)
	assert.Equal(t, []string{"risky"}, corps[2].Categories)
}

func TestTickCorporationsBlockbuster(t *testing.T) {
	e := testEngine(t)
	corps := e.InitCorporations(entropy.NewSequence(0))

	seq := entropy.NewSequence(0)
	res := e.TickCorporations(corps[:1], 0.1, 5, nil, 1, seq)
	// release, category, blockbuster, 6 shuffle draws, rating, three name draws.
	assert.Equal(t, 13, seq.Drawn())

	require.Len(t, res.NewProducts, 1)
	p := res.NewProducts[0]
	assert.Equal(t, "flat", p.SoftwareTypeID)
	assert.Equal(t, "big", p.OwnerID)
	assert.Equal(t, "Nova System", p.Name)
	assert.Len(t, p.ComponentIDs, 7)
	assert.True(t, p.IsBlockbuster)
	assert.InDelta(t, 10.0, p.Rating, 1e-9)
	assert.InDelta(t, 9.0, p.RevenueMultiplier, 1e-9)
	assert.InDelta(t, 18000.0, p.CurrentRevenue, 1e-9)
	assert.Equal(t, 30, p.MaxMonths)
	assert.Equal(t, 5, p.ReleasedAt)
	assert.InDelta(t, 0.045, p.MarketShare, 1e-9)
	assert.ElementsMatch(t, []string{"Combo", "Buzz"}, p.Synergies)

	require.Len(t, res.Notifications, 1)
	assert.Equal(t, NotifyCorpBlockbuster, res.Notifications[0].Type)
	assert.Equal(t, "BigCo dropped a BLOCKBUSTER: \"Nova System\"!", res.Notifications[0].Message)

	require.Len(t, res.Corps, 1)
	assert.Equal(t, 1, res.Corps[0].TotalReleases)
	assert.True(t, res.Corps[0].RecentRelease)

	// Same inputs, same ids.
	again := e.TickCorporations(corps[:1], 0.1, 5, nil, 1, entropy.NewSequence(0))
	assert.Equal(t, p.ID, again.NewProducts[0].ID)
}

func TestTickCorporationsIdleNeverReleases(t *testing.T) {
	e := testEngine(t)
	corps := e.InitCorporations(entropy.NewSequence(0))
	corps[2].RecentRelease = true

	seq := entropy.NewSequence(0)
	res := e.TickCorporations(corps[2:], 0.1, 5, nil, 1, seq)
	assert.Equal(t, 1, seq.Drawn())
	assert.Empty(t, res.NewProducts)
	assert.False(t, res.Corps[0].RecentRelease)
	assert.Equal(t, corps[2].TotalReleases, res.Corps[0].TotalReleases)
}

func TestTickCorporationsTrendChaser(t *testing.T) {
	e := testEngine(t)
	corps := e.InitCorporations(entropy.NewSequence(0))
	boom := mustTrend(t, e, "boom")

	// The category draw lands on risky; the chaser pivots to the trend.
	chase := e.TickCorporations(corps[1:2], 0.1, 5, boom, 5, entropy.NewSequence(0, 0.99, 0.5))
	require.Len(t, chase.NewProducts, 1)
	assert.Equal(t, "flat", chase.NewProducts[0].SoftwareTypeID)

	big := e.TickCorporations(corps[:1], 0.1, 5, boom, 5, entropy.NewSequence(0, 0.99, 0.5))
	require.Len(t, big.NewProducts, 1)
	assert.Equal(t, "risky", big.NewProducts[0].SoftwareTypeID)
	assert.NotContains(t, big.NewProducts[0].ComponentIDs, "flat_only")
	assert.Len(t, big.NewProducts[0].ComponentIDs, 6)
}

func TestTickCorporationsBounds(t *testing.T) {
	e := testEngine(t)
	src := entropy.NewSeeded(21)
	corps := e.InitCorporations(src)

	for month := 1; month < 100; month++ {
		res := e.TickCorporations(corps, 0.1, month, nil, 1, src)
		for _, p := range res.NewProducts {
			require.GreaterOrEqual(t, p.Rating, 3.0)
			require.LessOrEqual(t, p.Rating, 10.0)
			typ := mustType(t, e, p.SoftwareTypeID)
			require.LessOrEqual(t, p.CurrentRevenue, typ.DemandPool*CorpDemandCap)
		}
		corps = res.Corps
	}
	assert.Greater(t, corps[0].TotalReleases, 90)
}
