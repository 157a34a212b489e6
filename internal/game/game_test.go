package game

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/entropy"
)

const testCatalog = `
pillar_capacity: {Ideation: 1, Design: 2, Development: 2, Marketing: 1}
software_types:
  - {id: app, name: App, demand_pool: 100000, base_risk: 0, base_lifespan: 12, energy_cost: 20, minimum_components: 2}
  - {id: game, name: Game, demand_pool: 80000, base_risk: 0, base_lifespan: 10, energy_cost: 50}
components:
  - {id: idea, name: Idea, pillar: Ideation, quality: 2, cost: 100, dev_time: 1}
  - {id: idea2, name: Idea Two, pillar: Ideation, quality: 1, cost: 100, dev_time: 1}
  - {id: ui, name: UI, pillar: Design, quality: 3, cost: 200, dev_time: 1}
  - {id: big_ui, name: Big UI, pillar: Design, quality: 4, cost: 300, dev_time: 1, capacity_cost: 2}
  - {id: code, name: Code, pillar: Development, quality: 3, cost: 300, dev_time: 2}
  - {id: ads, name: Ads, pillar: Marketing, marketing_power: 3, cost: 100, dev_time: 1}
  - {id: rich, name: Rich, pillar: Development, quality: 5, cost: 100, dev_time: 1, unlock: {type: money, amount: 100000}}
  - {id: vet, name: Vet, pillar: Development, quality: 5, cost: 100, dev_time: 1, unlock: {type: mastery, releases: 1}}
  - {id: fans, name: Fans, pillar: Marketing, marketing_power: 5, cost: 100, dev_time: 1, unlock: {type: fanbase, amount: 5000}}
  - {id: surf, name: Surf, pillar: Marketing, marketing_power: 5, cost: 100, dev_time: 1, unlock: {type: trend, trend_id: wave}}
  - {id: gamepad, name: Gamepad, pillar: Design, quality: 2, cost: 100, dev_time: 1, exclusive_to: game}
  - {id: gold, name: Gold, pillar: Design, quality: 1, cost: 6000, dev_time: 1}
synergies:
  - {id: polish, label: Polish, components: [ui, code], bonus: {quality: 1}}
trends:
  - {id: wave, name: Wave, duration: {min: 3, max: 3}, category_boosts: {app: 1.2}}
archetypes:
  - {id: GIANT, power: 9, release_chance: 0, quality_bonus: 2, revenue_mult: 3, categories: [app], trend_delay: 2}
corporations:
  - {id: mega, name: Mega, archetype: GIANT}
`

func newTestGame(t *testing.T) *Game {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	g := New(engine.New(cat), entropy.NewSeeded(42))
	// Established players never fail a launch outright.
	g.state.Fanbase = 1000
	return g
}

var basicBuild = BuildRequest{Name: "Notes", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "ui", "code"}}

// reviewed starts req and ticks until its review is ready.
func reviewed(t *testing.T, g *Game, req BuildRequest) engine.Project {
	t.Helper()
	p, err := g.StartProject(req)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		rep, err := g.AdvanceTick()
		require.NoError(t, err)
		if rep.Review != nil {
			require.Equal(t, p.ID, rep.ProjectID)
			return p
		}
	}
	t.Fatalf("project %s never reached review", p.ID)
	return p
}

func TestNewGame(t *testing.T) {
	g := newTestGame(t)
	s := g.Status()

	assert.Equal(t, 1, s.Month)
	assert.InDelta(t, 5000.0, s.Money, 1e-9)
	assert.Equal(t, engine.BaseEnergy, s.EnergyAvailable)
	assert.Equal(t, "wave", s.Trend.TrendID)
	assert.Equal(t, "Wave", s.TrendName)
	assert.Len(t, g.Corporations(), 1)
	assert.Nil(t, s.Win)
}

func TestValidateBuild(t *testing.T) {
	tests := []struct {
		name string
		req  BuildRequest
		want error
	}{
		{"empty name", BuildRequest{Name: "  ", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "ui"}}, ErrEmptyName},
		{"unknown type", BuildRequest{Name: "x", SoftwareTypeID: "nope", ComponentIDs: []string{"idea", "ui"}}, ErrUnknownSoftwareType},
		{"too few", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea"}}, ErrTooFewComponents},
		{"duplicate", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "idea"}}, ErrDuplicateComponent},
		{"unknown component", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "ghost"}}, ErrUnknownComponent},
		{"exclusive", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "gamepad"}}, ErrExclusiveComponent},
		{"money lock", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "rich"}}, ErrComponentLocked},
		{"mastery lock", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "vet"}}, ErrComponentLocked},
		{"fanbase lock", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "fans"}}, ErrComponentLocked},
		{"pillar full", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "idea2"}}, ErrPillarCapacity},
		{"capacity cost", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"big_ui", "ui"}}, ErrPillarCapacity},
		{"money", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "gold"}}, ErrNotEnoughMoney},
		{"ok", BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "surf"}}, nil},
		{"game ok", BuildRequest{Name: "x", SoftwareTypeID: "game", ComponentIDs: []string{"gamepad"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t)
			_, err := g.ValidateBuild(tt.req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidateBuildEnergy(t *testing.T) {
	g := newTestGame(t)
	_, err := g.StartProject(basicBuild)
	require.NoError(t, err)

	_, err = g.ValidateBuild(BuildRequest{Name: "Quest", SoftwareTypeID: "game", ComponentIDs: []string{"gamepad"}})
	assert.ErrorIs(t, err, ErrNotEnoughEnergy)
}

func TestStartProject(t *testing.T) {
	g := newTestGame(t)

	p, err := g.StartProject(basicBuild)
	require.NoError(t, err)
	assert.Equal(t, "proj_1", p.ID)
	assert.Equal(t, engine.InDevelopment, p.Status)
	assert.InDelta(t, 600.0, p.TotalCost, 1e-9)
	assert.Equal(t, 4, p.MonthsLeft)
	assert.Equal(t, 4, p.TotalMonths)
	assert.Equal(t, 1, p.StartMonth)

	s := g.Status()
	assert.InDelta(t, 4400.0, s.Money, 1e-9)
	assert.Equal(t, 40, s.EnergyAvailable)
	assert.Equal(t, 1, s.ActiveProjects)
	assert.Equal(t, []string{"polish"}, g.DiscoveredSynergies())
}

func TestReviewCheckpoint(t *testing.T) {
	g := newTestGame(t)
	p, err := g.StartProject(basicBuild)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		rep, err := g.AdvanceTick()
		require.NoError(t, err)
		require.Nil(t, rep.Review)
	}
	assert.Equal(t, 5, g.Status().Month)

	rep, err := g.AdvanceTick()
	require.NoError(t, err)
	require.NotNil(t, rep.Review)
	assert.Equal(t, p.ID, rep.ProjectID)
	assert.Equal(t, 5, rep.Month)
	assert.True(t, g.Status().ReviewPending)

	_, err = g.AdvanceTick()
	assert.ErrorIs(t, err, ErrReviewPending)

	pending, err := g.PendingReview()
	require.NoError(t, err)
	assert.Equal(t, p.ID, pending.ID)
	require.NotNil(t, pending.Review)
	assert.Equal(t, *rep.Review, *pending.Review)
}

func TestPublish(t *testing.T) {
	g := newTestGame(t)
	p := reviewed(t, g, basicBuild)
	before := g.Status()

	out, err := g.Publish(p.ID)
	require.NoError(t, err)
	require.False(t, out.IsFail)
	require.NotNil(t, out.Product)

	s := g.Status()
	assert.Equal(t, 1, s.Releases)
	assert.Equal(t, 1, s.LiveProducts)
	assert.Zero(t, s.ActiveProjects)
	assert.InDelta(t, before.Money+out.LaunchRevenue, s.Money, 1e-9)
	assert.Equal(t, before.Fanbase+out.FanGain, s.Fanbase)
	assert.Greater(t, s.MarketShare, before.MarketShare)
	assert.True(t, g.Unlocked("vet"))
	assert.Empty(t, g.Projects())

	ns := g.Notifications()
	require.NotEmpty(t, ns)
	assert.Contains(t, []string{NotifyRelease, NotifyViral}, ns[0].Type)
	assert.Equal(t, out.Message, ns[0].Message)
	assert.Equal(t, s.Month, ns[0].Month)

	_, err = g.Publish(p.ID)
	assert.ErrorIs(t, err, ErrProjectNotFound)

	_, err = g.AdvanceTick()
	assert.NoError(t, err)
}

func TestPublishNeedsReview(t *testing.T) {
	g := newTestGame(t)
	p, err := g.StartProject(basicBuild)
	require.NoError(t, err)

	_, err = g.Publish(p.ID)
	assert.ErrorIs(t, err, ErrNoPendingReview)
	assert.ErrorIs(t, g.AcceptFailure(p.ID), ErrNoPendingReview)

	_, err = g.PendingReview()
	assert.ErrorIs(t, err, ErrNoPendingReview)
}

func TestAcceptFailure(t *testing.T) {
	g := newTestGame(t)
	p := reviewed(t, g, basicBuild)

	require.NoError(t, g.AcceptFailure(p.ID))
	assert.Empty(t, g.Projects())
	assert.Empty(t, g.Products())
	assert.ErrorIs(t, g.AcceptFailure(p.ID), ErrProjectNotFound)

	_, err := g.AdvanceTick()
	assert.NoError(t, err)
}

func TestArchiveRaisesLegacy(t *testing.T) {
	g := newTestGame(t)
	for i := 0; i < 7; i++ {
		g.state.Products = append(g.state.Products, engine.Product{
			ID: "prod" + string(rune('a'+i)), OwnerID: engine.PlayerID, SoftwareTypeID: "app", CurrentRevenue: 100, MaxMonths: 12,
		})
	}

	a, err := g.Archive("proda")
	require.NoError(t, err)
	assert.Equal(t, engine.ReasonManual, a.Reason)
	assert.Equal(t, 1, a.ArchivedAt)
	assert.Equal(t, 1, g.Legacy()["app"])

	for _, id := range []string{"prodb", "prodc", "prodd", "prode", "prodf", "prodg"} {
		_, err := g.Archive(id)
		require.NoError(t, err)
	}
	assert.Equal(t, MaxLegacyLevel, g.Legacy()["app"])
	assert.Len(t, g.Archived(), 7)
	assert.Empty(t, g.Products())

	_, err = g.Archive("proda")
	assert.ErrorIs(t, err, ErrProductNotFound)

	plan, err := g.ValidateBuild(basicBuild)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, plan.LegacyRatingBonus, 1e-9)

	p, err := g.StartProject(basicBuild)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p.LegacyRatingBonus, 1e-9)

	ns := g.Notifications()
	require.NotEmpty(t, ns)
	assert.Equal(t, NotifyProjectStarted, ns[0].Type)
	assert.Equal(t, NotifyArchive, ns[1].Type)
	assert.Contains(t, ns[1].Message, "Legacy established")
}

func TestLegacyLiftsProductRatingOnly(t *testing.T) {
	plain := newTestGame(t)
	vet := newTestGame(t)
	vet.legacy["app"] = MaxLegacyLevel

	pp := reviewed(t, plain, basicBuild)
	vp := reviewed(t, vet, basicBuild)
	pr, err := plain.PendingReview()
	require.NoError(t, err)
	vr, err := vet.PendingReview()
	require.NoError(t, err)
	assert.Equal(t, pr.Review.FinalRating, vr.Review.FinalRating)

	po, err := plain.Publish(pp.ID)
	require.NoError(t, err)
	vo, err := vet.Publish(vp.ID)
	require.NoError(t, err)
	require.False(t, po.IsFail)
	require.False(t, vo.IsFail)

	assert.Equal(t, po.Rating, vo.Rating)
	assert.Equal(t, po.FanGain, vo.FanGain)
	assert.InDelta(t, po.LaunchRevenue, vo.LaunchRevenue, 1e-9)
	assert.InDelta(t, po.ShareGain, vo.ShareGain, 1e-9)
	assert.InDelta(t, plain.Status().MarketShare, vet.Status().MarketShare, 1e-9)

	want := math.Round(math.Min(10, po.Product.Rating+float64(MaxLegacyLevel)*LegacyRatingStep)*10) / 10
	assert.InDelta(t, want, vet.Products()[0].Rating, 1e-9)
	assert.InDelta(t, want, vo.Product.Rating, 1e-9)
	assert.InDelta(t, po.Product.Rating, plain.Products()[0].Rating, 1e-9)
}

func TestSlotBonusFromShare(t *testing.T) {
	g := newTestGame(t)
	p := reviewed(t, g, basicBuild)
	g.state.MarketShare = 0.3

	assert.ErrorIs(t, g.ChooseSlotBonus(catalog.PillarIdeation), ErrNoSlotChoice)

	_, err := g.Publish(p.ID)
	require.NoError(t, err)
	require.True(t, g.SlotPending())

	assert.ErrorIs(t, g.ChooseSlotBonus("Sales"), ErrUnknownPillar)
	assert.Equal(t, NotifyUnlock, g.Notifications()[0].Type)
	require.NoError(t, g.ChooseSlotBonus(catalog.PillarIdeation))
	assert.Equal(t, 2, g.Capacity(catalog.PillarIdeation))
	assert.Contains(t, g.Notifications()[0].Message, "+1 slot for Ideation")
	assert.False(t, g.SlotPending())
	assert.ErrorIs(t, g.ChooseSlotBonus(catalog.PillarIdeation), ErrNoSlotChoice)

	_, err = g.ValidateBuild(BuildRequest{Name: "x", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "idea2"}})
	assert.NoError(t, err)
}

func TestSlotBonusFromGiant(t *testing.T) {
	g := newTestGame(t)
	p := reviewed(t, g, basicBuild)
	g.state.CompetitorProducts = append(g.state.CompetitorProducts, engine.Product{
		ID: "rival", OwnerID: "mega", SoftwareTypeID: "app", Rating: 0.6, CurrentRevenue: 1000, MaxMonths: 12,
	})

	_, err := g.Publish(p.ID)
	require.NoError(t, err)
	assert.True(t, g.SlotPending())
}

func TestUnlockConditions(t *testing.T) {
	g := newTestGame(t)

	assert.True(t, g.Unlocked("idea"))
	assert.True(t, g.Unlocked("surf"))
	assert.False(t, g.Unlocked("rich"))
	assert.False(t, g.Unlocked("fans"))
	assert.False(t, g.Unlocked("ghost"))

	g.state.Trend.TrendID = ""
	g.state.LifetimeRevenue = 100000
	g.state.Fanbase = 5000
	assert.False(t, g.Unlocked("surf"))
	assert.True(t, g.Unlocked("rich"))
	assert.True(t, g.Unlocked("fans"))

	views := g.Components()
	require.Len(t, views, len(g.Engine().Catalog.Components))
	for _, v := range views {
		assert.Equal(t, g.Unlocked(v.ID), v.Unlocked, v.ID)
	}
}

func TestNotificationsRing(t *testing.T) {
	g := newTestGame(t)
	for i := 0; i < 12; i++ {
		g.notify(engine.Notification{ID: string(rune('a' + i)), Month: i})
	}

	ns := g.Notifications()
	require.Len(t, ns, MaxNotifications)
	assert.Equal(t, "l", ns[0].ID)
	assert.Equal(t, "c", ns[MaxNotifications-1].ID)

	require.NoError(t, g.Dismiss("l"))
	assert.Len(t, g.Notifications(), MaxNotifications-1)
	assert.ErrorIs(t, g.Dismiss("a"), ErrNotificationMissing)

	p, err := g.StartProject(basicBuild)
	require.NoError(t, err)
	ns = g.Notifications()
	require.Len(t, ns, MaxNotifications)
	assert.Equal(t, NotifyProjectStarted, ns[0].Type)
	assert.Contains(t, ns[0].Message, p.Name)

	// Ids are derived, so an identical run yields identical ids.
	other := newTestGame(t)
	_, err = other.StartProject(basicBuild)
	require.NoError(t, err)
	assert.Equal(t, ns[0].ID, other.Notifications()[0].ID)
}

func TestWinAfterTick(t *testing.T) {
	g := newTestGame(t)
	g.state.LifetimeRevenue = engine.WinRevenue

	rep, err := g.AdvanceTick()
	require.NoError(t, err)
	require.NotNil(t, rep.Win)
	assert.Equal(t, "revenue", rep.Win.Type)
	assert.Equal(t, rep.Win, g.Win())
}

func TestSnapshotRestore(t *testing.T) {
	g := newTestGame(t)
	p := reviewed(t, g, basicBuild)
	_, err := g.Publish(p.ID)
	require.NoError(t, err)
	_, err = g.StartProject(BuildRequest{Name: "Second", SoftwareTypeID: "app", ComponentIDs: []string{"idea", "vet"}})
	require.NoError(t, err)

	raw, err := json.Marshal(g.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	restored := Restore(g.Engine(), entropy.NewSeeded(1), snap)

	again, err := json.Marshal(restored.Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
	assert.Equal(t, g.Status(), restored.Status())
	assert.True(t, restored.Unlocked("vet"))

	_, err = restored.AdvanceTick()
	assert.NoError(t, err)
}
