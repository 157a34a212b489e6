package game

import (
	"maps"
	"slices"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/engine"
	"github.com/talgya/solostack/internal/entropy"
)

// Snapshot is the complete serializable run.
type Snapshot struct {
	State         engine.State             `json:"state"`
	Archive       []engine.ArchivedProduct `json:"archive"`
	Notifications []engine.Notification    `json:"notifications"`
	Legacy        map[string]int           `json:"legacy"`
	BonusSlots    map[catalog.Pillar]int   `json:"bonus_slots"`
	Discovered    []string                 `json:"discovered"`
	SlotPending   bool                     `json:"slot_pending"`
	SlotAwarded   bool                     `json:"slot_awarded"`
	Releases      int                      `json:"releases"`
	NextProject   int                      `json:"next_project"`
	Win           *engine.Win              `json:"win,omitempty"`
}

// Snapshot captures the run for persistence.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	discovered := slices.Sorted(maps.Keys(g.discovered))
	st := g.state
	st.Products = slices.Clone(st.Products)
	st.CompetitorProducts = slices.Clone(st.CompetitorProducts)
	st.Projects = slices.Clone(st.Projects)
	st.Corporations = slices.Clone(st.Corporations)

	return Snapshot{
		State:         st,
		Archive:       slices.Clone(g.archive),
		Notifications: slices.Clone(g.notifications),
		Legacy:        maps.Clone(g.legacy),
		BonusSlots:    maps.Clone(g.bonusSlots),
		Discovered:    discovered,
		SlotPending:   g.slotPending,
		SlotAwarded:   g.slotAwarded,
		Releases:      g.releases,
		NextProject:   g.nextProject,
		Win:           g.win,
	}
}

// Restore resumes a run from snap.
func Restore(eng *engine.Engine, src entropy.Source, snap Snapshot) *Game {
	g := &Game{
		eng:           eng,
		src:           src,
		state:         snap.State,
		archive:       snap.Archive,
		notifications: snap.Notifications,
		legacy:        snap.Legacy,
		bonusSlots:    snap.BonusSlots,
		discovered:    make(map[string]bool, len(snap.Discovered)),
		slotPending:   snap.SlotPending,
		slotAwarded:   snap.SlotAwarded,
		releases:      snap.Releases,
		nextProject:   snap.NextProject,
		win:           snap.Win,
	}
	if g.legacy == nil {
		g.legacy = make(map[string]int)
	}
	if g.bonusSlots == nil {
		g.bonusSlots = make(map[catalog.Pillar]int)
	}
	for _, id := range snap.Discovered {
		g.discovered[id] = true
	}
	return g
}
