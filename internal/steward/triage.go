package steward

import "github.com/talgya/solostack/internal/engine"

// Health levels, most severe first.
const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
	LevelWatch    = "WATCH"
	LevelHealthy  = "HEALTHY"
)

// RunHealth holds derived signals computed from a RunSnapshot.
// Deterministic and cheap; runs before every decision.
type RunHealth struct {
	Income        float64
	ShareHeadroom float64
	Weakest       *engine.Product // lowest earning live product
	Level         string
}

// Triage computes a RunHealth from the snapshot.
func Triage(snap *RunSnapshot) *RunHealth {
	st := snap.Status
	h := &RunHealth{
		Income:        st.MonthlyIncome,
		ShareHeadroom: st.MarketShare - engine.MinPlayerShare,
	}

	for i := range snap.Products {
		p := &snap.Products[i]
		if h.Weakest == nil || p.CurrentRevenue < h.Weakest.CurrentRevenue ||
			(p.CurrentRevenue == h.Weakest.CurrentRevenue && p.ID < h.Weakest.ID) {
			h.Weakest = p
		}
	}

	h.Level = LevelHealthy
	switch {
	case st.MonthlyIncome <= 0 && st.Money < 500:
		h.Level = LevelCritical
	case st.MonthlyIncome <= 0:
		h.Level = LevelWarning
	case h.ShareHeadroom < engine.MinPlayerShare:
		h.Level = LevelWatch
	}
	return h
}
