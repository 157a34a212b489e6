package steward

import (
	"fmt"

	"github.com/talgya/solostack/internal/catalog"
)

// Actions the steward can take.
const (
	ActionNone    = "none"
	ActionPublish = "publish"
	ActionScrap   = "scrap"
	ActionSlot    = "slot"
	ActionRetire  = "retire"
)

// Policy tunes the decision rules.
type Policy struct {
	MinRating     float64        // reviews below this are scrap candidates
	MaxFailChance float64        // ...when the launch failure chance is at least this
	MinEnergy     int            // retire the weakest product below this headroom
	SlotPillar    catalog.Pillar // where bonus slots go
}

// DefaultPolicy is a cautious player.
func DefaultPolicy() Policy {
	return Policy{
		MinRating:     4,
		MaxFailChance: 0.4,
		MinEnergy:     6,
		SlotPillar:    catalog.PillarDevelopment,
	}
}

// Decision is one action with its target.
type Decision struct {
	Action    string         `json:"action"`
	Target    string         `json:"target,omitempty"`
	Pillar    catalog.Pillar `json:"pillar,omitempty"`
	Rationale string         `json:"rationale"`
}

// Decide picks at most one action per cycle. A pending review always comes
// first since it blocks the clock.
func Decide(snap *RunSnapshot, h *RunHealth, pol Policy) Decision {
	if p := snap.Pending; p != nil && p.Review != nil {
		r := p.Review
		if r.FinalRating < pol.MinRating && r.FailChance >= pol.MaxFailChance && h.Level != LevelCritical {
			return Decision{
				Action:    ActionScrap,
				Target:    p.ID,
				Rationale: fmt.Sprintf("rating %.1f with %s failure risk is not worth launching", r.FinalRating, r.FailLabel),
			}
		}
		return Decision{
			Action:    ActionPublish,
			Target:    p.ID,
			Rationale: fmt.Sprintf("rating %.1f, %s viral, %s fail", r.FinalRating, r.ViralLabel, r.FailLabel),
		}
	}

	if snap.Status.SlotPending {
		pillar := pol.SlotPillar
		if !pillar.Valid() {
			pillar = catalog.PillarDevelopment
		}
		return Decision{Action: ActionSlot, Pillar: pillar, Rationale: "bonus slot available"}
	}

	if snap.Status.EnergyAvailable < pol.MinEnergy && h.Weakest != nil && len(snap.Products) > 1 {
		return Decision{
			Action:    ActionRetire,
			Target:    h.Weakest.ID,
			Rationale: fmt.Sprintf("energy %d below %d; %q earns least", snap.Status.EnergyAvailable, pol.MinEnergy, h.Weakest.Name),
		}
	}

	return Decision{Action: ActionNone, Rationale: "run is " + h.Level}
}
