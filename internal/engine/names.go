package engine

import (
	"fmt"

	"github.com/talgya/solostack/internal/entropy"
)

var namePrefixes = []string{
	"Nova", "Apex", "Core", "Pulse", "Vertex", "Nimbus", "Echo", "Zen", "Atlas", "Quantum",
	"Hyper", "Cyber", "Omni", "Flux", "Strata", "Vector", "Orbit", "Prism", "Aero", "Lumina",
	"Synapse", "Velocity", "Titan", "Fusion", "Spark", "Meta", "Iron", "Crystal", "Shadow", "Frost",
}

var genericSuffixes = []string{
	"System", "Works", "Labs", "Soft", "Tech", "Net", "Ware", "Hub", "Box", "Base", "Flow",
}

var suffixesByType = map[string][]string{
	"indie_hit":    {"Legends", "Quest", "Saga", "Rush", "Clash", "Run", "Tycoon", "Battle", "Heroes", "Tap", "Go", "World", "City", "Farm", "Puzzle"},
	"everyday_app": {"Pro", "Focus", "Task", "Note", "Plan", "Docs", "Sheets", "Mind", "List", "Cal", "Space", "Deck", "Mail"},
	"hustle_saas":  {"Analytics", "Desk", "CRM", "Sales", "Force", "Host", "Cloud", "Deploy", "Monitor", "Guard", "Scale", "Track", "Bot"},
	"system_toy":   {"Saver", "Block", "Pass", "Clip", "Mate", "Helper", "Quick", "Cast", "Search", "Find", "View", "Scout", "Pick"},
}

// productName names a competitor release. 60% of names are creative
// ("Nova Quest"), the rest iterate on the owner ("MegaSoft Note 4").
// Draws: one for the style, then two (creative) or one (iterative).
func productName(owner, typeID string, releases int, src entropy.Source) string {
	suffixes, ok := suffixesByType[typeID]
	if !ok {
		suffixes = genericSuffixes
	}

	if src.Float64() < 0.6 {
		prefix := namePrefixes[entropy.Intn(src, len(namePrefixes))]
		suffix := suffixes[entropy.Intn(src, len(suffixes))]
		return prefix + " " + suffix
	}
	suffix := suffixes[entropy.Intn(src, len(suffixes))]
	return fmt.Sprintf("%s %s %d", owner, suffix, releases+1)
}
