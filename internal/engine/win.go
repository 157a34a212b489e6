package engine

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
)

// Win is a reached victory condition.
type Win struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// CheckWinConditions returns the first satisfied condition, checked in
// priority order: lifetime revenue, market share, category domination.
func (e *Engine) CheckWinConditions(st *State) *Win {
	if st.LifetimeRevenue >= WinRevenue {
		return &Win{
			Type:    "revenue",
			Title:   "Financial Success",
			Message: fmt.Sprintf("You crossed $%s in lifetime revenue! A comfortable retirement awaits.", humanize.Comma(WinRevenue)),
		}
	}

	if st.MarketShare >= WinMarketShare {
		return &Win{
			Type:    "market",
			Title:   "Industry Hegemony",
			Message: fmt.Sprintf("You own %d%% of the market. You are the software industry.", int(math.Round(st.MarketShare*100))),
		}
	}

	dominated := 0
	for _, t := range e.Catalog.SoftwareTypes {
		for i := range st.Products {
			p := &st.Products[i]
			if p.IsPlayer() && p.SoftwareTypeID == t.ID && p.Rating >= WinCategoryRating {
				dominated++
				break
			}
		}
	}
	if dominated >= WinCategoryDomination {
		return &Win{
			Type:    "domination",
			Title:   "Category Conqueror",
			Message: fmt.Sprintf("You released blockbusters in %d different software categories!", dominated),
		}
	}
	return nil
}
