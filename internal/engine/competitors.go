package engine

import (
	"fmt"
	"math"
	"slices"

	"github.com/google/uuid"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/entropy"
)

// idSpace namespaces every id the engine derives. Ids are name-based so that
// minting one never consumes a random draw.
var idSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("solostack/engine"))

func deriveID(format string, args ...any) string {
	return uuid.NewSHA1(idSpace, []byte(fmt.Sprintf(format, args...))).String()
}

// Corporation is an AI competitor. Archetype parameters are copied in at
// creation and never change; only the counters and RecentRelease move.
type Corporation struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Archetype     string   `json:"archetype"`
	Power         float64  `json:"power"`
	ReleaseChance float64  `json:"release_chance"`
	QualityBonus  float64  `json:"quality_bonus"`
	RevenueMult   float64  `json:"revenue_mult"`
	Categories    []string `json:"categories"`
	TrendDelay    int      `json:"trend_delay"`
	TrendChaser   bool     `json:"trend_chaser,omitempty"`

	TotalReleases   int     `json:"total_releases"`
	LifetimeRevenue float64 `json:"lifetime_revenue"`
	RecentRelease   bool    `json:"recent_release"`
}

// InitCorporations builds the roster from the catalog, seeding each
// corporation with some release and revenue history. Two draws per
// corporation; unknown archetypes are skipped.
func (e *Engine) InitCorporations(src entropy.Source) []Corporation {
	out := make([]Corporation, 0, len(e.Catalog.Corporations))
	for _, def := range e.Catalog.Corporations {
		arch, ok := e.Catalog.Archetype(def.Archetype)
		if !ok {
			continue
		}
		categories := append([]string(nil), arch.Categories...)
		if def.SpecificCategory != "" {
			categories = []string{def.SpecificCategory}
		}
		out = append(out, Corporation{
			ID:              def.ID,
			Name:            def.Name,
			Archetype:       arch.ID,
			Power:           arch.Power,
			ReleaseChance:   arch.ReleaseChance,
			QualityBonus:    arch.QualityBonus,
			RevenueMult:     arch.RevenueMult,
			Categories:      categories,
			TrendDelay:      arch.TrendDelay,
			TrendChaser:     arch.TrendChaser,
			TotalReleases:   entropy.Intn(src, 5),
			LifetimeRevenue: math.Floor(src.Float64() * 50000),
		})
	}
	return out
}

// CorpTickResult is one month of competitor activity.
type CorpTickResult struct {
	Corps         []Corporation  `json:"corps"`
	Notifications []Notification `json:"notifications"`
	NewProducts   []Product      `json:"new_products"`
}

// TickCorporations lets every corporation decide whether to ship this month.
// marketShare is the player's share before this month's erosion.
// trendStart is the month the active trend began.
//
// Draws per corporation: the release roll; on release, the category pick,
// the blockbuster roll, len(eligible)-1 shuffle draws, the rating draw and
// two or three name draws.
func (e *Engine) TickCorporations(corps []Corporation, marketShare float64, month int, trend *catalog.Trend, trendStart int, src entropy.Source) CorpTickResult {
	res := CorpTickResult{Corps: make([]Corporation, 0, len(corps))}

	for _, c := range corps {
		c.RecentRelease = false
		if !entropy.Chance(src, c.ReleaseChance) || len(c.Categories) == 0 {
			res.Corps = append(res.Corps, c)
			continue
		}

		category := c.Categories[entropy.Intn(src, len(c.Categories))]
		if c.TrendChaser && trend != nil && month-trendStart >= c.TrendDelay {
			if primary := trend.PrimaryCategory(); slices.Contains(c.Categories, primary) {
				category = primary
			}
		}

		t, _ := e.Catalog.SoftwareType(category)
		blockbuster := entropy.Chance(src, BlockbusterChance)
		ids := e.pickComponents(category, c.Power, src)
		s := e.Aggregate(ids)

		score := ScoreBuild(s, ScoreContext{
			Type:            t,
			TypeID:          category,
			Trend:           trend,
			MarketShare:     marketShare,
			Power:           c.Power,
			QualityBonus:    c.QualityBonus,
			RevenueMult:     c.RevenueMult,
			LifetimeRevenue: c.LifetimeRevenue,
			Blockbuster:     blockbuster,
		}, ProfileAI, src)

		name := productName(c.Name, category, c.TotalReleases, src)

		lifespan := FallbackLifespan
		if t != nil {
			lifespan = t.BaseLifespan
		}
		maxMonths := lifespan + int(s.SynergyMeta(catalog.MetaLifespan))
		if blockbuster {
			maxMonths += BlockbusterLifespan
		}

		share := 0.0
		if pool := demandPool(t); pool > 0 {
			share = score.RevenueBase / (pool * 4)
		}

		prod := Product{
			ID:                deriveID("product/%s/%d/%d", c.ID, month, c.TotalReleases),
			Name:              name,
			SoftwareTypeID:    category,
			OwnerID:           c.ID,
			OwnerName:         c.Name,
			ComponentIDs:      ids,
			Rating:            round1(score.Rating),
			RevenueMultiplier: s.RevenueMultiplier * orOne(c.RevenueMult),
			CurrentRevenue:    score.RevenueBase,
			MaxMonths:         maxMonths,
			IsBlockbuster:     blockbuster,
			ReleasedAt:        month,
			MarketShare:       share,
			Synergies:         s.SynergyLabels(),
		}
		res.NewProducts = append(res.NewProducts, prod)

		if blockbuster || score.Rating > CorpNotifyRating {
			n := Notification{
				ID:      deriveID("notify/corp/%s/%d", c.ID, month),
				Type:    NotifyCorpRelease,
				Month:   month,
				Message: fmt.Sprintf("%s released %q (%.1f/10)", c.Name, name, score.Rating),
			}
			if blockbuster {
				n.Type = NotifyCorpBlockbuster
				n.Message = fmt.Sprintf("%s dropped a BLOCKBUSTER: %q!", c.Name, name)
			}
			res.Notifications = append(res.Notifications, n)
		}

		c.TotalReleases++
		c.RecentRelease = true
		res.Corps = append(res.Corps, c)
	}
	return res
}

// pickComponents draws a pseudo-build sized by power from the components a
// category may use, in catalog order, Fisher-Yates shuffled.
func (e *Engine) pickComponents(typeID string, power float64, src entropy.Source) []string {
	count := int(math.Min(15, math.Floor(power*1.5)))

	var eligible []string
	for i := range e.Catalog.Components {
		if c := &e.Catalog.Components[i]; c.AllowedFor(typeID) {
			eligible = append(eligible, c.ID)
		}
	}
	entropy.Shuffle(src, eligible)

	if count < 0 {
		count = 0
	}
	if count > len(eligible) {
		count = len(eligible)
	}
	return eligible[:count]
}
