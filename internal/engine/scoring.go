package engine

import (
	"fmt"
	"math"
	"strings"

	"github.com/talgya/solostack/internal/catalog"
	"github.com/talgya/solostack/internal/entropy"
)

// TrendAlignment scores how well a build fits the active trend, in [0.3, 2.5].
// Each distinct tag counts once. A nil trend is neutral.
func TrendAlignment(tags []string, typeID string, trend *catalog.Trend) float64 {
	if trend == nil {
		return 1.0
	}
	score := 1.0
	if b, ok := trend.CategoryBoosts[typeID]; ok && b != 0 {
		score *= b
	}
	if p, ok := trend.CategoryPenalties[typeID]; ok && p != 0 {
		score *= p
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		if b, ok := trend.TagBoosts[tag]; ok && b != 0 {
			score += (b - 1) * 0.5
		}
		if p, ok := trend.TagPenalties[tag]; ok && p != 0 {
			score -= (1 - p) * 0.3
		}
	}
	return clamp(score, 0.3, 2.5)
}

// Profile selects which rating formula ScoreBuild applies.
type Profile int

const (
	// ProfilePlayer is the weighted-sum rating with fan resistance and risk volatility.
	ProfilePlayer Profile = iota
	// ProfileAI is the simplified power-driven competitor rating.
	ProfileAI
)

// ScoreContext is everything besides the stats that a build is scored against.
type ScoreContext struct {
	Type        *catalog.SoftwareType
	TypeID      string
	Trend       *catalog.Trend
	Fanbase     int
	MarketShare float64

	// AI profile only.
	Power           float64
	QualityBonus    float64
	RevenueMult     float64
	LifetimeRevenue float64
	Blockbuster     bool
}

// BuildScore is the shared rating/revenue primitive result.
type BuildScore struct {
	Rating      float64 `json:"rating"`
	RevenueBase float64 `json:"revenue_base"`
}

// ScoreBuild rates a build and estimates its base monthly revenue. Both
// profiles consume exactly one draw.
func ScoreBuild(s Stats, ctx ScoreContext, profile Profile, src entropy.Source) BuildScore {
	critic := s.SynergyMeta(catalog.MetaCriticsScore)
	player := s.SynergyMeta(catalog.MetaPlayerScore)

	if profile == ProfileAI {
		base := 5.0 + ctx.Power/3 + src.Float64()*2.5
		if ctx.Blockbuster {
			base += BlockbusterRating
		}
		rating := clamp(base+(critic+player)*0.4+ctx.QualityBonus, 3, 10)

		revMult := s.RevenueMultiplier * orOne(ctx.RevenueMult)
		virtualFans := 1 + (ctx.LifetimeRevenue/150000)*FanbaseRevenueMultiplier
		revenue := math.Min(demandPool(ctx.Type)*CorpDemandCap, BaseRevenuePerRating*rating*virtualFans*revMult)
		return BuildScore{Rating: rating, RevenueBase: roundHalfUp(revenue)}
	}

	quality := clamp(s.Quality, 0, 10)
	innovation := clamp(s.Innovation, 0, 10)
	marketing := clamp(s.MarketingPower, 0, 10)
	trendScore := clamp(TrendAlignment(s.Tags, ctx.TypeID, ctx.Trend)/2*10, 0, 10)

	raw := quality*RatingQualityWeight +
		innovation*RatingInnovationWeight +
		trendScore*RatingTrendWeight +
		marketing*RatingMarketingWeight
	raw += critic*0.4 + player*0.6

	fanResistance := math.Min(1.5, 1+float64(ctx.Fanbase)/50000*0.5)
	volatility := (src.Float64() - 0.5) * s.TotalRisk(ctx.Type) * 4

	rating := clamp(raw*fanResistance+volatility, 0.5, 10)
	return BuildScore{
		Rating:      rating,
		RevenueBase: MonthlyRevenue(rating, ctx.Fanbase, ctx.MarketShare, ctx.Trend, ctx.Type, s.RevenueMultiplier),
	}
}

// Rating is the player-grade rating for a selection, in [0.5, 10].
// Consumes exactly one draw.
func (e *Engine) Rating(ids []string, typeID string, trend *catalog.Trend, fanbase int, src entropy.Source) float64 {
	t, _ := e.Catalog.SoftwareType(typeID)
	ctx := ScoreContext{Type: t, TypeID: typeID, Trend: trend, Fanbase: fanbase}
	return ScoreBuild(e.Aggregate(ids), ctx, ProfilePlayer, src).Rating
}

// FailureChance is the launch failure probability in [0, 0.5]. An unknown
// type returns the ceiling.
func (e *Engine) FailureChance(ids []string, typeID string) float64 {
	t, ok := e.Catalog.SoftwareType(typeID)
	if !ok {
		return MaxFailChance
	}
	return failureChance(e.Aggregate(ids), t)
}

func failureChance(s Stats, t *catalog.SoftwareType) float64 {
	return math.Min(MaxFailChance, SevereFailChance+s.TotalRisk(t)*0.8)
}

// ViralChance is the launch viral probability in [0, 0.8].
func (e *Engine) ViralChance(ids []string, alignment float64, typeID string) float64 {
	t, _ := e.Catalog.SoftwareType(typeID)
	return viralChance(e.Aggregate(ids), alignment, t)
}

func viralChance(s Stats, alignment float64, t *catalog.SoftwareType) float64 {
	chance := ViralBaseChance +
		s.MarketingPower*0.02 +
		s.SynergyMeta(catalog.MetaViralChance) +
		(alignment-1)*0.05
	return clamp(chance*t.ViralMultiplier(), 0, MaxViralChance)
}

// Review is the scored outcome of a finished project. It is recomputed, never
// stored beyond the pending-review step.
type Review struct {
	CriticsScore       float64 `json:"critics_score"`
	CriticsText        string  `json:"critics_text"`
	PlayerScore        float64 `json:"player_score"`
	PlayerText         string  `json:"player_text"`
	FinalRating        float64 `json:"final_rating"`
	ViralChance        float64 `json:"viral_chance"`
	ViralLabel         string  `json:"viral_label"`
	FailChance         float64 `json:"fail_chance"`
	FailLabel          string  `json:"fail_label"`
	BaseEstimate       float64 `json:"base_estimate"`
	RevenueEstimateMin float64 `json:"revenue_estimate_min"`
	RevenueEstimateMax float64 `json:"revenue_estimate_max"`
	TrendAlignment     float64 `json:"trend_alignment"`
	TrendLabel         string  `json:"trend_label"`
	TrendPercent       int     `json:"trend_percent"`
}

// PlayerContext is the slice of player state the scoring formulas read.
type PlayerContext struct {
	Fanbase     int     `json:"fanbase"`
	MarketShare float64 `json:"market_share"`
	Month       int     `json:"month"`
}

// GenerateReviews scores a finished build. Consumes exactly two draws:
// critics then players.
func (e *Engine) GenerateReviews(ids []string, typeID string, player PlayerContext, trend *catalog.Trend, src entropy.Source) Review {
	s := e.Aggregate(ids)
	t, _ := e.Catalog.SoftwareType(typeID)
	alignment := TrendAlignment(s.Tags, typeID, trend)

	criticSyn := s.SynergyMeta(catalog.MetaCriticsScore)
	playerSyn := s.SynergyMeta(catalog.MetaPlayerScore)

	rawCritics := s.Quality + s.Innovation*0.8 + criticSyn - s.TotalRisk(t)*2.0
	critics := round1(clamp(4.0+rawCritics*0.6+(src.Float64()-0.5)*0.8, 3.0, 9.9))

	fanBonus := math.Min(1.2, 1+float64(player.Fanbase)/30000*0.4)
	marketingBonus := math.Min(1.5, s.MarketingPower*0.2)
	trendBonus := (alignment - 1) * 0.5
	rawPlayer := critics*fanBonus + marketingBonus + trendBonus + playerSyn
	players := round1(math.Max(critics-1.0, math.Min(10.0, rawPlayer+(src.Float64()-0.4)*0.6)))

	final := round1(critics*0.4 + players*0.6)

	viral := viralChance(s, alignment, t)
	fail := MaxFailChance
	if t != nil {
		fail = failureChance(s, t)
	}

	base := MonthlyRevenue(final, player.Fanbase, player.MarketShare, trend, t, s.RevenueMultiplier)
	high := 1.5
	if viral > 0.3 {
		high = 3.0
	}

	return Review{
		CriticsScore:       critics,
		CriticsText:        criticsText(critics, s),
		PlayerScore:        players,
		PlayerText:         playerText(players),
		FinalRating:        final,
		ViralChance:        viral,
		ViralLabel:         viralLabel(viral),
		FailChance:         fail,
		FailLabel:          failLabel(fail),
		BaseEstimate:       base,
		RevenueEstimateMin: roundHalfUp(base * 0.7),
		RevenueEstimateMax: roundHalfUp(base * high),
		TrendAlignment:     alignment,
		TrendLabel:         trendLabel(alignment),
		TrendPercent:       int(roundHalfUp((alignment - 1) * 100)),
	}
}

func criticsText(score float64, s Stats) string {
	var lines []string
	if score >= 9.0 {
		lines = append(lines, "A masterpiece. Every solo dev dreams of this.")
	}
	if score >= 7.5 {
		lines = append(lines, "Clean, professional, and targeted.")
	}
	if score < 6.0 {
		lines = append(lines, "A bit amateurish. It needs more focus.")
	}
	if s.Innovation > 3.0 {
		lines = append(lines, "Shocking innovation for a solo effort.")
	}
	switch {
	case len(s.Synergies) >= 2:
		lines = append(lines, fmt.Sprintf("The combo of %s and %s is brilliant.", s.Synergies[0].Label, s.Synergies[1].Label))
	case len(s.Synergies) == 1:
		lines = append(lines, fmt.Sprintf("The %s vibe really works here.", s.Synergies[0].Label))
	}
	if len(lines) == 0 {
		return "Standard release."
	}
	if len(lines) > 3 {
		lines = lines[:3]
	}
	return strings.Join(lines, " ")
}

func playerText(score float64) string {
	if score >= 8.0 {
		return "The community is buzzing!"
	}
	return "A quiet reception."
}

func viralLabel(c float64) string {
	switch {
	case c > 0.4:
		return "Extreme"
	case c > 0.25:
		return "High"
	case c > 0.1:
		return "Medium"
	}
	return "Low"
}

func failLabel(c float64) string {
	switch {
	case c < 0.05:
		return "Very Low"
	case c < 0.12:
		return "Low"
	case c < 0.25:
		return "Medium"
	}
	return "High"
}

func trendLabel(a float64) string {
	switch {
	case a > 1.5:
		return "Perfect Match"
	case a > 1.1:
		return "Good"
	}
	return "Weak"
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundHalfUp rounds to the nearest integer with halves going up.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func orOne(v float64) float64 {
	if v == 0 {
		return 1.0
	}
	return v
}

func demandPool(t *catalog.SoftwareType) float64 {
	if t == nil {
		return 0
	}
	return t.DemandPool
}
