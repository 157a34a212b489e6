package engine

// Game tuning constants. Content-specific numbers live in the catalog.
const (
	BaseEnergy           = 60   // total energy pool
	StartingMoney        = 5000 // dollars
	StartingFans         = 100
	StartingMarketShare  = 0.02
	ProductPassiveEnergy = 2  // energy per live player product
	UnknownTypeEnergy    = 8  // project energy when the type no longer resolves
	FallbackLifespan     = 12 // months, when the type no longer resolves

	// Rating weights. Must sum to 1.0.
	RatingQualityWeight    = 0.45
	RatingInnovationWeight = 0.25
	RatingTrendWeight      = 0.20
	RatingMarketingWeight  = 0.10

	BaseRevenuePerRating     = 200.0  // $/month per rating point
	FanbaseRevenueMultiplier = 0.0003 // per effective fan
	RevenueDecayRate         = 0.88   // monthly
	MinDecay                 = 0.80
	MaxDecay                 = 0.98
	ExpiryRevenue            = 10.0 // products at or below this are archived

	ViralBaseChance  = 0.08
	ViralMultiplier  = 3.5 // launch revenue only
	MaxViralChance   = 0.8
	SevereFailChance = 0.05
	MaxFailChance    = 0.5
	FailGateFanbase  = 500 // at or above this, launches never fail outright

	FanBaseMultiplier = 50  // fans per rating point
	FanViralBonus     = 500 // flat fans on a viral launch
	FanTrendBonus     = 1.4
	FanTrendThreshold = 1.3

	CorpAggression  = 0.015 // share stolen per release, scaled by power/10
	MinPlayerShare  = 0.01
	PlayerShareGain = 0.02

	BlockbusterChance   = 0.12
	BlockbusterRating   = 0.8
	BlockbusterLifespan = 12
	CorpNotifyRating    = 8.8
	CorpDemandCap       = 0.45 // fraction of the demand pool a corp product may earn

	WinRevenue            = 500000
	WinMarketShare        = 0.45
	WinCategoryDomination = 3
	WinCategoryRating     = 8.5
)

// PlayerID is the owner id of every player product.
const PlayerID = "player"
