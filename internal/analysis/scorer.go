package analysis

import (
	"math"

	"golang-dex-token-analyzer/internal/entity"
)

// Thresholds holds the band limits and points used by the Scorer.
type Thresholds struct {
	VolumeHigh float64 `mapstructure:"volume_high"`
	VolumeMid  float64 `mapstructure:"volume_mid"`
	VolumeLow  float64 `mapstructure:"volume_low"`

	// PriceChangeMax is the upper bound of the healthy positive 24h move;
	// PriceChangeDip is the lower bound (negative) of a tolerated pullback.
	PriceChangeMax float64 `mapstructure:"price_change_max"`
	PriceChangeDip float64 `mapstructure:"price_change_dip"`

	LiquidityHigh float64 `mapstructure:"liquidity_high"`
	LiquidityMid  float64 `mapstructure:"liquidity_mid"`
	LiquidityLow  float64 `mapstructure:"liquidity_low"`

	MarketCapSweetMin float64 `mapstructure:"market_cap_sweet_min"`
	MarketCapSweetMax float64 `mapstructure:"market_cap_sweet_max"`
	MarketCapLow      float64 `mapstructure:"market_cap_low"`

	BuyMinScore       int     `mapstructure:"buy_min_score"`
	BuyMinPriceChange float64 `mapstructure:"buy_min_price_change"`
	HoldMinScore      int     `mapstructure:"hold_min_score"`
}

// DefaultThresholds returns the built-in scoring bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		VolumeHigh:        1_000_000,
		VolumeMid:         100_000,
		VolumeLow:         10_000,
		PriceChangeMax:    20,
		PriceChangeDip:    -5,
		LiquidityHigh:     500_000,
		LiquidityMid:      100_000,
		LiquidityLow:      50_000,
		MarketCapSweetMin: 1_000_000,
		MarketCapSweetMax: 100_000_000,
		MarketCapLow:      100_000,
		BuyMinScore:       70,
		BuyMinPriceChange: -10,
		HoldMinScore:      40,
	}
}

// Band points.
const (
	MaxScore = 100

	volumeHighPoints = 30
	volumeMidPoints  = 20
	volumeLowPoints  = 10

	priceChangeHealthyPoints = 25
	priceChangeDipPoints     = 15
	priceChangeHotPoints     = 5

	liquidityHighPoints = 25
	liquidityMidPoints  = 15
	liquidityLowPoints  = 10

	marketCapSweetPoints = 20
	marketCapLargePoints = 15
	marketCapSmallPoints = 10
)

// Metrics is the market snapshot the Scorer reads. Missing values are zero.
type Metrics struct {
	Volume24h      float64
	PriceChange1h  float64
	PriceChange6h  float64
	PriceChange24h float64
	Liquidity      float64
	MarketCap      float64
}

// Result is the outcome of scoring one pair.
type Result struct {
	Score          int
	Recommendation entity.Recommendation
	Volatility     float64
}

// Scorer maps market metrics to a score, a recommendation and a volatility index.
type Scorer struct {
	th Thresholds
}

func NewScorer(th Thresholds) *Scorer {
	return &Scorer{th: th}
}

// Score is a pure function of m.
func (s *Scorer) Score(m Metrics) Result {
	score := s.AnalysisScore(m)
	return Result{
		Score:          score,
		Recommendation: s.Recommend(score, m.PriceChange24h),
		Volatility:     VolatilityIndex(m.PriceChange1h, m.PriceChange6h, m.PriceChange24h),
	}
}

// AnalysisScore sums the four bands and caps the total at MaxScore.
func (s *Scorer) AnalysisScore(m Metrics) int {
	return capScore(s.volumeScore(m.Volume24h) +
		s.priceChangeScore(m.PriceChange24h) +
		s.liquidityScore(m.Liquidity) +
		s.marketCapScore(m.MarketCap))
}

// capScore limits a band total to MaxScore. With the built-in band points the
// best case is exactly MaxScore, so the cap only matters if the points change.
func capScore(total int) int {
	if total > MaxScore {
		return MaxScore
	}
	return total
}

func (s *Scorer) volumeScore(v float64) int {
	switch {
	case v > s.th.VolumeHigh:
		return volumeHighPoints
	case v > s.th.VolumeMid:
		return volumeMidPoints
	case v > s.th.VolumeLow:
		return volumeLowPoints
	}
	return 0
}

func (s *Scorer) priceChangeScore(c float64) int {
	switch {
	case c > 0 && c <= s.th.PriceChangeMax:
		return priceChangeHealthyPoints
	case c >= s.th.PriceChangeDip && c < 0:
		return priceChangeDipPoints
	case c > s.th.PriceChangeMax:
		return priceChangeHotPoints
	}
	return 0
}

func (s *Scorer) liquidityScore(l float64) int {
	switch {
	case l > s.th.LiquidityHigh:
		return liquidityHighPoints
	case l > s.th.LiquidityMid:
		return liquidityMidPoints
	case l > s.th.LiquidityLow:
		return liquidityLowPoints
	}
	return 0
}

func (s *Scorer) marketCapScore(mc float64) int {
	switch {
	case mc >= s.th.MarketCapSweetMin && mc <= s.th.MarketCapSweetMax:
		return marketCapSweetPoints
	case mc > s.th.MarketCapSweetMax:
		return marketCapLargePoints
	case mc > s.th.MarketCapLow:
		return marketCapSmallPoints
	}
	return 0
}

// Recommend derives the label from the score and the 24h price change.
func (s *Scorer) Recommend(score int, priceChange24h float64) entity.Recommendation {
	switch {
	case score >= s.th.BuyMinScore && priceChange24h > s.th.BuyMinPriceChange:
		return entity.RecommendationBuy
	case score >= s.th.HoldMinScore:
		return entity.RecommendationHold
	}
	return entity.RecommendationAvoid
}

// VolatilityIndex averages the absolute price changes over the nonzero entries.
// The numerator sums all magnitudes while the denominator counts only nonzero
// ones; zeros add nothing to the sum, so the result equals the mean of the
// nonzero magnitudes. Kept as-is for compatibility with stored values.
func VolatilityIndex(changes ...float64) float64 {
	var sum float64
	nonzero := 0
	for _, c := range changes {
		a := math.Abs(c)
		sum += a
		if a > 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		return 0
	}
	return sum / float64(nonzero)
}
