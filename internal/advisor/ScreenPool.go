/*

This file contains the pool screening aggregator: the additive composition
of the lower-level scores into a single 0-100 verdict with a fixed
recommendation band.

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/types"
)

var screenLogger = logger.GetForComponent("pool_screener")

// Recommendation bands, checked from the top down.
const (
	RecommendEnter    = "Enter"
	RecommendConsider = "Consider"
	RecommendCaution  = "Caution"
	RecommendAvoid    = "Avoid"
)

// ScreenPool produces the additive screening verdict for one pool:
//   - volume:TVL score (0-10) scaled x8, max 80 points
//   - momentum +/-10 points
//   - fee-tier bonus passed through unchanged
//   - IL penalty buckets on the caller-supplied IL fraction
//   - optional pool-age bonus and concentration-risk penalty
//
// The final score is clamped to [0,100]. Malformed inputs degrade through
// the component functions; ScreenPool itself never errors.
func ScreenPool(in types.ScreenInput) types.ScreenResult {
	breakdown := make(map[string]float64)

	vt := ScoreVolumeToTVL(in.Volume24hUSD, in.TvlUSD)
	breakdown["volume_tvl"] = float64(vt.Score) * 8

	momentum := VolumeTrend(in.Days)
	switch momentum.Trend {
	case types.TrendRising:
		breakdown["momentum"] = 10
	case types.TrendFalling:
		breakdown["momentum"] = -10
	default:
		breakdown["momentum"] = 0
	}

	feeTier := AnalyzeFeeTier(in.FeeTierRaw, in.Meta)
	breakdown["fee_tier"] = feeTier.Bonus

	breakdown["il_penalty"] = ilPenalty(in.ILFraction)

	breakdown["age_bonus"] = ageBonus(in.PoolAgeDays)

	concentration := in.ConcentrationRisk
	if concentration < 0 || math.IsNaN(concentration) {
		concentration = 0
	}
	if concentration > 1 {
		concentration = 1
	}
	breakdown["concentration_penalty"] = -math.Round(concentration * 10)

	total := 0.0
	for _, v := range breakdown {
		total += v
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		total = 0
	}
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	score := int(math.Round(total))
	result := types.ScreenResult{
		Score:          score,
		Breakdown:      breakdown,
		Recommendation: recommendationFor(score),
	}

	screenLogger.Debug().
		Int("score", score).
		Str("recommendation", result.Recommendation).
		Float64("volumeTvlPoints", breakdown["volume_tvl"]).
		Float64("momentumPoints", breakdown["momentum"]).
		Float64("feeTierBonus", breakdown["fee_tier"]).
		Float64("ilPenalty", breakdown["il_penalty"]).
		Msg("Pool screened")

	return result
}

// ilPenalty buckets an IL fraction into a fixed point penalty.
func ilPenalty(ilFraction float64) float64 {
	if ilFraction < 0 || math.IsNaN(ilFraction) {
		return 0
	}
	switch {
	case ilFraction >= 0.1:
		return -30
	case ilFraction >= 0.05:
		return -15
	case ilFraction >= 0.02:
		return -5
	default:
		return 0
	}
}

// ageBonus rewards pool maturity. Age 0 means unknown and earns nothing.
func ageBonus(ageDays int) float64 {
	switch {
	case ageDays > 180:
		return 5
	case ageDays > 90:
		return 3
	case ageDays > 30:
		return 1
	default:
		return 0
	}
}

// recommendationFor maps a clamped score to the fixed recommendation band.
func recommendationFor(score int) string {
	switch {
	case score >= 85:
		return RecommendEnter
	case score >= 70:
		return RecommendConsider
	case score >= 55:
		return RecommendCaution
	default:
		return RecommendAvoid
	}
}
