/*

This file contains the impermanent loss engine: the closed-form 50/50 AMM
IL formula, the break-even volume translation, and the volatility-driven
risk assessment built on top of them.

All functions degrade to documented sentinel values on out-of-domain input
instead of returning errors; the advisor must always produce some rating.

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/types"
)

var ilLogger = logger.GetForComponent("il_engine")

// ILFromPriceChange computes the impermanent loss fraction for a relative
// price change given in percent (100 for +100%). The result uses absolute
// value semantics: a +100% and the symmetric -50% move both yield ~0.0572.
// Out-of-domain input (ratio <= 0, non-finite) returns 0.
func ILFromPriceChange(pctChange float64) float64 {
	if math.IsNaN(pctChange) || math.IsInf(pctChange, 0) {
		return 0
	}
	return math.Abs(CalculateIL(1 + pctChange/100))
}

// CalculateIL is the ratio-form primitive: given a price ratio r it returns
// the signed value fraction 2*sqrt(r)/(1+r) - 1, which is <= 0 for every
// valid ratio (holding a 50/50 position never beats holding). Ratio <= 0 or
// non-finite returns 0.
func CalculateIL(priceRatio float64) float64 {
	if priceRatio <= 0 || math.IsNaN(priceRatio) || math.IsInf(priceRatio, 0) {
		return 0
	}
	return 2*math.Sqrt(priceRatio)/(1+priceRatio) - 1
}

// PercentFromRatio converts a price ratio to the percent-change form the
// UI-facing entry points use.
func PercentFromRatio(priceRatio float64) float64 {
	return (priceRatio - 1) * 100
}

// BreakEvenVolumeUSD computes the trading volume required for fee income to
// offset the given IL fraction: tvl * il / feeRate. A non-positive fee rate
// returns +Inf, meaning the loss cannot be offset; never NaN.
func BreakEvenVolumeUSD(tvlUSD, feeRateDecimal, ilFraction float64) float64 {
	if math.IsNaN(tvlUSD) || math.IsNaN(feeRateDecimal) || math.IsNaN(ilFraction) {
		return 0
	}
	if feeRateDecimal <= 0 {
		if tvlUSD > 0 && ilFraction > 0 {
			return math.Inf(1)
		}
		return 0
	}
	if tvlUSD <= 0 || ilFraction <= 0 {
		return 0
	}
	return tvlUSD * ilFraction / feeRateDecimal
}

// VolumeToOffsetIL composes ILFromPriceChange and BreakEvenVolumeUSD.
func VolumeToOffsetIL(tvlUSD, feeRateDecimal, pctChange float64) float64 {
	return BreakEvenVolumeUSD(tvlUSD, feeRateDecimal, ILFromPriceChange(pctChange))
}

// ILRiskLevel classifies an IL fraction against fixed thresholds.
func ILRiskLevel(ilFraction float64) types.RiskLevel {
	switch {
	case ilFraction < 0.02:
		return types.RiskLow
	case ilFraction < 0.05:
		return types.RiskMedium
	case ilFraction < 0.1:
		return types.RiskHigh
	default:
		return types.RiskExtreme
	}
}

// ILRiskFromPriceChange classifies the IL implied by a percent price move.
func ILRiskFromPriceChange(pctChange float64) types.RiskLevel {
	return ILRiskLevel(ILFromPriceChange(pctChange))
}

// ExpectedIL is the small-moves variance approximation of expected IL:
// 0.5 * volatility^2 * (timeDays/365). It is a medium-horizon projection,
// not a substitute for the exact formula above.
func ExpectedIL(volatility, timeDays float64) float64 {
	if volatility < 0 || timeDays < 0 || math.IsNaN(volatility) || math.IsNaN(timeDays) {
		return 0
	}
	return 0.5 * volatility * volatility * (timeDays / 365)
}

// AssessILRisk projects a 30-day price move from annualized volatility,
// derives the implied IL and the volume needed to offset it over that
// horizon, and checks whether the pool's observed daily volume ratio clears
// the modeled daily requirement.
func AssessILRisk(pool types.PoolSummary, historicalVolatility float64) types.ILAssessment {
	if historicalVolatility < 0 || math.IsNaN(historicalVolatility) || math.IsInf(historicalVolatility, 0) {
		historicalVolatility = 0
	}

	// One-sigma 30-day move implied by annualized volatility.
	expectedMove30d := historicalVolatility * math.Sqrt(30.0/365.0) * 100

	il := ILFromPriceChange(expectedMove30d)
	volumeNeeded := BreakEvenVolumeUSD(pool.TvlUSD, pool.FeeTier, il)

	viable := false
	if pool.TvlUSD > 0 && !math.IsInf(volumeNeeded, 1) {
		requiredDailyRatio := (volumeNeeded / 30) / pool.TvlUSD
		observedDailyRatio := pool.Volume24hUSD / pool.TvlUSD
		viable = observedDailyRatio > requiredDailyRatio
	}

	assessment := types.ILAssessment{
		Level:           ILRiskLevel(il),
		ExpectedMove30d: expectedMove30d,
		VolumeNeeded:    volumeNeeded,
		IsViable:        viable,
	}

	ilLogger.Debug().
		Float64("historicalVolatility", historicalVolatility).
		Float64("expectedMove30d", expectedMove30d).
		Float64("ilFraction", il).
		Float64("volumeNeeded", volumeNeeded).
		Bool("isViable", viable).
		Msg("IL risk assessed")

	return assessment
}
