/*

This file contains the small derived-value helpers shared by the dashboard
and the screening pipeline: APR from daily fees, daily earnings estimation,
fee valuation in USD, and PnL versus holding.

*/

package poolmetrics

import (
	"math"
	"strings"
	"time"

	"github.com/poolparty/advisor/internal/types"
	"github.com/poolparty/advisor/internal/utils"
)

const millisPerDay = 86_400_000

// AnnualizedAPR extrapolates one day of fees over a year against TVL.
// Non-positive or non-finite TVL returns 0, never NaN.
func AnnualizedAPR(feesUSD, tvlUSD float64) float64 {
	if tvlUSD <= 0 || math.IsNaN(tvlUSD) || math.IsInf(tvlUSD, 0) ||
		math.IsNaN(feesUSD) || math.IsInf(feesUSD, 0) {
		return 0
	}
	apr := feesUSD * 365 / tvlUSD
	if math.IsNaN(apr) || math.IsInf(apr, 0) {
		return 0
	}
	return apr
}

// APRSeries maps each day metric through AnnualizedAPR, preserving order.
func APRSeries(rows []types.DayMetric) []float64 {
	series := make([]float64, len(rows))
	for i, row := range rows {
		series[i] = AnnualizedAPR(row.FeesUSD, row.TvlUSD)
	}
	return series
}

// EstimateDailyEarnings estimates average daily fee income from the total
// earned so far and the activity timestamps (epoch milliseconds). The
// elapsed period is measured from the earliest timestamp and floored at one
// day. Returns ok=false when fees are non-positive, no timestamps exist, or
// the result degenerates.
func EstimateDailyEarnings(totalFeesUSD float64, timestamps []int64) (float64, bool) {
	if totalFeesUSD <= 0 || len(timestamps) == 0 ||
		math.IsNaN(totalFeesUSD) || math.IsInf(totalFeesUSD, 0) {
		return 0, false
	}

	earliest := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts < earliest {
			earliest = ts
		}
	}

	elapsedDays := float64(time.Now().UnixMilli()-earliest) / millisPerDay
	if elapsedDays < 1 {
		elapsedDays = 1
	}

	daily := totalFeesUSD / elapsedDays
	if math.IsNaN(daily) || math.IsInf(daily, 0) || daily <= 0 {
		return 0, false
	}
	return daily, true
}

// PositionFeesUSD values a position's collected plus uncollected fees using
// a USD price map keyed by lowercase token address. Missing prices count as
// 0; malformed amount strings parse to 0.
func PositionFeesUSD(position types.Position, pricesUSD map[string]float64) float64 {
	decimals0 := utils.ParseDecimals(position.Token0.Decimals)
	decimals1 := utils.ParseDecimals(position.Token1.Decimals)

	fees0 := utils.ParseTokenAmount(position.CollectedFeesToken0, decimals0) +
		utils.ParseTokenAmount(position.UncollectedFeesToken0, decimals0)
	fees1 := utils.ParseTokenAmount(position.CollectedFeesToken1, decimals1) +
		utils.ParseTokenAmount(position.UncollectedFeesToken1, decimals1)

	price0 := pricesUSD[strings.ToLower(position.Token0.Address)]
	price1 := pricesUSD[strings.ToLower(position.Token1.Address)]
	if math.IsNaN(price0) || math.IsInf(price0, 0) || price0 < 0 {
		price0 = 0
	}
	if math.IsNaN(price1) || math.IsInf(price1, 0) || price1 < 0 {
		price1 = 0
	}

	return fees0*price0 + fees1*price1
}

// PositionDepositsUSD values a position's deposited principal using a USD
// price map keyed by lowercase token address, with the same conventions as
// PositionFeesUSD.
func PositionDepositsUSD(position types.Position, pricesUSD map[string]float64) float64 {
	decimals0 := utils.ParseDecimals(position.Token0.Decimals)
	decimals1 := utils.ParseDecimals(position.Token1.Decimals)

	deposited0 := utils.ParseTokenAmount(position.DepositedToken0, decimals0)
	deposited1 := utils.ParseTokenAmount(position.DepositedToken1, decimals1)

	price0 := pricesUSD[strings.ToLower(position.Token0.Address)]
	price1 := pricesUSD[strings.ToLower(position.Token1.Address)]
	if math.IsNaN(price0) || math.IsInf(price0, 0) || price0 < 0 {
		price0 = 0
	}
	if math.IsNaN(price1) || math.IsInf(price1, 0) || price1 < 0 {
		price1 = 0
	}

	return deposited0*price0 + deposited1*price1
}

// PnLVsHodl returns the fractional performance of the position value versus
// simply holding the deposited tokens: (position - hodl) / hodl. A
// non-positive hodl value returns 0.
func PnLVsHodl(positionValueUSD, hodlValueUSD float64) float64 {
	if hodlValueUSD <= 0 || math.IsNaN(hodlValueUSD) || math.IsInf(hodlValueUSD, 0) ||
		math.IsNaN(positionValueUSD) || math.IsInf(positionValueUSD, 0) {
		return 0
	}
	return (positionValueUSD - hodlValueUSD) / hodlValueUSD
}
