/*

This file contains the position health scorer ("lifeguard"): four
independent 0-100 sub-scores combined by fixed weights into an overall
score and a five-value status.

The risk sub-score rewards wider tick ranges monotonically with no upper
efficiency penalty. That one-sided staircase is intentional (safety over
capital efficiency in this single weighted factor) and must not be
"corrected".

*/

package lifeguard

import (
	"math"

	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/types"
	"github.com/poolparty/advisor/internal/utils"
)

var healthLogger = logger.GetForComponent("lifeguard")

// Fixed sub-score weights. They sum to 1.0.
const (
	weightProfitability  = 0.4
	weightFeePerformance = 0.3
	weightLiquidityUtil  = 0.2
	weightRiskMetrics    = 0.1
)

// CalculateHealthScore scores one position. Malformed amount strings parse
// to 0 and degrade the affected sub-score; the function never errors.
func CalculateHealthScore(position types.Position) types.HealthScore {
	decimals0 := utils.ParseDecimals(position.Token0.Decimals)
	decimals1 := utils.ParseDecimals(position.Token1.Decimals)

	deposited := utils.ParseTokenAmount(position.DepositedToken0, decimals0) +
		utils.ParseTokenAmount(position.DepositedToken1, decimals1)
	collectedFees := utils.ParseTokenAmount(position.CollectedFeesToken0, decimals0) +
		utils.ParseTokenAmount(position.CollectedFeesToken1, decimals1)
	uncollectedFees := utils.ParseTokenAmount(position.UncollectedFeesToken0, decimals0) +
		utils.ParseTokenAmount(position.UncollectedFeesToken1, decimals1)

	profitability := scoreProfitability(collectedFees+uncollectedFees, deposited)
	feePerformance := scoreFeePerformance(uncollectedFees)
	liquidityUtil := scoreLiquidityUtilization(utils.ParseRawAmount(position.Liquidity))
	riskMetrics := scoreRiskMetrics(position.TickLower, position.TickUpper)

	weighted := float64(profitability)*weightProfitability +
		float64(feePerformance)*weightFeePerformance +
		float64(liquidityUtil)*weightLiquidityUtil +
		float64(riskMetrics)*weightRiskMetrics
	overall := int(math.Round(weighted))

	score := types.HealthScore{
		Overall:              overall,
		Profitability:        profitability,
		FeePerformance:       feePerformance,
		LiquidityUtilization: liquidityUtil,
		RiskMetrics:          riskMetrics,
		Status:               GetHealthStatus(overall),
	}

	healthLogger.Debug().
		Str("positionID", position.ID).
		Int("overall", overall).
		Int("profitability", profitability).
		Int("feePerformance", feePerformance).
		Int("liquidityUtilization", liquidityUtil).
		Int("riskMetrics", riskMetrics).
		Str("status", string(score.Status)).
		Msg("Position health scored")

	return score
}

// scoreProfitability grades the fee yield percentage (total fees over total
// deposited, in token units without price weighting).
func scoreProfitability(totalFees, totalDeposited float64) int {
	if totalDeposited <= 0 {
		return 0
	}

	yieldPct := totalFees / totalDeposited * 100
	if math.IsNaN(yieldPct) || math.IsInf(yieldPct, 0) {
		return 0
	}

	var score float64
	switch {
	case yieldPct >= 10:
		score = 100
	case yieldPct >= 5:
		score = 80 + (yieldPct-5)*4
	case yieldPct >= 1:
		score = 50 + (yieldPct-1)*7.5
	default:
		score = math.Min(50, yieldPct*50)
	}

	return clampScore(score)
}

// scoreFeePerformance is a staircase on the raw uncollected-fee total in
// token units, not USD.
func scoreFeePerformance(uncollectedFees float64) int {
	switch {
	case uncollectedFees <= 0:
		return 30
	case uncollectedFees < 0.001:
		return 50
	case uncollectedFees < 0.01:
		return 65
	case uncollectedFees < 0.1:
		return 80
	case uncollectedFees < 1:
		return 90
	default:
		return 100
	}
}

// scoreLiquidityUtilization is a staircase on the raw liquidity value.
func scoreLiquidityUtilization(liquidity float64) int {
	switch {
	case liquidity <= 0:
		return 0
	case liquidity < 1_000:
		return 30
	case liquidity < 10_000:
		return 50
	case liquidity < 100_000:
		return 70
	case liquidity < 1_000_000:
		return 85
	default:
		return 100
	}
}

// scoreRiskMetrics is a staircase on the tick-range width. Missing ticks
// score a neutral 50.
func scoreRiskMetrics(lower, upper *types.Tick) int {
	if lower == nil || upper == nil {
		return 50
	}

	lowerIdx, okLower := utils.ParseTickIdx(lower.TickIdx)
	upperIdx, okUpper := utils.ParseTickIdx(upper.TickIdx)
	if !okLower || !okUpper {
		return 50
	}

	width := upperIdx - lowerIdx
	if width < 0 {
		width = -width
	}

	switch {
	case width == 0:
		return 10
	case width < 100:
		return 40
	case width < 500:
		return 60
	case width < 2_000:
		return 85
	case width < 5_000:
		return 95
	default:
		return 100
	}
}

// GetHealthStatus maps an overall score to the five-value status via the
// fixed 90/75/60/40 thresholds.
func GetHealthStatus(overall int) types.HealthStatus {
	switch {
	case overall >= 90:
		return types.StatusExcellent
	case overall >= 75:
		return types.StatusGood
	case overall >= 60:
		return types.StatusWarning
	case overall >= 40:
		return types.StatusDanger
	default:
		return types.StatusCritical
	}
}

// GetHealthStatusSafe is the float-tolerant form: non-finite scores grade
// critical instead of panicking or misclassifying.
func GetHealthStatusSafe(overall float64) types.HealthStatus {
	if math.IsNaN(overall) || math.IsInf(overall, 0) {
		return types.StatusCritical
	}
	return GetHealthStatus(int(math.Round(overall)))
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}
