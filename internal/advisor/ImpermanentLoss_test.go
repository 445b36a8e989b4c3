package advisor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poolparty/advisor/internal/types"
)

func TestILFromPriceChangeKnownValues(t *testing.T) {
	// A 2x move loses ~5.72% versus holding.
	assert.InDelta(t, 0.05719, ILFromPriceChange(100), 0.0001)

	// The symmetric halving loses exactly the same fraction.
	assert.InDelta(t, ILFromPriceChange(100), ILFromPriceChange(-50), 1e-12)

	// No move, no loss.
	assert.Zero(t, ILFromPriceChange(0))

	// A 4x move loses ~20%.
	assert.InDelta(t, 0.2, ILFromPriceChange(300), 0.001)
}

func TestILFromPriceChangeDegradesOnBadInput(t *testing.T) {
	assert.Zero(t, ILFromPriceChange(math.NaN()))
	assert.Zero(t, ILFromPriceChange(math.Inf(1)))
	// -100% drives the ratio to zero, which is out of domain.
	assert.Zero(t, ILFromPriceChange(-100))
	assert.Zero(t, ILFromPriceChange(-150))
}

func TestCalculateILSignAndDomain(t *testing.T) {
	// The signed primitive is never positive on valid ratios.
	for _, ratio := range []float64{0.1, 0.5, 1, 2, 10, 1000} {
		assert.LessOrEqual(t, CalculateIL(ratio), 0.0, "ratio %f", ratio)
	}
	assert.Zero(t, CalculateIL(1))
	assert.Zero(t, CalculateIL(0))
	assert.Zero(t, CalculateIL(-2))
	assert.Zero(t, CalculateIL(math.NaN()))
}

func TestBreakEvenVolumeUSD(t *testing.T) {
	// tvl * il / feeRate
	assert.InDelta(t, 1_000_000*0.0572/0.003, BreakEvenVolumeUSD(1_000_000, 0.003, 0.0572), 0.01)

	// A zero fee rate can never offset a real loss.
	assert.True(t, math.IsInf(BreakEvenVolumeUSD(1_000_000, 0, 0.05), 1))
	assert.True(t, math.IsInf(BreakEvenVolumeUSD(1_000_000, -0.003, 0.05), 1))

	// Nothing locked or nothing lost means nothing to offset.
	assert.Zero(t, BreakEvenVolumeUSD(0, 0.003, 0.05))
	assert.Zero(t, BreakEvenVolumeUSD(1_000_000, 0.003, 0))
	assert.Zero(t, BreakEvenVolumeUSD(0, 0, 0))
}

func TestRatioAndPercentFormsAgree(t *testing.T) {
	// The percent-change entry point is the absolute value of the signed
	// ratio primitive at the equivalent ratio.
	for _, ratio := range []float64{0.25, 0.5, 0.8, 1, 1.1, 1.5, 2, 4, 10} {
		want := math.Abs(CalculateIL(ratio))
		got := ILFromPriceChange(PercentFromRatio(ratio))
		assert.InDelta(t, want, got, 1e-12, "ratio %f", ratio)
	}
}

func TestVolumeToOffsetILComposition(t *testing.T) {
	// The shortcut is exactly the break-even formula applied to the IL the
	// price move implies.
	tests := []struct {
		tvl, feeRate, pct float64
	}{
		{1_000_000, 0.003, 100},
		{1_000_000, 0.003, -50},
		{10_000_000, 0.0005, 2},
		{500_000, 0.01, 300},
		{1_000_000, 0, 100},
		{0, 0.003, 100},
	}
	for _, tc := range tests {
		want := BreakEvenVolumeUSD(tc.tvl, tc.feeRate, ILFromPriceChange(tc.pct))
		got := VolumeToOffsetIL(tc.tvl, tc.feeRate, tc.pct)
		if math.IsInf(want, 1) {
			assert.True(t, math.IsInf(got, 1), "tvl %f fee %f pct %f", tc.tvl, tc.feeRate, tc.pct)
			continue
		}
		assert.InDelta(t, want, got, math.Abs(want)*1e-12+1e-9,
			"tvl %f fee %f pct %f", tc.tvl, tc.feeRate, tc.pct)
	}

	// One pinned absolute value: a 2x move on a 0.3% pool with 1M locked
	// needs roughly 19.06M of volume to offset.
	assert.InDelta(t, 19_063_600, VolumeToOffsetIL(1_000_000, 0.003, 100), 100)
}

func TestILRiskFromPriceChange(t *testing.T) {
	assert.Equal(t, types.RiskLow, ILRiskFromPriceChange(0))
	assert.Equal(t, types.RiskLow, ILRiskFromPriceChange(10))
	assert.Equal(t, types.RiskMedium, ILRiskFromPriceChange(50))
	assert.Equal(t, types.RiskHigh, ILRiskFromPriceChange(100))
	assert.Equal(t, types.RiskExtreme, ILRiskFromPriceChange(200))

	// Both directions of the same relative move classify identically.
	assert.Equal(t, ILRiskFromPriceChange(100), ILRiskFromPriceChange(-50))
}

func TestILRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, types.RiskLow, ILRiskLevel(0.01))
	assert.Equal(t, types.RiskMedium, ILRiskLevel(0.02))
	assert.Equal(t, types.RiskMedium, ILRiskLevel(0.03))
	assert.Equal(t, types.RiskHigh, ILRiskLevel(0.05))
	assert.Equal(t, types.RiskHigh, ILRiskLevel(0.07))
	assert.Equal(t, types.RiskExtreme, ILRiskLevel(0.1))
	assert.Equal(t, types.RiskExtreme, ILRiskLevel(0.12))
}

func TestExpectedIL(t *testing.T) {
	// 0.5 * vol^2 * (days/365)
	assert.InDelta(t, 0.32, ExpectedIL(0.8, 365), 1e-9)
	assert.InDelta(t, 0.16, ExpectedIL(0.8, 182.5), 1e-9)
	assert.Zero(t, ExpectedIL(-0.5, 30))
	assert.Zero(t, ExpectedIL(0.5, -30))
	assert.Zero(t, ExpectedIL(math.NaN(), 30))
}

func TestAssessILRiskViability(t *testing.T) {
	pool := types.PoolSummary{TvlUSD: 10_000_000, Volume24hUSD: 5_000_000, FeeTier: 0.003}

	// High turnover easily clears the modeled fee requirement.
	active := AssessILRisk(pool, 0.4)
	assert.True(t, active.IsViable)
	assert.Greater(t, active.ExpectedMove30d, 0.0)

	// The same volatility with almost no volume is not viable.
	idle := AssessILRisk(types.PoolSummary{TvlUSD: 10_000_000, Volume24hUSD: 100, FeeTier: 0.003}, 0.4)
	assert.False(t, idle.IsViable)

	// Zero volatility means zero expected IL and a trivially cleared bar.
	calm := AssessILRisk(pool, 0)
	require.Equal(t, types.RiskLow, calm.Level)
	assert.Zero(t, calm.ExpectedMove30d)
	assert.True(t, calm.IsViable)
}

func TestAssessILRiskDegradesOnBadInput(t *testing.T) {
	// A zero-fee pool cannot offset any modeled loss.
	free := AssessILRisk(types.PoolSummary{TvlUSD: 1_000_000, Volume24hUSD: 500_000, FeeTier: 0}, 0.8)
	assert.True(t, math.IsInf(free.VolumeNeeded, 1))
	assert.False(t, free.IsViable)

	// Negative or NaN volatility degrades to zero instead of poisoning output.
	weird := AssessILRisk(types.PoolSummary{TvlUSD: 1_000_000, Volume24hUSD: 500_000, FeeTier: 0.003}, math.NaN())
	assert.Zero(t, weird.ExpectedMove30d)
	assert.Equal(t, types.RiskLow, weird.Level)

	// An empty pool never reports viable.
	empty := AssessILRisk(types.PoolSummary{}, 0.4)
	assert.False(t, empty.IsViable)
}
