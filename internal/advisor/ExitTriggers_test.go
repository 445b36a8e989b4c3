package advisor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poolparty/advisor/internal/types"
)

func hourlyPrices(prices ...float64) []types.PricePoint {
	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{Time: int64(i) * millisPerHour, Price: p}
	}
	return points
}

func TestDetectStablecoinDepegLevels(t *testing.T) {
	tests := []struct {
		name      string
		lastPrice float64
		wantLevel int
	}{
		{"on peg", 1.0, 0},
		{"inside tolerance", 0.998, 0},
		{"level one", 0.994, 1},
		{"level two", 0.985, 2},
		{"level three", 1.03, 3},
		{"exactly half percent", 0.995, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectStablecoinDepeg(hourlyPrices(1.0, tc.lastPrice), nil)
			assert.Equal(t, tc.wantLevel, got.Level)
			assert.InDelta(t, math.Abs(tc.lastPrice-1)*100, got.DeviationPct, 1e-9)
		})
	}
}

func TestDetectStablecoinDepegOnlyLastPointCounts(t *testing.T) {
	// A past depeg that has recovered reports level 0.
	got := DetectStablecoinDepeg(hourlyPrices(0.90, 0.95, 1.0), nil)
	assert.Zero(t, got.Level)
	assert.Zero(t, got.DeviationPct)
}

func TestDetectStablecoinDepegEdgeCases(t *testing.T) {
	assert.Zero(t, DetectStablecoinDepeg(nil, nil).Level)
	assert.Zero(t, DetectStablecoinDepeg(hourlyPrices(math.NaN()), nil).Level)

	// Malformed threshold slices fall back to the defaults.
	got := DetectStablecoinDepeg(hourlyPrices(0.97), []float64{5})
	assert.Equal(t, 3, got.Level)

	custom := DetectStablecoinDepeg(hourlyPrices(0.97), []float64{1, 2, 5})
	assert.Equal(t, 2, custom.Level)
}

func TestDetectVolatilitySpike(t *testing.T) {
	// Baseline [1,2,3], latest 10: z ~ 9.8 against sigma 2.
	got := DetectVolatilitySpike([]float64{1, 2, 3, 10}, 3, 2)
	assert.True(t, got.Spike)
	assert.InDelta(t, 9.8, got.ZScore, 0.1)

	// A latest return inside the band is not a spike.
	calm := DetectVolatilitySpike([]float64{1, 2, 3, 2.5}, 3, 2)
	assert.False(t, calm.Spike)
}

func TestDetectVolatilitySpikeEdgeCases(t *testing.T) {
	// Needs window+1 returns.
	assert.False(t, DetectVolatilitySpike([]float64{1, 2, 3}, 3, 2).Spike)
	assert.False(t, DetectVolatilitySpike(nil, 3, 2).Spike)

	// A flat baseline has zero stddev and never flags.
	flat := DetectVolatilitySpike([]float64{1, 1, 1, 100}, 3, 2)
	assert.False(t, flat.Spike)
	assert.Zero(t, flat.ZScore)

	// Invalid parameters fall back to the defaults.
	defaulted := DetectVolatilitySpike([]float64{1, 2, 3, 10}, 3, -1)
	assert.True(t, defaulted.Spike)
}

func TestOutOfRangeDuration(t *testing.T) {
	// Eleven hourly points, all out of range below lower=5.
	breached := make([]float64, 11)
	for i := range breached {
		breached[i] = 3
	}

	// First breach 10 hours before "now", under the 20-hour budget.
	within := OutOfRangeDuration(5, 10, hourlyPrices(breached...), 20)
	assert.InDelta(t, 10, within.Hours, 1e-9)
	assert.False(t, within.Breached)

	// Budget of 5 hours: points older than the cutoff are ignored, the first
	// in-window breach is exactly 5 hours old.
	over := OutOfRangeDuration(5, 10, hourlyPrices(breached...), 5)
	assert.InDelta(t, 5, over.Hours, 1e-9)
	assert.True(t, over.Breached)
}

func TestOutOfRangeDurationInRange(t *testing.T) {
	inRange := OutOfRangeDuration(1, 2, hourlyPrices(1.5, 1.6, 1.4), 12)
	assert.Zero(t, inRange.Hours)
	assert.False(t, inRange.Breached)

	assert.False(t, OutOfRangeDuration(1, 2, nil, 12).Breached)
	assert.False(t, OutOfRangeDuration(2, 1, hourlyPrices(3), 12).Breached)
	assert.False(t, OutOfRangeDuration(1, 2, hourlyPrices(3), 0).Breached)
}

func TestPnLVsHodlStopLoss(t *testing.T) {
	assert.False(t, PnLVsHodlStopLoss([]float64{-0.05}, -0.1))
	assert.True(t, PnLVsHodlStopLoss([]float64{-0.15}, -0.1))
	// At the threshold triggers.
	assert.True(t, PnLVsHodlStopLoss([]float64{-0.1}, -0.1))
	// Only the last value matters.
	assert.False(t, PnLVsHodlStopLoss([]float64{-0.5, -0.02}, -0.1))
	assert.False(t, PnLVsHodlStopLoss(nil, -0.1))
	assert.False(t, PnLVsHodlStopLoss([]float64{math.NaN()}, -0.1))
}
