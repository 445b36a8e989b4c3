package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poolparty/advisor/internal/types"
)

func volumeSeries(volumes ...float64) []types.DayMetric {
	days := make([]types.DayMetric, len(volumes))
	for i, v := range volumes {
		days[i] = types.DayMetric{VolumeUSD: v, FeesUSD: v / 100}
	}
	return days
}

func flatWeek(value float64) []float64 {
	return []float64{value, value, value, value, value, value, value}
}

func TestVolumeTrendRisingAndFalling(t *testing.T) {
	rising := VolumeTrend(volumeSeries(append(flatWeek(100), flatWeek(120)...)...))
	assert.Equal(t, types.TrendRising, rising.Trend)
	assert.InDelta(t, 20, rising.PctChange7d, 1e-9)

	falling := VolumeTrend(volumeSeries(append(flatWeek(100), flatWeek(85)...)...))
	assert.Equal(t, types.TrendFalling, falling.Trend)
	assert.InDelta(t, -15, falling.PctChange7d, 1e-9)
}

func TestMomentumDeadbandIsExclusive(t *testing.T) {
	// Exactly +10% sits inside the deadband.
	exact := VolumeTrend(volumeSeries(append(flatWeek(100), flatWeek(110)...)...))
	assert.Equal(t, types.TrendFlat, exact.Trend)
	assert.InDelta(t, 10, exact.PctChange7d, 1e-9)

	// Just past it flips to rising.
	past := VolumeTrend(volumeSeries(append(flatWeek(100), flatWeek(110.2)...)...))
	assert.Equal(t, types.TrendRising, past.Trend)

	// Exactly -10% is still flat.
	exactDown := VolumeTrend(volumeSeries(append(flatWeek(100), flatWeek(90)...)...))
	assert.Equal(t, types.TrendFlat, exactDown.Trend)
}

func TestMomentumShortSeries(t *testing.T) {
	// Fewer than four points cannot support a comparison.
	assert.Equal(t, types.TrendFlat, VolumeTrend(volumeSeries(100, 200, 300)).Trend)
	assert.Equal(t, types.TrendFlat, VolumeTrend(nil).Trend)

	// Four points leave an empty prior window; direction-only signal.
	short := VolumeTrend(volumeSeries(10, 10, 10, 10))
	assert.Equal(t, types.TrendRising, short.Trend)
	assert.InDelta(t, 100, short.PctChange7d, 1e-9)
}

func TestMomentumDeadPriorWindow(t *testing.T) {
	// Seven zero days then activity: rising with the 100% sentinel.
	revived := VolumeTrend(volumeSeries(append(flatWeek(0), flatWeek(50)...)...))
	assert.Equal(t, types.TrendRising, revived.Trend)
	assert.InDelta(t, 100, revived.PctChange7d, 1e-9)

	// Dead throughout stays flat.
	dead := VolumeTrend(volumeSeries(append(flatWeek(0), flatWeek(0)...)...))
	assert.Equal(t, types.TrendFlat, dead.Trend)
	assert.Zero(t, dead.PctChange7d)
}

func TestFeeMomentumReadsFeeField(t *testing.T) {
	// Fees rise while volume is flat; only FeeMomentum should notice.
	days := make([]types.DayMetric, 14)
	for i := range days {
		days[i].VolumeUSD = 100
		if i < 7 {
			days[i].FeesUSD = 10
		} else {
			days[i].FeesUSD = 20
		}
	}

	assert.Equal(t, types.TrendFlat, VolumeTrend(days).Trend)

	fees := FeeMomentum(days)
	assert.Equal(t, types.TrendRising, fees.Trend)
	assert.InDelta(t, 100, fees.PctChange7d, 1e-9)
}
