/*

This file contains the momentum analyzer: the last-7-day window average is
compared against the 7 days immediately preceding it. Volume and fee
momentum share the windowing and the +/-10% deadband, differing only in
which field of the daily series they read. The deadband is a fixed design
constant, not a parameter.

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/types"
)

const (
	momentumWindow      = 7
	momentumMinPoints   = 4
	momentumDeadbandPct = 10.0
)

// VolumeTrend classifies the 7-day volume momentum of a chronologically
// ordered daily series.
func VolumeTrend(days []types.DayMetric) types.Momentum {
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = d.VolumeUSD
	}
	return momentumOf(values)
}

// FeeMomentum classifies the 7-day fee momentum of a chronologically
// ordered daily series.
func FeeMomentum(days []types.DayMetric) types.Momentum {
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = d.FeesUSD
	}
	return momentumOf(values)
}

// momentumOf compares the average of the last 7 values against the average
// of the 7 values before that window. Short series follow slice semantics:
// the windows shrink from the front rather than erroring.
func momentumOf(values []float64) types.Momentum {
	n := len(values)
	if n < momentumMinPoints {
		return types.Momentum{Trend: types.TrendFlat, PctChange7d: 0}
	}

	lastStart := n - momentumWindow
	if lastStart < 0 {
		lastStart = 0
	}
	prevStart := n - 2*momentumWindow
	if prevStart < 0 {
		prevStart = 0
	}

	lastAvg := average(values[lastStart:])
	prevAvg := average(values[prevStart:lastStart])

	// A dead prior window cannot anchor a percentage; signal direction only.
	if prevAvg <= 0 {
		if lastAvg > 0 {
			return types.Momentum{Trend: types.TrendRising, PctChange7d: 100}
		}
		return types.Momentum{Trend: types.TrendFlat, PctChange7d: 0}
	}

	pctChange := (lastAvg - prevAvg) / prevAvg * 100
	if math.IsNaN(pctChange) || math.IsInf(pctChange, 0) {
		return types.Momentum{Trend: types.TrendFlat, PctChange7d: 0}
	}

	trend := types.TrendFlat
	if pctChange > momentumDeadbandPct {
		trend = types.TrendRising
	} else if pctChange < -momentumDeadbandPct {
		trend = types.TrendFalling
	}

	return types.Momentum{Trend: trend, PctChange7d: pctChange}
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
