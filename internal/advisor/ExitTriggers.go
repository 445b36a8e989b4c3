/*

This file contains the four stateless exit-trigger detectors. Each one
inspects a short historical window and returns a plain verdict; none keeps
state between calls.

The depeg detector deliberately evaluates only the last price point (depeg
is a point-in-time state), while the volatility detector looks at a recent
window (volatility is a recent-history state).

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/types"
)

// DefaultDepegThresholds are the deviation percentages for severity levels
// 1 through 3.
var DefaultDepegThresholds = []float64{0.5, 1, 2}

const (
	// DefaultSpikeWindow is the number of recent returns used as the
	// volatility baseline, excluding the very latest return.
	DefaultSpikeWindow = 24
	// DefaultSpikeSigma is the outlier threshold in standard deviations.
	DefaultSpikeSigma = 3.0

	millisPerHour = 3_600_000
)

// DetectStablecoinDepeg grades the deviation of the last point's price from
// the 1.0 peg. Thresholds are ordered ascending and checked from the
// highest down; nil thresholds use the defaults. Empty input is level 0.
func DetectStablecoinDepeg(points []types.PricePoint, thresholds []float64) types.DepegResult {
	if len(thresholds) != 3 {
		thresholds = DefaultDepegThresholds
	}
	if len(points) == 0 {
		return types.DepegResult{}
	}

	last := points[len(points)-1].Price
	if math.IsNaN(last) || math.IsInf(last, 0) {
		return types.DepegResult{}
	}

	deviationPct := math.Abs(last-1.0) * 100

	level := 0
	switch {
	case deviationPct >= thresholds[2]:
		level = 3
	case deviationPct >= thresholds[1]:
		level = 2
	case deviationPct >= thresholds[0]:
		level = 1
	}

	return types.DepegResult{Level: level, DeviationPct: deviationPct}
}

// DetectVolatilitySpike flags the latest return as a spike when it deviates
// from the mean of the preceding window by more than sigma standard
// deviations. Requires at least window+1 returns; a zero-stddev baseline
// never flags.
func DetectVolatilitySpike(returnsPct []float64, window int, sigma float64) types.SpikeResult {
	if window <= 0 {
		window = DefaultSpikeWindow
	}
	if sigma <= 0 || math.IsNaN(sigma) {
		sigma = DefaultSpikeSigma
	}

	n := len(returnsPct)
	if n < window+1 {
		return types.SpikeResult{}
	}

	latest := returnsPct[n-1]
	baseline := returnsPct[n-1-window : n-1]

	mean := average(baseline)
	var sumSqDiff float64
	for _, r := range baseline {
		sumSqDiff += (r - mean) * (r - mean)
	}
	stdDev := math.Sqrt(sumSqDiff / float64(len(baseline)))

	if stdDev <= 0 || math.IsNaN(latest) {
		return types.SpikeResult{}
	}

	zScore := (latest - mean) / stdDev
	return types.SpikeResult{
		Spike:  math.Abs(zScore) > sigma,
		ZScore: zScore,
	}
}

// OutOfRangeDuration scans forward from now-maxHours (the last point acts
// as "now") for the first price outside [lower, upper]. Hours is the
// elapsed time from that first breach to the last point; Breached turns
// true once Hours reaches maxHours.
func OutOfRangeDuration(lower, upper float64, prices []types.PricePoint, maxHours float64) types.OutOfRangeResult {
	if len(prices) == 0 || maxHours <= 0 || lower > upper {
		return types.OutOfRangeResult{}
	}

	last := prices[len(prices)-1]
	cutoff := last.Time - int64(maxHours*millisPerHour)

	for _, p := range prices {
		if p.Time < cutoff {
			continue
		}
		if p.Price < lower || p.Price > upper {
			hours := float64(last.Time-p.Time) / millisPerHour
			if hours < 0 {
				hours = 0
			}
			return types.OutOfRangeResult{
				Hours:    hours,
				Breached: hours >= maxHours,
			}
		}
	}

	return types.OutOfRangeResult{}
}

// PnLVsHodlStopLoss is true when the last value of the PnL-vs-HODL series
// is at or below the threshold (default -0.1 means 10% behind holding).
func PnLVsHodlStopLoss(pnlSeries []float64, threshold float64) bool {
	if len(pnlSeries) == 0 {
		return false
	}
	last := pnlSeries[len(pnlSeries)-1]
	if math.IsNaN(last) {
		return false
	}
	return last <= threshold
}
