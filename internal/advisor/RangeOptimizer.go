/*

This file contains the range-width heuristic: a baseline percentage width
per pair class, widened by recent volatility (capped at 2x) and clamped
into class-specific bounds. Tighter bands score higher until the efficiency
floor of 10.

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/types"
)

// rangeProfile holds the per-class constants of the width heuristic.
type rangeProfile struct {
	baseWidthPct float64
	minWidthPct  float64
	maxWidthPct  float64
	divisor      float64
	note         string
}

var rangeProfiles = map[types.PairClass]rangeProfile{
	types.PairStable: {
		baseWidthPct: 0.2,
		minWidthPct:  0.1,
		maxWidthPct:  1.0,
		divisor:      0.01,
		note:         "Stable pair: keep the band tight around the peg",
	},
	types.PairBlueChip: {
		baseWidthPct: 8,
		minWidthPct:  2,
		maxWidthPct:  20,
		divisor:      0.2,
		note:         "Blue-chip pair: moderate band around the market price",
	},
	types.PairLongTail: {
		baseWidthPct: 80,
		minWidthPct:  20,
		maxWidthPct:  120,
		divisor:      1.0,
		note:         "Long-tail pair: wide band to survive large swings",
	},
}

// OptimalRange suggests a symmetric price band for the given pair class.
// dailyVolPct is the recent daily volatility in percent; its influence on
// width is capped at a 2x multiplier. Unknown classes fall back to the
// long-tail profile. Non-positive prices yield a zero-width suggestion.
func OptimalRange(class types.PairClass, price, dailyVolPct float64) types.RangeSuggestion {
	profile, ok := rangeProfiles[class]
	if !ok {
		profile = rangeProfiles[types.PairLongTail]
	}

	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return types.RangeSuggestion{Note: profile.note}
	}
	if dailyVolPct < 0 || math.IsNaN(dailyVolPct) || math.IsInf(dailyVolPct, 0) {
		dailyVolPct = 0
	}

	volFactor := 1 + math.Min(1, dailyVolPct/20)
	widthPct := profile.baseWidthPct * volFactor
	if widthPct < profile.minWidthPct {
		widthPct = profile.minWidthPct
	}
	if widthPct > profile.maxWidthPct {
		widthPct = profile.maxWidthPct
	}

	halfWidthPct := widthPct / 2
	lower := price * (1 - halfWidthPct/100)
	upper := price * (1 + halfWidthPct/100)

	efficiency := 100 - math.Min(90, widthPct/profile.divisor)
	if efficiency < 10 {
		efficiency = 10
	}
	if efficiency > 100 {
		efficiency = 100
	}

	return types.RangeSuggestion{
		Lower:           lower,
		Upper:           upper,
		WidthPct:        widthPct,
		EfficiencyScore: efficiency,
		Note:            profile.note,
	}
}
