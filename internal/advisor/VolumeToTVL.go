/*

This file contains the volume-to-TVL scorer: a total function from the
daily-volume/TVL ratio to a 0-10 score with a fixed rating label. The six
threshold buckets neither overlap nor gap.

*/

package advisor

import (
	"math"

	"github.com/poolparty/advisor/internal/types"
)

// volumeTVLBuckets maps ratio thresholds (inclusive lower bounds, checked
// highest first) to score/rating/description triples.
var volumeTVLBuckets = []struct {
	threshold   float64
	score       int
	rating      string
	description string
}{
	{1.0, 10, "Exceptional", "Daily volume exceeds TVL; fees compound rapidly"},
	{0.5, 9, "Excellent", "Very high turnover relative to locked value"},
	{0.3, 7, "Good", "Healthy trading activity for the pool size"},
	{0.15, 5, "Average", "Moderate turnover; fee income is steady but modest"},
	{0.05, 3, "Poor", "Low turnover; capital is mostly idle"},
}

// ScoreVolumeToTVL maps the dailyVolume/tvl ratio through the fixed bucket
// table. Non-positive or non-finite TVL (or non-finite volume) degrades to
// the defined minimum instead of leaking NaN to callers.
func ScoreVolumeToTVL(dailyVolumeUSD, tvlUSD float64) types.VolumeToTVLScore {
	if tvlUSD <= 0 || math.IsNaN(tvlUSD) || math.IsInf(tvlUSD, 0) ||
		math.IsNaN(dailyVolumeUSD) || math.IsInf(dailyVolumeUSD, 0) {
		return types.VolumeToTVLScore{
			Score:       1,
			Ratio:       0,
			Rating:      "Very Poor",
			Description: "Insufficient data",
		}
	}

	ratio := dailyVolumeUSD / tvlUSD
	for _, bucket := range volumeTVLBuckets {
		if ratio >= bucket.threshold {
			return types.VolumeToTVLScore{
				Score:       bucket.score,
				Ratio:       ratio,
				Rating:      bucket.rating,
				Description: bucket.description,
			}
		}
	}

	return types.VolumeToTVLScore{
		Score:       1,
		Ratio:       ratio,
		Rating:      "Very Poor",
		Description: "Negligible turnover relative to locked value",
	}
}
