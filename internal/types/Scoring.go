/*

This file contains the result types returned by the advisor scoring
functions. Every one of them is a plain data structure suitable for direct
JSON serialization; none holds internal state.

*/

package types

// RiskLevel is the closed impermanent-loss risk classification.
type RiskLevel string

const (
	RiskLow     RiskLevel = "low"
	RiskMedium  RiskLevel = "medium"
	RiskHigh    RiskLevel = "high"
	RiskExtreme RiskLevel = "extreme"
)

// VolumeToTVLScore is the result of the volume:TVL bucket scorer.
type VolumeToTVLScore struct {
	Score       int     `json:"score"` // 0-10
	Ratio       float64 `json:"ratio"`
	Rating      string  `json:"rating"`
	Description string  `json:"description"`
}

// PairMeta classifies a token pair. Stable takes precedence over BlueChip.
type PairMeta struct {
	Stable   bool `json:"stable"`
	BlueChip bool `json:"blue_chip"`
}

// FeeTierNote is the fee-tier advisor verdict for a pool.
type FeeTierNote struct {
	Bonus float64 `json:"bonus"`
	Note  string  `json:"note"`
}

// Momentum is a windowed trend comparison over a daily series.
type Momentum struct {
	Trend       Trend   `json:"trend"`
	PctChange7d float64 `json:"pct_change_7d"`
}

// RangeSuggestion is the output of the range-width heuristic.
type RangeSuggestion struct {
	Lower           float64 `json:"lower"`
	Upper           float64 `json:"upper"`
	WidthPct        float64 `json:"width_pct"`
	EfficiencyScore float64 `json:"efficiency_score"` // 10-100
	Note            string  `json:"note"`
}

// ILAssessment is the volatility-driven impermanent-loss verdict for a pool.
type ILAssessment struct {
	Level           RiskLevel `json:"level"`
	ExpectedMove30d float64   `json:"expected_move_30d"` // percent
	VolumeNeeded    float64   `json:"volume_needed"`     // USD over the 30d horizon
	IsViable        bool      `json:"is_viable"`
}

// DepegResult reports stablecoin price deviation severity, 0 (none) to 3.
type DepegResult struct {
	Level        int     `json:"level"`
	DeviationPct float64 `json:"deviation_pct"`
}

// SpikeResult reports whether the latest return is a volatility outlier.
type SpikeResult struct {
	Spike  bool    `json:"spike"`
	ZScore float64 `json:"z_score"`
}

// OutOfRangeResult reports how long a position has been out of range.
type OutOfRangeResult struct {
	Hours    float64 `json:"hours"`
	Breached bool    `json:"breached"`
}

// ScreenInput bundles everything the pool screening aggregator consumes.
// ILFraction is the caller's impermanent-loss estimate for its assumed price
// move (typically advisor.ILFromPriceChange of an expected move percent).
// ConcentrationRisk is in [0,1]; PoolAgeDays of 0 means unknown.
type ScreenInput struct {
	TvlUSD            float64     `json:"tvl_usd"`
	Volume24hUSD      float64     `json:"volume_24h_usd"`
	FeeTierRaw        int         `json:"fee_tier_raw"`
	Meta              PairMeta    `json:"meta"`
	Days              []DayMetric `json:"days"`
	ILFraction        float64     `json:"il_fraction"`
	PoolAgeDays       int         `json:"pool_age_days"`
	ConcentrationRisk float64     `json:"concentration_risk"`
}

// ScreenResult is the additive screening verdict for a pool.
type ScreenResult struct {
	Score          int                `json:"score"` // 0-100
	Breakdown      map[string]float64 `json:"breakdown"`
	Recommendation string             `json:"recommendation"`
}
