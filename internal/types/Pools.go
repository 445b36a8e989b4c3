/*

This file contains the pool-level value objects consumed by the advisor
scoring functions. Everything here is a transient calculation input; nothing
is persisted by the core itself.

*/

package types

import "time"

// PoolSummary is the minimal calculation input for pool-level scoring.
// FeeTier is a decimal fraction (0.003 for a 0.3% pool), not the raw
// millionths value used on-chain.
type PoolSummary struct {
	TvlUSD       float64 `json:"tvl_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
	FeeTier      float64 `json:"fee_tier"`
}

// PoolInfo is a pool row as fetched from the subgraph, carrying everything
// the screening pipeline and the dashboard need.
type PoolInfo struct {
	ID           string    `json:"id"` // pool contract address, lowercase
	Token0Symbol string    `json:"token0_symbol"`
	Token1Symbol string    `json:"token1_symbol"`
	Token0       string    `json:"token0"` // token contract address, lowercase
	Token1       string    `json:"token1"`
	FeeTierRaw   int       `json:"fee_tier_raw"` // millionths: 3000 = 0.3%
	TvlUSD       float64   `json:"tvl_usd"`
	Volume24hUSD float64   `json:"volume_24h_usd"`
	CreatedAt    time.Time `json:"created_at"`
}

// AgeDays returns the pool age in whole days, 0 if CreatedAt is unset.
func (p PoolInfo) AgeDays() int {
	if p.CreatedAt.IsZero() {
		return 0
	}
	return int(time.Since(p.CreatedAt).Hours() / 24)
}

// FeeTierFraction converts the raw millionths fee tier to a decimal fraction.
func (p PoolInfo) FeeTierFraction() float64 {
	return float64(p.FeeTierRaw) / 1_000_000
}

// Summary projects a PoolInfo onto the scoring input shape.
func (p PoolInfo) Summary() PoolSummary {
	return PoolSummary{
		TvlUSD:       p.TvlUSD,
		Volume24hUSD: p.Volume24hUSD,
		FeeTier:      p.FeeTierFraction(),
	}
}

// DayMetric is one daily snapshot of a pool. Series handed to the momentum
// functions are chronological, oldest first.
type DayMetric struct {
	Date      string  `json:"date"`
	TvlUSD    float64 `json:"tvl_usd"`
	VolumeUSD float64 `json:"volume_usd"`
	FeesUSD   float64 `json:"fees_usd"`
}

// PricePoint is one entry of an ordered price time series. Time is epoch
// milliseconds, matching the feeds the exit-trigger detectors consume.
type PricePoint struct {
	Time  int64   `json:"time"`
	Price float64 `json:"price"`
}

// Trend classifies a momentum comparison between two 7-day windows.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFlat    Trend = "flat"
	TrendFalling Trend = "falling"
)

// PairClass buckets a pool's token pair for range-width heuristics.
type PairClass string

const (
	PairStable   PairClass = "stable"
	PairBlueChip PairClass = "bluechip"
	PairLongTail PairClass = "longtail"
)
