/*
This file contains the periodic ingest loop: every tick it refreshes the
top pools from the subgraph, stores their daily metrics, screens each pool
through the advisor core, and persists the verdicts for the dashboard.

A failure on one pool is logged and skipped; the cycle always finishes the
remaining pools.
*/

package ingest

import (
	"context"
	"time"

	"github.com/poolparty/advisor/internal/advisor"
	"github.com/poolparty/advisor/internal/datafetcher"
	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/state"
	"github.com/poolparty/advisor/internal/types"
)

var ingestLogger = logger.GetForComponent("ingest")

const dayMetricWindow = 30

// Assumed 30-day price moves (percent) per pair class, used to derive the
// IL penalty input when no per-pool volatility estimate is available.
const (
	stableAssumedMovePct   = 1.0
	blueChipAssumedMovePct = 15.0
	longTailAssumedMovePct = 40.0
)

// Runner drives the ingest cycle.
type Runner struct {
	Subgraph *datafetcher.SubgraphClient
	Interval time.Duration
	TopCount int
}

// NewRunner creates an ingest runner.
func NewRunner(subgraph *datafetcher.SubgraphClient, interval time.Duration, topCount int) *Runner {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if topCount <= 0 {
		topCount = 50
	}
	return &Runner{Subgraph: subgraph, Interval: interval, TopCount: topCount}
}

// RunLoop runs ingest cycles until the context is cancelled. The first
// cycle starts immediately.
func (r *Runner) RunLoop(ctx context.Context) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	r.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			ingestLogger.Info().Msg("Ingest loop stopping")
			return
		case <-ticker.C:
			r.runCycle(ctx)
		}
	}
}

// runCycle executes one full fetch-store-screen pass.
func (r *Runner) runCycle(ctx context.Context) {
	start := time.Now()
	ingestLogger.Info().Int("topCount", r.TopCount).Msg("Starting ingest cycle")

	pools, err := r.Subgraph.TopPools(ctx, r.TopCount)
	if err != nil {
		ingestLogger.Error().Err(err).Msg("Failed to fetch top pools, skipping cycle")
		return
	}

	screened := 0
	for _, pool := range pools {
		if ctx.Err() != nil {
			return
		}
		if err := r.processPool(ctx, pool); err != nil {
			ingestLogger.Warn().
				Err(err).
				Str("poolId", pool.ID).
				Msg("Failed to process pool, continuing with next")
			continue
		}
		screened++
	}

	ingestLogger.Info().
		Int("pools", len(pools)).
		Int("screened", screened).
		Dur("duration", time.Since(start)).
		Msg("Ingest cycle complete")
}

func (r *Runner) processPool(ctx context.Context, pool types.PoolInfo) error {
	if err := state.UpsertPool(pool); err != nil {
		return err
	}

	days, err := r.Subgraph.PoolDayData(ctx, pool.ID, dayMetricWindow)
	if err != nil {
		return err
	}
	if err := state.UpsertDayMetrics(pool.ID, days); err != nil {
		return err
	}

	meta := advisor.PairMetaFromSymbols(pool.Token0Symbol, pool.Token1Symbol)
	result := advisor.ScreenPool(types.ScreenInput{
		TvlUSD:       pool.TvlUSD,
		Volume24hUSD: pool.Volume24hUSD,
		FeeTierRaw:   pool.FeeTierRaw,
		Meta:         meta,
		Days:         days,
		ILFraction:   advisor.ILFromPriceChange(assumedMovePct(meta)),
		PoolAgeDays:  pool.AgeDays(),
	})

	return state.SaveScreenResult(pool.ID, result)
}

// assumedMovePct picks the modeled 30-day price move for a pair class.
func assumedMovePct(meta types.PairMeta) float64 {
	switch advisor.ClassifyPair(meta) {
	case types.PairStable:
		return stableAssumedMovePct
	case types.PairBlueChip:
		return blueChipAssumedMovePct
	default:
		return longTailAssumedMovePct
	}
}
