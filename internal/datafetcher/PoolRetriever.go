/*
This file fetches pool-level data from the Uniswap V3 subgraph: the top
pools by TVL and the per-pool daily metric series the momentum and
screening code consumes.

Subgraph numeric fields arrive as decimal strings. Malformed numbers parse
to 0 and the row is kept; only rows missing an ID are dropped.
*/

package datafetcher

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/poolparty/advisor/internal/types"
)

const topPoolsQuery = `
query TopPools($limit: Int!) {
  pools(first: $limit, orderBy: totalValueLockedUSD, orderDirection: desc) {
    id
    feeTier
    createdAtTimestamp
    totalValueLockedUSD
    token0 { id symbol decimals }
    token1 { id symbol decimals }
    poolDayData(first: 1, orderBy: date, orderDirection: desc) {
      volumeUSD
    }
  }
}`

const poolDayDataQuery = `
query PoolDayData($pool: String!, $days: Int!) {
  poolDayDatas(first: $days, orderBy: date, orderDirection: desc, where: {pool: $pool}) {
    date
    tvlUSD
    volumeUSD
    feesUSD
  }
}`

type subgraphToken struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

type subgraphPool struct {
	ID                  string        `json:"id"`
	FeeTier             string        `json:"feeTier"`
	CreatedAtTimestamp  string        `json:"createdAtTimestamp"`
	TotalValueLockedUSD string        `json:"totalValueLockedUSD"`
	Token0              subgraphToken `json:"token0"`
	Token1              subgraphToken `json:"token1"`
	PoolDayData         []struct {
		VolumeUSD string `json:"volumeUSD"`
	} `json:"poolDayData"`
}

type subgraphDayData struct {
	Date      int64  `json:"date"`
	TvlUSD    string `json:"tvlUSD"`
	VolumeUSD string `json:"volumeUSD"`
	FeesUSD   string `json:"feesUSD"`
}

// TopPools fetches the top pools by TVL, at most limit of them.
func (c *SubgraphClient) TopPools(ctx context.Context, limit int) ([]types.PoolInfo, error) {
	if limit <= 0 {
		limit = 50
	}

	var data struct {
		Pools []subgraphPool `json:"pools"`
	}
	err := c.Execute(ctx, topPoolsQuery, map[string]interface{}{"limit": limit}, &data)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch top pools: %w", err)
	}

	pools := make([]types.PoolInfo, 0, len(data.Pools))
	for _, raw := range data.Pools {
		if raw.ID == "" {
			subgraphLogger.Warn().Msg("Skipping pool row with empty ID")
			continue
		}

		volume24h := 0.0
		if len(raw.PoolDayData) > 0 {
			volume24h = parseSubgraphFloat(raw.PoolDayData[0].VolumeUSD)
		}

		pools = append(pools, types.PoolInfo{
			ID:           strings.ToLower(raw.ID),
			Token0Symbol: raw.Token0.Symbol,
			Token1Symbol: raw.Token1.Symbol,
			Token0:       strings.ToLower(raw.Token0.ID),
			Token1:       strings.ToLower(raw.Token1.ID),
			FeeTierRaw:   parseSubgraphInt(raw.FeeTier),
			TvlUSD:       parseSubgraphFloat(raw.TotalValueLockedUSD),
			Volume24hUSD: volume24h,
			CreatedAt:    parseSubgraphTimestamp(raw.CreatedAtTimestamp),
		})
	}

	subgraphLogger.Info().
		Int("requested", limit).
		Int("received", len(pools)).
		Msg("Fetched top pools from subgraph")

	return pools, nil
}

// PoolDayData fetches up to days daily snapshots for one pool, returned
// chronologically (oldest first) as the momentum functions expect.
func (c *SubgraphClient) PoolDayData(ctx context.Context, poolID string, days int) ([]types.DayMetric, error) {
	if days <= 0 {
		days = 30
	}

	var data struct {
		PoolDayDatas []subgraphDayData `json:"poolDayDatas"`
	}
	vars := map[string]interface{}{"pool": strings.ToLower(poolID), "days": days}
	if err := c.Execute(ctx, poolDayDataQuery, vars, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch day data for pool %s: %w", poolID, err)
	}

	metrics := make([]types.DayMetric, 0, len(data.PoolDayDatas))
	for _, raw := range data.PoolDayDatas {
		metrics = append(metrics, types.DayMetric{
			Date:      time.Unix(raw.Date, 0).UTC().Format("2006-01-02"),
			TvlUSD:    parseSubgraphFloat(raw.TvlUSD),
			VolumeUSD: parseSubgraphFloat(raw.VolumeUSD),
			FeesUSD:   parseSubgraphFloat(raw.FeesUSD),
		})
	}

	// The query orders newest first; callers want oldest first.
	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].Date < metrics[j].Date
	})

	return metrics, nil
}

// parseSubgraphFloat parses a subgraph decimal string, 0 on malformed or
// non-finite input.
func parseSubgraphFloat(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

// parseSubgraphInt parses a subgraph integer string, 0 on malformed input.
func parseSubgraphInt(raw string) int {
	i, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || i < 0 {
		return 0
	}
	return i
}

// parseSubgraphTimestamp parses a unix-seconds string, zero time on
// malformed input.
func parseSubgraphTimestamp(raw string) time.Time {
	secs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
