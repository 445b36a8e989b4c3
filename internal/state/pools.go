// ./internal/state/pools.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/poolparty/advisor/internal/types"
)

// UpsertPool inserts or refreshes one pool row.
func UpsertPool(pool types.PoolInfo) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if pool.ID == "" {
		return fmt.Errorf("cannot upsert pool with empty ID")
	}

	query := `
		INSERT INTO pools (pool_id, token0_symbol, token1_symbol, token0_address, token1_address,
			fee_tier, tvl_usd, volume_24h_usd, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, CURRENT_TIMESTAMP)
		ON CONFLICT (pool_id) DO UPDATE SET
			token0_symbol = EXCLUDED.token0_symbol,
			token1_symbol = EXCLUDED.token1_symbol,
			tvl_usd = EXCLUDED.tvl_usd,
			volume_24h_usd = EXCLUDED.volume_24h_usd,
			updated_at = CURRENT_TIMESTAMP
	`

	var createdAt interface{}
	if !pool.CreatedAt.IsZero() {
		createdAt = pool.CreatedAt
	}

	_, err := DB.Exec(query, pool.ID, pool.Token0Symbol, pool.Token1Symbol,
		pool.Token0, pool.Token1, pool.FeeTierRaw, pool.TvlUSD, pool.Volume24hUSD, createdAt)
	if err != nil {
		return fmt.Errorf("failed to upsert pool %s: %w", pool.ID, err)
	}
	return nil
}

// GetPools returns all tracked pools ordered by TVL descending.
func GetPools() ([]types.PoolInfo, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT pool_id, token0_symbol, token1_symbol, token0_address, token1_address,
			fee_tier, tvl_usd, volume_24h_usd, created_at
		FROM pools
		ORDER BY tvl_usd DESC
	`
	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools: %w", err)
	}
	defer rows.Close()

	var pools []types.PoolInfo
	for rows.Next() {
		var pool types.PoolInfo
		var createdAt sql.NullTime
		err := rows.Scan(&pool.ID, &pool.Token0Symbol, &pool.Token1Symbol,
			&pool.Token0, &pool.Token1, &pool.FeeTierRaw, &pool.TvlUSD,
			&pool.Volume24hUSD, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pool row: %w", err)
		}
		if createdAt.Valid {
			pool.CreatedAt = createdAt.Time
		}
		pools = append(pools, pool)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pool rows: %w", err)
	}

	return pools, nil
}

// GetPoolByID returns one pool, sql.ErrNoRows wrapped when absent.
func GetPoolByID(poolID string) (*types.PoolInfo, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT pool_id, token0_symbol, token1_symbol, token0_address, token1_address,
			fee_tier, tvl_usd, volume_24h_usd, created_at
		FROM pools
		WHERE pool_id = $1
	`
	var pool types.PoolInfo
	var createdAt sql.NullTime
	err := DB.QueryRow(query, poolID).Scan(&pool.ID, &pool.Token0Symbol,
		&pool.Token1Symbol, &pool.Token0, &pool.Token1, &pool.FeeTierRaw,
		&pool.TvlUSD, &pool.Volume24hUSD, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool %s: %w", poolID, err)
	}
	if createdAt.Valid {
		pool.CreatedAt = createdAt.Time
	}

	return &pool, nil
}

// UpsertDayMetrics writes a batch of daily snapshots for one pool in a
// single transaction.
func UpsertDayMetrics(poolID string, metrics []types.DayMetric) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if len(metrics) == 0 {
		return nil
	}

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin day metrics transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO pool_day_metrics (pool_id, day, tvl_usd, volume_usd, fees_usd)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (pool_id, day) DO UPDATE SET
			tvl_usd = EXCLUDED.tvl_usd,
			volume_usd = EXCLUDED.volume_usd,
			fees_usd = EXCLUDED.fees_usd
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare day metrics statement: %w", err)
	}
	defer stmt.Close()

	for _, metric := range metrics {
		day, err := time.Parse("2006-01-02", metric.Date)
		if err != nil {
			return fmt.Errorf("invalid day metric date %q for pool %s: %w", metric.Date, poolID, err)
		}
		if _, err := stmt.Exec(poolID, day, metric.TvlUSD, metric.VolumeUSD, metric.FeesUSD); err != nil {
			return fmt.Errorf("failed to upsert day metric for pool %s: %w", poolID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit day metrics transaction: %w", err)
	}
	return nil
}

// GetDayMetrics returns up to days daily snapshots for one pool,
// chronological (oldest first) as the momentum functions expect.
func GetDayMetrics(poolID string, days int) ([]types.DayMetric, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if days <= 0 {
		days = 30
	}

	query := `
		SELECT day, tvl_usd, volume_usd, fees_usd
		FROM (
			SELECT day, tvl_usd, volume_usd, fees_usd
			FROM pool_day_metrics
			WHERE pool_id = $1
			ORDER BY day DESC
			LIMIT $2
		) recent
		ORDER BY day ASC
	`
	rows, err := DB.Query(query, poolID, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query day metrics for pool %s: %w", poolID, err)
	}
	defer rows.Close()

	var metrics []types.DayMetric
	for rows.Next() {
		var metric types.DayMetric
		var day time.Time
		if err := rows.Scan(&day, &metric.TvlUSD, &metric.VolumeUSD, &metric.FeesUSD); err != nil {
			return nil, fmt.Errorf("failed to scan day metric row: %w", err)
		}
		metric.Date = day.UTC().Format("2006-01-02")
		metrics = append(metrics, metric)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating day metric rows: %w", err)
	}

	return metrics, nil
}
