// ./internal/state/screens.go
package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/poolparty/advisor/internal/types"
)

// ScreenRecord is one persisted screening verdict.
type ScreenRecord struct {
	PoolID         string             `json:"pool_id"`
	Score          int                `json:"score"`
	Recommendation string             `json:"recommendation"`
	Breakdown      map[string]float64 `json:"breakdown"`
	ScreenedAt     time.Time          `json:"screened_at"`
}

// SaveScreenResult persists one screening verdict for a pool.
func SaveScreenResult(poolID string, result types.ScreenResult) error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	breakdownJSON, err := json.Marshal(result.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal screen breakdown for pool %s: %w", poolID, err)
	}

	query := `
		INSERT INTO screen_results (pool_id, score, recommendation, breakdown)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := DB.Exec(query, poolID, result.Score, result.Recommendation, breakdownJSON); err != nil {
		return fmt.Errorf("failed to save screen result for pool %s: %w", poolID, err)
	}
	return nil
}

// GetLatestScreenResult returns the most recent verdict for one pool.
func GetLatestScreenResult(poolID string) (*ScreenRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT pool_id, score, recommendation, breakdown, screened_at
		FROM screen_results
		WHERE pool_id = $1
		ORDER BY screened_at DESC
		LIMIT 1
	`
	record, err := scanScreenRecord(DB.QueryRow(query, poolID))
	if err != nil {
		return nil, fmt.Errorf("failed to get latest screen result for pool %s: %w", poolID, err)
	}
	return record, nil
}

// GetRecentScreenResults returns the newest verdict per pool, at most limit
// rows, best score first.
func GetRecentScreenResults(limit int) ([]ScreenRecord, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT DISTINCT ON (pool_id) pool_id, score, recommendation, breakdown, screened_at
		FROM screen_results
		ORDER BY pool_id, screened_at DESC
	`
	rows, err := DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent screen results: %w", err)
	}
	defer rows.Close()

	var records []ScreenRecord
	for rows.Next() {
		record, err := scanScreenRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan screen result row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating screen result rows: %w", err)
	}

	// Newest-per-pool, then best score first for the dashboard.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})
	if len(records) > limit {
		records = records[:limit]
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScreenRecord(row rowScanner) (*ScreenRecord, error) {
	var record ScreenRecord
	var breakdownJSON []byte
	if err := row.Scan(&record.PoolID, &record.Score, &record.Recommendation,
		&breakdownJSON, &record.ScreenedAt); err != nil {
		return nil, err
	}

	if len(breakdownJSON) > 0 {
		if err := json.Unmarshal(breakdownJSON, &record.Breakdown); err != nil {
			return nil, fmt.Errorf("failed to unmarshal screen breakdown: %w", err)
		}
	}
	return &record, nil
}

// IsNotFound reports whether an error from the getters means the row simply
// does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
