// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pools (
			pool_id VARCHAR(66) PRIMARY KEY,
			token0_symbol VARCHAR(32) NOT NULL DEFAULT '',
			token1_symbol VARCHAR(32) NOT NULL DEFAULT '',
			token0_address VARCHAR(66) NOT NULL DEFAULT '',
			token1_address VARCHAR(66) NOT NULL DEFAULT '',
			fee_tier INTEGER NOT NULL DEFAULT 0,
			tvl_usd DECIMAL(30, 8) NOT NULL DEFAULT 0,
			volume_24h_usd DECIMAL(30, 8) NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pools_tvl ON pools(tvl_usd DESC);

		CREATE TABLE IF NOT EXISTS pool_day_metrics (
			pool_id VARCHAR(66) NOT NULL REFERENCES pools(pool_id) ON DELETE CASCADE,
			day DATE NOT NULL,
			tvl_usd DECIMAL(30, 8) NOT NULL DEFAULT 0,
			volume_usd DECIMAL(30, 8) NOT NULL DEFAULT 0,
			fees_usd DECIMAL(30, 8) NOT NULL DEFAULT 0,
			PRIMARY KEY (pool_id, day)
		);
		CREATE INDEX IF NOT EXISTS idx_pool_day_metrics_day ON pool_day_metrics(pool_id, day DESC);

		CREATE TABLE IF NOT EXISTS screen_results (
			result_id SERIAL PRIMARY KEY,
			pool_id VARCHAR(66) NOT NULL REFERENCES pools(pool_id) ON DELETE CASCADE,
			score INTEGER NOT NULL,
			recommendation VARCHAR(32) NOT NULL,
			breakdown JSONB,
			screened_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_screen_results_pool_timestamp ON screen_results(pool_id, screened_at DESC);
		CREATE INDEX IF NOT EXISTS idx_screen_results_timestamp ON screen_results(screened_at DESC);
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
