package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// SubgraphURL is the Uniswap V3 subgraph GraphQL endpoint.
	SubgraphURL string

	// PriceStreamURL is an optional WebSocket endpoint for live prices.
	// Empty disables the stream.
	PriceStreamURL string

	// WebPort is the dashboard HTTP port.
	WebPort string

	// IngestInterval is how often the ingest loop refreshes subgraph data.
	IngestInterval time.Duration

	// TopPoolCount is how many pools (by TVL) the ingest loop tracks.
	TopPoolCount int
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. SUBGRAPH_URL is required; the rest have defaults.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	SubgraphURL, err = getEnv("SUBGRAPH_URL")
	if err != nil {
		return err
	}

	PriceStreamURL = getEnvOr("PRICE_STREAM_URL", "")
	WebPort = getEnvOr("WEB_PORT", "8080")

	intervalMinutes, err := getEnvAsIntOr("INGEST_INTERVAL_MINUTES", 15)
	if err != nil {
		return err
	}
	if intervalMinutes <= 0 {
		return errors.New("INGEST_INTERVAL_MINUTES must be positive")
	}
	IngestInterval = time.Duration(intervalMinutes) * time.Minute

	TopPoolCount, err = getEnvAsIntOr("TOP_POOL_COUNT", 50)
	if err != nil {
		return err
	}
	if TopPoolCount <= 0 {
		return errors.New("TOP_POOL_COUNT must be positive")
	}

	log.Debug().
		Str("SubgraphURL", SubgraphURL).
		Str("WebPort", WebPort).
		Dur("IngestInterval", IngestInterval).
		Int("TopPoolCount", TopPoolCount).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOr retrieves a string environment variable with a default.
func getEnvOr(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

// getEnvAsIntOr retrieves an environment variable as an int, falling back to
// a default when unset. Returns error only when set but unparseable.
func getEnvAsIntOr(key string, fallback int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid integer, got: " + valueStr)
	}
	return value, nil
}
