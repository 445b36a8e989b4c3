package config

import (
	"strconv"

	"github.com/rs/zerolog/log"
)

// Database connection configuration loaded from environment variables.
// These are populated at startup by LoadDatabaseConfig.
var (
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// LoadDatabaseConfig loads database configuration from environment
// variables. Host, user, password and name are required.
func LoadDatabaseConfig() error {
	log.Info().Msg("Loading database configuration from environment variables...")

	var err error

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}

	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}

	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}

	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}

	portStr := getEnvOr("DB_PORT", "5432")
	DBPort, err = strconv.Atoi(portStr)
	if err != nil {
		return err
	}

	DBSSLMode = getEnvOr("DB_SSLMODE", "disable")

	log.Debug().
		Str("DBHost", DBHost).
		Int("DBPort", DBPort).
		Str("DBName", DBName).
		Msg("Database configuration loaded successfully.")

	return nil
}
