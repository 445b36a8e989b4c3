package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/poolparty/advisor/internal/config"
	"github.com/poolparty/advisor/internal/datafetcher"
	"github.com/poolparty/advisor/internal/ingest"
	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/state"
	"github.com/poolparty/advisor/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// main is the entry point for the PoolParty advisor service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := config.LoadDatabaseConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load database configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("PoolParty Advisor Starting...")

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Subgraph client shared by the web server and the ingest loop
	subgraph := datafetcher.NewSubgraphClient(config.SubgraphURL)

	// Context cancelled on SIGINT/SIGTERM for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// --- 2. Optional Live Price Stream ---
	// The web server's trigger routes snapshot the stream's windows.
	var stream *datafetcher.PriceStream
	if config.PriceStreamURL != "" {
		stream = datafetcher.NewPriceStream(config.PriceStreamURL, 24*7)
		stream.Start(ctx)
		log.Info().Str("endpoint", config.PriceStreamURL).Msg("Live price stream started")
	}

	// --- 3. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, subgraph, stream)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting PoolParty dashboard")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 4. Start Ingest Loop ---
	runner := ingest.NewRunner(subgraph, config.IngestInterval, config.TopPoolCount)
	log.Info().Dur("interval", config.IngestInterval).Msg("Starting ingest loop")

	// Runs until the context is cancelled by a shutdown signal
	runner.RunLoop(ctx)

	log.Info().Msg("PoolParty Advisor shut down")
}
