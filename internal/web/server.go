package web

import (
	"encoding/json"
	"math"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/poolparty/advisor/internal/advisor"
	"github.com/poolparty/advisor/internal/datafetcher"
	"github.com/poolparty/advisor/internal/lifeguard"
	"github.com/poolparty/advisor/internal/logger"
	"github.com/poolparty/advisor/internal/poolmetrics"
	"github.com/poolparty/advisor/internal/reporting"
	"github.com/poolparty/advisor/internal/state"
	"github.com/poolparty/advisor/internal/types"
)

var webLogger = logger.GetForComponent("web_server")

const (
	// hourlyAnnualization converts hourly-return volatility to annual;
	// the price stream ticks hourly.
	hourlyAnnualization = 8760

	// defaultOutOfRangeHours is the breach budget when the caller does not
	// supply max_hours.
	defaultOutOfRangeHours = 12

	// pnlStopLossThreshold flags positions at least 10% behind holding.
	pnlStopLossThreshold = -0.1
)

// assumedVolatility is the annualized volatility fallback per pair class,
// consistent with the 30-day moves the screening pipeline assumes.
var assumedVolatility = map[types.PairClass]float64{
	types.PairStable:   0.035,
	types.PairBlueChip: 0.52,
	types.PairLongTail: 1.4,
}

// WebServer handles HTTP requests for pool analytics data
type WebServer struct {
	router   *mux.Router
	port     string
	subgraph *datafetcher.SubgraphClient
	stream   *datafetcher.PriceStream
}

// NewWebServer creates a new web server instance. The price stream is
// optional; trigger routes answer 503 without it.
func NewWebServer(port string, subgraph *datafetcher.SubgraphClient, stream *datafetcher.PriceStream) *WebServer {
	if port == "" {
		port = "8080"
	}

	server := &WebServer{
		router:   mux.NewRouter(),
		port:     port,
		subgraph: subgraph,
		stream:   stream,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all HTTP routes
func (ws *WebServer) setupRoutes() {
	// Health endpoint (direct route)
	ws.router.HandleFunc("/health", ws.handleHealth).Methods("GET")

	// API endpoints
	api := ws.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", ws.handleHealth).Methods("GET")
	api.HandleFunc("/pools", ws.handleGetPools).Methods("GET")
	api.HandleFunc("/pools/export.csv", ws.handleExportPoolsCSV).Methods("GET")
	api.HandleFunc("/pools/{id}/screen", ws.handleGetPoolScreen).Methods("GET")
	api.HandleFunc("/pools/{id}/metrics", ws.handleGetPoolMetrics).Methods("GET")
	api.HandleFunc("/pools/{id}/assess", ws.handleAssessPool).Methods("GET")
	api.HandleFunc("/positions/{owner}/health", ws.handleGetPositionsHealth).Methods("GET")
	api.HandleFunc("/triggers/{symbol}", ws.handleGetTriggers).Methods("GET")

	// Add CORS middleware
	ws.router.Use(ws.corsMiddleware)
	ws.router.Use(ws.loggingMiddleware)
}

// Start starts the web server
func (ws *WebServer) Start() error {
	webLogger.Info().Str("port", ws.port).Msg("Starting web server")

	server := &http.Server{
		Addr:         ":" + ws.port,
		Handler:      ws.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server.ListenAndServe()
}

// Handler exposes the configured router, mainly for tests.
func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

// handleHealth returns server health status
func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	dbHealthy := true
	if err := state.TestDBConnection(); err != nil {
		dbHealthy = false
	}

	overallStatus := "OK"
	statusCode := http.StatusOK
	if !dbHealthy {
		overallStatus = "DEGRADED"
		statusCode = http.StatusServiceUnavailable
	}

	response := map[string]interface{}{
		"status":    overallStatus,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
		"system": map[string]interface{}{
			"version":          runtime.Version(),
			"goroutines_count": runtime.NumGoroutine(),
			"alloc_bytes":      memStats.Alloc,
			"sys_bytes":        memStats.Sys,
			"gc_cycles":        memStats.NumGC,
		},
		"component": map[string]interface{}{
			"name":    "poolparty-advisor",
			"version": "1.0.0",
		},
		"database_healthy": dbHealthy,
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// latestVerdicts loads the newest screen verdict per pool in one query.
// A store failure degrades to an empty map; the pool list still renders.
func (ws *WebServer) latestVerdicts() map[string]state.ScreenRecord {
	verdicts := make(map[string]state.ScreenRecord)
	records, err := state.GetRecentScreenResults(200)
	if err != nil {
		webLogger.Warn().Err(err).Msg("Failed to load screen verdicts, listing pools without them")
		return verdicts
	}
	for _, record := range records {
		verdicts[record.PoolID] = record
	}
	return verdicts
}

// handleGetPools returns all tracked pools with their latest screen verdicts
func (ws *WebServer) handleGetPools(w http.ResponseWriter, r *http.Request) {
	pools, err := state.GetPools()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get pools")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pools")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 200 {
			limit = parsedLimit
		}
	}
	if len(pools) > limit {
		pools = pools[:limit]
	}

	type poolEntry struct {
		types.PoolInfo
		Screen *state.ScreenRecord `json:"screen,omitempty"`
	}

	verdicts := ws.latestVerdicts()
	entries := make([]poolEntry, 0, len(pools))
	for _, pool := range pools {
		entry := poolEntry{PoolInfo: pool}
		if record, ok := verdicts[pool.ID]; ok {
			entry.Screen = &record
		}
		entries = append(entries, entry)
	}

	response := map[string]interface{}{
		"pools": entries,
		"count": len(entries),
		"limit": limit,
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetPoolScreen returns the latest screening verdict for a pool
func (ws *WebServer) handleGetPoolScreen(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	poolID := vars["id"]

	record, err := state.GetLatestScreenResult(poolID)
	if err != nil {
		if state.IsNotFound(err) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool has not been screened yet")
			return
		}
		webLogger.Error().Err(err).Str("poolId", poolID).Msg("Failed to get screen result")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve screen result")
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, record)
}

// handleGetPoolMetrics returns the stored daily metric series for a pool,
// with the derived APR series and an estimated daily fee income.
func (ws *WebServer) handleGetPoolMetrics(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	poolID := vars["id"]

	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsedDays, err := strconv.Atoi(daysStr); err == nil && parsedDays > 0 && parsedDays <= 365 {
			days = parsedDays
		}
	}

	metrics, err := state.GetDayMetrics(poolID, days)
	if err != nil {
		webLogger.Error().Err(err).Str("poolId", poolID).Msg("Failed to get day metrics")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pool metrics")
		return
	}

	var totalFeesUSD float64
	timestamps := make([]int64, 0, len(metrics))
	for _, metric := range metrics {
		totalFeesUSD += metric.FeesUSD
		if day, err := time.Parse("2006-01-02", metric.Date); err == nil {
			timestamps = append(timestamps, day.UnixMilli())
		}
	}

	response := map[string]interface{}{
		"pool_id":    poolID,
		"days":       metrics,
		"count":      len(metrics),
		"apr_series": poolmetrics.APRSeries(metrics),
	}
	if daily, ok := poolmetrics.EstimateDailyEarnings(totalFeesUSD, timestamps); ok {
		response["estimated_daily_fees_usd"] = daily
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleAssessPool returns the volatility-driven IL assessment and a range
// suggestion for one tracked pool. Volatility defaults to the pair-class
// assumption; callers with better data pass ?volatility= (annualized
// fraction). Without ?price= the range bounds are multipliers around 1.
func (ws *WebServer) handleAssessPool(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	poolID := vars["id"]

	pool, err := state.GetPoolByID(poolID)
	if err != nil {
		if state.IsNotFound(err) {
			ws.writeErrorResponse(w, http.StatusNotFound, "Pool is not tracked")
			return
		}
		webLogger.Error().Err(err).Str("poolId", poolID).Msg("Failed to get pool")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pool")
		return
	}

	meta := advisor.PairMetaFromSymbols(pool.Token0Symbol, pool.Token1Symbol)
	class := advisor.ClassifyPair(meta)

	volatility := assumedVolatility[class]
	if volStr := r.URL.Query().Get("volatility"); volStr != "" {
		if parsed, err := strconv.ParseFloat(volStr, 64); err == nil && parsed > 0 && !math.IsInf(parsed, 0) {
			volatility = parsed
		}
	}

	price := 1.0
	if priceStr := r.URL.Query().Get("price"); priceStr != "" {
		if parsed, err := strconv.ParseFloat(priceStr, 64); err == nil && parsed > 0 && !math.IsInf(parsed, 0) {
			price = parsed
		}
	}

	dailyVolPct := volatility / math.Sqrt(365) * 100

	response := map[string]interface{}{
		"pool_id":    pool.ID,
		"pair":       pool.Token0Symbol + "/" + pool.Token1Symbol,
		"pair_class": class,
		"volatility": volatility,
		"assessment": advisor.AssessILRisk(pool.Summary(), volatility),
		"range":      advisor.OptimalRange(class, price, dailyVolPct),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleGetTriggers runs the exit-trigger detectors over the live price
// window of one symbol. Out-of-range detection needs ?lower= and ?upper=;
// ?max_hours= overrides the breach budget.
func (ws *WebServer) handleGetTriggers(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	symbol := vars["symbol"]

	if ws.stream == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Price stream not configured")
		return
	}

	points := ws.stream.Window(symbol).Snapshot()
	if len(points) == 0 {
		ws.writeErrorResponse(w, http.StatusNotFound, "No price data for symbol yet")
		return
	}

	returnsPct := make([]float64, 0, len(points)-1)
	for i := 1; i < len(points); i++ {
		previous := points[i-1].Price
		if previous > 0 {
			returnsPct = append(returnsPct, (points[i].Price-previous)/previous*100)
		}
	}

	volatility := 0.0
	if annualized, err := advisor.CalculateVolatility(points, hourlyAnnualization); err == nil {
		volatility = annualized
	}

	response := map[string]interface{}{
		"symbol":                symbol,
		"points":                len(points),
		"depeg":                 advisor.DetectStablecoinDepeg(points, nil),
		"volatility_spike":      advisor.DetectVolatilitySpike(returnsPct, 0, 0),
		"annualized_volatility": volatility,
	}

	query := r.URL.Query()
	if lowerStr, upperStr := query.Get("lower"), query.Get("upper"); lowerStr != "" && upperStr != "" {
		lower, errLower := strconv.ParseFloat(lowerStr, 64)
		upper, errUpper := strconv.ParseFloat(upperStr, 64)
		if errLower == nil && errUpper == nil {
			maxHours := float64(defaultOutOfRangeHours)
			if hoursStr := query.Get("max_hours"); hoursStr != "" {
				if parsed, err := strconv.ParseFloat(hoursStr, 64); err == nil && parsed > 0 {
					maxHours = parsed
				}
			}
			response["out_of_range"] = advisor.OutOfRangeDuration(lower, upper, points, maxHours)
		}
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// handleExportPoolsCSV exports tracked pools with verdicts as CSV
func (ws *WebServer) handleExportPoolsCSV(w http.ResponseWriter, r *http.Request) {
	pools, err := state.GetPools()
	if err != nil {
		webLogger.Error().Err(err).Msg("Failed to get pools for CSV export")
		ws.writeErrorResponse(w, http.StatusInternalServerError, "Failed to retrieve pools")
		return
	}

	verdicts := ws.latestVerdicts()

	headers := []string{"pool_id", "pair", "fee_tier", "tvl_usd", "volume_24h_usd", "score", "recommendation"}
	rows := make([][]string, 0, len(pools))
	for _, pool := range pools {
		score := ""
		recommendation := ""
		if record, ok := verdicts[pool.ID]; ok {
			score = strconv.Itoa(record.Score)
			recommendation = record.Recommendation
		}

		rows = append(rows, []string{
			pool.ID,
			pool.Token0Symbol + "/" + pool.Token1Symbol,
			strconv.Itoa(pool.FeeTierRaw),
			strconv.FormatFloat(pool.TvlUSD, 'f', 2, 64),
			strconv.FormatFloat(pool.Volume24hUSD, 'f', 2, 64),
			score,
			recommendation,
		})
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="pools.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(reporting.ToCSV(headers, rows)))
}

// handleGetPositionsHealth scores and values all positions held by one wallet
func (ws *WebServer) handleGetPositionsHealth(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	owner := vars["owner"]

	if ws.subgraph == nil {
		ws.writeErrorResponse(w, http.StatusServiceUnavailable, "Subgraph client not configured")
		return
	}

	positions, err := ws.subgraph.PositionsByOwner(r.Context(), owner)
	if err != nil {
		webLogger.Error().Err(err).Str("owner", owner).Msg("Failed to fetch positions")
		ws.writeErrorResponse(w, http.StatusBadGateway, "Failed to fetch positions from subgraph")
		return
	}

	prices := ws.positionTokenPrices(r, positions)

	type positionHealth struct {
		Position    types.Position    `json:"position"`
		Health      types.HealthScore `json:"health"`
		FeesUSD     float64           `json:"fees_usd"`
		DepositsUSD float64           `json:"deposits_usd"`
		PnLVsHodl   float64           `json:"pnl_vs_hodl"`
		StopLoss    bool              `json:"stop_loss"`
	}

	scored := make([]positionHealth, 0, len(positions))
	for _, position := range positions {
		feesUSD := poolmetrics.PositionFeesUSD(position, prices)
		depositsUSD := poolmetrics.PositionDepositsUSD(position, prices)

		// Position value is approximated as principal plus fees; the
		// divergence component needs entry prices the subgraph does not
		// expose.
		pnl := poolmetrics.PnLVsHodl(depositsUSD+feesUSD, depositsUSD)

		scored = append(scored, positionHealth{
			Position:    position,
			Health:      lifeguard.CalculateHealthScore(position),
			FeesUSD:     feesUSD,
			DepositsUSD: depositsUSD,
			PnLVsHodl:   pnl,
			StopLoss:    advisor.PnLVsHodlStopLoss([]float64{pnl}, pnlStopLossThreshold),
		})
	}

	response := map[string]interface{}{
		"owner":     owner,
		"positions": scored,
		"count":     len(scored),
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

// positionTokenPrices fetches USD quotes for every token the positions
// touch. A subgraph failure degrades to no prices; valuations become 0 but
// health scoring still answers.
func (ws *WebServer) positionTokenPrices(r *http.Request, positions []types.Position) map[string]float64 {
	addressSet := make(map[string]struct{})
	for _, position := range positions {
		addressSet[position.Token0.Address] = struct{}{}
		addressSet[position.Token1.Address] = struct{}{}
	}
	addresses := make([]string, 0, len(addressSet))
	for address := range addressSet {
		addresses = append(addresses, address)
	}

	prices, err := ws.subgraph.TokenPricesUSD(r.Context(), addresses)
	if err != nil {
		webLogger.Warn().Err(err).Msg("Failed to fetch token prices, valuing positions without them")
		return nil
	}
	return prices
}

// writeJSONResponse writes a JSON response
func (ws *WebServer) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		webLogger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeErrorResponse writes an error response
func (ws *WebServer) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	response := map[string]interface{}{
		"error":     true,
		"message":   message,
		"timestamp": time.Now().UTC(),
	}

	ws.writeJSONResponse(w, statusCode, response)
}

// corsMiddleware adds CORS headers
func (ws *WebServer) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (ws *WebServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Create a response writer wrapper to capture status code
		wrapper := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapper, r)

		duration := time.Since(start)

		webLogger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote_addr", r.RemoteAddr).
			Int("status", wrapper.statusCode).
			Dur("duration", duration).
			Msg("HTTP request")
	})
}

// responseWriterWrapper wraps http.ResponseWriter to capture status code
type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}
