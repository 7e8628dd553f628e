package app

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/nfl-predictions/external/nflverse"
	"github.com/riskibarqy/nfl-predictions/external/theoddsapi"
	"github.com/riskibarqy/nfl-predictions/internal/config"
	"github.com/riskibarqy/nfl-predictions/internal/interfaces/httpapi"
	"github.com/riskibarqy/nfl-predictions/internal/observability"
	"github.com/riskibarqy/nfl-predictions/internal/platform/id"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		metrics        *observability.Metrics
		recorder       usecase.MetricsRecorder = usecase.NopMetrics{}
		httpMetrics    httpapi.HTTPMetrics
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics()
		recorder = metrics
		httpMetrics = metrics
		metricsHandler = metrics.Handler()
	}

	nflverseClient := nflverse.NewClient(nflverse.ClientConfig{
		WeeklyURL:      cfg.NflverseWeeklyURL,
		ScheduleURL:    cfg.NflverseScheduleURL,
		TeamsURL:       cfg.NflverseTeamsURL,
		Timeout:        cfg.NflverseTimeout,
		MaxRetries:     cfg.NflverseMaxRetries,
		Logger:         logger,
		Metrics:        recorder,
		CircuitBreaker: cfg.NflverseCircuit,
	})
	oddsClient := theoddsapi.NewClient(theoddsapi.ClientConfig{
		BaseURL:        cfg.OddsAPIBaseURL,
		APIKey:         cfg.OddsAPIKey,
		Sport:          cfg.OddsAPISport,
		Regions:        cfg.OddsAPIRegions,
		Markets:        cfg.OddsAPIMarkets,
		Timeout:        cfg.OddsAPITimeout,
		MaxRetries:     cfg.OddsAPIMaxRetries,
		Logger:         logger,
		Metrics:        recorder,
		CircuitBreaker: cfg.OddsAPICircuit,
	})
	metrics.TrackCircuitBreaker(nflverseClient.Breaker())
	metrics.TrackCircuitBreaker(oddsClient.Breaker())

	if !cfg.OddsAPIConfigured() {
		logger.Warn("THE_ODDS_API_KEY is not set; prediction requests will fail until it is configured")
	}

	statsSvc := usecase.NewTeamStatsService(nflverseClient, usecase.TeamStatsConfig{
		MaxWorkers: cfg.StatsMaxWorkers,
	}, logger, recorder)
	predictionSvc := usecase.NewPredictionService(usecase.PredictionServiceDeps{
		Stats:   statsSvc,
		Odds:    oddsClient,
		Cache:   usecase.NewPredictionCache(cfg.PredictionsTTL, cfg.PredictionsRefreshTimeout),
		Logger:  logger,
		Metrics: recorder,
	})

	router := httpapi.NewRouter(httpapi.RouterConfig{
		Handler:            httpapi.NewHandler(predictionSvc, logger),
		Logger:             logger,
		Metrics:            httpMetrics,
		IDGenerator:        id.NewUUIDGenerator(),
		MetricsHandler:     metricsHandler,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	return &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}, nil
}
