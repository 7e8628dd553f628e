package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/riskibarqy/nfl-predictions/internal/platform/id"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
)

const PredictionsPath = "/api/nfl-predictions"

type RouterConfig struct {
	Handler            *Handler
	Logger             *logging.Logger
	Metrics            HTTPMetrics
	IDGenerator        id.Generator
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	handler := cfg.Handler
	if handler == nil {
		handler = NewHandler(nil, logger)
	}

	r := chi.NewRouter()
	r.Use(RequestTracing)
	r.Use(RequestID(cfg.IDGenerator))
	r.Use(RequestLogging(logger))
	r.Use(RequestMetrics(cfg.Metrics))
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(recoverPanic(logger))

	r.Get("/healthz", handler.Healthz)
	r.Get(PredictionsPath, handler.GetPredictions)
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusNotFound, errorEnvelope{Error: errorBody{
			Code:    http.StatusNotFound,
			Message: "not found",
			Status:  "NOT_FOUND",
		}})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusMethodNotAllowed, errorEnvelope{Error: errorBody{
			Code:    http.StatusMethodNotAllowed,
			Message: "method not allowed",
			Status:  "METHOD_NOT_ALLOWED",
		}})
	})

	return r
}
