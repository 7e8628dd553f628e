package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/riskibarqy/nfl-predictions/internal/domain/prediction"
	"github.com/riskibarqy/nfl-predictions/internal/platform/cache"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
)

// PredictionReader is the part of the prediction service the handlers need.
type PredictionReader interface {
	GetCurrentPredictions(ctx context.Context) ([]prediction.Prediction, error)
	CacheSnapshot() cache.Snapshot
}

type Handler struct {
	predictions PredictionReader
	logger      *logging.Logger
}

func NewHandler(predictions PredictionReader, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		predictions: predictions,
		logger:      logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	resp := healthDTO{Status: "ok"}
	if h.predictions != nil {
		snap := h.predictions.CacheSnapshot()
		resp.Cache.Warm = snap.Warm
		if snap.Warm {
			computedAt := snap.ComputedAt.UTC().Format(time.RFC3339)
			resp.Cache.ComputedAt = &computedAt
		}
	}

	writeJSON(ctx, w, http.StatusOK, resp)
}

func (h *Handler) GetPredictions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictions")
	defer span.End()

	if h.predictions == nil {
		h.logger.ErrorContext(ctx, "prediction service is not wired")
		writeInternalError(ctx, w)
		return
	}

	items, err := h.predictions.GetCurrentPredictions(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get predictions failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeJSON(ctx, w, http.StatusOK, toPredictionDTOs(items))
}
