package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/nfl-predictions/internal/platform/logging"
	"github.com/riskibarqy/nfl-predictions/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	msgMisconfigured = "api key is not configured on the server"
	msgUnavailable   = "failed to fetch data from one or more sources"
	msgInternal      = "internal server error"
)

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type mappedError struct {
	HTTPStatus int
	Status     string
	Message    string
}

// writeJSON encodes into a pooled buffer first so an encoding failure can
// still produce a clean 500.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		logging.Default().ErrorContext(ctx, "encode response failed", "error", err)
		buf.Reset()
		_ = sonic.ConfigDefault.NewEncoder(buf).Encode(errorEnvelope{Error: errorBody{
			Code:    http.StatusInternalServerError,
			Message: msgInternal,
			Status:  "INTERNAL",
		}})
		status = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// writeError never exposes err's text; the caller logs it.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeJSON(ctx, w, mapped.HTTPStatus, errorEnvelope{Error: errorBody{
		Code:    mapped.HTTPStatus,
		Message: mapped.Message,
		Status:  mapped.Status,
	}})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, nil)
}

func mapError(err error) mappedError {
	switch {
	case err == nil:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Status: "INTERNAL", Message: msgInternal}
	case crerr.Is(err, usecase.ErrMisconfigured):
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Status:     "FAILED_PRECONDITION",
			Message:    msgMisconfigured,
		}
	case crerr.Is(err, usecase.ErrDependencyUnavailable):
		return mappedError{
			HTTPStatus: http.StatusServiceUnavailable,
			Status:     "UNAVAILABLE",
			Message:    msgUnavailable,
		}
	default:
		return mappedError{
			HTTPStatus: http.StatusInternalServerError,
			Status:     "INTERNAL",
			Message:    msgInternal,
		}
	}
}
