package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/pkg/logger"
)

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// HandleServiceError writes err inside the error envelope. AppErrors keep
// their own status; anything else is a storage failure and becomes a 500
// without leaking its message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("storage failure", "error", err)
		appErr = internal.NewInternalError("Internal server error", err)
	}

	switch {
	case appErr.StatusCode >= http.StatusInternalServerError:
		h.Logger.Error("request failed", "code", appErr.Code, "error", appErr)
	default:
		h.Logger.Debug("request rejected", "code", appErr.Code, "status", appErr.StatusCode)
	}
	h.WriteJSON(w, appErr.StatusCode, internal.Response{Error: appErr})
}
