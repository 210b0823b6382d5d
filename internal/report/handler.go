package report

import (
	"context"
	"net/http"

	"github.com/frahmantamala/personal-ledger/internal/transport"
)

type ServiceAPI interface {
	CategorySummary(ctx context.Context) (*CategorySummaryResponse, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) GetCategorySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.CategorySummary(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, summary)
}
