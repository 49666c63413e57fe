package account

import (
	"context"
	"net/http"

	"github.com/frahmantamala/smartexpense/internal/transport"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*Account, error)
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

// GetCurrentAccount handles GET /accounts/me
func (h *Handler) GetCurrentAccount(w http.ResponseWriter, r *http.Request) {
	accountID := h.AccountID(r)
	if accountID == 0 {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	a, err := h.Service.GetByID(r.Context(), accountID)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, a.ToResponse())
}
