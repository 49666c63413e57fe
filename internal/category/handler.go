package category

import (
	"context"
	"net/http"

	"github.com/frahmantamala/smartexpense/internal/transport"
)

type ServiceAPI interface {
	ListVisible(ctx context.Context, accountID int64, kind Kind) ([]*Category, error)
	Create(ctx context.Context, accountID int64, dto CreateCategoryDTO) (*Category, error)
	Rename(ctx context.Context, accountID, id int64, dto UpdateCategoryDTO) (*Category, error)
	Delete(ctx context.Context, accountID, id int64) error
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

// GetCategories lists visible categories, optionally filtered by ?kind=.
func (h *Handler) GetCategories(w http.ResponseWriter, r *http.Request) {
	var kind Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := ParseKind(raw)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		kind = parsed
	}

	categories, err := h.Service.ListVisible(r.Context(), h.AccountID(r), kind)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToResponses(categories))
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var dto CreateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Create(r.Context(), h.AccountID(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, c.ToResponse())
}

func (h *Handler) RenameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateCategoryDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	c, err := h.Service.Rename(r.Context(), h.AccountID(r), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, c.ToResponse())
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	if err := h.Service.Delete(r.Context(), h.AccountID(r), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
