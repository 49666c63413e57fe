package budget

import (
	"context"
	"net/http"

	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/frahmantamala/smartexpense/internal/transport"
)

type ServiceAPI interface {
	SetMonthlyBudget(ctx context.Context, accountID int64, dto SetMonthlyBudgetDTO) (*MonthlyBudget, error)
	ListMonthlyBudgets(ctx context.Context, accountID int64) ([]*MonthlyBudget, error)
	SetCategoryBudget(ctx context.Context, accountID int64, dto SetCategoryBudgetDTO) (*CategoryBudget, error)
	CategoryStatusView(ctx context.Context, accountID int64, key string) (month.Month, []CategoryStatus, error)
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

func (h *Handler) ListMonthlyBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := h.Service.ListMonthlyBudgets(r.Context(), h.AccountID(r))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MonthlyBudgetsResponse{Budgets: budgets})
}

func (h *Handler) SetMonthlyBudget(w http.ResponseWriter, r *http.Request) {
	var dto SetMonthlyBudgetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	b, err := h.Service.SetMonthlyBudget(r.Context(), h.AccountID(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}

// GetCategoryStatus renders the per-category view for ?month=YYYY-MM.
func (h *Handler) GetCategoryStatus(w http.ResponseWriter, r *http.Request) {
	m, view, err := h.Service.CategoryStatusView(r.Context(), h.AccountID(r), r.URL.Query().Get("month"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, StatusViewResponse{Month: m.String(), Categories: view})
}

func (h *Handler) SetCategoryBudget(w http.ResponseWriter, r *http.Request) {
	var dto SetCategoryBudgetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	b, err := h.Service.SetCategoryBudget(r.Context(), h.AccountID(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, b)
}
