package transaction

import (
	"context"
	"net/http"

	"github.com/frahmantamala/smartexpense/internal/category"
	"github.com/frahmantamala/smartexpense/internal/transport"
)

type ServiceAPI interface {
	RecordBatch(ctx context.Context, accountID int64, rows []CreateTransactionDTO) (*BatchResult, error)
	CheckBudget(ctx context.Context, accountID int64, dto CheckBudgetDTO) (*CheckBudgetResponse, error)
	AddIncome(ctx context.Context, accountID int64, dto MovementDTO) (*Transaction, error)
	AddSavings(ctx context.Context, accountID int64, dto MovementDTO) (*Transaction, error)
	List(ctx context.Context, accountID int64, kind category.Kind) ([]*Transaction, error)
	Get(ctx context.Context, accountID, id int64) (*Transaction, error)
	Update(ctx context.Context, accountID, id int64, dto UpdateTransactionDTO) (*Transaction, error)
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

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	var kind category.Kind
	if raw := r.URL.Query().Get("kind"); raw != "" {
		parsed, err := category.ParseKind(raw)
		if err != nil {
			h.HandleServiceError(w, r, err)
			return
		}
		kind = parsed
	}

	txs, err := h.Service.List(r.Context(), h.AccountID(r), kind)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp := TransactionsResponse{Transactions: make([]TransactionResponse, 0, len(txs))}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, t.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// CreateTransactions records a batch. It answers 201 when at least one row
// was stored and 422 when every candidate failed.
func (h *Handler) CreateTransactions(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := h.DecodeJSON(r, &req); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.RecordBatch(r.Context(), h.AccountID(r), req.Transactions)
	if err != nil {
		h.Logger.Error("CreateTransactions: service error", "error", err, "account_id", h.AccountID(r))
		h.HandleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	switch {
	case result.Created > 0:
		status = http.StatusCreated
	case len(result.Errors) > 0:
		status = http.StatusUnprocessableEntity
	}
	h.WriteJSON(w, status, result)
}

func (h *Handler) CheckBudget(w http.ResponseWriter, r *http.Request) {
	var dto CheckBudgetDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	resp, err := h.Service.CheckBudget(r.Context(), h.AccountID(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) AddIncome(w http.ResponseWriter, r *http.Request) {
	h.addMovement(w, r, h.Service.AddIncome)
}

func (h *Handler) AddSavings(w http.ResponseWriter, r *http.Request) {
	h.addMovement(w, r, h.Service.AddSavings)
}

func (h *Handler) addMovement(w http.ResponseWriter, r *http.Request, add func(context.Context, int64, MovementDTO) (*Transaction, error)) {
	var dto MovementDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := add(r.Context(), h.AccountID(r), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, t.ToResponse())
}

func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := h.Service.Get(r.Context(), h.AccountID(r), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t.ToResponse())
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := h.ParseIDParam(r, "id")
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	var dto UpdateTransactionDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	t, err := h.Service.Update(r.Context(), h.AccountID(r), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, t.ToResponse())
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
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
