package report

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/frahmantamala/smartexpense/internal/transport"
)

type ServiceAPI interface {
	Dashboard(ctx context.Context, accountID int64, month string) (*Dashboard, error)
	MonthlyReport(ctx context.Context, accountID int64, month string) (*MonthlyReport, error)
	ExportCSV(ctx context.Context, accountID int64, w io.Writer) error
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

func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.Service.Dashboard(r.Context(), h.AccountID(r), r.URL.Query().Get("month"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	rep, err := h.Service.MonthlyReport(r.Context(), h.AccountID(r), r.URL.Query().Get("month"))
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, rep)
}

// ExportCSV buffers the export so a failure can still be answered as JSON.
func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.Service.ExportCSV(r.Context(), h.AccountID(r), &buf); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=expenses.csv")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Error("ExportCSV: failed to write response", "error", err)
	}
}
