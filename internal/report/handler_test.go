package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/report"
	"github.com/frahmantamala/smartexpense/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockService struct {
	dashboard  *report.Dashboard
	monthly    *report.MonthlyReport
	csv        string
	lastMonth  string
	shouldFail bool
	failError  error
}

func (m *MockService) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

func (m *MockService) Dashboard(ctx context.Context, accountID int64, mo string) (*report.Dashboard, error) {
	m.lastMonth = mo
	if m.shouldFail {
		return nil, m.failError
	}
	return m.dashboard, nil
}

func (m *MockService) MonthlyReport(ctx context.Context, accountID int64, mo string) (*report.MonthlyReport, error) {
	m.lastMonth = mo
	if m.shouldFail {
		return nil, m.failError
	}
	return m.monthly, nil
}

func (m *MockService) ExportCSV(ctx context.Context, accountID int64, w io.Writer) error {
	if m.shouldFail {
		return m.failError
	}
	_, err := io.WriteString(w, m.csv)
	return err
}

var _ = Describe("Report Handler", func() {
	var (
		service *MockService
		router  *chi.Mux
	)

	get := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req = req.WithContext(internal.ContextWithAccountID(req.Context(), 1))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		service = &MockService{
			dashboard: &report.Dashboard{Month: "2025-10", TotalExpense: "10.00", Categories: []report.CategoryLine{}},
			monthly:   &report.MonthlyReport{Month: "2025-10", Expense: "10.00", Income: "20.00", Savings: "10.00"},
			csv:       "Title,Category,Amount,Payment,Date,Note\n",
		}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler := report.NewHandler(transport.NewBaseHandler(logger), service)

		router = chi.NewRouter()
		router.Get("/reports/dashboard", handler.GetDashboard)
		router.Get("/reports/monthly", handler.GetMonthlyReport)
		router.Get("/reports/export.csv", handler.ExportCSV)
	})

	It("should pass the month query to the dashboard", func() {
		w := get("/reports/dashboard?month=2025-10")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(service.lastMonth).To(Equal("2025-10"))

		var dash report.Dashboard
		Expect(json.NewDecoder(w.Body).Decode(&dash)).To(Succeed())
		Expect(dash.TotalExpense).To(Equal("10.00"))
	})

	It("should render the monthly report", func() {
		w := get("/reports/monthly")
		Expect(w.Code).To(Equal(http.StatusOK))
		var rep report.MonthlyReport
		Expect(json.NewDecoder(w.Body).Decode(&rep)).To(Succeed())
		Expect(rep.Savings).To(Equal("10.00"))
	})

	It("should map invalid months to 400", func() {
		service.SetShouldFail(true, internal.ErrInvalidMonth)
		w := get("/reports/monthly?month=bad")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should serve the export as a CSV attachment", func() {
		w := get("/reports/export.csv")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(Equal("text/csv"))
		Expect(w.Header().Get("Content-Disposition")).To(Equal("attachment; filename=expenses.csv"))
		Expect(w.Body.String()).To(Equal("Title,Category,Amount,Payment,Date,Note\n"))
	})

	It("should answer export failures as JSON errors", func() {
		service.SetShouldFail(true, errors.New("boom"))
		w := get("/reports/export.csv")
		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))
	})
})
