package transaction

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/category"
	"github.com/frahmantamala/smartexpense/internal/core/common/validation"
	transactionDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/transaction"
	"github.com/frahmantamala/smartexpense/internal/core/events"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/shopspring/decimal"
)

type RepositoryAPI interface {
	Create(ctx context.Context, t *transactionDatamodel.Transaction) error
	GetByID(ctx context.Context, id int64) (*transactionDatamodel.Transaction, error)
	// ListByAccount returns newest first. An empty kind returns every kind.
	ListByAccount(ctx context.Context, accountID int64, kind string) ([]*transactionDatamodel.Transaction, error)
	Update(ctx context.Context, t *transactionDatamodel.Transaction) error
	Delete(ctx context.Context, id int64) error
}

type Admitter interface {
	EvaluateAdmission(ctx context.Context, accountID int64, amount decimal.Decimal, categoryID int64, date time.Time) (budget.AdmissionResult, error)
}

type CategoryResolver interface {
	GetVisible(ctx context.Context, accountID, id int64) (*category.Category, error)
	EnsureOwnedOfKind(ctx context.Context, accountID int64, kind category.Kind, fallbackName string) (*category.Category, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       RepositoryAPI
	categories CategoryResolver
	admitter   Admitter
	bus        Publisher
	locks      *admissionLocks
	logger     *slog.Logger
}

// NewService wires intake. With serialize set, concurrent admissions for the
// same account and month are checked and inserted one at a time.
func NewService(repo RepositoryAPI, categories CategoryResolver, admitter Admitter, bus Publisher, serialize bool, logger *slog.Logger) *Service {
	s := &Service{
		repo:       repo,
		categories: categories,
		admitter:   admitter,
		bus:        bus,
		logger:     logger,
	}
	if serialize {
		s.locks = newAdmissionLocks()
	}
	return s
}

// RecordBatch processes every candidate independently. Accepted rows are
// stored at once, so later rows are evaluated against them.
func (s *Service) RecordBatch(ctx context.Context, accountID int64, rows []CreateTransactionDTO) (*BatchResult, error) {
	result := &BatchResult{
		Transactions: []TransactionResponse{},
		Errors:       []string{},
	}

	for i, row := range rows {
		n := i + 1
		if row.IsBlank() {
			continue
		}

		amount, err := row.Amount.Parse()
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Expense %d: Invalid amount", n))
			continue
		}
		if !amount.IsPositive() {
			result.Errors = append(result.Errors, fmt.Sprintf("Expense %d: Amount must be greater than zero", n))
			continue
		}
		spentOn, err := parseDate(row.SpentOn)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Expense %d: Invalid date", n))
			continue
		}
		c, err := s.categories.GetVisible(ctx, accountID, row.CategoryID)
		if err != nil {
			if appErr, ok := errors.IsAppError(err); ok && appErr.Code == errors.ErrCodeCategoryNotFound {
				result.Errors = append(result.Errors, fmt.Sprintf("Expense %d: Invalid category", n))
				continue
			}
			return nil, err
		}

		t := &Transaction{
			AccountID:   accountID,
			Title:       strings.TrimSpace(row.Title),
			CategoryID:  c.ID,
			Kind:        c.Kind,
			Amount:      amount,
			PaymentMode: row.PaymentMode,
			SpentOn:     spentOn,
			Note:        row.Note,
		}

		verdict, err := s.admit(ctx, t)
		if err != nil {
			return nil, err
		}
		if !verdict.Accepted {
			result.Errors = append(result.Errors, fmt.Sprintf("Expense '%s': %s", t.Title, verdict.Message))
			continue
		}

		result.Created++
		result.Transactions = append(result.Transactions, t.ToResponse())
	}

	s.logger.Info("transaction batch processed",
		"account_id", accountID,
		"candidates", len(rows),
		"created", result.Created,
		"failed", len(result.Errors))
	return result, nil
}

// admit evaluates an expense and stores it when accepted. Income and savings
// are stored without budget checks.
func (s *Service) admit(ctx context.Context, t *Transaction) (budget.AdmissionResult, error) {
	unlock := s.locks.lock(t.AccountID, month.Of(t.SpentOn))
	defer unlock()

	if t.Kind == category.KindExpense {
		verdict, err := s.admitter.EvaluateAdmission(ctx, t.AccountID, t.Amount, t.CategoryID, t.SpentOn)
		if err != nil {
			s.logger.Error("admission check failed", "account_id", t.AccountID, "error", err)
			return budget.AdmissionResult{}, errors.NewInternalError("failed to check budget", err)
		}
		if !verdict.Accepted {
			s.publish(ctx, events.NewAdmissionRejectedEvent(t.AccountID, string(verdict.Reason), t.Amount, verdict.Remaining))
			return verdict, nil
		}
	}

	if err := s.store(ctx, t); err != nil {
		return budget.AdmissionResult{}, err
	}
	return budget.AdmissionResult{Accepted: true, Message: budget.AcceptedMessage}, nil
}

func (s *Service) store(ctx context.Context, t *Transaction) error {
	now := time.Now()
	t.CreatedAt, t.UpdatedAt = now, now

	row := ToDataModel(t)
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to store transaction", "account_id", t.AccountID, "error", err)
		return errors.NewInternalError("failed to store transaction", err)
	}
	t.ID = row.ID

	s.publish(ctx, events.NewTransactionRecordedEvent(t.ID, t.AccountID, t.CategoryID, string(t.Kind), t.Amount))
	return nil
}

// Create records a single row with the same rules as a batch of one.
func (s *Service) Create(ctx context.Context, accountID int64, dto CreateTransactionDTO) (*BatchResult, error) {
	return s.RecordBatch(ctx, accountID, []CreateTransactionDTO{dto})
}

// CheckBudget runs the admission check without recording anything.
func (s *Service) CheckBudget(ctx context.Context, accountID int64, dto CheckBudgetDTO) (*CheckBudgetResponse, error) {
	if dto.Amount.IsBlank() || dto.CategoryID == 0 {
		return nil, ErrAmountRequired
	}
	amount, err := dto.Amount.Parse()
	if err != nil {
		return nil, ErrAmountNotValid
	}
	// unparseable dates fall back to today
	spentOn, err := parseDate(dto.SpentOn)
	if err != nil {
		spentOn = month.Day(time.Now())
	}

	verdict, err := s.admitter.EvaluateAdmission(ctx, accountID, amount, dto.CategoryID, spentOn)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok {
			return nil, appErr
		}
		return nil, errors.NewInternalError("failed to check budget", err)
	}
	return &CheckBudgetResponse{OK: verdict.Accepted, Message: verdict.Message}, nil
}

func (s *Service) AddIncome(ctx context.Context, accountID int64, dto MovementDTO) (*Transaction, error) {
	return s.addMovement(ctx, accountID, dto, category.KindIncome, "Income", true)
}

// AddSavings records a savings movement; the title defaults to "Savings".
func (s *Service) AddSavings(ctx context.Context, accountID int64, dto MovementDTO) (*Transaction, error) {
	if strings.TrimSpace(dto.Title) == "" {
		dto.Title = "Savings"
	}
	return s.addMovement(ctx, accountID, dto, category.KindSavings, "Savings", false)
}

func (s *Service) addMovement(ctx context.Context, accountID int64, dto MovementDTO, kind category.Kind, fallback string, titleRequired bool) (*Transaction, error) {
	amount, spentOn, verr := dto.Validate(titleRequired)
	if verr != nil {
		return nil, verr
	}

	c, err := s.categories.EnsureOwnedOfKind(ctx, accountID, kind, fallback)
	if err != nil {
		return nil, err
	}

	t := &Transaction{
		AccountID:   accountID,
		Title:       strings.TrimSpace(dto.Title),
		CategoryID:  c.ID,
		Kind:        c.Kind,
		Amount:      amount,
		PaymentMode: dto.PaymentMode,
		SpentOn:     spentOn,
		Note:        dto.Note,
	}
	if err := s.store(ctx, t); err != nil {
		return nil, err
	}
	s.logger.Info("movement recorded", "account_id", accountID, "kind", kind, "transaction_id", t.ID)
	return t, nil
}

func (s *Service) List(ctx context.Context, accountID int64, kind category.Kind) ([]*Transaction, error) {
	rows, err := s.repo.ListByAccount(ctx, accountID, string(kind))
	if err != nil {
		s.logger.Error("failed to list transactions", "account_id", accountID, "error", err)
		return nil, errors.NewInternalError("failed to list transactions", err)
	}
	out := make([]*Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, accountID, id int64) (*Transaction, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get transaction", "transaction_id", id, "error", err)
		return nil, errors.NewInternalError("failed to get transaction", err)
	}
	if row == nil {
		return nil, errors.ErrTransactionNotFound
	}
	t := FromDataModel(row)
	if !t.OwnedBy(accountID) {
		return nil, errors.ErrTransactionNotFound
	}
	return t, nil
}

// Update edits an own transaction. Budgets are not re-checked.
func (s *Service) Update(ctx context.Context, accountID, id int64, dto UpdateTransactionDTO) (*Transaction, error) {
	t, err := s.Get(ctx, accountID, id)
	if err != nil {
		return nil, err
	}

	if dto.Title != nil {
		if verr := validation.ValidateTitle(*dto.Title); verr != nil {
			return nil, verr
		}
		t.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.CategoryID != nil {
		c, err := s.categories.GetVisible(ctx, accountID, *dto.CategoryID)
		if err != nil {
			return nil, err
		}
		t.CategoryID = c.ID
		t.Kind = c.Kind
	}
	if dto.Amount != nil {
		amount, err := dto.Amount.Parse()
		if err != nil {
			return nil, ErrAmountNotValid
		}
		if !amount.IsPositive() {
			return nil, errors.ErrInvalidAmount
		}
		t.Amount = amount
	}
	if dto.PaymentMode != nil {
		t.PaymentMode = *dto.PaymentMode
	}
	if dto.SpentOn != nil {
		spentOn, err := parseDate(*dto.SpentOn)
		if err != nil {
			return nil, ErrInvalidDate
		}
		t.SpentOn = spentOn
	}
	if dto.Note != nil {
		t.Note = dto.Note
	}
	t.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, ToDataModel(t)); err != nil {
		s.logger.Error("failed to update transaction", "transaction_id", id, "error", err)
		return nil, errors.NewInternalError("failed to update transaction", err)
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, accountID, id int64) error {
	if _, err := s.Get(ctx, accountID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete transaction", "transaction_id", id, "error", err)
		return errors.NewInternalError("failed to delete transaction", err)
	}
	s.logger.Info("transaction deleted", "account_id", accountID, "transaction_id", id)
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
