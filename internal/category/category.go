package category

import (
	"strings"
	"time"

	errors "github.com/frahmantamala/smartexpense/internal"
	categoryDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/category"
)

// Kind decides how a transaction in the category counts towards the ledger.
type Kind string

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
	KindSavings Kind = "savings"
)

var ErrInvalidKind = errors.NewValidationError("Kind must be one of: expense, income, savings", errors.ErrCodeInvalidKind)

// DefaultNames are the global expense categories every account can see.
var DefaultNames = []string{"Groceries", "Clothing", "Transport", "Bills", "Entertainment"}

// ParseKind reads a kind, treating the empty string as expense.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case "", KindExpense:
		return KindExpense, nil
	case KindIncome:
		return KindIncome, nil
	case KindSavings:
		return KindSavings, nil
	}
	return "", ErrInvalidKind
}

type Category struct {
	ID        int64     `json:"id"`
	AccountID *int64    `json:"account_id,omitempty"`
	Name      string    `json:"name"`
	Kind      Kind      `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewCategory(accountID int64, name string, kind Kind) *Category {
	now := time.Now()
	return &Category{
		AccountID: &accountID,
		Name:      strings.TrimSpace(name),
		Kind:      kind,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (c *Category) IsGlobal() bool {
	return c.AccountID == nil
}

func (c *Category) OwnedBy(accountID int64) bool {
	return c.AccountID != nil && *c.AccountID == accountID
}

func (c *Category) VisibleTo(accountID int64) bool {
	return c.IsGlobal() || c.OwnedBy(accountID)
}

func (c *Category) IsExpense() bool {
	return c.Kind == KindExpense
}

func (c *Category) Rename(name string) {
	c.Name = strings.TrimSpace(name)
	c.UpdatedAt = time.Now()
}

func (c *Category) ToResponse() CategoryResponse {
	return CategoryResponse{
		ID:     c.ID,
		Name:   c.Name,
		Kind:   string(c.Kind),
		Global: c.IsGlobal(),
	}
}

func ToDataModel(c *Category) *categoryDatamodel.Category {
	return &categoryDatamodel.Category{
		ID:        c.ID,
		AccountID: c.AccountID,
		Name:      c.Name,
		Kind:      string(c.Kind),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModel(c *categoryDatamodel.Category) *Category {
	return &Category{
		ID:        c.ID,
		AccountID: c.AccountID,
		Name:      c.Name,
		Kind:      Kind(c.Kind),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func FromDataModels(rows []*categoryDatamodel.Category) []*Category {
	out := make([]*Category, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromDataModel(row))
	}
	return out
}
