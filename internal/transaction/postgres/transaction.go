package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/smartexpense/internal/budget"
	"github.com/frahmantamala/smartexpense/internal/category"
	transactionDatamodel "github.com/frahmantamala/smartexpense/internal/core/datamodel/transaction"
	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/frahmantamala/smartexpense/internal/transaction"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TransactionRepository stores transactions and answers the ledger sums the
// budget evaluator and category lifecycle need.
type TransactionRepository struct {
	db *gorm.DB
}

var (
	_ transaction.RepositoryAPI = (*TransactionRepository)(nil)
	_ budget.Ledger             = (*TransactionRepository)(nil)
	_ category.UsageCounter     = (*TransactionRepository)(nil)
)

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, t *transactionDatamodel.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// withKind selects transaction rows together with their category's kind.
func (r *TransactionRepository) withKind(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Select("transactions.*, categories.kind AS kind").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id")
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*transactionDatamodel.Transaction, error) {
	var t transactionDatamodel.Transaction
	err := r.withKind(ctx).Where("transactions.id = ?", id).Take(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID int64, kind string) ([]*transactionDatamodel.Transaction, error) {
	var rows []*transactionDatamodel.Transaction
	q := r.withKind(ctx).Where("transactions.account_id = ?", accountID)
	if kind != "" {
		q = q.Where("categories.kind = ?", kind)
	}
	err := q.Order("transactions.spent_on DESC").Order("transactions.id DESC").Find(&rows).Error
	return rows, err
}

func (r *TransactionRepository) Update(ctx context.Context, t *transactionDatamodel.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *TransactionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&transactionDatamodel.Transaction{}, id).Error
}

func (r *TransactionRepository) inMonth(ctx context.Context, accountID int64, m month.Month) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("transactions.account_id = ? AND transactions.spent_on >= ? AND transactions.spent_on < ?", accountID, m.Start(), m.End())
}

func (r *TransactionRepository) SumAmount(ctx context.Context, accountID int64, m month.Month, kind category.Kind) (decimal.Decimal, error) {
	q := r.inMonth(ctx, accountID, m)
	if kind != "" {
		q = q.Joins("JOIN categories ON categories.id = transactions.category_id").
			Where("categories.kind = ?", string(kind))
	}
	return r.sum(q)
}

func (r *TransactionRepository) SumAmountForCategory(ctx context.Context, accountID, categoryID int64, m month.Month) (decimal.Decimal, error) {
	return r.sum(r.inMonth(ctx, accountID, m).Where("transactions.category_id = ?", categoryID))
}

func (r *TransactionRepository) SumAmountByCategory(ctx context.Context, accountID int64, m month.Month) (map[int64]decimal.Decimal, error) {
	q := r.inMonth(ctx, accountID, m)
	if r.exactInGo() {
		q = q.Select("transactions.category_id, transactions.amount")
	} else {
		q = q.Select("transactions.category_id, COALESCE(SUM(transactions.amount), 0)").
			Group("transactions.category_id")
	}
	rows, err := q.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[int64]decimal.Decimal)
	for rows.Next() {
		var (
			categoryID int64
			amount     decimal.Decimal
		)
		if err := rows.Scan(&categoryID, &amount); err != nil {
			return nil, err
		}
		totals[categoryID] = totals[categoryID].Add(amount)
	}
	return totals, rows.Err()
}

// exactInGo reports whether sums must be added up here. SQLite keeps NUMERIC
// values as REAL and its SUM adds them in floating point.
func (r *TransactionRepository) exactInGo() bool {
	return r.db.Dialector.Name() == "sqlite"
}

func (r *TransactionRepository) sum(q *gorm.DB) (decimal.Decimal, error) {
	if r.exactInGo() {
		var amounts []decimal.Decimal
		if err := q.Pluck("transactions.amount", &amounts).Error; err != nil {
			return decimal.Zero, err
		}
		return decimal.Sum(decimal.Zero, amounts...), nil
	}

	var total decimal.Decimal
	err := q.Select("COALESCE(SUM(transactions.amount), 0)").Row().Scan(&total)
	return total, err
}

func (r *TransactionRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&transactionDatamodel.Transaction{}).
		Where("category_id = ?", categoryID).
		Count(&count).Error
	return count, err
}
