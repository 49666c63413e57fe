package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/frahmantamala/smartexpense/internal/core/month"
	"github.com/frahmantamala/smartexpense/internal/report"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

const sqliteDriver = "sqlite3"

type ReportRepository struct {
	db *sqlx.DB
}

func NewReportRepository(db *sqlx.DB) report.RepositoryAPI {
	return &ReportRepository{db: db}
}

// bucketTotal is one grouped sum, or one raw amount on SQLite.
type bucketTotal struct {
	Bucket string          `db:"bucket"`
	Total  decimal.Decimal `db:"total"`
}

// sumBy totals the account's month of transactions per bucket expression,
// ordered by bucket in byte order. SQLite keeps NUMERIC values as REAL and
// SUM adds them in floating point, so there the amounts are added here.
func (r *ReportRepository) sumBy(ctx context.Context, bucket, extra string, accountID int64, m month.Month) ([]bucketTotal, error) {
	from := `FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.account_id = ? AND t.spent_on >= ? AND t.spent_on < ?` + extra

	var query string
	if r.db.DriverName() == sqliteDriver {
		query = fmt.Sprintf("SELECT %s AS bucket, t.amount AS total %s", bucket, from)
	} else {
		query = fmt.Sprintf("SELECT %s AS bucket, COALESCE(SUM(t.amount), 0) AS total %s GROUP BY %s", bucket, from, bucket)
	}

	var rows []bucketTotal
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), accountID, m.Start(), m.End()); err != nil {
		return nil, err
	}

	sums := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		sums[row.Bucket] = sums[row.Bucket].Add(row.Total)
	}
	out := make([]bucketTotal, 0, len(sums))
	for b, total := range sums {
		out = append(out, bucketTotal{Bucket: b, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bucket < out[j].Bucket })
	return out, nil
}

func (r *ReportRepository) MonthTotals(ctx context.Context, accountID int64, m month.Month) (report.Totals, error) {
	rows, err := r.sumBy(ctx, "c.kind", "", accountID, m)
	if err != nil {
		return report.Totals{}, fmt.Errorf("month totals query: %w", err)
	}

	var totals report.Totals
	for _, row := range rows {
		switch row.Bucket {
		case "income":
			totals.Income = row.Total
		case "expense":
			totals.Expense = row.Total
		case "savings":
			totals.Savings = row.Total
		}
	}
	return totals, nil
}

func (r *ReportRepository) ExpenseBreakdown(ctx context.Context, accountID int64, m month.Month) ([]report.BreakdownRow, error) {
	rows, err := r.sumBy(ctx, "c.name", " AND c.kind = 'expense'", accountID, m)
	if err != nil {
		return nil, fmt.Errorf("expense breakdown query: %w", err)
	}
	out := make([]report.BreakdownRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, report.BreakdownRow{Name: row.Bucket, Total: row.Total})
	}
	return out, nil
}

const exportRowsQuery = `
SELECT t.title, c.name AS category, t.amount, COALESCE(t.payment_mode, '') AS payment_mode, t.spent_on, t.note
FROM transactions t
JOIN categories c ON c.id = t.category_id
WHERE t.account_id = ?
ORDER BY t.spent_on DESC, t.id DESC
`

func (r *ReportRepository) ExportRows(ctx context.Context, accountID int64) ([]report.ExportRow, error) {
	var rows []report.ExportRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(exportRowsQuery), accountID); err != nil {
		return nil, fmt.Errorf("export rows query: %w", err)
	}
	return rows, nil
}
