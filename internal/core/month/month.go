// Package month models the calendar month buckets ("YYYY-MM") that scope
// budgets and monthly totals.
package month

import (
	"fmt"
	"time"
)

const layout = "2006-01"

// Month is a calendar month. The zero value is not a valid month.
type Month struct {
	year  int
	month time.Month
}

// Of truncates t to its month, using t's own calendar date.
func Of(t time.Time) Month {
	return Month{year: t.Year(), month: t.Month()}
}

func Current() Month {
	return Of(time.Now())
}

// Parse reads a "YYYY-MM" key.
func Parse(s string) (Month, error) {
	t, err := time.Parse(layout, s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return Of(t), nil
}

func (m Month) IsZero() bool {
	return m.year == 0 && m.month == 0
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.year, int(m.month))
}

// Start is midnight UTC on the first day of the month.
func (m Month) Start() time.Time {
	return time.Date(m.year, m.month, 1, 0, 0, 0, 0, time.UTC)
}

// End is the exclusive upper bound: midnight UTC on the first day of the next month.
func (m Month) End() time.Time {
	return m.Next().Start()
}

func (m Month) Next() Month {
	return Of(time.Date(m.year, m.month+1, 1, 0, 0, 0, 0, time.UTC))
}

// Day normalises t to midnight UTC of its calendar date, the form in which
// transaction dates are stored.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
