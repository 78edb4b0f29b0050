package domain

import (
	"fmt"
	"time"
)

// Period is one selectable calendar month of a user's ledger.
type Period struct {
	Year         int
	Month        time.Month
	NumberOfDays int
	Locked       bool
	Display      string
}

// NewPeriod builds the period for the given month. Locked is left false;
// the calendar decides locking.
func NewPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{
		Year:         start.Year(),
		Month:        start.Month(),
		NumberOfDays: start.AddDate(0, 1, -1).Day(),
		Display:      start.Format("2006 January"),
	}
}

// Start returns the first day of the period at UTC midnight.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the following month (exclusive bound).
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Contains reports whether the calendar date of t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	y, m, _ := t.Date()
	return y == p.Year && m == p.Month
}

// Key returns the period in YYYY-MM form.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Same reports whether both periods name the same month, ignoring lock state.
func (p Period) Same(other Period) bool {
	return p.Year == other.Year && p.Month == other.Month
}

// ParsePeriodKey parses a YYYY-MM string.
func ParsePeriodKey(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid month %q (want YYYY-MM): %w", s, err)
	}
	return NewPeriod(t.Year(), t.Month()), nil
}
