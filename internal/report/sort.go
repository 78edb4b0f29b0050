// Package report derives sorted and summarized views of entries for display
// and export.
package report

import (
	"slices"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order is a sort field and direction.
type Order struct {
	Field     string
	Direction Direction
}

// DefaultOrder sorts by date, oldest first.
var DefaultOrder = Order{Field: domain.FieldDate, Direction: Asc}

// Toggle returns the order after the user picks field: the same field flips
// direction, another field starts ascending.
func (o Order) Toggle(field string) Order {
	if o.Field != field {
		return Order{Field: field, Direction: Asc}
	}
	if o.Direction == Asc {
		return Order{Field: field, Direction: Desc}
	}
	return Order{Field: field, Direction: Asc}
}

func (o Order) String() string {
	return o.Field + " " + string(o.Direction)
}

// SortFields lists the fields Sort understands, in column order.
var SortFields = []string{
	domain.FieldDate,
	domain.FieldWeekday,
	domain.FieldStartTime,
	domain.FieldEndTime,
	domain.FieldDuration,
	domain.FieldUsername,
	domain.FieldClientName,
	domain.FieldActivity,
	domain.FieldNotes,
	domain.FieldModifiedAt,
}

// IsSortField reports whether field is one of SortFields.
func IsSortField(field string) bool {
	return slices.Contains(SortFields, field)
}

// Sort returns a stably sorted copy of items. Empty values sort after
// non-empty ones when ascending. Unknown fields leave the order unchanged.
func Sort[T any](items []T, entryOf func(T) domain.Entry, order Order) []T {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b T) int {
		c := compareField(order.Field, entryOf(a), entryOf(b))
		if order.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}

// SortEntries sorts plain entries.
func SortEntries(entries []domain.Entry, order Order) []domain.Entry {
	return Sort(entries, func(e domain.Entry) domain.Entry { return e }, order)
}

// weekdayRank maps Saturday to 0 so weeks run Saturday through Friday.
func weekdayRank(t time.Time) int {
	return (int(t.Weekday()) + 1) % 7
}

func compareField(field string, a, b domain.Entry) int {
	switch field {
	case domain.FieldDate:
		return compareTimes(a.Date, b.Date)
	case domain.FieldWeekday:
		if c, done := compareEmpty(a.Date.IsZero(), b.Date.IsZero()); done {
			return c
		}
		return weekdayRank(a.Date) - weekdayRank(b.Date)
	case domain.FieldStartTime:
		return compareStrings(a.StartTime, b.StartTime)
	case domain.FieldEndTime:
		return compareStrings(a.EndTime, b.EndTime)
	case domain.FieldDuration:
		if c, done := compareEmpty(!a.Duration.Valid, !b.Duration.Valid); done {
			return c
		}
		return a.Duration.Decimal.Cmp(b.Duration.Decimal)
	case domain.FieldUsername:
		return compareStrings(a.Username, b.Username)
	case domain.FieldClientName:
		return compareStrings(a.ClientName, b.ClientName)
	case domain.FieldActivity:
		return compareStrings(a.ActivityName, b.ActivityName)
	case domain.FieldNotes:
		return compareStrings(a.Notes, b.Notes)
	case domain.FieldModifiedAt:
		return compareTimes(a.ModifiedAt, b.ModifiedAt)
	case domain.FieldClientID:
		return compareStrings(a.ClientID, b.ClientID)
	case domain.FieldActivityID:
		return compareStrings(a.ActivityID, b.ActivityID)
	default:
		return 0
	}
}

// compareEmpty orders empty values last. done is false when both are set.
func compareEmpty(aEmpty, bEmpty bool) (c int, done bool) {
	switch {
	case aEmpty && bEmpty:
		return 0, true
	case aEmpty:
		return 1, true
	case bEmpty:
		return -1, true
	}
	return 0, false
}

func compareStrings(a, b string) int {
	if c, done := compareEmpty(a == "", b == ""); done {
		return c
	}
	return strings.Compare(a, b)
}

func compareTimes(a, b time.Time) int {
	if c, done := compareEmpty(a.IsZero(), b.IsZero()); done {
		return c
	}
	return a.Compare(b)
}
