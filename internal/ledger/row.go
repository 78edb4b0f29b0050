package ledger

import (
	"maps"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// Row is one line of the ledger: an identity, the entry values shown for it
// and any field errors reported by the last save.
type Row struct {
	Identity    Identity
	Entry       domain.Entry
	FieldErrors map[string]string
}

// Key returns the row's session-unique key.
func (r Row) Key() string { return r.Identity.Key() }

// Kind classifies the row's identity.
func (r Row) Kind() Kind { return Classify(r.Identity) }

// Origin returns the entry this row was duplicated from, if any.
func (r Row) Origin() (domain.Entry, bool) {
	if n, ok := r.Identity.(New); ok && n.Origin != nil {
		return *n.Origin, true
	}
	return domain.Entry{}, false
}

func (r Row) clone() Row {
	r.FieldErrors = maps.Clone(r.FieldErrors)
	return r
}

// Defaults seeds fields of rows created in the ledger.
type Defaults struct {
	// UserID is the user the entry is logged for. Admins set it to the
	// user they are reviewing.
	UserID string
}

// PersistedRow wraps a stored entry.
func PersistedRow(e domain.Entry) Row {
	return Row{Identity: Persisted{ID: e.ID}, Entry: e}
}

// NewRow builds an empty row dated today when today falls inside period,
// otherwise on the first day of period.
func NewRow(gen *IDGenerator, period domain.Period, now time.Time, defaults Defaults) Row {
	now = now.UTC()
	date := period.Start()
	if period.Contains(now) {
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	return Row{
		Identity: New{LocalID: gen.Next()},
		Entry:    domain.Entry{UserID: defaults.UserID, Date: date},
	}
}

// DuplicateRow copies every field of origin into a new row that remembers
// origin as it was at duplication time.
func DuplicateRow(gen *IDGenerator, origin domain.Entry) Row {
	snapshot := origin
	copied := origin
	copied.ID = ""
	copied.ModifiedAt = time.Time{}
	return Row{
		Identity: New{LocalID: gen.Next(), Origin: &snapshot},
		Entry:    copied,
	}
}

// PlaceholderRow builds the display-only row for a day without entries.
func PlaceholderRow(date time.Time, userID string) Row {
	return Row{
		Identity: Placeholder{Slot: date.Format(domain.DateLayout)},
		Entry:    domain.Entry{UserID: userID, Date: date},
	}
}

// unchangedFromOrigin reports whether a duplicate still has the origin's
// date, start time and end time.
func unchangedFromOrigin(fields domain.EntryFields, origin domain.Entry) bool {
	return fields.Date.Equal(origin.Date) &&
		fields.StartTime == origin.StartTime &&
		fields.EndTime == origin.EndTime
}
