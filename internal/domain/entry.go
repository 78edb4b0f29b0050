package domain

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the storage and display layout for civil dates.
const DateLayout = "2006-01-02"

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Entry is one time-tracking report entry.
type Entry struct {
	ID         string
	UserID     string
	Date       time.Time // civil date at UTC midnight; zero means empty
	StartTime  string    // "HH:MM" or ""
	EndTime    string    // "HH:MM" or ""
	Duration   decimal.NullDecimal
	ClientID   string
	ActivityID string
	Notes      string
	ModifiedAt time.Time

	// Denormalised by report queries; never written.
	Username     string
	ClientName   string
	ActivityName string
}

// EntryFields is the user-editable part of an Entry.
type EntryFields struct {
	UserID     string
	Date       time.Time
	StartTime  string
	EndTime    string
	Duration   decimal.NullDecimal
	ClientID   string
	ActivityID string
	Notes      string
}

// Fields extracts the editable fields of e.
func (e Entry) Fields() EntryFields {
	return EntryFields{
		UserID:     e.UserID,
		Date:       e.Date,
		StartTime:  e.StartTime,
		EndTime:    e.EndTime,
		Duration:   e.Duration,
		ClientID:   e.ClientID,
		ActivityID: e.ActivityID,
		Notes:      e.Notes,
	}
}

// WithFields returns a copy of e carrying f.
func (e Entry) WithFields(f EntryFields) Entry {
	e.UserID = f.UserID
	e.Date = f.Date
	e.StartTime = f.StartTime
	e.EndTime = f.EndTime
	e.Duration = f.Duration
	e.ClientID = f.ClientID
	e.ActivityID = f.ActivityID
	e.Notes = f.Notes
	return e
}

// DateString formats the entry date, or "" when empty.
func (e Entry) DateString() string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Format(DateLayout)
}

// Hours returns the numeric duration; empty durations count as zero.
func (e Entry) Hours() decimal.Decimal {
	if !e.Duration.Valid {
		return decimal.Zero
	}
	return e.Duration.Decimal
}

// DurationString formats the duration, or "" when empty.
func (e Entry) DurationString() string {
	if !e.Duration.Valid {
		return ""
	}
	return e.Duration.Decimal.String()
}

// ChangedFields lists the field names whose values differ between a and b.
// Names match the ones used by ValidationError.
func ChangedFields(a, b EntryFields) []string {
	var changed []string
	if !a.Date.Equal(b.Date) {
		changed = append(changed, FieldDate)
	}
	if a.StartTime != b.StartTime {
		changed = append(changed, FieldStartTime)
	}
	if a.EndTime != b.EndTime {
		changed = append(changed, FieldEndTime)
	}
	if a.Duration.Valid != b.Duration.Valid || !a.Duration.Decimal.Equal(b.Duration.Decimal) {
		changed = append(changed, FieldDuration)
	}
	if a.ClientID != b.ClientID {
		changed = append(changed, FieldClientID)
	}
	if a.ActivityID != b.ActivityID {
		changed = append(changed, FieldActivityID)
	}
	if a.Notes != b.Notes {
		changed = append(changed, FieldNotes)
	}
	if a.UserID != b.UserID {
		changed = append(changed, FieldUserID)
	}
	return changed
}

// Entry field names shared by validation, sorting and presentation.
const (
	FieldDate       = "date"
	FieldWeekday    = "weekday"
	FieldStartTime  = "startTime"
	FieldEndTime    = "endTime"
	FieldDuration   = "duration"
	FieldClientID   = "clientId"
	FieldActivityID = "activityId"
	FieldUserID     = "userId"
	FieldNotes      = "notes"
	FieldModifiedAt = "modifiedAt"
	FieldUsername   = "username"
	FieldClientName = "clientName"
	FieldActivity   = "activityName"
)

// ValidClock reports whether s is an "HH:MM" time of day.
func ValidClock(s string) bool {
	return clockPattern.MatchString(s)
}

// ParseHours parses a decimal-hours string. Blank input yields an empty value.
func ParseHours(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

// ParseDate parses a YYYY-MM-DD date into UTC midnight. Blank input yields
// the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, s)
}

// Validate checks field formats. The returned error, if any, is a
// *ValidationError naming every offending field.
func (f EntryFields) Validate() error {
	fields := map[string]string{}
	if f.Date.IsZero() {
		fields[FieldDate] = "required"
	}
	if f.StartTime != "" && !ValidClock(f.StartTime) {
		fields[FieldStartTime] = "must be HH:MM"
	}
	if f.EndTime != "" && !ValidClock(f.EndTime) {
		fields[FieldEndTime] = "must be HH:MM"
	}
	if f.StartTime != "" && f.EndTime != "" && ValidClock(f.StartTime) && ValidClock(f.EndTime) && f.EndTime < f.StartTime {
		fields[FieldEndTime] = "must not be before start time"
	}
	if f.Duration.Valid && f.Duration.Decimal.IsNegative() {
		fields[FieldDuration] = "must not be negative"
	}
	if len(fields) > 0 {
		return &ValidationError{Message: "entry validation failed", Fields: fields}
	}
	return nil
}
