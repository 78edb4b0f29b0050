package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/service"
)

// entryForm holds the text values of the ledger edit form for one row.
type entryForm struct {
	key        string
	date       string
	start      string
	end        string
	hours      string
	clientID   string
	activityID string
	notes      string
	fieldErrs  map[string]string
}

func newEntryForm(row ledger.Row) *entryForm {
	e := row.Entry
	return &entryForm{
		key:        row.Key(),
		date:       e.DateString(),
		start:      e.StartTime,
		end:        e.EndTime,
		hours:      e.DurationString(),
		clientID:   e.ClientID,
		activityID: e.ActivityID,
		notes:      e.Notes,
		fieldErrs:  row.FieldErrors,
	}
}

// fields overlays the form values on base. The form validators reject
// unparsable input, so errors here mean the form was bypassed.
func (f *entryForm) fields(base domain.EntryFields) (domain.EntryFields, error) {
	date, err := domain.ParseDate(f.date)
	if err != nil {
		return base, fmt.Errorf("invalid date %q", f.date)
	}
	hours, err := domain.ParseHours(f.hours)
	if err != nil {
		return base, fmt.Errorf("invalid hours %q", f.hours)
	}
	base.Date = date
	base.StartTime = f.start
	base.EndTime = f.end
	base.Duration = hours
	base.ClientID = f.clientID
	base.ActivityID = f.activityID
	base.Notes = f.notes
	return base, nil
}

// describe shows the error recorded for field by the last save attempt.
func (f *entryForm) describe(field, fallback string) string {
	if msg, ok := f.fieldErrs[field]; ok {
		return "⚠ " + msg
	}
	return fallback
}

func validateDate(s string) error {
	if s == "" {
		return errors.New("enter a date")
	}
	if _, err := domain.ParseDate(s); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validateClock(s string) error {
	if s != "" && !domain.ValidClock(s) {
		return errors.New("use HH:MM")
	}
	return nil
}

func validateHours(s string) error {
	d, err := domain.ParseHours(s)
	if err != nil {
		return errors.New("enter decimal hours, e.g. 7.5")
	}
	if d.Valid && d.Decimal.IsNegative() {
		return errors.New("must not be negative")
	}
	return nil
}

func clientOptions(catalog *service.Catalog) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	for _, c := range catalog.Clients {
		opts = append(opts, huh.NewOption(c.Name, c.ID))
	}
	return opts
}

// activityOptions offers the activities assigned to some client, plus the
// row's current activity when it is no longer assigned.
func activityOptions(catalog *service.Catalog, current string) []huh.Option[string] {
	opts := []huh.Option[string]{huh.NewOption("(none)", "")}
	found := current == ""
	for _, a := range catalog.Assigned {
		opts = append(opts, huh.NewOption(a.Name, a.ID))
		found = found || a.ID == current
	}
	if !found {
		opts = append(opts, huh.NewOption(catalog.ActivityName(current)+" (unassigned)", current))
	}
	return opts
}

func (f *entryForm) build(catalog *service.Catalog) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Date").
				Description(f.describe(domain.FieldDate, "YYYY-MM-DD")).
				Value(&f.date).
				Validate(validateDate),
			huh.NewInput().
				Title("Start").
				Description(f.describe(domain.FieldStartTime, "HH:MM, optional")).
				Value(&f.start).
				Validate(validateClock),
			huh.NewInput().
				Title("End").
				Description(f.describe(domain.FieldEndTime, "HH:MM, optional")).
				Value(&f.end).
				Validate(validateClock),
			huh.NewInput().
				Title("Hours").
				Description(f.describe(domain.FieldDuration, "decimal hours, optional")).
				Value(&f.hours).
				Validate(validateHours),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Client").
				Description(f.describe(domain.FieldClientID, "")).
				Options(clientOptions(catalog)...).
				Value(&f.clientID),
			huh.NewSelect[string]().
				Title("Activity").
				Description(f.describe(domain.FieldActivityID, "")).
				Options(activityOptions(catalog, f.activityID)...).
				Value(&f.activityID),
			huh.NewText().
				Title("Notes").
				Description(f.describe(domain.FieldNotes, "")).
				Value(&f.notes),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

// userPicker lets an admin choose whose ledger to open.
func userPicker(catalog *service.Catalog, selected *string) *huh.Form {
	opts := make([]huh.Option[string], 0, len(catalog.Users))
	for _, u := range catalog.Users {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", u.Name(), u.Username), u.ID))
	}
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Open ledger of").Options(opts...).Value(selected),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}
