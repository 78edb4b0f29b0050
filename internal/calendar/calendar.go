// Package calendar computes the months a user may open in the ledger and
// which of them are locked for editing.
package calendar

import (
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// ExtraMonths is how far past the current month entries may be logged.
const ExtraMonths = 1

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// FirstUnlocked returns the first day of the earliest month the user can
// still edit at now. Until the lock day has passed the previous month stays
// open.
func FirstUnlocked(user domain.User, now time.Time) time.Time {
	first := monthStart(now)
	if now.UTC().Day() <= user.LockDay {
		first = first.AddDate(0, -1, 0)
	}
	return first
}

// Periods lists the months from the user's start month through the month
// after now, oldest first. Months before FirstUnlocked are locked unless
// overrideLock is set.
func Periods(user domain.User, now time.Time, overrideLock bool) []domain.Period {
	if user.StartDate.IsZero() {
		return nil
	}
	start := monthStart(user.StartDate)
	last := monthStart(now).AddDate(0, ExtraMonths, 0)
	firstUnlocked := FirstUnlocked(user, now)

	var periods []domain.Period
	for m := start; !m.After(last); m = m.AddDate(0, 1, 0) {
		p := domain.NewPeriod(m.Year(), m.Month())
		p.Locked = !overrideLock && m.Before(firstUnlocked)
		periods = append(periods, p)
	}
	return periods
}

// MonthsSince lists the months from first's month through now's month,
// unlocked and without the extra month.
func MonthsSince(first, now time.Time) []domain.Period {
	if first.IsZero() {
		return nil
	}
	last := monthStart(now)
	var periods []domain.Period
	for m := monthStart(first); !m.After(last); m = m.AddDate(0, 1, 0) {
		periods = append(periods, domain.NewPeriod(m.Year(), m.Month()))
	}
	return periods
}

// Find returns the period with the given year and month.
func Find(periods []domain.Period, year int, month time.Month) (domain.Period, bool) {
	for _, p := range periods {
		if p.Year == year && p.Month == month {
			return p, true
		}
	}
	return domain.Period{}, false
}

// Current picks the period containing now, falling back to the latest one.
func Current(periods []domain.Period, now time.Time) (domain.Period, bool) {
	if len(periods) == 0 {
		return domain.Period{}, false
	}
	now = now.UTC()
	if p, ok := Find(periods, now.Year(), now.Month()); ok {
		return p, true
	}
	return periods[len(periods)-1], true
}

// WorkDays returns the dates in p whose weekday is in days.
func WorkDays(p domain.Period, days []time.Weekday) []time.Time {
	want := make(map[time.Weekday]bool, len(days))
	for _, d := range days {
		want[d] = true
	}
	var out []time.Time
	for d := p.Start(); d.Before(p.End()); d = d.AddDate(0, 0, 1) {
		if want[d.Weekday()] {
			out = append(out, d)
		}
	}
	return out
}
