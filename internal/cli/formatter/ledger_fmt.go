package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/report"
)

// LedgerHeaders are the ledger table columns. The first column carries the
// row marker.
var LedgerHeaders = []string{"", "Date", "Day", "Start", "End", "Hours", "Client", "Activity", "Notes"}

const notesWidth = 40

func weekdayShort(e domain.Entry) string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Weekday().String()[:3]
}

// RowMarker flags rows that differ from stored state.
func RowMarker(row ledger.Row, busy bool) string {
	switch {
	case busy:
		return StyleYellow.Render("…")
	case len(row.FieldErrors) > 0:
		return StyleRed.Render("!")
	case row.Kind() == ledger.KindNew:
		return StyleGreen.Render("+")
	case row.Kind() == ledger.KindPlaceholder:
		return StyleDim.Render("·")
	}
	return " "
}

func entryCells(e domain.Entry) []string {
	return []string{
		e.DateString(),
		weekdayShort(e),
		OrDash(e.StartTime),
		OrDash(e.EndTime),
		OrDash(e.DurationString()),
		OrDash(e.ClientName),
		OrDash(e.ActivityName),
		Truncate(e.Notes, notesWidth),
	}
}

// LedgerRow renders one ledger row. Placeholder rows only show their date.
func LedgerRow(row ledger.Row, busy bool) []string {
	if row.Kind() == ledger.KindPlaceholder {
		return []string{RowMarker(row, busy), Dim(row.Entry.DateString()), Dim(weekdayShort(row.Entry))}
	}
	return append([]string{RowMarker(row, busy)}, entryCells(row.Entry)...)
}

// SummaryFooter lays out work hours and workdays under the hours column.
func SummaryFooter(s report.Summary) [][]string {
	return [][]string{
		{"", "", "", "", "Work hours", Bold(FormatHours(s.TotalHours))},
		{"", "", "", "", "Workdays", Bold(fmt.Sprint(s.DistinctWorkdays))},
	}
}

// LedgerTitle names the month and owner of a ledger.
func LedgerTitle(p domain.Period, owner string) string {
	return fmt.Sprintf("%s · %s  %s", p.Display, owner, LockIndicator(p.Locked))
}

// FormatLedger renders a month ledger with its summary footer.
func FormatLedger(p domain.Period, owner string, rows []ledger.Row, s report.Summary) string {
	var b strings.Builder
	b.WriteString(Bold(LedgerTitle(p, owner)) + "\n\n")
	if len(rows) == 0 {
		b.WriteString(Dim("No entries this month.") + "\n\n")
	}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = LedgerRow(r, false)
	}
	b.WriteString(Table{Headers: LedgerHeaders, Rows: cells, Footer: SummaryFooter(s), Highlight: -1}.Render())
	return b.String()
}

// FormatPeriods lists months with their lock state, marking current.
func FormatPeriods(periods []domain.Period, current domain.Period) string {
	rows := make([][]string, 0, len(periods))
	for _, p := range periods {
		marker := " "
		if p.Same(current) {
			marker = StyleHeader.Render("›")
		}
		rows = append(rows, []string{marker, p.Key(), p.Display, fmt.Sprint(p.NumberOfDays), LockIndicator(p.Locked)})
	}
	return RenderTable([]string{"", "Month", "Name", "Days", "State"}, rows)
}
