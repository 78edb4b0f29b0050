package formatter

import (
	"slices"
	"strings"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

var entryColumns = []struct {
	header string
	field  string
}{
	{"Date", domain.FieldDate},
	{"Day", domain.FieldWeekday},
	{"User", domain.FieldUsername},
	{"Start", domain.FieldStartTime},
	{"End", domain.FieldEndTime},
	{"Hours", domain.FieldDuration},
	{"Client", domain.FieldClientName},
	{"Activity", domain.FieldActivity},
	{"Notes", domain.FieldNotes},
}

// sortArrow decorates the header of the column the entries are sorted by.
func sortArrow(header, field string, order report.Order) string {
	if field != order.Field {
		return header
	}
	if order.Direction == report.Desc {
		return header + " ▼"
	}
	return header + " ▲"
}

// FormatEntries renders report entries in order with a summary footer.
// The user column is shown only when withUser is set.
func FormatEntries(entries []domain.Entry, order report.Order, withUser bool) string {
	var headers []string
	for _, c := range entryColumns {
		if c.field == domain.FieldUsername && !withUser {
			continue
		}
		headers = append(headers, sortArrow(c.header, c.field, order))
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range report.SortEntries(entries, order) {
		cells := entryCells(e)
		if withUser {
			cells = slices.Insert(cells, 2, OrDash(e.Username))
		}
		rows = append(rows, cells)
	}

	s := report.SummarizeEntries(entries)
	hoursCol := 4
	if withUser {
		hoursCol = 5
	}
	footer := make([][]string, 2)
	for i := range footer {
		footer[i] = make([]string, hoursCol+1)
	}
	footer[0][hoursCol-1], footer[0][hoursCol] = "Work hours", Bold(FormatHours(s.TotalHours))
	footer[1][hoursCol-1], footer[1][hoursCol] = "Workdays", Bold(itoa(s.DistinctWorkdays))

	return Table{Headers: headers, Rows: rows, Footer: footer, Highlight: -1}.Render()
}

// FormatClientSections renders one block per client.
func FormatClientSections(sections []report.ClientSection, order report.Order) string {
	if len(sections) == 0 {
		return Dim("No entries for this selection.") + "\n"
	}
	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		name := sec.ClientName
		if name == "" {
			name = "No client"
		}
		b.WriteString(Header(name) + "\n")
		b.WriteString(FormatEntries(sec.Reports, order, true))
	}
	return b.String()
}
