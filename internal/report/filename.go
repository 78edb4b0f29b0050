package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

func slug(name string) string {
	return strings.ReplaceAll(name, " ", "-")
}

// MonthFilename names the CSV export of one ledger month.
func MonthFilename(p domain.Period) string {
	return fmt.Sprintf("report-%d-%d.csv", p.Year, int(p.Month))
}

// ClientsFilename names the clients report export. selected holds the names
// of the filtered clients; only a single selection is used in the name.
func ClientsFilename(selected []string, month domain.Period) string {
	base := "clients"
	if len(selected) == 1 {
		base = slug(selected[0])
	}
	return fmt.Sprintf("%s-%s.csv", base, month.Key())
}

// AdvancedFilename names the advanced report export. names holds the display
// names of each filter that has exactly one value; blanks are skipped.
func AdvancedFilename(start, end time.Time, names ...string) string {
	var b strings.Builder
	for _, n := range names {
		if n != "" {
			b.WriteString(slug(n) + "-")
		}
	}
	if b.Len() == 0 {
		b.WriteString("report-")
	}
	return fmt.Sprintf("%s%s-%s.csv", b.String(), start.Format(domain.DateLayout), end.Format(domain.DateLayout))
}
