// Package export writes ledger and report views as CSV files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

var (
	ledgerHeader   = []string{"Date", "Weekday", "Start", "End", "Hours", "Client", "Activity", "Notes"}
	advancedHeader = []string{"Date", "Weekday", "User", "Start", "End", "Hours", "Client", "Activity", "Notes"}
)

func weekday(e domain.Entry) string {
	if e.Date.IsZero() {
		return ""
	}
	return e.Date.Weekday().String()
}

func ledgerRecord(e domain.Entry) []string {
	return []string{
		e.DateString(), weekday(e), e.StartTime, e.EndTime, e.DurationString(),
		e.ClientName, e.ActivityName, e.Notes,
	}
}

// footer returns the two summary rows with labels in the column before Hours.
func footer(width, hoursCol int, s report.Summary) [][]string {
	hours := make([]string, width)
	hours[hoursCol-1] = "Work hours"
	hours[hoursCol] = s.TotalHours.String()
	days := make([]string, width)
	days[hoursCol-1] = "Workdays"
	days[hoursCol] = fmt.Sprint(s.DistinctWorkdays)
	return [][]string{hours, days}
}

func flush(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}

// WriteLedger writes one month of a user's entries followed by totals.
func WriteLedger(w io.Writer, entries []domain.Entry, s report.Summary) error {
	cw := csv.NewWriter(w)
	records := [][]string{ledgerHeader}
	for _, e := range entries {
		records = append(records, ledgerRecord(e))
	}
	records = append(records, footer(len(ledgerHeader), 4, s)...)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return flush(cw)
}

// WriteClients writes one block per client: a title row, its entries and
// its totals, separated by blank rows.
func WriteClients(w io.Writer, sections []report.ClientSection) error {
	cw := csv.NewWriter(w)
	for i, sec := range sections {
		if i > 0 {
			if err := cw.Write([]string{""}); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
		name := sec.ClientName
		if name == "" {
			name = "(no client)"
		}
		records := [][]string{{name}, ledgerHeader}
		for _, e := range sec.Reports {
			records = append(records, ledgerRecord(e))
		}
		records = append(records, footer(len(ledgerHeader), 4, sec.Summary)...)
		for _, r := range records {
			if err := cw.Write(r); err != nil {
				return fmt.Errorf("writing csv: %w", err)
			}
		}
	}
	return flush(cw)
}

// WriteAdvanced writes filtered entries of any users followed by totals.
func WriteAdvanced(w io.Writer, entries []domain.Entry) error {
	cw := csv.NewWriter(w)
	records := [][]string{advancedHeader}
	for _, e := range entries {
		records = append(records, []string{
			e.DateString(), weekday(e), e.Username, e.StartTime, e.EndTime, e.DurationString(),
			e.ClientName, e.ActivityName, e.Notes,
		})
	}
	records = append(records, footer(len(advancedHeader), 5, report.SummarizeEntries(entries))...)
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return flush(cw)
}

// SaveFile writes name inside dir through write and returns the file path.
// The file appears only once write has succeeded.
func SaveFile(dir, name string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("creating export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing export file: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("saving export file: %w", err)
	}
	return path, nil
}
