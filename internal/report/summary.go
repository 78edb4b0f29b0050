package report

import (
	"cmp"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// Summary totals a set of entries.
type Summary struct {
	TotalHours       decimal.Decimal
	DistinctWorkdays int
}

// Summarize sums durations (empty ones count as zero) and counts distinct
// non-empty dates.
func Summarize[T any](items []T, entryOf func(T) domain.Entry) Summary {
	total := decimal.Zero
	days := make(map[string]struct{})
	for _, item := range items {
		e := entryOf(item)
		total = total.Add(e.Hours())
		if !e.Date.IsZero() {
			days[e.DateString()] = struct{}{}
		}
	}
	return Summary{TotalHours: total, DistinctWorkdays: len(days)}
}

// SummarizeEntries summarizes plain entries.
func SummarizeEntries(entries []domain.Entry) Summary {
	return Summarize(entries, func(e domain.Entry) domain.Entry { return e })
}

// ClientGroup is the per-client aggregate returned by grouped report queries.
type ClientGroup struct {
	Reports          []domain.Entry
	TotalHours       decimal.Decimal
	NumberOfWorkdays int
}

// NewClientGroup builds a group from its entries.
func NewClientGroup(entries []domain.Entry) ClientGroup {
	s := SummarizeEntries(entries)
	return ClientGroup{Reports: entries, TotalHours: s.TotalHours, NumberOfWorkdays: s.DistinctWorkdays}
}

// ClientSection is one client's block in a grouped report view.
type ClientSection struct {
	ClientID   string
	ClientName string
	Reports    []domain.Entry
	Summary    Summary
}

// GroupByClient turns a grouped query result into sections ordered by client
// name, each with a footer summary.
func GroupByClient(groups map[string]ClientGroup) []ClientSection {
	sections := make([]ClientSection, 0, len(groups))
	for id, g := range groups {
		name := id
		if len(g.Reports) > 0 && g.Reports[0].ClientName != "" {
			name = g.Reports[0].ClientName
		}
		sections = append(sections, ClientSection{
			ClientID:   id,
			ClientName: name,
			Reports:    g.Reports,
			Summary:    SummarizeEntries(g.Reports),
		})
	}
	slices.SortFunc(sections, func(a, b ClientSection) int {
		return cmp.Or(cmp.Compare(a.ClientName, b.ClientName), cmp.Compare(a.ClientID, b.ClientID))
	})
	return sections
}
