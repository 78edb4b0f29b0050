package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/testutil"
)

func seedReports(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	add := func(user *domain.User, day int, clientID, hours string) {
		fields := fieldsOn(user.ID, testutil.Date(2024, 4, day), "", "")
		fields.ClientID = clientID
		if hours != "" {
			fields.Duration = decimal.NewNullDecimal(decimal.RequireFromString(hours))
		}
		_, err := f.entries.CreateEntry(ctx, f.admin, fields)
		require.NoError(t, err)
	}
	add(f.ann, 1, f.acme.ID, "2")
	add(f.ann, 1, f.acme.ID, "3")
	add(f.bob, 2, f.acme.ID, "")
	add(f.bob, 3, "", "1.5")
}

func TestReportService_Ungrouped(t *testing.T) {
	f := setup(t)
	seedReports(t, f)

	res, err := f.reports.FetchFilteredReports(context.Background(), ReportQuery{
		Start:   testutil.Date(2024, 4, 1),
		End:     testutil.Date(2024, 4, 2),
		Filters: ReportFilters{Users: []string{f.bob.ID}},
	})
	require.NoError(t, err)
	assert.Nil(t, res.ByClient)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "bob", res.Entries[0].Username)
}

func TestReportService_GroupedByClient(t *testing.T) {
	f := setup(t)
	seedReports(t, f)

	res, err := f.reports.FetchFilteredReports(context.Background(), ReportQuery{
		Start:   testutil.Date(2024, 4, 1),
		End:     testutil.Date(2024, 4, 30),
		GroupBy: GroupByClient,
	})
	require.NoError(t, err)
	require.Len(t, res.ByClient, 2)

	acme := res.ByClient[f.acme.ID]
	assert.Len(t, acme.Reports, 3)
	assert.Equal(t, "5", acme.TotalHours.String())
	assert.Equal(t, 2, acme.NumberOfWorkdays)

	none := res.ByClient[""]
	assert.Equal(t, "1.5", none.TotalHours.String())
}

func TestReportService_InvalidQuery(t *testing.T) {
	f := setup(t)
	_, err := f.reports.FetchFilteredReports(context.Background(), ReportQuery{
		Start:   testutil.Date(2024, 4, 30),
		End:     testutil.Date(2024, 4, 1),
		GroupBy: "activity",
	})
	fields := domain.FieldErrors(err)
	assert.Contains(t, fields, "groupBy")
	assert.Contains(t, fields, "endDate")
}

func TestReportService_FirstActivityDate(t *testing.T) {
	f := setup(t)
	first, err := f.reports.FirstActivityDate(context.Background())
	require.NoError(t, err)
	assert.True(t, first.IsZero())

	seedReports(t, f)
	first, err = f.reports.FirstActivityDate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 4, 1), first)
}
