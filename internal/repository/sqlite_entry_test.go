package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/testutil"
)

type entryFixture struct {
	conn     *sql.DB
	entries  *SQLiteEntryRepo
	ann, bob *domain.User
	acme     *domain.Client
	dev      *domain.Activity
}

func setupEntries(t *testing.T) entryFixture {
	t.Helper()
	conn := testutil.NewTestDB(t)
	ctx := context.Background()
	f := entryFixture{
		conn:    conn,
		entries: NewSQLiteEntryRepo(conn),
		ann:     testutil.NewTestUser("ann", testutil.WithDisplayName("Ann Lee")),
		bob:     testutil.NewTestUser("bob"),
		dev:     testutil.NewTestActivity("Development"),
	}
	f.acme = testutil.NewTestClient("Acme", testutil.WithActivities(f.dev.ID))
	users := NewSQLiteUserRepo(conn)
	require.NoError(t, users.Create(ctx, f.ann))
	require.NoError(t, users.Create(ctx, f.bob))
	require.NoError(t, NewSQLiteActivityRepo(conn).Create(ctx, f.dev))
	require.NoError(t, NewSQLiteClientRepo(conn).Create(ctx, f.acme))
	return f
}

func (f entryFixture) add(t *testing.T, e *domain.Entry) *domain.Entry {
	t.Helper()
	require.NoError(t, f.entries.Create(context.Background(), e))
	return e
}

func TestEntryRepo_CreateAndGet(t *testing.T) {
	f := setupEntries(t)
	e := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2),
		testutil.WithTimes("08:00", "12:30"),
		testutil.WithHours("4.5"),
		testutil.WithClient(f.acme.ID),
		testutil.WithActivity(f.dev.ID),
		testutil.WithNotes("migration"),
	))

	got, err := f.entries.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2024, 4, 2), got.Date)
	assert.Equal(t, "08:00", got.StartTime)
	assert.Equal(t, "4.5", got.DurationString())
	assert.Equal(t, f.acme.ID, got.ClientID)
	assert.Equal(t, "Ann Lee", got.Username)
	assert.Equal(t, "Acme", got.ClientName)
	assert.Equal(t, "Development", got.ActivityName)
	assert.True(t, e.ModifiedAt.Equal(got.ModifiedAt))
}

func TestEntryRepo_EmptyOptionalFields(t *testing.T) {
	f := setupEntries(t)
	e := f.add(t, testutil.NewTestEntry(f.bob.ID, testutil.Date(2024, 4, 2)))

	got, err := f.entries.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.False(t, got.Duration.Valid)
	assert.Empty(t, got.ClientID)
	assert.Empty(t, got.ClientName)
	assert.Equal(t, "bob", got.Username, "falls back to username")
}

func TestEntryRepo_ListByUser(t *testing.T) {
	f := setupEntries(t)
	late := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 30), testutil.WithTimes("09:00", "")))
	early := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 1), testutil.WithTimes("10:00", "")))
	earlier := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 1), testutil.WithTimes("08:00", "")))
	f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 5, 1)))
	f.add(t, testutil.NewTestEntry(f.bob.ID, testutil.Date(2024, 4, 1)))

	list, err := f.entries.ListByUser(context.Background(), f.ann.ID, testutil.Date(2024, 4, 1), testutil.Date(2024, 5, 1))
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{earlier.ID, early.ID, late.ID}, []string{list[0].ID, list[1].ID, list[2].ID})
}

func TestEntryRepo_ListFiltered(t *testing.T) {
	f := setupEntries(t)
	ctx := context.Background()
	a1 := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 3, 31), testutil.WithClient(f.acme.ID)))
	a2 := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 15), testutil.WithActivity(f.dev.ID)))
	b1 := f.add(t, testutil.NewTestEntry(f.bob.ID, testutil.Date(2024, 4, 30), testutil.WithClient(f.acme.ID)))

	all, err := f.entries.ListFiltered(ctx, EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	april, err := f.entries.ListFiltered(ctx, EntryFilter{Start: testutil.Date(2024, 4, 1), End: testutil.Date(2024, 4, 30)})
	require.NoError(t, err)
	require.Len(t, april, 2, "end date is inclusive")
	assert.Equal(t, a2.ID, april[0].ID)
	assert.Equal(t, b1.ID, april[1].ID)

	byClient, err := f.entries.ListFiltered(ctx, EntryFilter{ClientIDs: []string{f.acme.ID}})
	require.NoError(t, err)
	assert.Equal(t, []string{a1.ID, b1.ID}, []string{byClient[0].ID, byClient[1].ID})

	combined, err := f.entries.ListFiltered(ctx, EntryFilter{
		ClientIDs: []string{f.acme.ID},
		UserIDs:   []string{f.bob.ID, "ghost"},
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, b1.ID, combined[0].ID)

	byActivity, err := f.entries.ListFiltered(ctx, EntryFilter{ActivityIDs: []string{f.dev.ID}})
	require.NoError(t, err)
	require.Len(t, byActivity, 1)
	assert.Equal(t, a2.ID, byActivity[0].ID)
}

func TestEntryRepo_FirstDate(t *testing.T) {
	f := setupEntries(t)
	ctx := context.Background()

	first, err := f.entries.FirstDate(ctx)
	require.NoError(t, err)
	assert.True(t, first.IsZero())

	f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 15)))
	f.add(t, testutil.NewTestEntry(f.bob.ID, testutil.Date(2023, 11, 2)))
	first, err = f.entries.FirstDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2023, 11, 2), first)
}

func TestEntryRepo_UpdateAndDelete(t *testing.T) {
	f := setupEntries(t)
	ctx := context.Background()
	e := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2), testutil.WithHours("1")))

	e.Notes = "edited"
	e.Duration = domain.Entry{}.Duration
	e.ModifiedAt = e.ModifiedAt.Add(time.Hour)
	require.NoError(t, f.entries.Update(ctx, e))

	got, err := f.entries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "edited", got.Notes)
	assert.False(t, got.Duration.Valid)

	require.NoError(t, f.entries.Delete(ctx, e.ID))
	_, err = f.entries.GetByID(ctx, e.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, f.entries.Delete(ctx, e.ID), ErrNotFound)

	missing := testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2))
	assert.ErrorIs(t, f.entries.Update(ctx, missing), ErrNotFound)
}

func TestEntryRepo_DuplicateSlotConflict(t *testing.T) {
	f := setupEntries(t)
	f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2), testutil.WithTimes("08:00", "09:00")))

	err := f.entries.Create(context.Background(),
		testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2), testutil.WithTimes("08:00", "10:00")))
	require.ErrorIs(t, err, ErrConflict)
	var ce *ConflictError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "entries", ce.Table)
	assert.Equal(t, []string{"user_id", "date", "start_time"}, ce.Columns)
}

func TestEntryRepo_DeletingClientClearsReference(t *testing.T) {
	f := setupEntries(t)
	ctx := context.Background()
	e := f.add(t, testutil.NewTestEntry(f.ann.ID, testutil.Date(2024, 4, 2), testutil.WithClient(f.acme.ID)))

	require.NoError(t, NewSQLiteClientRepo(f.conn).Delete(ctx, f.acme.ID))
	got, err := f.entries.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Empty(t, got.ClientID)
}
