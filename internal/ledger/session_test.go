package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/domain"
)

var (
	testUser = domain.User{ID: "u1", Username: "ann", StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), LockDay: 5}
	april    = domain.NewPeriod(2024, time.April)
)

func lockedPeriod() domain.Period {
	p := domain.NewPeriod(2024, time.February)
	p.Locked = true
	return p
}

func d(day int) time.Time {
	return time.Date(2024, 4, day, 0, 0, 0, 0, time.UTC)
}

func storedEntry(id string, day int, start, end string) domain.Entry {
	return domain.Entry{
		ID:        id,
		UserID:    testUser.ID,
		Date:      d(day),
		StartTime: start,
		EndTime:   end,
		Duration:  decimal.NewNullDecimal(decimal.NewFromInt(2)),
		ClientID:  "c1",
	}
}

func newLoadedSession(t *testing.T, store *fakeStore, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s := NewSession(store, opts...)
	require.NoError(t, s.Load(context.Background(), april, testUser))
	return s
}

func keys(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key()
	}
	return out
}

func TestSession_Load(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{
		storedEntry("e1", 1, "08:00", "10:00"),
		storedEntry("e2", 2, "08:00", "10:00"),
		{ID: "other-user", UserID: "u2", Date: d(1)},
		{ID: "other-month", UserID: "u1", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
	s := newLoadedSession(t, store)

	assert.Equal(t, []string{"e1", "e2"}, keys(s.Rows()))
	state, err := s.State()
	assert.Equal(t, StateReady, state)
	assert.NoError(t, err)
	assert.Equal(t, "2024-04", s.Period().Key())
	assert.Equal(t, "u1", s.User().ID)
	assert.Equal(t, []string{"2024-04/u1"}, store.fetches)
}

func TestSession_LoadFailureDiscardsRows(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)
	require.Len(t, s.Rows(), 1)

	store.fetchErr = errors.New("disk gone")
	err := s.Load(context.Background(), april, testUser)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "u1", fe.UserID)
	assert.ErrorIs(t, err, store.fetchErr)
	assert.Empty(t, s.Rows())
	state, stateErr := s.State()
	assert.Equal(t, StateLoadFailed, state)
	assert.Equal(t, err, stateErr)

	_, err = s.AddBlank()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSession_StaleLoadIsDropped(t *testing.T) {
	store := &fakeStore{
		entries: []domain.Entry{
			storedEntry("e1", 1, "08:00", "10:00"),
			{ID: "march", UserID: "u1", Date: time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)},
		},
		fetchGate:    make(chan struct{}),
		fetchStarted: make(chan struct{}, 1),
	}
	s := NewSession(store)
	march := domain.NewPeriod(2024, time.March)

	errc := make(chan error, 1)
	go func() { errc <- s.Load(context.Background(), march, testUser) }()
	<-store.fetchStarted

	require.NoError(t, s.Load(context.Background(), april, testUser))
	close(store.fetchGate)

	assert.ErrorIs(t, <-errc, ErrStaleLoad)
	assert.Equal(t, "2024-04", s.Period().Key())
	assert.Equal(t, []string{"e1"}, keys(s.Rows()))
}

func TestSession_AddBlank(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)

	row, err := s.AddBlank()
	require.NoError(t, err)
	assert.Equal(t, KindNew, row.Kind())
	assert.Equal(t, d(3), row.Entry.Date)
	assert.Equal(t, "u1", row.Entry.UserID)
	assert.Equal(t, []string{row.Key(), "e1"}, keys(s.Rows()))

	second, err := s.AddBlank()
	require.NoError(t, err)
	assert.NotEqual(t, row.Key(), second.Key())
}

func TestSession_LockedPeriodRejectsChanges(t *testing.T) {
	feb := lockedPeriod()
	store := &fakeStore{entries: []domain.Entry{{ID: "e1", UserID: "u1", Date: feb.Start()}}}
	s := NewSession(store)
	require.NoError(t, s.Load(context.Background(), feb, testUser))

	_, err := s.AddBlank()
	assert.ErrorIs(t, err, ErrLockedPeriod)
	_, err = s.Duplicate("e1")
	assert.ErrorIs(t, err, ErrLockedPeriod)
	_, err = s.Edit("e1", domain.EntryFields{Date: feb.Start(), Notes: "x"})
	assert.ErrorIs(t, err, ErrLockedPeriod)
	_, err = s.Save(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrLockedPeriod)
	assert.ErrorIs(t, s.Delete(context.Background(), "e1"), ErrLockedPeriod)

	creates, updates, deletes := store.calls()
	assert.Zero(t, creates+updates+deletes)
	assert.Equal(t, []string{"e1"}, keys(s.Rows()))

	rows := s.Rows()
	assert.False(t, s.IsEditable(rows[0]))
}

func TestSession_IsEditable(t *testing.T) {
	s := newLoadedSession(t, &fakeStore{}, WithPlaceholders([]time.Weekday{time.Monday}))
	rows := s.Rows()
	require.NotEmpty(t, rows)
	assert.Equal(t, KindPlaceholder, rows[0].Kind())
	assert.False(t, s.IsEditable(rows[0]))

	row, err := s.AddBlank()
	require.NoError(t, err)
	assert.True(t, s.IsEditable(row))
}

func TestSession_DuplicateInsertsBeforeOrigin(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{
		storedEntry("e1", 1, "08:00", "10:00"),
		storedEntry("e2", 2, "08:00", "10:00"),
	}}
	s := newLoadedSession(t, store)

	dup, err := s.Duplicate("e2")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", dup.Key(), "e2"}, keys(s.Rows()))
	assert.Equal(t, d(2), dup.Entry.Date)

	_, err = s.Duplicate("missing")
	assert.ErrorIs(t, err, ErrRowNotFound)
}

func TestSession_SaveUnchangedDuplicate(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)
	dup, err := s.Duplicate("e1")
	require.NoError(t, err)

	// notes alone do not make a duplicate distinct
	f := dup.Entry.Fields()
	f.Notes = "second half"
	_, err = s.Edit(dup.Key(), f)
	require.NoError(t, err)

	_, err = s.Save(context.Background(), dup.Key())
	assert.ErrorIs(t, err, ErrUnchangedDuplicate)
	creates, _, _ := store.calls()
	assert.Zero(t, creates)
	assert.Len(t, s.Rows(), 2)
}

func TestSession_SaveChangedDuplicate(t *testing.T) {
	tests := []struct {
		name   string
		change func(*domain.EntryFields)
	}{
		{"date", func(f *domain.EntryFields) { f.Date = d(2) }},
		{"start", func(f *domain.EntryFields) { f.StartTime = "07:00" }},
		{"end", func(f *domain.EntryFields) { f.EndTime = "11:00" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
			s := newLoadedSession(t, store)
			dup, err := s.Duplicate("e1")
			require.NoError(t, err)

			f := dup.Entry.Fields()
			tt.change(&f)
			_, err = s.Edit(dup.Key(), f)
			require.NoError(t, err)

			saved, err := s.Save(context.Background(), dup.Key())
			require.NoError(t, err)
			assert.Equal(t, KindPersisted, saved.Kind())
			assert.Equal(t, "srv-1", saved.Key())
			assert.Equal(t, testNow, saved.Entry.ModifiedAt)
			assert.Equal(t, []string{"srv-1", "e1"}, keys(s.Rows()), "saved row keeps its position")
			_, hasOrigin := saved.Origin()
			assert.False(t, hasOrigin)
		})
	}
}

func TestSession_SaveNewAndPersisted(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)

	row, err := s.AddBlank()
	require.NoError(t, err)
	f := row.Entry.Fields()
	f.StartTime, f.EndTime = "13:00", "14:00"
	_, err = s.Edit(row.Key(), f)
	require.NoError(t, err)
	created, err := s.Save(context.Background(), row.Key())
	require.NoError(t, err)
	assert.Equal(t, "13:00", created.Entry.StartTime)

	ef := storedEntry("e1", 1, "08:00", "10:00").Fields()
	ef.Notes = "updated"
	_, err = s.Edit("e1", ef)
	require.NoError(t, err)
	updated, err := s.Save(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "updated", updated.Entry.Notes)
	assert.Equal(t, testNow.Add(time.Minute), updated.Entry.ModifiedAt)

	creates, updates, _ := store.calls()
	assert.Equal(t, 1, creates)
	assert.Equal(t, 1, updates)
	assert.Equal(t, []string{"e1"}, store.updates)
}

func TestSession_SaveFailureKeepsRowAndMarksFields(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)
	before, _ := s.Row("e1")

	store.updateErr = &domain.ValidationError{Message: "entry validation failed", Fields: map[string]string{
		domain.FieldStartTime: "already exists",
		domain.FieldClientID:  "unknown client",
	}}
	row, err := s.Save(context.Background(), "e1")
	require.Error(t, err)
	assert.Equal(t, before.Entry, row.Entry)
	assert.Equal(t, "already exists", row.FieldErrors[domain.FieldStartTime])

	// editing the start time clears only its error
	f := row.Entry.Fields()
	f.StartTime = "08:30"
	edited, err := s.Edit("e1", f)
	require.NoError(t, err)
	assert.NotContains(t, edited.FieldErrors, domain.FieldStartTime)
	assert.Contains(t, edited.FieldErrors, domain.FieldClientID)

	store.updateErr = errors.New("boom")
	_, err = s.Save(context.Background(), "e1")
	assert.EqualError(t, err, "boom")
	stored, ok := s.Row("e1")
	require.True(t, ok)
	assert.Equal(t, "08:30", stored.Entry.StartTime)
}

func TestSession_DeleteNewRowSkipsStore(t *testing.T) {
	store := &fakeStore{}
	s := newLoadedSession(t, store)
	row, err := s.AddBlank()
	require.NoError(t, err)

	require.NoError(t, s.Delete(context.Background(), row.Key()))
	assert.Empty(t, s.Rows())
	_, _, deletes := store.calls()
	assert.Zero(t, deletes)
}

func TestSession_DeletePersistedRow(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store)

	store.deleteErr = errors.New("offline")
	require.Error(t, s.Delete(context.Background(), "e1"))
	assert.Equal(t, []string{"e1"}, keys(s.Rows()), "row stays when delete fails")

	store.deleteErr = nil
	require.NoError(t, s.Delete(context.Background(), "e1"))
	assert.Empty(t, s.Rows())
	assert.Equal(t, []string{"e1", "e1"}, store.deletes)
}

func TestSession_PlaceholdersAreImmutable(t *testing.T) {
	store := &fakeStore{entries: []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")}}
	s := newLoadedSession(t, store, WithPlaceholders([]time.Weekday{time.Monday}))

	// Mondays in April 2024: 1 (has an entry), 8, 15, 22, 29
	rows := s.Rows()
	require.Len(t, rows, 5)
	assert.Equal(t, "e1", rows[0].Key())
	key := rows[1].Key()
	assert.Equal(t, KindPlaceholder, rows[1].Kind())
	assert.Equal(t, d(8), rows[1].Entry.Date)

	_, err := s.Duplicate(key)
	assert.ErrorIs(t, err, ErrPlaceholderRow)
	_, err = s.Edit(key, domain.EntryFields{Date: d(8), Notes: "x"})
	assert.ErrorIs(t, err, ErrPlaceholderRow)
	_, err = s.Save(context.Background(), key)
	assert.ErrorIs(t, err, ErrPlaceholderRow)
	assert.ErrorIs(t, s.Delete(context.Background(), key), ErrPlaceholderRow)

	sum := s.Summary()
	assert.Equal(t, 1, sum.DistinctWorkdays, "placeholders are not workdays")
	assert.Len(t, s.Entries(), 1)
}

func TestSession_RowBusyWhileSaving(t *testing.T) {
	store := &fakeStore{
		entries:     []domain.Entry{storedEntry("e1", 1, "08:00", "10:00")},
		saveGate:    make(chan struct{}),
		saveStarted: make(chan struct{}, 1),
	}
	s := newLoadedSession(t, store)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background(), "e1")
		errc <- err
	}()
	<-store.saveStarted

	assert.True(t, s.Busy("e1"))
	_, err := s.Save(context.Background(), "e1")
	assert.ErrorIs(t, err, ErrRowBusy)
	assert.ErrorIs(t, s.Delete(context.Background(), "e1"), ErrRowBusy)

	close(store.saveGate)
	require.NoError(t, <-errc)
	assert.False(t, s.Busy("e1"))
}

func TestSession_SaveResultAfterReloadIsDropped(t *testing.T) {
	store := &fakeStore{
		saveGate:    make(chan struct{}),
		saveStarted: make(chan struct{}, 1),
	}
	s := newLoadedSession(t, store)
	row, err := s.AddBlank()
	require.NoError(t, err)

	errc := make(chan error, 1)
	go func() {
		_, err := s.Save(context.Background(), row.Key())
		errc <- err
	}()
	<-store.saveStarted

	require.NoError(t, s.Reload(context.Background()))
	close(store.saveGate)
	assert.ErrorIs(t, <-errc, ErrStaleLoad)
	assert.Empty(t, s.Rows())
}

func TestSession_SummaryAndReloadBeforeLoad(t *testing.T) {
	s := NewSession(&fakeStore{})
	assert.ErrorIs(t, s.Reload(context.Background()), ErrNotLoaded)

	store := &fakeStore{entries: []domain.Entry{
		storedEntry("e1", 1, "08:00", "10:00"),
		storedEntry("e2", 1, "10:00", "12:00"),
		{ID: "e3", UserID: "u1", Date: d(2)},
	}}
	s = newLoadedSession(t, store)
	sum := s.Summary()
	assert.Equal(t, "4", sum.TotalHours.String())
	assert.Equal(t, 2, sum.DistinctWorkdays)
}
