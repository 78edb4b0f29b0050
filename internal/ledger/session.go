// Package ledger holds the working set of one user's month of entries and
// reconciles local edits with stored state.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

// Store is the persistence a session needs.
type Store interface {
	FetchMonthEntries(ctx context.Context, year int, month time.Month, userID string) ([]domain.Entry, error)
	CreateEntry(ctx context.Context, fields domain.EntryFields) (domain.Entry, error)
	UpdateEntry(ctx context.Context, id string, fields domain.EntryFields) (domain.Entry, error)
	DeleteEntry(ctx context.Context, id string) error
}

// State is the load state of a session.
type State int

const (
	StateEmpty State = iota
	StateLoading
	StateReady
	StateLoadFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateLoadFailed:
		return "load failed"
	default:
		return "unknown"
	}
}

type Option func(*Session)

// WithClock overrides the time source used for new rows.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPlaceholders fills days of the given weekdays that have no entries
// with placeholder rows after each load.
func WithPlaceholders(days []time.Weekday) Option {
	return func(s *Session) { s.workDays = slices.Clone(days) }
}

// Session is the ledger of one user and period. It is safe for concurrent
// use; the mutex is not held while the store is called.
type Session struct {
	store    Store
	now      func() time.Time
	logger   *slog.Logger
	workDays []time.Weekday

	mu      sync.Mutex
	gen     IDGenerator
	period  domain.Period
	user    domain.User
	rows    []Row
	token   uint64
	state   State
	loadErr error
	pending map[string]bool
}

func NewSession(store Store, opts ...Option) *Session {
	s := &Session{
		store:   store,
		now:     time.Now,
		logger:  slog.New(slog.DiscardHandler),
		pending: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the rows with the stored entries of user in period. Rows
// are discarded even when the fetch fails. If another Load starts before
// this one finishes, the result is dropped and ErrStaleLoad returned.
func (s *Session) Load(ctx context.Context, period domain.Period, user domain.User) error {
	s.mu.Lock()
	s.token++
	token := s.token
	s.period = period
	s.user = user
	s.rows = nil
	s.pending = make(map[string]bool)
	s.state = StateLoading
	s.loadErr = nil
	s.mu.Unlock()

	entries, err := s.store.FetchMonthEntries(ctx, period.Year, period.Month, user.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("dropping stale load", "period", period.Key(), "user_id", user.ID)
		return ErrStaleLoad
	}
	if err != nil {
		fe := &FetchError{Period: period, UserID: user.ID, Err: err}
		s.state = StateLoadFailed
		s.loadErr = fe
		return fe
	}

	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, PersistedRow(e))
	}
	if len(s.workDays) > 0 {
		rows = fillPlaceholders(rows, period, user.ID, s.workDays)
	}
	s.rows = rows
	s.state = StateReady
	return nil
}

// Reload loads the current period and user again.
func (s *Session) Reload(ctx context.Context) error {
	s.mu.Lock()
	period, user, state := s.period, s.user, s.state
	s.mu.Unlock()
	if state == StateEmpty {
		return ErrNotLoaded
	}
	return s.Load(ctx, period, user)
}

func fillPlaceholders(rows []Row, period domain.Period, userID string, days []time.Weekday) []Row {
	used := make(map[string]bool, len(rows))
	for _, r := range rows {
		used[r.Entry.DateString()] = true
	}
	for _, d := range calendar.WorkDays(period, days) {
		if !used[d.Format(domain.DateLayout)] {
			rows = append(rows, PlaceholderRow(d, userID))
		}
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		return a.Entry.Date.Compare(b.Entry.Date)
	})
	return rows
}

// ready reports why row operations cannot run. Callers hold mu.
func (s *Session) ready() error {
	if s.state != StateReady {
		return ErrNotLoaded
	}
	if s.period.Locked {
		return ErrLockedPeriod
	}
	return nil
}

func (s *Session) indexOf(key string) int {
	return slices.IndexFunc(s.rows, func(r Row) bool { return r.Key() == key })
}

// editableAt returns the index of the row with key, or an error when the
// row cannot be changed. Callers hold mu.
func (s *Session) editableAt(key string) (int, error) {
	if err := s.ready(); err != nil {
		return -1, err
	}
	idx := s.indexOf(key)
	if idx < 0 {
		return -1, ErrRowNotFound
	}
	if s.rows[idx].Kind() == KindPlaceholder {
		return -1, ErrPlaceholderRow
	}
	if s.pending[key] {
		return -1, ErrRowBusy
	}
	return idx, nil
}

// AddBlank prepends an empty new row.
func (s *Session) AddBlank() (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return Row{}, err
	}
	row := NewRow(&s.gen, s.period, s.now(), Defaults{UserID: s.user.ID})
	s.rows = slices.Insert(s.rows, 0, row)
	return row.clone(), nil
}

// Duplicate inserts a copy of the row with key directly before it.
func (s *Session) Duplicate(key string) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editableAt(key)
	if err != nil {
		return Row{}, err
	}
	row := DuplicateRow(&s.gen, s.rows[idx].Entry)
	s.rows = slices.Insert(s.rows, idx, row)
	return row.clone(), nil
}

// Edit replaces the editable fields of a row. Field errors from a previous
// save are cleared for every field that changed.
func (s *Session) Edit(key string, fields domain.EntryFields) (Row, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.editableAt(key)
	if err != nil {
		return Row{}, err
	}
	row := s.rows[idx]
	for _, f := range domain.ChangedFields(row.Entry.Fields(), fields) {
		delete(row.FieldErrors, f)
	}
	if len(row.FieldErrors) == 0 {
		row.FieldErrors = nil
	}
	row.Entry = row.Entry.WithFields(fields)
	s.rows[idx] = row
	return row.clone(), nil
}

// Save stores the row with key. A new row is created, a persisted row
// updated. On success the row is replaced by the stored entry; on failure it
// is left as is and validation field errors are recorded on it.
func (s *Session) Save(ctx context.Context, key string) (Row, error) {
	s.mu.Lock()
	idx, err := s.editableAt(key)
	if err != nil {
		s.mu.Unlock()
		return Row{}, err
	}
	row := s.rows[idx]
	fields := row.Entry.Fields()
	if origin, ok := row.Origin(); ok && unchangedFromOrigin(fields, origin) {
		s.mu.Unlock()
		return Row{}, ErrUnchangedDuplicate
	}
	token := s.token
	s.pending[key] = true
	s.mu.Unlock()

	var saved domain.Entry
	switch id := row.Identity.(type) {
	case Persisted:
		saved, err = s.store.UpdateEntry(ctx, id.ID, fields)
	case New:
		saved, err = s.store.CreateEntry(ctx, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("dropping save result after reload", "row", key)
		return Row{}, ErrStaleLoad
	}
	delete(s.pending, key)
	idx = s.indexOf(key)
	if idx < 0 {
		return Row{}, ErrRowNotFound
	}
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			s.rows[idx].FieldErrors = maps.Clone(ve.Fields)
		}
		return s.rows[idx].clone(), err
	}
	s.rows[idx] = PersistedRow(saved)
	return s.rows[idx].clone(), nil
}

// Delete removes the row with key. Persisted rows are deleted from the store
// first and removed only on success; new rows are dropped immediately.
func (s *Session) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	idx, err := s.editableAt(key)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	id, persisted := s.rows[idx].Identity.(Persisted)
	if !persisted {
		s.rows = slices.Delete(s.rows, idx, idx+1)
		s.mu.Unlock()
		return nil
	}
	token := s.token
	s.pending[key] = true
	s.mu.Unlock()

	err = s.store.DeleteEntry(ctx, id.ID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		s.logger.Debug("dropping delete result after reload", "row", key)
		return ErrStaleLoad
	}
	delete(s.pending, key)
	if err != nil {
		return err
	}
	if idx = s.indexOf(key); idx >= 0 {
		s.rows = slices.Delete(s.rows, idx, idx+1)
	}
	return nil
}

// IsEditable reports whether row may be edited, saved, duplicated or
// deleted.
func (s *Session) IsEditable(row Row) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.period.Locked && row.Kind() != KindPlaceholder
}

// Busy reports whether the row with key has a save or delete in flight.
func (s *Session) Busy(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key]
}

// Rows returns a copy of the rows in display order.
func (s *Session) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.clone()
	}
	return out
}

func (s *Session) Row(key string) (Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(key); idx >= 0 {
		return s.rows[idx].clone(), true
	}
	return Row{}, false
}

func (s *Session) Period() domain.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.period
}

func (s *Session) User() domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// State returns the load state and, when loading failed, its error.
func (s *Session) State() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state, s.loadErr
}

// Summary totals the non-placeholder rows.
func (s *Session) Summary() report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.Entry, 0, len(s.rows))
	for _, r := range s.rows {
		if r.Kind() != KindPlaceholder {
			entries = append(entries, r.Entry)
		}
	}
	return report.SummarizeEntries(entries)
}

// Entries returns the entries of the non-placeholder rows, for export.
func (s *Session) Entries() []domain.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []domain.Entry
	for _, r := range s.rows {
		if r.Kind() != KindPlaceholder {
			entries = append(entries, r.Entry)
		}
	}
	return entries
}
