package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// fakeStore is an in-memory Store that records calls.
type fakeStore struct {
	mu      sync.Mutex
	entries []domain.Entry
	nextID  int

	fetchErr  error
	createErr error
	updateErr error
	deleteErr error

	// fetchGate, when set, blocks the first FetchMonthEntries call until
	// closed. fetchStarted is signalled when that call begins.
	fetchGate    chan struct{}
	fetchStarted chan struct{}
	fetchCalls   int
	// saveGate, when set, blocks CreateEntry and UpdateEntry until closed.
	saveGate    chan struct{}
	saveStarted chan struct{}

	fetches []string
	creates []domain.EntryFields
	updates []string
	deletes []string
}

func (f *fakeStore) FetchMonthEntries(_ context.Context, year int, month time.Month, userID string) ([]domain.Entry, error) {
	f.mu.Lock()
	f.fetchCalls++
	first := f.fetchCalls == 1
	f.mu.Unlock()
	if first && f.fetchGate != nil {
		signal(f.fetchStarted)
		<-f.fetchGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches = append(f.fetches, fmt.Sprintf("%04d-%02d/%s", year, int(month), userID))
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []domain.Entry
	for _, e := range f.entries {
		if e.UserID == userID && e.Date.Year() == year && e.Date.Month() == month {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateEntry(_ context.Context, fields domain.EntryFields) (domain.Entry, error) {
	if f.saveGate != nil {
		signal(f.saveStarted)
		<-f.saveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, fields)
	if f.createErr != nil {
		return domain.Entry{}, f.createErr
	}
	f.nextID++
	e := domain.Entry{ID: fmt.Sprintf("srv-%d", f.nextID), ModifiedAt: testNow}.WithFields(fields)
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeStore) UpdateEntry(_ context.Context, id string, fields domain.EntryFields) (domain.Entry, error) {
	if f.saveGate != nil {
		signal(f.saveStarted)
		<-f.saveGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, id)
	if f.updateErr != nil {
		return domain.Entry{}, f.updateErr
	}
	for i, e := range f.entries {
		if e.ID == id {
			e = e.WithFields(fields)
			e.ModifiedAt = testNow.Add(time.Minute)
			f.entries[i] = e
			return e, nil
		}
	}
	return domain.Entry{}, fmt.Errorf("entry %s: not found", id)
}

func (f *fakeStore) DeleteEntry(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return f.deleteErr
}

func (f *fakeStore) calls() (creates, updates, deletes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates), len(f.updates), len(f.deletes)
}

func signal(ch chan struct{}) {
	if ch == nil {
		return
	}
	select {
	case ch <- struct{}{}:
	default:
	}
}
