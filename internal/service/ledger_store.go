package service

import (
	"context"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
)

type ledgerStore struct {
	entries EntryService
	actor   *domain.User
}

// LedgerStore adapts entries to the store a ledger session uses, acting
// as actor.
func LedgerStore(entries EntryService, actor *domain.User) ledger.Store {
	return &ledgerStore{entries: entries, actor: actor}
}

func (s *ledgerStore) FetchMonthEntries(ctx context.Context, year int, month time.Month, userID string) ([]domain.Entry, error) {
	return s.entries.FetchMonthEntries(ctx, s.actor, year, month, userID)
}

func (s *ledgerStore) CreateEntry(ctx context.Context, fields domain.EntryFields) (domain.Entry, error) {
	return s.entries.CreateEntry(ctx, s.actor, fields)
}

func (s *ledgerStore) UpdateEntry(ctx context.Context, id string, fields domain.EntryFields) (domain.Entry, error) {
	return s.entries.UpdateEntry(ctx, s.actor, id, fields)
}

func (s *ledgerStore) DeleteEntry(ctx context.Context, id string) error {
	return s.entries.DeleteEntry(ctx, s.actor, id)
}
