package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timesheet/internal/calendar"
	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/ledger"
	"github.com/alexanderramin/timesheet/internal/repository"
)

type entryService struct {
	entries  repository.EntryRepo
	users    repository.UserRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewEntryService(
	entries repository.EntryRepo,
	users repository.UserRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) EntryService {
	return &entryService{
		entries:  entries,
		users:    users,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      time.Now,
	}
}

// ownerFor returns the user whose entries the actor is working on.
// Non-admins always work on their own entries.
func ownerFor(actor *domain.User, userID string) string {
	if userID == "" || !actor.IsAdmin {
		return actor.ID
	}
	return userID
}

func (s *entryService) FetchMonthEntries(ctx context.Context, actor *domain.User, year int, month time.Month, userID string) (entries []domain.Entry, err error) {
	if actor == nil {
		return nil, ErrNoActor
	}
	owner := ownerFor(actor, userID)
	defer observe(ctx, s.observer, "fetch-month-entries", time.Now(), map[string]any{
		"user_id": owner,
		"month":   fmt.Sprintf("%04d-%02d", year, int(month)),
	}, &err)

	if owner != actor.ID {
		if _, err = s.users.GetByID(ctx, owner); err != nil {
			return nil, err
		}
	}
	p := domain.NewPeriod(year, month)
	entries, err = s.entries.ListByUser(ctx, owner, p.Start(), p.End())
	if err != nil {
		return nil, fmt.Errorf("fetching entries for %s: %w", p.Key(), err)
	}
	return entries, nil
}

// checkWritable rejects writes by non-admins to other users' entries or to
// dates in locked months.
func (s *entryService) checkWritable(ctx context.Context, tx db.DBTX, actor *domain.User, ownerID string, dates ...time.Time) error {
	if actor.IsAdmin {
		return nil
	}
	if ownerID != actor.ID {
		return fmt.Errorf("entry belongs to another user: %w", ErrForbidden)
	}
	owner, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	firstUnlocked := calendar.FirstUnlocked(*owner, s.now())
	for _, d := range dates {
		if !d.IsZero() && d.Before(firstUnlocked) {
			return fmt.Errorf("%s: %w", d.Format(domain.DateLayout), ledger.ErrLockedPeriod)
		}
	}
	return nil
}

// checkReferences reports unknown users, clients and activities as field
// errors rather than foreign key failures.
func checkReferences(ctx context.Context, tx db.DBTX, fields domain.EntryFields) error {
	bad := make(map[string]string)
	if _, err := repository.NewSQLiteUserRepo(tx).GetByID(ctx, fields.UserID); errors.Is(err, repository.ErrNotFound) {
		bad[domain.FieldUserID] = "unknown user"
	} else if err != nil {
		return err
	}
	if fields.ClientID != "" {
		if _, err := repository.NewSQLiteClientRepo(tx).GetByID(ctx, fields.ClientID); errors.Is(err, repository.ErrNotFound) {
			bad[domain.FieldClientID] = "unknown client"
		} else if err != nil {
			return err
		}
	}
	if fields.ActivityID != "" {
		if _, err := repository.NewSQLiteActivityRepo(tx).GetByID(ctx, fields.ActivityID); errors.Is(err, repository.ErrNotFound) {
			bad[domain.FieldActivityID] = "unknown activity"
		} else if err != nil {
			return err
		}
	}
	if len(bad) > 0 {
		return &domain.ValidationError{Message: "entry validation failed", Fields: bad}
	}
	return nil
}

func (s *entryService) CreateEntry(ctx context.Context, actor *domain.User, fields domain.EntryFields) (created domain.Entry, err error) {
	if actor == nil {
		return domain.Entry{}, ErrNoActor
	}
	fields.UserID = ownerFor(actor, fields.UserID)
	defer observe(ctx, s.observer, "create-entry", time.Now(), map[string]any{
		"user_id": fields.UserID,
		"date":    fields.Date.Format(domain.DateLayout),
	}, &err)

	if err = fields.Validate(); err != nil {
		return domain.Entry{}, err
	}
	e := domain.Entry{
		ID:         uuid.New().String(),
		ModifiedAt: s.now().UTC().Truncate(time.Second),
	}.WithFields(fields)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := s.checkWritable(ctx, tx, actor, fields.UserID, fields.Date); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, fields); err != nil {
			return err
		}
		txEntries := repository.NewSQLiteEntryRepo(tx)
		if err := txEntries.Create(ctx, &e); err != nil {
			return conflictToValidation(err, "entry validation failed")
		}
		stored, err := txEntries.GetByID(ctx, e.ID)
		if err != nil {
			return err
		}
		created = *stored
		return nil
	})
	if err != nil {
		return domain.Entry{}, err
	}
	return created, nil
}

func (s *entryService) UpdateEntry(ctx context.Context, actor *domain.User, id string, fields domain.EntryFields) (updated domain.Entry, err error) {
	if actor == nil {
		return domain.Entry{}, ErrNoActor
	}
	defer observe(ctx, s.observer, "update-entry", time.Now(), map[string]any{"entry_id": id}, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteEntryRepo(tx)
		existing, err := txEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if fields.UserID == "" || !actor.IsAdmin {
			fields.UserID = existing.UserID
		}
		if err := fields.Validate(); err != nil {
			return err
		}
		if err := s.checkWritable(ctx, tx, actor, existing.UserID, existing.Date, fields.Date); err != nil {
			return err
		}
		if err := checkReferences(ctx, tx, fields); err != nil {
			return err
		}

		e := existing.WithFields(fields)
		e.ModifiedAt = s.now().UTC().Truncate(time.Second)
		if err := txEntries.Update(ctx, &e); err != nil {
			return conflictToValidation(err, "entry validation failed")
		}
		stored, err := txEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		updated = *stored
		return nil
	})
	if err != nil {
		return domain.Entry{}, err
	}
	return updated, nil
}

func (s *entryService) DeleteEntry(ctx context.Context, actor *domain.User, id string) (err error) {
	if actor == nil {
		return ErrNoActor
	}
	defer observe(ctx, s.observer, "delete-entry", time.Now(), map[string]any{"entry_id": id}, &err)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txEntries := repository.NewSQLiteEntryRepo(tx)
		existing, err := txEntries.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkWritable(ctx, tx, actor, existing.UserID, existing.Date); err != nil {
			return err
		}
		return txEntries.Delete(ctx, id)
	})
}
