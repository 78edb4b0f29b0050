package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/repository"
)

type clientService struct {
	clients  repository.ClientRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewClientService(clients repository.ClientRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ClientService {
	return &clientService{clients: clients, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func checkActivities(ctx context.Context, tx db.DBTX, ids []string) error {
	activities := repository.NewSQLiteActivityRepo(tx)
	for _, id := range ids {
		if _, err := activities.GetByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
			return &domain.ValidationError{
				Message: "client validation failed",
				Fields:  map[string]string{"activityIds": "unknown activity " + id},
			}
		} else if err != nil {
			return err
		}
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, c *domain.Client) (err error) {
	defer observe(ctx, s.observer, "create-client", time.Now(), map[string]any{"name": c.Name}, &err)

	c.Name = strings.TrimSpace(c.Name)
	if err = c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	c.CreatedAt = time.Now().UTC().Truncate(time.Second)

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := checkActivities(ctx, tx, c.ActivityIDs); err != nil {
			return err
		}
		if err := repository.NewSQLiteClientRepo(tx).Create(ctx, c); err != nil {
			return conflictToValidation(err, "client validation failed")
		}
		return nil
	})
}

func (s *clientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context) ([]*domain.Client, error) {
	return s.clients.List(ctx)
}

func (s *clientService) Update(ctx context.Context, c *domain.Client) (err error) {
	defer observe(ctx, s.observer, "update-client", time.Now(), map[string]any{"client_id": c.ID}, &err)

	if err = c.Validate(); err != nil {
		return err
	}
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		if err := checkActivities(ctx, tx, c.ActivityIDs); err != nil {
			return err
		}
		if err := repository.NewSQLiteClientRepo(tx).Update(ctx, c); err != nil {
			return conflictToValidation(err, "client validation failed")
		}
		return nil
	})
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}
