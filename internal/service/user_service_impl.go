package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/repository"
)

type userService struct {
	users    repository.UserRepo
	observer UseCaseObserver
}

func NewUserService(users repository.UserRepo, observers ...UseCaseObserver) UserService {
	return &userService{users: users, observer: useCaseObserverOrNoop(observers)}
}

func (s *userService) Create(ctx context.Context, in NewUser) (u *domain.User, err error) {
	defer observe(ctx, s.observer, "create-user", time.Now(), map[string]any{"username": in.Username}, &err)

	u = &domain.User{
		ID:          uuid.New().String(),
		Username:    strings.TrimSpace(in.Username),
		DisplayName: strings.TrimSpace(in.DisplayName),
		IsAdmin:     in.IsAdmin,
		StartDate:   in.StartDate,
		LockDay:     domain.IntFromPtrWithDefault(domain.DefaultLockDay, in.LockDay),
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	if err = u.Validate(); err != nil {
		return nil, err
	}
	if err = s.users.Create(ctx, u); err != nil {
		return nil, conflictToValidation(err, "user validation failed")
	}
	return u, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *userService) Resolve(ctx context.Context, ref string) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, ref)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.users.GetByUsername(ctx, ref)
}

func (s *userService) List(ctx context.Context, includeArchived bool) ([]*domain.User, error) {
	return s.users.List(ctx, includeArchived)
}

func (s *userService) Archive(ctx context.Context, id string) error {
	return s.users.Archive(ctx, id)
}
