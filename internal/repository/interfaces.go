package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
)

// EntryFilter selects entries for reports. Start and End are inclusive
// dates; empty ID lists match everything.
type EntryFilter struct {
	Start       time.Time
	End         time.Time
	ClientIDs   []string
	UserIDs     []string
	ActivityIDs []string
}

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	Archive(ctx context.Context, id string) error
}

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

type ActivityRepo interface {
	Create(ctx context.Context, a *domain.Activity) error
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	List(ctx context.Context) ([]*domain.Activity, error)
	Delete(ctx context.Context, id string) error
}

type EntryRepo interface {
	Create(ctx context.Context, e *domain.Entry) error
	GetByID(ctx context.Context, id string) (*domain.Entry, error)
	// ListByUser returns the user's entries dated in [from, to).
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Entry, error)
	ListFiltered(ctx context.Context, f EntryFilter) ([]domain.Entry, error)
	// FirstDate returns the earliest entry date, or the zero time when
	// there are no entries.
	FirstDate(ctx context.Context) (time.Time, error)
	Update(ctx context.Context, e *domain.Entry) error
	Delete(ctx context.Context, id string) error
}
