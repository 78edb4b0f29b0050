package service

import (
	"context"
	"time"

	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/report"
)

// EntryService stores report entries on behalf of an acting user. Admins
// may act on any user's entries; everyone else only on their own.
type EntryService interface {
	// FetchMonthEntries returns userID's entries for the month. An empty
	// userID means the actor.
	FetchMonthEntries(ctx context.Context, actor *domain.User, year int, month time.Month, userID string) ([]domain.Entry, error)
	CreateEntry(ctx context.Context, actor *domain.User, fields domain.EntryFields) (domain.Entry, error)
	UpdateEntry(ctx context.Context, actor *domain.User, id string, fields domain.EntryFields) (domain.Entry, error)
	DeleteEntry(ctx context.Context, actor *domain.User, id string) error
}

// GroupByClient is the only supported report grouping.
const GroupByClient = "client"

type ReportFilters struct {
	Clients    []string
	Users      []string
	Activities []string
}

// ReportQuery selects entries dated Start through End inclusive.
type ReportQuery struct {
	Start   time.Time
	End     time.Time
	GroupBy string
	Filters ReportFilters
}

// ReportResult holds Entries for ungrouped queries and ByClient, keyed by
// client id, for queries grouped by client.
type ReportResult struct {
	Entries  []domain.Entry
	ByClient map[string]report.ClientGroup
}

type ReportService interface {
	FetchFilteredReports(ctx context.Context, q ReportQuery) (*ReportResult, error)
	// FirstActivityDate returns the date of the earliest entry, or the zero
	// time when nothing has been logged.
	FirstActivityDate(ctx context.Context) (time.Time, error)
}

// NewUser describes a user to create. A nil LockDay uses the default.
type NewUser struct {
	Username    string
	DisplayName string
	IsAdmin     bool
	StartDate   time.Time
	LockDay     *int
}

type UserService interface {
	Create(ctx context.Context, in NewUser) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// Resolve finds a user by id or username.
	Resolve(ctx context.Context, ref string) (*domain.User, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.User, error)
	Archive(ctx context.Context, id string) error
}

type ClientService interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	Delete(ctx context.Context, id string) error
}

type ActivityService interface {
	Create(ctx context.Context, a *domain.Activity) error
	List(ctx context.Context) ([]*domain.Activity, error)
	Delete(ctx context.Context, id string) error
}
