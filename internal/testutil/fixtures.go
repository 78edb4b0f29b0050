package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/alexanderramin/timesheet/internal/domain"
)

var testNameCounter atomic.Int64

// uniqueName appends a counter so fixtures can be created repeatedly
// without tripping unique indexes.
func uniqueName(base string) string {
	return fmt.Sprintf("%s-%02d", base, testNameCounter.Add(1))
}

// Date returns the civil date at UTC midnight.
func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// User options
type UserOption func(*domain.User)

func WithAdmin() UserOption {
	return func(u *domain.User) {
		u.IsAdmin = true
	}
}

func WithStartDate(d time.Time) UserOption {
	return func(u *domain.User) {
		u.StartDate = d
	}
}

func WithLockDay(day int) UserOption {
	return func(u *domain.User) {
		u.LockDay = day
	}
}

func WithDisplayName(name string) UserOption {
	return func(u *domain.User) {
		u.DisplayName = name
	}
}

func NewTestUser(username string, opts ...UserOption) *domain.User {
	u := &domain.User{
		ID:        uuid.New().String(),
		Username:  username,
		StartDate: Date(2024, time.January, 1),
		LockDay:   domain.DefaultLockDay,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Client options
type ClientOption func(*domain.Client)

func WithActivities(ids ...string) ClientOption {
	return func(c *domain.Client) {
		c.ActivityIDs = ids
	}
}

func WithContact(person, email string) ClientOption {
	return func(c *domain.Client) {
		c.ContactPersonName = person
		c.Email = email
	}
}

// NewTestClient creates a client. An empty name gets a unique default.
func NewTestClient(name string, opts ...ClientOption) *domain.Client {
	if name == "" {
		name = uniqueName("client")
	}
	c := &domain.Client{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewTestActivity creates an activity. An empty name gets a unique default.
func NewTestActivity(name string) *domain.Activity {
	if name == "" {
		name = uniqueName("activity")
	}
	return &domain.Activity{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

// Entry options
type EntryOption func(*domain.Entry)

func WithTimes(start, end string) EntryOption {
	return func(e *domain.Entry) {
		e.StartTime = start
		e.EndTime = end
	}
}

func WithHours(h string) EntryOption {
	return func(e *domain.Entry) {
		e.Duration = decimal.NewNullDecimal(decimal.RequireFromString(h))
	}
}

func WithClient(id string) EntryOption {
	return func(e *domain.Entry) {
		e.ClientID = id
	}
}

func WithActivity(id string) EntryOption {
	return func(e *domain.Entry) {
		e.ActivityID = id
	}
}

func WithNotes(n string) EntryOption {
	return func(e *domain.Entry) {
		e.Notes = n
	}
}

func NewTestEntry(userID string, date time.Time, opts ...EntryOption) *domain.Entry {
	e := &domain.Entry{
		ID:         uuid.New().String(),
		UserID:     userID,
		Date:       date,
		ModifiedAt: time.Now().UTC().Truncate(time.Second),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
