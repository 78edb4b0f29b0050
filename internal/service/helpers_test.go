package service

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
	"github.com/alexanderramin/timesheet/internal/repository"
	"github.com/alexanderramin/timesheet/internal/testutil"
)

// testNow falls after April's lock day, so March is locked for non-admins.
var testNow = time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	db         *sql.DB
	entries    EntryService
	reports    ReportService
	users      UserService
	clients    ClientService
	activities ActivityService
	log        *bytes.Buffer

	admin, ann, bob *domain.User
	acme            *domain.Client
	dev             *domain.Activity
}

func setup(t *testing.T) *fixture {
	return setupWithUoW(t, nil)
}

// setupWithUoW builds services over a fresh database. A nil uow uses the
// real one.
func setupWithUoW(t *testing.T, uow db.UnitOfWork) *fixture {
	t.Helper()
	conn := testutil.NewTestDB(t)
	if uow == nil {
		uow = testutil.NewTestUoW(conn)
	}
	var buf bytes.Buffer
	obs := NewLogUseCaseObserver(&buf)

	entryRepo := repository.NewSQLiteEntryRepo(conn)
	userRepo := repository.NewSQLiteUserRepo(conn)
	es := NewEntryService(entryRepo, userRepo, uow, obs)
	es.(*entryService).now = func() time.Time { return testNow }

	f := &fixture{
		db:         conn,
		entries:    es,
		reports:    NewReportService(entryRepo, obs),
		users:      NewUserService(userRepo, obs),
		clients:    NewClientService(repository.NewSQLiteClientRepo(conn), testutil.NewTestUoW(conn), obs),
		activities: NewActivityService(repository.NewSQLiteActivityRepo(conn)),
		log:        &buf,
	}

	ctx := context.Background()
	f.admin = testutil.NewTestUser("boss", testutil.WithAdmin())
	f.ann = testutil.NewTestUser("ann", testutil.WithDisplayName("Ann Lee"))
	f.bob = testutil.NewTestUser("bob")
	for _, u := range []*domain.User{f.admin, f.ann, f.bob} {
		require.NoError(t, userRepo.Create(ctx, u))
	}
	f.dev = testutil.NewTestActivity("Development")
	require.NoError(t, repository.NewSQLiteActivityRepo(conn).Create(ctx, f.dev))
	f.acme = testutil.NewTestClient("Acme", testutil.WithActivities(f.dev.ID))
	require.NoError(t, repository.NewSQLiteClientRepo(conn).Create(ctx, f.acme))
	return f
}

func fieldsOn(userID string, date time.Time, start, end string) domain.EntryFields {
	return domain.EntryFields{UserID: userID, Date: date, StartTime: start, EndTime: end}
}
