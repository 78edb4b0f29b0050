package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/timesheet/internal/testutil"
)

func TestUserRepo_CreateAndGet(t *testing.T) {
	repo := NewSQLiteUserRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	u := testutil.NewTestUser("ann", testutil.WithAdmin(), testutil.WithLockDay(7), testutil.WithDisplayName("Ann Lee"))
	require.NoError(t, repo.Create(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Username)
	assert.Equal(t, "Ann Lee", got.DisplayName)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, 7, got.LockDay)
	assert.Equal(t, u.StartDate, got.StartDate)
	assert.Nil(t, got.ArchivedAt)

	byName, err := repo.GetByUsername(ctx, "ann")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
}

func TestUserRepo_NotFound(t *testing.T) {
	repo := NewSQLiteUserRepo(testutil.NewTestDB(t))
	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Archive(context.Background(), "nope"), ErrNotFound)
}

func TestUserRepo_DuplicateUsername(t *testing.T) {
	repo := NewSQLiteUserRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, testutil.NewTestUser("ann")))

	err := repo.Create(ctx, testutil.NewTestUser("ann"))
	require.ErrorIs(t, err, ErrConflict)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "users", ce.Table)
	assert.Equal(t, []string{"username"}, ce.Columns)
}

func TestUserRepo_ListAndArchive(t *testing.T) {
	repo := NewSQLiteUserRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	bob := testutil.NewTestUser("bob")
	ann := testutil.NewTestUser("ann")
	require.NoError(t, repo.Create(ctx, bob))
	require.NoError(t, repo.Create(ctx, ann))

	require.NoError(t, repo.Archive(ctx, bob.ID))

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "ann", active[0].Username)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "bob", all[1].Username)
	require.NotNil(t, all[1].ArchivedAt)
	assert.WithinDuration(t, time.Now(), *all[1].ArchivedAt, time.Minute)
}

func TestUserRepo_Update(t *testing.T) {
	repo := NewSQLiteUserRepo(testutil.NewTestDB(t))
	ctx := context.Background()
	u := testutil.NewTestUser("ann")
	require.NoError(t, repo.Create(ctx, u))

	u.LockDay = 10
	u.StartDate = testutil.Date(2023, time.June, 1)
	require.NoError(t, repo.Update(ctx, u))

	got, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.LockDay)
	assert.Equal(t, testutil.Date(2023, time.June, 1), got.StartDate)
}
