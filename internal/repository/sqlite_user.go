package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
)

// SQLiteUserRepo implements UserRepo using a SQLite database.
type SQLiteUserRepo struct {
	db db.DBTX
}

// NewSQLiteUserRepo creates a new SQLiteUserRepo.
func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

const userColumns = `id, username, display_name, is_admin, start_date, lock_day, archived_at, created_at`

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID,
		u.Username,
		u.DisplayName,
		boolToInt(u.IsAdmin),
		u.StartDate.Format(dateLayout),
		u.LockDay,
		nullableTimeToString(u.ArchivedAt, time.RFC3339),
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting user: %w", asConflict(err))
	}
	return nil
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return r.scanUser(row)
}

func (r *SQLiteUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return r.scanUser(row)
}

func (r *SQLiteUserRepo) List(ctx context.Context, includeArchived bool) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY username`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return users, nil
}

func (r *SQLiteUserRepo) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET username = ?, display_name = ?, is_admin = ?, start_date = ?, lock_day = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		u.Username,
		u.DisplayName,
		boolToInt(u.IsAdmin),
		u.StartDate.Format(dateLayout),
		u.LockDay,
		u.ID,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", asConflict(err))
	}
	return requireAffected(res, "user")
}

func (r *SQLiteUserRepo) Archive(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET archived_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("archiving user: %w", err)
	}
	return requireAffected(res, "user")
}

type scanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteUserRepo) scanUser(s scanner) (*domain.User, error) {
	var u domain.User
	var isAdmin int
	var startDate, createdAt string
	var archivedAt sql.NullString

	err := s.Scan(&u.ID, &u.Username, &u.DisplayName, &isAdmin, &startDate, &u.LockDay, &archivedAt, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	u.IsAdmin = intToBool(isAdmin)
	u.ArchivedAt = parseNullableTime(archivedAt, time.RFC3339)
	if u.StartDate, err = time.Parse(dateLayout, startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date: %w", err)
	}
	if u.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &u, nil
}

// requireAffected returns ErrNotFound when an UPDATE or DELETE touched no rows.
func requireAffected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
