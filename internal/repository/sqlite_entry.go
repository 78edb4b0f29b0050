package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
)

// SQLiteEntryRepo implements EntryRepo using a SQLite database. Reads join
// user, client and activity names for display.
type SQLiteEntryRepo struct {
	db db.DBTX
}

func NewSQLiteEntryRepo(conn db.DBTX) *SQLiteEntryRepo {
	return &SQLiteEntryRepo{db: conn}
}

const entrySelect = `SELECT e.id, e.user_id, e.date, e.start_time, e.end_time, e.duration,
		COALESCE(e.client_id, ''), COALESCE(e.activity_id, ''), e.notes, e.modified_at,
		COALESCE(NULLIF(u.display_name, ''), u.username), COALESCE(c.name, ''), COALESCE(a.name, '')
	FROM entries e
	JOIN users u ON u.id = e.user_id
	LEFT JOIN clients c ON c.id = e.client_id
	LEFT JOIN activities a ON a.id = e.activity_id`

const entryOrder = ` ORDER BY e.date, e.start_time, e.modified_at`

func (r *SQLiteEntryRepo) Create(ctx context.Context, e *domain.Entry) error {
	query := `INSERT INTO entries (id, user_id, date, start_time, end_time, duration, client_id, activity_id,
		notes, modified_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	modified := e.ModifiedAt.UTC().Format(time.RFC3339)
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.UserID,
		e.Date.Format(dateLayout),
		e.StartTime,
		e.EndTime,
		nullableDecimal(e.Duration),
		nullableString(e.ClientID),
		nullableString(e.ActivityID),
		e.Notes,
		modified,
		modified,
	)
	if err != nil {
		return fmt.Errorf("inserting entry: %w", asConflict(err))
	}
	return nil
}

func (r *SQLiteEntryRepo) GetByID(ctx context.Context, id string) (*domain.Entry, error) {
	row := r.db.QueryRowContext(ctx, entrySelect+` WHERE e.id = ?`, id)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("entry: %w", ErrNotFound)
		}
		return nil, err
	}
	return &e, nil
}

func (r *SQLiteEntryRepo) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]domain.Entry, error) {
	query := entrySelect + ` WHERE e.user_id = ? AND e.date >= ? AND e.date < ?` + entryOrder
	rows, err := r.db.QueryContext(ctx, query, userID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("listing entries by user: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteEntryRepo) ListFiltered(ctx context.Context, f EntryFilter) ([]domain.Entry, error) {
	var where []string
	var args []any
	if !f.Start.IsZero() {
		where = append(where, `e.date >= ?`)
		args = append(args, f.Start.Format(dateLayout))
	}
	if !f.End.IsZero() {
		where = append(where, `e.date <= ?`)
		args = append(args, f.End.Format(dateLayout))
	}
	for _, in := range []struct {
		column string
		ids    []string
	}{
		{"e.client_id", f.ClientIDs},
		{"e.user_id", f.UserIDs},
		{"e.activity_id", f.ActivityIDs},
	} {
		if len(in.ids) == 0 {
			continue
		}
		where = append(where, fmt.Sprintf("%s IN (%s)", in.column, placeholders(len(in.ids))))
		args = append(args, stringArgs(in.ids)...)
	}

	query := entrySelect
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += entryOrder
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing filtered entries: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *SQLiteEntryRepo) FirstDate(ctx context.Context) (time.Time, error) {
	var first sql.NullString
	if err := r.db.QueryRowContext(ctx, `SELECT MIN(date) FROM entries`).Scan(&first); err != nil {
		return time.Time{}, fmt.Errorf("querying first entry date: %w", err)
	}
	if !first.Valid {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, first.String)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing first entry date: %w", err)
	}
	return t, nil
}

func (r *SQLiteEntryRepo) Update(ctx context.Context, e *domain.Entry) error {
	query := `UPDATE entries SET user_id = ?, date = ?, start_time = ?, end_time = ?, duration = ?,
		client_id = ?, activity_id = ?, notes = ?, modified_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		e.UserID,
		e.Date.Format(dateLayout),
		e.StartTime,
		e.EndTime,
		nullableDecimal(e.Duration),
		nullableString(e.ClientID),
		nullableString(e.ActivityID),
		e.Notes,
		e.ModifiedAt.UTC().Format(time.RFC3339),
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating entry: %w", asConflict(err))
	}
	return requireAffected(res, "entry")
}

func (r *SQLiteEntryRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return requireAffected(res, "entry")
}

func scanEntry(s scanner) (domain.Entry, error) {
	var e domain.Entry
	var date, modifiedAt string
	var duration sql.NullString
	err := s.Scan(
		&e.ID, &e.UserID, &date, &e.StartTime, &e.EndTime, &duration,
		&e.ClientID, &e.ActivityID, &e.Notes, &modifiedAt,
		&e.Username, &e.ClientName, &e.ActivityName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return e, err
		}
		return e, fmt.Errorf("scanning entry: %w", err)
	}
	if e.Date, err = time.Parse(dateLayout, date); err != nil {
		return e, fmt.Errorf("parsing date: %w", err)
	}
	if e.ModifiedAt, err = time.Parse(time.RFC3339, modifiedAt); err != nil {
		return e, fmt.Errorf("parsing modified_at: %w", err)
	}
	if e.Duration, err = parseNullableDecimal(duration); err != nil {
		return e, fmt.Errorf("parsing duration: %w", err)
	}
	return e, nil
}

func scanEntries(rows *sql.Rows) ([]domain.Entry, error) {
	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return entries, nil
}
