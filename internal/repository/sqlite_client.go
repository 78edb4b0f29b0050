package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database. Activity
// assignments are stored in client_activities; pass a transaction-backed
// DBTX to write a client and its assignments atomically.
type SQLiteClientRepo struct {
	db db.DBTX
}

func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

const clientColumns = `id, name, contact_person_name, phone, address, email, notes, created_at`

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		c.Name,
		c.ContactPersonName,
		c.Phone,
		c.Address,
		c.Email,
		c.Notes,
		c.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting client: %w", asConflict(err))
	}
	return r.insertActivities(ctx, c.ID, c.ActivityIDs)
}

func (r *SQLiteClientRepo) insertActivities(ctx context.Context, clientID string, activityIDs []string) error {
	for _, aid := range activityIDs {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO client_activities (client_id, activity_id) VALUES (?, ?)`, clientID, aid)
		if err != nil {
			return fmt.Errorf("assigning activity %s to client: %w", aid, err)
		}
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+clientColumns+` FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, err
	}
	assigned, err := r.activityIDs(ctx, `WHERE client_id = ?`, id)
	if err != nil {
		return nil, err
	}
	c.ActivityIDs = assigned[c.ID]
	return c, nil
}

func (r *SQLiteClientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+clientColumns+` FROM clients ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}
	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating clients: %w", err)
	}
	rows.Close()

	assigned, err := r.activityIDs(ctx, "")
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		c.ActivityIDs = assigned[c.ID]
	}
	return clients, nil
}

// activityIDs loads assignments keyed by client id.
func (r *SQLiteClientRepo) activityIDs(ctx context.Context, where string, args ...any) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT client_id, activity_id FROM client_activities `+where+` ORDER BY client_id, activity_id`, args...)
	if err != nil {
		return nil, fmt.Errorf("listing client activities: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var cid, aid string
		if err := rows.Scan(&cid, &aid); err != nil {
			return nil, fmt.Errorf("scanning client activity: %w", err)
		}
		out[cid] = append(out[cid], aid)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating client activities: %w", err)
	}
	return out, nil
}

// Update rewrites the client row and replaces its activity assignments.
func (r *SQLiteClientRepo) Update(ctx context.Context, c *domain.Client) error {
	query := `UPDATE clients SET name = ?, contact_person_name = ?, phone = ?, address = ?, email = ?, notes = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Name, c.ContactPersonName, c.Phone, c.Address, c.Email, c.Notes, c.ID)
	if err != nil {
		return fmt.Errorf("updating client: %w", asConflict(err))
	}
	if err := requireAffected(res, "client"); err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM client_activities WHERE client_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clearing client activities: %w", err)
	}
	return r.insertActivities(ctx, c.ID, c.ActivityIDs)
}

func (r *SQLiteClientRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting client: %w", err)
	}
	return requireAffected(res, "client")
}

func scanClient(s scanner) (*domain.Client, error) {
	var c domain.Client
	var createdAt string
	err := s.Scan(&c.ID, &c.Name, &c.ContactPersonName, &c.Phone, &c.Address, &c.Email, &c.Notes, &createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	return &c, nil
}
