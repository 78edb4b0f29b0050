package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           TEXT PRIMARY KEY,
		username     TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL DEFAULT '',
		is_admin     INTEGER NOT NULL DEFAULT 0,
		start_date   TEXT NOT NULL,
		lock_day     INTEGER NOT NULL DEFAULT 5,
		archived_at  TEXT,
		created_at   TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS clients (
		id                  TEXT PRIMARY KEY,
		name                TEXT NOT NULL UNIQUE,
		contact_person_name TEXT NOT NULL DEFAULT '',
		phone               TEXT NOT NULL DEFAULT '',
		address             TEXT NOT NULL DEFAULT '',
		email               TEXT NOT NULL DEFAULT '',
		created_at          TEXT NOT NULL
	)`,

	`ALTER TABLE clients ADD COLUMN notes TEXT NOT NULL DEFAULT ''`,

	`CREATE TABLE IF NOT EXISTS activities (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS client_activities (
		client_id   TEXT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		activity_id TEXT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
		PRIMARY KEY (client_id, activity_id)
	)`,

	`CREATE TABLE IF NOT EXISTS entries (
		id          TEXT PRIMARY KEY,
		user_id     TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		date        TEXT NOT NULL,
		start_time  TEXT NOT NULL DEFAULT '',
		end_time    TEXT NOT NULL DEFAULT '',
		duration    TEXT,
		client_id   TEXT REFERENCES clients(id) ON DELETE SET NULL,
		activity_id TEXT REFERENCES activities(id) ON DELETE SET NULL,
		notes       TEXT NOT NULL DEFAULT '',
		modified_at TEXT NOT NULL,
		created_at  TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_entries_user_date ON entries(user_id, date)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(date)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_client ON entries(client_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_user_slot ON entries(user_id, date, start_time) WHERE start_time != ''`,
	`CREATE INDEX IF NOT EXISTS idx_client_activities_activity ON client_activities(activity_id)`,
}
