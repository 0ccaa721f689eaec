// Package sqlite provides SQLite-based persistent storage for dosewatch.
// Uses WAL mode for concurrent reads and crash-safe writes. The estimator
// core stays pure; this package only feeds it and stores its output.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/state.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "state.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// Connection pool settings for SQLite
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping() error {
	return d.db.Ping()
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS substances (
			id                  TEXT PRIMARY KEY,
			name                TEXT NOT NULL UNIQUE,
			category            TEXT NOT NULL DEFAULT 'low_risk',
			dependency_category TEXT NOT NULL DEFAULT '',
			auto_stop           BOOLEAN NOT NULL DEFAULT 0,
			created_at          INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS reference_entries (
			name         TEXT PRIMARY KEY,
			generic_name TEXT NOT NULL DEFAULT '',
			aliases      TEXT NOT NULL DEFAULT '[]',
			description  TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			substance_id     TEXT PRIMARY KEY REFERENCES substances(id),
			substance_name   TEXT NOT NULL,
			onset_minutes    REAL NOT NULL,
			peak_minutes     REAL NOT NULL,
			wear_off_minutes REAL NOT NULL,
			duration_minutes REAL NOT NULL,
			confidence       REAL NOT NULL,
			samples          INTEGER NOT NULL DEFAULT 0,
			sigma_onset      REAL NOT NULL,
			sigma_peak       REAL NOT NULL,
			sigma_wear       REAL NOT NULL,
			sigma_duration   REAL NOT NULL,
			bias             TEXT NOT NULL DEFAULT '{}',
			auto_stop        BOOLEAN NOT NULL DEFAULT 0,
			updated_at       INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS doses (
			id           TEXT PRIMARY KEY,
			substance_id TEXT NOT NULL REFERENCES substances(id),
			taken_at     INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_doses_substance ON doses(substance_id, taken_at)`,
		`CREATE TABLE IF NOT EXISTS feedback_events (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			dose_id        TEXT NOT NULL REFERENCES doses(id),
			status         TEXT NOT NULL,
			offset_minutes REAL NOT NULL,
			reported_at    INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedback_dose ON feedback_events(dose_id, offset_minutes)`,
	}

	for i, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
