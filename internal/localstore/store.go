// Package localstore implements the plan, history and nutrition stores on
// an embedded SQLite database for single-device use.
package localstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/meltforce/fittrack/internal/models"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	login        TEXT NOT NULL UNIQUE,
	display_name TEXT NOT NULL DEFAULT '',
	created_at   INTEGER NOT NULL,
	last_seen    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS workout_plans (
	id                        TEXT PRIMARY KEY,
	user_id                   INTEGER NOT NULL,
	name                      TEXT NOT NULL,
	goal                      TEXT NOT NULL,
	schedules                 TEXT NOT NULL,
	user_weight_lbs           REAL,
	estimated_calories_burned REAL,
	created_at                INTEGER NOT NULL,
	updated_at                INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_workout_plans_user_name ON workout_plans (user_id, name);

CREATE TABLE IF NOT EXISTS completed_workouts (
	id                  TEXT PRIMARY KEY,
	user_id             INTEGER NOT NULL,
	plan_name           TEXT NOT NULL,
	date                INTEGER NOT NULL,
	duration_sec        INTEGER NOT NULL DEFAULT 0,
	calories_burned     REAL NOT NULL DEFAULT 0,
	completed_exercises TEXT NOT NULL,
	completed           INTEGER NOT NULL DEFAULT 0,
	created_at          INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_completed_workouts_user_date ON completed_workouts (user_id, date);

CREATE TABLE IF NOT EXISTS nutrition_plans (
	id                   TEXT PRIMARY KEY,
	user_id              INTEGER NOT NULL,
	name                 TEXT NOT NULL,
	goal                 TEXT NOT NULL,
	foods                TEXT NOT NULL,
	daily_calorie_target REAL NOT NULL DEFAULT 0,
	macro_ratios         TEXT NOT NULL,
	user_stats           TEXT,
	allergies            TEXT NOT NULL,
	custom_allergens     TEXT NOT NULL,
	is_active            INTEGER NOT NULL DEFAULT 0,
	created_at           INTEGER NOT NULL
);
`

// Store is a SQLite-backed implementation of the plan, history and
// nutrition stores.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, mapError("creating schema", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetOrCreateUser finds or creates a user by login name and returns the
// user ID.
func (s *Store) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	now := time.Now().UnixMilli()
	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (login, display_name, created_at, last_seen)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = excluded.last_seen,
			    display_name = COALESCE(NULLIF(excluded.display_name, ''), users.display_name)
		RETURNING id
	`, login, displayName, now, now).Scan(&id)
	return id, mapError("upserting user", err)
}

// mapError wraps a driver error with the matching models sentinel.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Code() & 0xff {
		case sqlite3.SQLITE_PERM, sqlite3.SQLITE_READONLY, sqlite3.SQLITE_AUTH:
			return fmt.Errorf("%s: %w: %w", op, models.ErrPermissionDenied, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN:
			return fmt.Errorf("%s: %w: %w", op, models.ErrUnavailable, err)
		}
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, models.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
