package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB wraps sql.DB for Postgres using pgx.
type DB struct {
	Client *sql.DB
}

// NewDB creates a Postgres connection with sane defaults and applies the schema.
func NewDB(connString string) (*DB, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	if err := db.PingContext(context.Background()); err != nil {
		return &DB{Client: db}, err
	}
	if err := migrate(db); err != nil {
		return &DB{Client: db}, fmt.Errorf("migrate: %w", err)
	}
	return &DB{Client: db}, nil
}

// migrate applies the schema. The partial unique index on open attendance
// records is what actually enforces the one-open-session rule under
// concurrent taps; the engine's pre-check alone is not enough.
func migrate(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS teachers (
		id         UUID PRIMARY KEY,
		name       TEXT NOT NULL,
		badge_id   TEXT UNIQUE NOT NULL,
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS classrooms (
		id        UUID PRIMARY KEY,
		name      TEXT NOT NULL,
		location  TEXT NOT NULL DEFAULT '',
		capacity  INT NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);

	CREATE TABLE IF NOT EXISTS schedules (
		id           UUID PRIMARY KEY,
		teacher_id   UUID NOT NULL REFERENCES teachers(id),
		classroom_id UUID NOT NULL REFERENCES classrooms(id),
		day          TEXT NOT NULL,
		start_time   TEXT NOT NULL,
		end_time     TEXT NOT NULL,
		subject      TEXT NOT NULL,
		is_active    BOOLEAN NOT NULL DEFAULT TRUE,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_room_day ON schedules(classroom_id, day) WHERE is_active;

	CREATE TABLE IF NOT EXISTS attendance_records (
		id               UUID PRIMARY KEY,
		teacher_id       UUID NOT NULL REFERENCES teachers(id),
		classroom_id     UUID NOT NULL REFERENCES classrooms(id),
		date             DATE NOT NULL,
		tap_in_time      TIMESTAMPTZ NOT NULL,
		tap_out_time     TIMESTAMPTZ,
		duration_minutes INT,
		subject          TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_one_open_session
		ON attendance_records(teacher_id, date) WHERE tap_out_time IS NULL;
	CREATE INDEX IF NOT EXISTS idx_attendance_teacher_date ON attendance_records(teacher_id, date);

	CREATE TABLE IF NOT EXISTS refresh_tokens (
		terminal_id TEXT NOT NULL,
		token       TEXT NOT NULL,
		expires_at  TIMESTAMPTZ NOT NULL,
		revoked     BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE TABLE IF NOT EXISTS terminals (
		terminal_id TEXT PRIMARY KEY,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := db.Exec(schema)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}
