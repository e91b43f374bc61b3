package tap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"taptrack/internal/civil"
)

// Repository persists attendance records in Postgres. The schema carries a
// partial unique index on (teacher_id, date) WHERE tap_out_time IS NULL, so
// CreateOpen is an atomic check-and-insert.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const recordColumns = `id, teacher_id, classroom_id, date, tap_in_time, tap_out_time, duration_minutes, subject, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var rec Record
	var date time.Time
	if err := row.Scan(&rec.ID, &rec.TeacherID, &rec.ClassroomID, &date, &rec.TapIn,
		&rec.TapOut, &rec.DurationMinutes, &rec.Subject, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.Date = civil.DateOf(date)
	return rec, nil
}

// FindOpen returns the open record for a teacher and date, nil when none.
func (r *Repository) FindOpen(ctx context.Context, teacherID string, date civil.Date) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM attendance_records
		WHERE teacher_id = $1 AND date = $2 AND tap_out_time IS NULL
	`, teacherID, date.String())
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open record: %w", err)
	}
	return &rec, nil
}

// Get returns a record by id, nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM attendance_records WHERE id = $1
	`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return &rec, nil
}

// CreateOpen inserts a new open record. A unique violation on the open-session
// index comes back as ErrDuplicateOpen.
func (r *Repository) CreateOpen(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO attendance_records (id, teacher_id, classroom_id, date, tap_in_time, subject)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING created_at
	`, rec.ID, rec.TeacherID, rec.ClassroomID, rec.Date.String(), rec.TapIn, rec.Subject)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicateOpen
		}
		return Record{}, fmt.Errorf("insert record: %w", err)
	}
	return rec, nil
}

// Close stamps tap-out time and duration on an open record. The tap_out_time
// IS NULL guard makes the close idempotent-safe: a record closes once.
func (r *Repository) Close(ctx context.Context, id string, tapOut time.Time, durationMinutes int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET tap_out_time = $2, duration_minutes = $3
		WHERE id = $1 AND tap_out_time IS NULL
	`, id, tapOut, durationMinutes)
	if err != nil {
		return fmt.Errorf("close record: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoActiveSession
	}
	return nil
}

// List returns records with basic filters, newest first.
func (r *Repository) List(ctx context.Context, teacherID, classroomID, date string, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + recordColumns + ` FROM attendance_records`
	args := []any{}
	clauses := []string{}
	if teacherID != "" {
		args = append(args, teacherID)
		clauses = append(clauses, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if classroomID != "" {
		args = append(args, classroomID)
		clauses = append(clauses, fmt.Sprintf("classroom_id = $%d", len(args)))
	}
	if date != "" {
		args = append(args, date)
		clauses = append(clauses, fmt.Sprintf("date = $%d", len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += fmt.Sprintf(" ORDER BY tap_in_time DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var res []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}
