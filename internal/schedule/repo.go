package schedule

import (
	"context"
	"database/sql"
	"fmt"

	"taptrack/internal/civil"
)

// Repository persists schedule entries in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const entryColumns = `id, teacher_id, classroom_id, day, start_time, end_time, subject, is_active`

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	var day, start, end string
	if err := row.Scan(&e.ID, &e.TeacherID, &e.ClassroomID, &day, &start, &end, &e.Subject, &e.Active); err != nil {
		return Entry{}, err
	}
	return hydrate(e, day, start, end)
}

func hydrate(e Entry, day, start, end string) (Entry, error) {
	var err error
	if e.Day, err = civil.ParseDay(day); err != nil {
		return Entry{}, err
	}
	if e.Start, err = civil.ParseTimeOfDay(start); err != nil {
		return Entry{}, err
	}
	if e.End, err = civil.ParseTimeOfDay(end); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// ActiveFor returns the active entries for a teacher+classroom+day, ordered
// by start time.
func (r *Repository) ActiveFor(ctx context.Context, teacherID, classroomID string, day civil.Day) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM schedules
		WHERE teacher_id = $1 AND classroom_id = $2 AND day = $3 AND is_active
		ORDER BY start_time
	`, teacherID, classroomID, string(day))
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// ActiveByClassroomDay returns all active entries sharing a classroom and day,
// the set the conflict checker runs against.
func (r *Repository) ActiveByClassroomDay(ctx context.Context, classroomID string, day civil.Day) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+entryColumns+`
		FROM schedules
		WHERE classroom_id = $1 AND day = $2 AND is_active
		ORDER BY start_time
	`, classroomID, string(day))
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// List returns entries with optional classroom/day filters, inactive included.
func (r *Repository) List(ctx context.Context, classroomID string, day string) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM schedules`
	args := []any{}
	clauses := []string{}
	if classroomID != "" {
		args = append(args, classroomID)
		clauses = append(clauses, fmt.Sprintf("classroom_id = $%d", len(args)))
	}
	if day != "" {
		args = append(args, day)
		clauses = append(clauses, fmt.Sprintf("day = $%d", len(args)))
	}
	for i, c := range clauses {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY day, start_time"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()
	return collect(rows)
}

// Get returns a single entry by id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM schedules WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get schedule: %w", err)
	}
	return &e, nil
}

// Insert writes a new entry.
func (r *Repository) Insert(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO schedules (id, teacher_id, classroom_id, day, start_time, end_time, subject, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, e.ID, e.TeacherID, e.ClassroomID, string(e.Day), e.Start.String(), e.End.String(), e.Subject, e.Active)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// Update rewrites an existing entry in place.
func (r *Repository) Update(ctx context.Context, e Entry) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE schedules
		SET teacher_id = $2, classroom_id = $3, day = $4, start_time = $5, end_time = $6, subject = $7, is_active = $8
		WHERE id = $1
	`, e.ID, e.TeacherID, e.ClassroomID, string(e.Day), e.Start.String(), e.End.String(), e.Subject, e.Active)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Deactivate soft-deletes an entry; inactive entries drop out of validation
// and conflict checking but stay queryable.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE schedules SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate schedule: %w", err)
	}
	return nil
}

func collect(rows *sql.Rows) ([]Entry, error) {
	var res []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan schedule: %w", err)
		}
		res = append(res, e)
	}
	return res, rows.Err()
}
