// Package roster exposes the read-only reference data the tap engine resolves
// scans against. Teachers and classrooms are owned by the identity side of the
// school system; this package only reads them.
package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Teacher is a badge holder.
type Teacher struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	BadgeID   string    `json:"badge_id"`
	Active    bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Classroom is a scannable room.
type Classroom struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
	Capacity int    `json:"capacity"`
	Active   bool   `json:"is_active"`
}

// Repository reads roster data from Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// TeacherByBadge resolves an RFID badge to its teacher, nil when the badge is
// unknown. Inactive teachers are returned as-is; the engine decides what an
// inactive badge means.
func (r *Repository) TeacherByBadge(ctx context.Context, badgeID string) (*Teacher, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, badge_id, is_active, created_at
		FROM teachers WHERE badge_id = $1
	`, badgeID)
	var t Teacher
	if err := row.Scan(&t.ID, &t.Name, &t.BadgeID, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lookup badge: %w", err)
	}
	return &t, nil
}

// TeacherByID returns a teacher by primary key, nil when absent.
func (r *Repository) TeacherByID(ctx context.Context, id string) (*Teacher, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, badge_id, is_active, created_at
		FROM teachers WHERE id = $1
	`, id)
	var t Teacher
	if err := row.Scan(&t.ID, &t.Name, &t.BadgeID, &t.Active, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return &t, nil
}

// ListTeachers returns all teachers ordered by name.
func (r *Repository) ListTeachers(ctx context.Context) ([]Teacher, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, badge_id, is_active, created_at
		FROM teachers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	defer rows.Close()

	var teachers []Teacher
	for rows.Next() {
		var t Teacher
		if err := rows.Scan(&t.ID, &t.Name, &t.BadgeID, &t.Active, &t.CreatedAt); err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// ListClassrooms returns all active classrooms ordered by name.
func (r *Repository) ListClassrooms(ctx context.Context) ([]Classroom, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, location, capacity, is_active
		FROM classrooms
		WHERE is_active
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	defer rows.Close()

	var classrooms []Classroom
	for rows.Next() {
		var c Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.Location, &c.Capacity, &c.Active); err != nil {
			return nil, err
		}
		classrooms = append(classrooms, c)
	}
	return classrooms, rows.Err()
}
