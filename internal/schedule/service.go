package schedule

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"taptrack/internal/civil"
	"taptrack/internal/observability"
)

// ErrNotFound is returned when a schedule entry id does not exist.
var ErrNotFound = errors.New("schedule entry not found")

// Store is the persistence surface the authoring service needs.
type Store interface {
	ActiveByClassroomDay(ctx context.Context, classroomID string, day civil.Day) ([]Entry, error)
	Get(ctx context.Context, id string) (*Entry, error)
	Insert(ctx context.Context, e Entry) error
	Update(ctx context.Context, e Entry) error
	Deactivate(ctx context.Context, id string) error
}

// Service guards schedule writes with the overlap check. Schedule edits are
// low-frequency and admin-only, so a plain read-then-write is enough here;
// the hard atomicity lives on the attendance side.
type Service struct {
	store Store
}

// NewService creates a service backed by a store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Create validates and inserts a new entry, rejecting classroom/day overlaps
// with a *ConflictError naming the existing entry.
func (s *Service) Create(ctx context.Context, e Entry) (Entry, error) {
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Active = true

	existing, err := s.store.ActiveByClassroomDay(ctx, e.ClassroomID, e.Day)
	if err != nil {
		return Entry{}, fmt.Errorf("check conflicts: %w", err)
	}
	if hit := FindConflict(e, existing); hit != nil {
		observability.ScheduleConflicts.Inc()
		return Entry{}, &ConflictError{Existing: *hit}
	}

	if err := s.store.Insert(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Update rewrites an entry after re-running the overlap check against its
// (possibly new) classroom and day. The entry's own row is excluded.
func (s *Service) Update(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		return Entry{}, ErrNotFound
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	current, err := s.store.Get(ctx, e.ID)
	if err != nil {
		return Entry{}, err
	}
	if current == nil {
		return Entry{}, ErrNotFound
	}
	e.Active = current.Active

	existing, err := s.store.ActiveByClassroomDay(ctx, e.ClassroomID, e.Day)
	if err != nil {
		return Entry{}, fmt.Errorf("check conflicts: %w", err)
	}
	if hit := FindConflict(e, existing); hit != nil {
		observability.ScheduleConflicts.Inc()
		return Entry{}, &ConflictError{Existing: *hit}
	}

	if err := s.store.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Remove soft-deletes an entry.
func (s *Service) Remove(ctx context.Context, id string) error {
	current, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrNotFound
	}
	return s.store.Deactivate(ctx, id)
}
