package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"taptrack/internal/civil"
)

type stubStore struct {
	existing []Entry
	byID     map[string]Entry
	inserted []Entry
	updated  []Entry
}

func (s *stubStore) ActiveByClassroomDay(_ context.Context, classroomID string, day civil.Day) ([]Entry, error) {
	var out []Entry
	for _, e := range s.existing {
		if e.ClassroomID == classroomID && e.Day == day && e.Active {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *stubStore) Get(_ context.Context, id string) (*Entry, error) {
	if e, ok := s.byID[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (s *stubStore) Insert(_ context.Context, e Entry) error {
	s.inserted = append(s.inserted, e)
	return nil
}

func (s *stubStore) Update(_ context.Context, e Entry) error {
	s.updated = append(s.updated, e)
	return nil
}

func (s *stubStore) Deactivate(_ context.Context, id string) error {
	return nil
}

func TestCreateRejectsOverlap(t *testing.T) {
	store := &stubStore{existing: []Entry{entry("existing", "c1", civil.Monday, "08:00", "09:00")}}
	svc := NewService(store)

	_, err := svc.Create(context.Background(), entry("", "c1", civil.Monday, "08:30", "09:30"))
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "existing", conflict.Existing.ID)
	require.Empty(t, store.inserted)
}

func TestCreateDifferentRoomAccepted(t *testing.T) {
	store := &stubStore{existing: []Entry{entry("existing", "c1", civil.Monday, "08:00", "09:00")}}
	svc := NewService(store)

	created, err := svc.Create(context.Background(), entry("", "c2", civil.Monday, "08:30", "09:30"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.True(t, created.Active)
	require.Len(t, store.inserted, 1)
}

func TestCreateValidatesFields(t *testing.T) {
	svc := NewService(&stubStore{})

	bad := entry("", "c1", civil.Monday, "09:00", "08:00")
	_, err := svc.Create(context.Background(), bad)
	require.Error(t, err)

	bad = entry("", "c1", civil.Monday, "08:00", "09:00")
	bad.Subject = ""
	_, err = svc.Create(context.Background(), bad)
	require.Error(t, err)
}

func TestUpdateExcludesOwnRow(t *testing.T) {
	existing := entry("e1", "c1", civil.Monday, "08:00", "09:00")
	store := &stubStore{
		existing: []Entry{existing},
		byID:     map[string]Entry{"e1": existing},
	}
	svc := NewService(store)

	// Shifting e1 inside its own old slot must not self-conflict.
	moved := entry("e1", "c1", civil.Monday, "08:15", "09:15")
	updated, err := svc.Update(context.Background(), moved)
	require.NoError(t, err)
	require.Equal(t, "e1", updated.ID)
	require.Len(t, store.updated, 1)
}

func TestUpdateUnknownID(t *testing.T) {
	svc := NewService(&stubStore{byID: map[string]Entry{}})
	_, err := svc.Update(context.Background(), entry("ghost", "c1", civil.Monday, "08:00", "09:00"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveUnknownID(t *testing.T) {
	svc := NewService(&stubStore{byID: map[string]Entry{}})
	require.ErrorIs(t, svc.Remove(context.Background(), "ghost"), ErrNotFound)
}
