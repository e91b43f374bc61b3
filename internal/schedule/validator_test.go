package schedule

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"taptrack/internal/civil"
)

type stubSource struct {
	entries []Entry
	err     error
}

func (s *stubSource) ActiveFor(context.Context, string, string, civil.Day) ([]Entry, error) {
	return s.entries, s.err
}

func mustTime(t *testing.T, s string) civil.TimeOfDay {
	t.Helper()
	tod, err := civil.ParseTimeOfDay(s)
	require.NoError(t, err)
	return tod
}

func TestValidateNoSchedule(t *testing.T) {
	v := NewValidator(&stubSource{}, 15)
	res, err := v.Validate(context.Background(), "t1", "c1", civil.Monday, mustTime(t, "08:00"))
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, "no schedule for this day in this classroom", res.Reason)
}

func TestValidateGraceBoundaries(t *testing.T) {
	src := &stubSource{entries: []Entry{entry("a", "c1", civil.Monday, "08:00", "09:00")}}
	v := NewValidator(src, 15)

	cases := []struct {
		tod   string
		valid bool
	}{
		{"07:44", false},
		{"07:45", true},
		{"08:30", true},
		{"09:15", true},
		{"09:16", false},
	}
	for _, tc := range cases {
		res, err := v.Validate(context.Background(), "t1", "c1", civil.Monday, mustTime(t, tc.tod))
		require.NoError(t, err)
		require.Equal(t, tc.valid, res.Valid, "at %s", tc.tod)
		if tc.valid {
			require.NotNil(t, res.Matched)
			require.Equal(t, "a", res.Matched.ID)
		}
	}
}

func TestValidateFailureListsWindows(t *testing.T) {
	src := &stubSource{entries: []Entry{
		entry("a", "c1", civil.Monday, "08:00", "09:00"),
		entry("b", "c1", civil.Monday, "13:00", "14:00"),
	}}
	v := NewValidator(src, 15)

	res, err := v.Validate(context.Background(), "t1", "c1", civil.Monday, mustTime(t, "11:00"))
	require.NoError(t, err)
	require.False(t, res.Valid)
	require.Equal(t, []string{"07:45-09:15", "12:45-14:15"}, res.Windows)
	require.Contains(t, res.Reason, "07:45-09:15")
	require.Contains(t, res.Reason, "12:45-14:15")
}

func TestValidateTieBreakEarliestStart(t *testing.T) {
	// Both grace windows contain 08:55; the repository returns them in
	// reverse start order on purpose.
	src := &stubSource{entries: []Entry{
		entry("late", "c1", civil.Monday, "09:00", "10:00"),
		entry("early", "c1", civil.Monday, "08:00", "09:00"),
	}}
	v := NewValidator(src, 15)

	res, err := v.Validate(context.Background(), "t1", "c1", civil.Monday, mustTime(t, "08:55"))
	require.NoError(t, err)
	require.True(t, res.Valid)
	require.Equal(t, "early", res.Matched.ID)
}

func TestValidateSourceError(t *testing.T) {
	boom := errors.New("db down")
	v := NewValidator(&stubSource{err: boom}, 15)
	_, err := v.Validate(context.Background(), "t1", "c1", civil.Monday, mustTime(t, "08:00"))
	require.ErrorIs(t, err, boom)
}
