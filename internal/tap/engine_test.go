package tap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"taptrack/internal/civil"
	"taptrack/internal/clock"
	"taptrack/internal/roster"
	"taptrack/internal/schedule"
)

type fakeDirectory struct {
	teachers map[string]*roster.Teacher
	err      error
}

func (d *fakeDirectory) TeacherByBadge(_ context.Context, badgeID string) (*roster.Teacher, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.teachers[badgeID], nil
}

// fakeRecords mimics the store's partial unique index: at most one open
// record per (teacher, date).
type fakeRecords struct {
	records map[string]*Record
	nextID  int
	err     error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{records: map[string]*Record{}}
}

func (s *fakeRecords) FindOpen(_ context.Context, teacherID string, date civil.Date) (*Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	for _, r := range s.records {
		if r.TeacherID == teacherID && r.Date == date && r.Open() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeRecords) CreateOpen(ctx context.Context, rec Record) (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	if existing, _ := s.FindOpen(ctx, rec.TeacherID, rec.Date); existing != nil {
		return Record{}, ErrDuplicateOpen
	}
	s.nextID++
	rec.ID = fmt.Sprintf("rec-%d", s.nextID)
	rec.CreatedAt = rec.TapIn
	cp := rec
	s.records[rec.ID] = &cp
	return rec, nil
}

func (s *fakeRecords) Close(_ context.Context, id string, tapOut time.Time, durationMinutes int) error {
	r, ok := s.records[id]
	if !ok || !r.Open() {
		return ErrNoActiveSession
	}
	r.TapOut = &tapOut
	r.DurationMinutes = &durationMinutes
	return nil
}

type stubChecker struct {
	result schedule.Result
	err    error
}

func (c *stubChecker) Validate(context.Context, string, string, civil.Day, civil.TimeOfDay) (schedule.Result, error) {
	return c.result, c.err
}

func activeTeacher() map[string]*roster.Teacher {
	return map[string]*roster.Teacher{
		"B1": {ID: "t1", Name: "Maria Santos", BadgeID: "B1", Active: true},
	}
}

func validResult() schedule.Result {
	return schedule.Result{
		Valid:   true,
		Matched: &schedule.Entry{ID: "s1", Subject: "Mathematics"},
	}
}

// Monday 07:50.
var monday0750 = time.Date(2025, time.March, 10, 7, 50, 0, 0, time.UTC)

func TestTapInSuccess(t *testing.T) {
	records := newFakeRecords()
	e := NewEngine(&fakeDirectory{teachers: activeTeacher()}, records, &stubChecker{result: validResult()}, clock.At(monday0750))

	res, err := e.TapIn(context.Background(), "B1", "c1")
	require.NoError(t, err)
	require.Equal(t, "Maria Santos", res.Teacher)
	require.Equal(t, "Mathematics", res.Subject)
	require.Equal(t, monday0750, res.Time)

	open, err := records.FindOpen(context.Background(), "t1", civil.DateOf(monday0750))
	require.NoError(t, err)
	require.NotNil(t, open)
	require.Nil(t, open.TapOut)
	require.Equal(t, "Mathematics", open.Subject)
}

func TestTapInUnknownBadge(t *testing.T) {
	e := NewEngine(&fakeDirectory{teachers: map[string]*roster.Teacher{}}, newFakeRecords(), &stubChecker{result: validResult()}, clock.At(monday0750))
	_, err := e.TapIn(context.Background(), "nope", "c1")
	require.ErrorIs(t, err, ErrUnknownBadge)
}

func TestTapInInactiveTeacher(t *testing.T) {
	dir := &fakeDirectory{teachers: map[string]*roster.Teacher{
		"B1": {ID: "t1", Name: "Maria Santos", BadgeID: "B1", Active: false},
	}}
	e := NewEngine(dir, newFakeRecords(), &stubChecker{result: validResult()}, clock.At(monday0750))
	_, err := e.TapIn(context.Background(), "B1", "c1")
	require.ErrorIs(t, err, ErrUnknownBadge)
}

func TestTapInTwiceSameDay(t *testing.T) {
	records := newFakeRecords()
	e := NewEngine(&fakeDirectory{teachers: activeTeacher()}, records, &stubChecker{result: validResult()}, clock.At(monday0750))

	_, err := e.TapIn(context.Background(), "B1", "c1")
	require.NoError(t, err)

	_, err = e.TapIn(context.Background(), "B1", "c1")
	require.ErrorIs(t, err, ErrAlreadyActive)
	require.Len(t, records.records, 1)
}

func TestTapInOutsideSchedule(t *testing.T) {
	records := newFakeRecords()
	check := &stubChecker{result: schedule.Result{
		Reason:  "outside scheduled hours; allowed windows today: 07:45-09:15",
		Windows: []string{"07:45-09:15"},
	}}
	e := NewEngine(&fakeDirectory{teachers: activeTeacher()}, records, check, clock.At(monday0750))

	_, err := e.TapIn(context.Background(), "B1", "c1")
	var outside *OutsideScheduleError
	require.ErrorAs(t, err, &outside)
	require.Equal(t, []string{"07:45-09:15"}, outside.Windows)
	require.Empty(t, records.records, "no record may be created on rejection")
}

func TestTapInRaceLosesToStore(t *testing.T) {
	// The pre-check sees no open record, but the store rejects the insert:
	// a racing scan won. The caller still gets AlreadyActive.
	records := newFakeRecords()
	dir := &fakeDirectory{teachers: activeTeacher()}
	e := NewEngine(dir, &racingRecords{inner: records}, &stubChecker{result: validResult()}, clock.At(monday0750))

	_, err := e.TapIn(context.Background(), "B1", "c1")
	require.ErrorIs(t, err, ErrAlreadyActive)
}

type racingRecords struct {
	inner *fakeRecords
}

func (r *racingRecords) FindOpen(context.Context, string, civil.Date) (*Record, error) {
	return nil, nil
}

func (r *racingRecords) CreateOpen(ctx context.Context, rec Record) (Record, error) {
	if _, err := r.inner.CreateOpen(ctx, rec); err != nil {
		return Record{}, err
	}
	return Record{}, ErrDuplicateOpen
}

func (r *racingRecords) Close(ctx context.Context, id string, tapOut time.Time, d int) error {
	return r.inner.Close(ctx, id, tapOut, d)
}

func TestTapOutComputesDuration(t *testing.T) {
	records := newFakeRecords()
	dir := &fakeDirectory{teachers: activeTeacher()}
	check := &stubChecker{result: validResult()}

	in := NewEngine(dir, records, check, clock.At(monday0750))
	_, err := in.TapIn(context.Background(), "B1", "c1")
	require.NoError(t, err)

	// Tap out at 09:05, 75 minutes later.
	out := NewEngine(dir, records, check, clock.At(monday0750.Add(75*time.Minute)))
	res, err := out.TapOut(context.Background(), "B1")
	require.NoError(t, err)
	require.Equal(t, "Maria Santos", res.Teacher)
	require.Equal(t, 75, res.DurationMinutes)

	// The record is closed with the duration stamped.
	open, err := records.FindOpen(context.Background(), "t1", civil.DateOf(monday0750))
	require.NoError(t, err)
	require.Nil(t, open)

	// A second tap-out the same day finds nothing to close.
	_, err = out.TapOut(context.Background(), "B1")
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestTapOutWithoutSession(t *testing.T) {
	e := NewEngine(&fakeDirectory{teachers: activeTeacher()}, newFakeRecords(), &stubChecker{result: validResult()}, clock.At(monday0750))
	_, err := e.TapOut(context.Background(), "B1")
	require.ErrorIs(t, err, ErrNoActiveSession)
}

func TestTapOutUnknownBadge(t *testing.T) {
	e := NewEngine(&fakeDirectory{teachers: map[string]*roster.Teacher{}}, newFakeRecords(), &stubChecker{result: validResult()}, clock.At(monday0750))
	_, err := e.TapOut(context.Background(), "nope")
	require.ErrorIs(t, err, ErrUnknownBadge)
}

func TestNewDateStartsFresh(t *testing.T) {
	records := newFakeRecords()
	dir := &fakeDirectory{teachers: activeTeacher()}
	check := &stubChecker{result: validResult()}

	day1 := NewEngine(dir, records, check, clock.At(monday0750))
	_, err := day1.TapIn(context.Background(), "B1", "c1")
	require.NoError(t, err)

	// Next Monday: yesterday's still-open session does not block a new tap-in.
	day2 := NewEngine(dir, records, check, clock.At(monday0750.AddDate(0, 0, 7)))
	_, err = day2.TapIn(context.Background(), "B1", "c1")
	require.NoError(t, err)
}

func TestStoreErrorsStayDistinguishable(t *testing.T) {
	boom := errors.New("connection refused")
	records := newFakeRecords()
	records.err = boom
	e := NewEngine(&fakeDirectory{teachers: activeTeacher()}, records, &stubChecker{result: validResult()}, clock.At(monday0750))

	_, err := e.TapIn(context.Background(), "B1", "c1")
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, ErrAlreadyActive)
}
