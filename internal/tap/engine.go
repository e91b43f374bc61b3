package tap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"taptrack/internal/civil"
	"taptrack/internal/clock"
	"taptrack/internal/observability"
	"taptrack/internal/roster"
	"taptrack/internal/schedule"
)

// TeacherDirectory resolves badges to teachers.
type TeacherDirectory interface {
	TeacherByBadge(ctx context.Context, badgeID string) (*roster.Teacher, error)
}

// RecordStore persists attendance records. CreateOpen must reject a second
// open record for the same teacher and date atomically (unique constraint or
// equivalent) and return ErrDuplicateOpen when it does.
type RecordStore interface {
	FindOpen(ctx context.Context, teacherID string, date civil.Date) (*Record, error)
	CreateOpen(ctx context.Context, rec Record) (Record, error)
	Close(ctx context.Context, id string, tapOut time.Time, durationMinutes int) error
}

// WindowChecker is the grace-period validator's contract.
type WindowChecker interface {
	Validate(ctx context.Context, teacherID, classroomID string, day civil.Day, tod civil.TimeOfDay) (schedule.Result, error)
}

// Engine orchestrates tap-in and tap-out. It holds no state of its own beyond
// the injected collaborators; per (teacher, date) the session moves
// none -> open -> closed, and a new date starts over at none.
type Engine struct {
	teachers TeacherDirectory
	records  RecordStore
	windows  WindowChecker
	clock    clock.Clock
}

// NewEngine wires the engine.
func NewEngine(teachers TeacherDirectory, records RecordStore, windows WindowChecker, clk clock.Clock) *Engine {
	if clk == nil {
		clk = clock.System{}
	}
	return &Engine{teachers: teachers, records: records, windows: windows, clock: clk}
}

// TapInResult reports a successful session open.
type TapInResult struct {
	RecordID string
	Teacher  string
	Subject  string
	Time     time.Time
}

// TapOutResult reports a successful session close.
type TapOutResult struct {
	RecordID        string
	Teacher         string
	DurationMinutes int
	Time            time.Time
}

// TapIn opens today's session for the badge holder, provided no session is
// open yet and the scan falls inside a grace-extended schedule window for
// this classroom.
func (e *Engine) TapIn(ctx context.Context, badgeID, classroomID string) (TapInResult, error) {
	teacher, err := e.teachers.TeacherByBadge(ctx, badgeID)
	if err != nil {
		observability.TapIns.WithLabelValues("store_error").Inc()
		return TapInResult{}, fmt.Errorf("resolve badge: %w", err)
	}
	if teacher == nil || !teacher.Active {
		observability.TapIns.WithLabelValues("unknown_badge").Inc()
		return TapInResult{}, ErrUnknownBadge
	}

	now := e.clock.Now()
	date := civil.DateOf(now)

	open, err := e.records.FindOpen(ctx, teacher.ID, date)
	if err != nil {
		observability.TapIns.WithLabelValues("store_error").Inc()
		return TapInResult{}, fmt.Errorf("find open session: %w", err)
	}
	if open != nil {
		observability.TapIns.WithLabelValues("already_active").Inc()
		return TapInResult{}, ErrAlreadyActive
	}

	res, err := e.windows.Validate(ctx, teacher.ID, classroomID, civil.DayOf(now), civil.TimeOfDayOf(now))
	if err != nil {
		observability.TapIns.WithLabelValues("store_error").Inc()
		return TapInResult{}, err
	}
	if !res.Valid {
		observability.TapIns.WithLabelValues("outside_schedule").Inc()
		return TapInResult{}, &OutsideScheduleError{Reason: res.Reason, Windows: res.Windows}
	}

	created, err := e.records.CreateOpen(ctx, Record{
		TeacherID:   teacher.ID,
		ClassroomID: classroomID,
		Date:        date,
		TapIn:       now,
		Subject:     res.Matched.Subject,
	})
	if err != nil {
		// The store's uniqueness rejection wins over our pre-check: a racing
		// scan got there first.
		if errors.Is(err, ErrDuplicateOpen) {
			observability.TapIns.WithLabelValues("already_active").Inc()
			return TapInResult{}, ErrAlreadyActive
		}
		observability.TapIns.WithLabelValues("store_error").Inc()
		return TapInResult{}, fmt.Errorf("create session: %w", err)
	}

	observability.TapIns.WithLabelValues("ok").Inc()
	return TapInResult{
		RecordID: created.ID,
		Teacher:  teacher.Name,
		Subject:  created.Subject,
		Time:     now,
	}, nil
}

// TapOut closes today's open session for the badge holder. Any open session
// may be closed at any time; no schedule validation applies on the way out.
func (e *Engine) TapOut(ctx context.Context, badgeID string) (TapOutResult, error) {
	teacher, err := e.teachers.TeacherByBadge(ctx, badgeID)
	if err != nil {
		observability.TapOuts.WithLabelValues("store_error").Inc()
		return TapOutResult{}, fmt.Errorf("resolve badge: %w", err)
	}
	if teacher == nil || !teacher.Active {
		observability.TapOuts.WithLabelValues("unknown_badge").Inc()
		return TapOutResult{}, ErrUnknownBadge
	}

	now := e.clock.Now()

	open, err := e.records.FindOpen(ctx, teacher.ID, civil.DateOf(now))
	if err != nil {
		observability.TapOuts.WithLabelValues("store_error").Inc()
		return TapOutResult{}, fmt.Errorf("find open session: %w", err)
	}
	if open == nil {
		observability.TapOuts.WithLabelValues("no_active_session").Inc()
		return TapOutResult{}, ErrNoActiveSession
	}

	duration := int(math.Round(now.Sub(open.TapIn).Minutes()))
	if err := e.records.Close(ctx, open.ID, now, duration); err != nil {
		observability.TapOuts.WithLabelValues("store_error").Inc()
		return TapOutResult{}, fmt.Errorf("close session: %w", err)
	}

	observability.TapOuts.WithLabelValues("ok").Inc()
	return TapOutResult{
		RecordID:        open.ID,
		Teacher:         teacher.Name,
		DurationMinutes: duration,
		Time:            now,
	}, nil
}
