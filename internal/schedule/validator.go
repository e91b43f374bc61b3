package schedule

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"taptrack/internal/civil"
)

// DefaultGraceMinutes is how far outside a scheduled slot a tap-in is still
// accepted, on both sides.
const DefaultGraceMinutes = 15

// EntrySource is read access to active schedule entries for one teacher,
// classroom, and weekday.
type EntrySource interface {
	ActiveFor(ctx context.Context, teacherID, classroomID string, day civil.Day) ([]Entry, error)
}

// Result is the validator's decision for a single tap-in attempt.
type Result struct {
	Valid   bool
	Matched *Entry
	Reason  string
	// Windows lists the day's grace-extended windows for diagnostic display,
	// populated only when no window matched.
	Windows []string
}

// Validator decides whether a tap-in falls inside a grace-extended class slot.
// It is deterministic: same inputs and same schedule rows, same answer.
type Validator struct {
	src   EntrySource
	grace int
}

// NewValidator builds a validator with the given grace period in minutes.
func NewValidator(src EntrySource, graceMinutes int) *Validator {
	if graceMinutes < 0 {
		graceMinutes = DefaultGraceMinutes
	}
	return &Validator{src: src, grace: graceMinutes}
}

// Validate checks tod against every active entry for the teacher, classroom
// and day. The effective window is [start-grace, end+grace], inclusive on
// both ends. When several windows contain tod the entry with the earliest
// start wins; repository row order never decides.
func (v *Validator) Validate(ctx context.Context, teacherID, classroomID string, day civil.Day, tod civil.TimeOfDay) (Result, error) {
	entries, err := v.src.ActiveFor(ctx, teacherID, classroomID, day)
	if err != nil {
		return Result{}, fmt.Errorf("load schedule: %w", err)
	}
	if len(entries) == 0 {
		return Result{Reason: "no schedule for this day in this classroom"}, nil
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Start < entries[j].Start })

	windows := make([]string, 0, len(entries))
	for i := range entries {
		lo := entries[i].Start.Add(-v.grace)
		hi := entries[i].End.Add(v.grace)
		if tod >= lo && tod <= hi {
			return Result{Valid: true, Matched: &entries[i]}, nil
		}
		windows = append(windows, lo.String()+"-"+hi.String())
	}

	return Result{
		Reason:  fmt.Sprintf("outside scheduled hours; allowed windows today: %s", strings.Join(windows, ", ")),
		Windows: windows,
	}, nil
}
