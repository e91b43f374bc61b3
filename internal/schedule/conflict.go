package schedule

import "fmt"

// Overlaps reports whether two entries contend for the same classroom slot.
// Slots are half-open [start, end): back-to-back entries where one ends
// exactly when the other starts do not overlap. The check is symmetric.
func Overlaps(a, b Entry) bool {
	if a.ClassroomID != b.ClassroomID || a.Day != b.Day {
		return false
	}
	return a.Start < b.End && b.Start < a.End
}

// FindConflict returns the first active entry the candidate collides with,
// or nil. The candidate's own row is skipped so updates don't conflict with
// themselves; inactive rows never participate.
func FindConflict(candidate Entry, existing []Entry) *Entry {
	for i := range existing {
		if !existing[i].Active || existing[i].ID == candidate.ID {
			continue
		}
		if Overlaps(candidate, existing[i]) {
			return &existing[i]
		}
	}
	return nil
}

// ConflictError reports which existing entry a schedule write collides with.
type ConflictError struct {
	Existing Entry
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schedule conflict with entry %s (%s %s)",
		e.Existing.ID, e.Existing.Day, e.Existing.Window())
}
