package tap

import "errors"

// Domain failures. Each is a pure decision with no partial write behind it;
// callers map them to user-facing messages, repository failures stay wrapped
// and distinguishable so callers can suggest retrying instead of re-scanning.
var (
	// ErrUnknownBadge: the badge resolves to no teacher, or to an inactive one.
	ErrUnknownBadge = errors.New("badge does not match an active teacher")
	// ErrAlreadyActive: a tap-in arrived while today's session is still open.
	ErrAlreadyActive = errors.New("already tapped in today")
	// ErrNoActiveSession: a tap-out arrived with nothing to close.
	ErrNoActiveSession = errors.New("no active session found for today")
	// ErrDuplicateOpen is the record store's rejection of a second open row
	// for the same teacher and date. It is the authoritative signal for the
	// tap-in race and surfaces to callers as ErrAlreadyActive.
	ErrDuplicateOpen = errors.New("open session already recorded")
)

// OutsideScheduleError rejects a tap-in that falls outside every
// grace-extended window, carrying the day's windows for display.
type OutsideScheduleError struct {
	Reason  string
	Windows []string
}

func (e *OutsideScheduleError) Error() string { return e.Reason }
