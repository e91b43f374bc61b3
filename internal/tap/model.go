// Package tap implements the attendance session state machine: a scan either
// opens the day's session for a teacher or closes the one that is open.
package tap

import (
	"time"

	"taptrack/internal/civil"
)

// Record is one attendance session. It is created open (no tap-out) and
// mutated exactly once, when the closing scan arrives.
type Record struct {
	ID              string     `json:"id"`
	TeacherID       string     `json:"teacher_id"`
	ClassroomID     string     `json:"classroom_id"`
	Date            civil.Date `json:"date"`
	TapIn           time.Time  `json:"tap_in_time"`
	TapOut          *time.Time `json:"tap_out_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Subject         string     `json:"subject"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Open reports whether the session has not been closed yet.
func (r Record) Open() bool { return r.TapOut == nil }
