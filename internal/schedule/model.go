// Package schedule holds the class timetable: entries, the overlap check run
// on every schedule write, and the grace-period validator the tap engine
// consults before opening a session.
package schedule

import (
	"fmt"

	"taptrack/internal/civil"
)

// Entry is one recurring class slot: a teacher in a classroom on a weekday.
type Entry struct {
	ID          string          `json:"id"`
	TeacherID   string          `json:"teacher_id"`
	ClassroomID string          `json:"classroom_id"`
	Day         civil.Day       `json:"day"`
	Start       civil.TimeOfDay `json:"start_time"`
	End         civil.TimeOfDay `json:"end_time"`
	Subject     string          `json:"subject"`
	Active      bool            `json:"is_active"`
}

// Window renders the entry's raw slot as "HH:MM-HH:MM".
func (e Entry) Window() string {
	return e.Start.String() + "-" + e.End.String()
}

// Validate checks field-level constraints before persistence.
func (e Entry) Validate() error {
	if e.TeacherID == "" || e.ClassroomID == "" {
		return fmt.Errorf("teacher and classroom required")
	}
	if _, err := civil.ParseDay(string(e.Day)); err != nil {
		return err
	}
	if e.Start >= e.End {
		return fmt.Errorf("start %s must be before end %s", e.Start, e.End)
	}
	if e.Subject == "" {
		return fmt.Errorf("subject required")
	}
	return nil
}
