// Package civil holds the calendar value types the attendance core works in:
// a time zone-free time of day, a calendar date, and a day of week. Taps enter
// as wall-clock timestamps and are split into these before any comparison, so
// schedule arithmetic never goes through string parsing.
package civil

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimeOfDay is a time of day expressed as minutes since midnight.
// It is a plain int so window comparisons are ordinary integer comparisons;
// values outside [0, 1440) can appear transiently (a grace window extending
// past midnight) and compare correctly.
type TimeOfDay int

const MinutesPerDay = 24 * 60

// ParseTimeOfDay parses "HH:MM" (the persisted schedule format).
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return TimeOfDay(h*60 + m), nil
}

// TimeOfDayOf extracts the time of day from a timestamp in its own location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay(t.Hour()*60 + t.Minute())
}

// String renders "HH:MM", clamping out-of-day values for display.
func (t TimeOfDay) String() string {
	if t < 0 {
		t = 0
	}
	if t >= MinutesPerDay {
		t = MinutesPerDay - 1
	}
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Add returns the time shifted by the given number of minutes.
func (t TimeOfDay) Add(minutes int) TimeOfDay { return t + TimeOfDay(minutes) }

// MarshalJSON renders the wire form "HH:MM".
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

// UnmarshalJSON parses the wire form "HH:MM".
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Date is a calendar date without time or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf extracts the calendar date from a timestamp in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses "YYYY-MM-DD" (the persisted record format).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// String renders "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// MarshalJSON renders the wire form "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON parses the wire form "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Day is a day of week. The persisted form is the full English name
// ("Monday"), matching the schedule rows.
type Day string

const (
	Monday    Day = "Monday"
	Tuesday   Day = "Tuesday"
	Wednesday Day = "Wednesday"
	Thursday  Day = "Thursday"
	Friday    Day = "Friday"
	Saturday  Day = "Saturday"
	Sunday    Day = "Sunday"
)

// DayOf extracts the day of week from a timestamp in its own location.
func DayOf(t time.Time) Day { return Day(t.Weekday().String()) }

// ParseDay validates a persisted day-of-week value.
func ParseDay(s string) (Day, error) {
	switch Day(s) {
	case Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday:
		return Day(s), nil
	}
	return "", fmt.Errorf("invalid day of week %q", s)
}
