// Package clock supplies the current time to the tap engine so tests can pin it.
package clock

import "time"

// Clock yields the current timestamp.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// At is shorthand for a Fixed clock pinned to t.
func At(t time.Time) Fixed { return Fixed{T: t} }
