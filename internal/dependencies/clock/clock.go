package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock, reported in a fixed location
type RealClock struct {
	loc *time.Location
}

// New creates a RealClock reporting local time
func New() *RealClock {
	return &RealClock{loc: time.Local}
}

// NewIn creates a RealClock reporting time in loc
func NewIn(loc *time.Location) *RealClock {
	if loc == nil {
		loc = time.Local
	}
	return &RealClock{loc: loc}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns midnight of the current calendar day of c
func Today(c Clock) time.Time {
	now := c.Now()
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}
