package engine

import "time"

// Clock supplies the current time to the engine.  Wait estimates are pure
// functions of join time and position, so injecting a clock makes the
// countdown and notification latch testable without wall-clock sleeps.
type Clock interface {
	Now() time.Time
}

// systemClock is the production Clock backed by time.Now in UTC.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall-clock Clock used outside of tests.
func SystemClock() Clock { return systemClock{} }
