// Package clock abstracts "run this callback after a duration" so the timer
// driven components can be driven by a real clock, an event loop, or a fake
// clock in tests.
package clock

import "time"

// Timer is a scheduled callback. Stop reports whether the call prevented the
// callback from running. *time.Timer satisfies Timer.
type Timer interface {
	Stop() bool
}

// Scheduler schedules callbacks.
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
}

// Real schedules callbacks on the runtime timer heap. Callbacks run on their
// own goroutine.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
