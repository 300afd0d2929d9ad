// Package common provides small shared utilities.
package common

import (
	"fmt"
	"time"
)

// Timer measures the duration of an operation, optionally under a name.
type Timer struct {
	start    time.Time
	name     string
	duration time.Duration
}

// NewTimer starts an unnamed timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// NewNamedTimer starts a timer with the given name.
func NewNamedTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// Stop records and returns the elapsed duration.
func (t *Timer) Stop() time.Duration {
	t.duration = time.Since(t.start)
	return t.duration
}

// Duration returns the recorded duration, valid after Stop.
func (t *Timer) Duration() time.Duration {
	return t.duration
}

// Name returns the timer name, empty if unnamed.
func (t *Timer) Name() string {
	return t.name
}

// String formats the timer as "name: duration" or just the duration.
func (t *Timer) String() string {
	if t.name != "" {
		return fmt.Sprintf("%s: %v", t.name, t.duration)
	}
	return fmt.Sprintf("%v", t.duration)
}
