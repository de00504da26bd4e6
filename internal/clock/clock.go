// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() directly, code can use the Clock interface which
// can be mocked in tests to control time-dependent behavior.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// Monotonic wraps a Clock so that successive readings are UTC and strictly
// increasing, even when the underlying clock stalls or steps backwards.
// Signature records use it so creation order matches insertion order.
type Monotonic struct {
	base Clock
	mu   sync.Mutex
	last time.Time
}

// NewMonotonic returns a Monotonic reading from base. A nil base uses RealClock.
func NewMonotonic(base Clock) *Monotonic {
	if base == nil {
		base = RealClock{}
	}
	return &Monotonic{base: base}
}

// Now returns the base time, bumped one nanosecond past the previous reading
// when needed.
func (m *Monotonic) Now() time.Time {
	now := m.base.Now().UTC().Round(0)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !now.After(m.last) {
		now = m.last.Add(time.Nanosecond)
	}
	m.last = now
	return now
}

var _ Clock = (*Monotonic)(nil)
