// Package clock provides the time source used by every token manager.
//
// Services hold a Clock so that expiry arithmetic is testable; the managers
// themselves additionally take explicit `now` parameters so a single external
// call observes one consistent instant end to end.
package clock

import (
	"sync"
	"time"
)

// Clock is the current-time source.
type Clock interface {
	Now() time.Time
}

// System reads the wall clock in UTC.
type System struct{}

func (System) Now() time.Time { return time.Now().UTC() }

// Fixed always returns the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time { return f.T }

// Mutable is a settable clock for tests that need to move time forward.
type Mutable struct {
	mu sync.Mutex
	t  time.Time
}

// NewMutable returns a Mutable clock starting at t.
func NewMutable(t time.Time) *Mutable {
	return &Mutable{t: t}
}

func (m *Mutable) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.t
}

// Set moves the clock to t.
func (m *Mutable) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = t
}

// Advance moves the clock forward by d.
func (m *Mutable) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.t = m.t.Add(d)
}
