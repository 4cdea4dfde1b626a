// Package clock provides the time source used for backup names, report
// timestamps and audit records. Production code uses Real; tests inject a
// Mock so file names and report documents are deterministic.
package clock

import (
	"sync"
	"time"
)

// StampLayout names backup files and saved reports. The nanosecond field
// keeps stamps strictly ordered for edits made within the same second.
const StampLayout = "20060102-150405.000000000"

// Clock is the interface for time operations.
type Clock interface {
	Now() time.Time
}

// Real provides the actual system time.
type Real struct{}

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// Mock is a test clock with controllable time.
type Mock struct {
	mu      sync.RWMutex
	current time.Time
	step    time.Duration
}

// NewMock creates a mock clock set to t.
func NewMock(t time.Time) *Mock {
	return &Mock{current: t}
}

// NewTicking creates a mock clock that advances by step after every Now call.
func NewTicking(t time.Time, step time.Duration) *Mock {
	return &Mock{current: t, step: step}
}

// Now returns the mock time.
func (c *Mock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Set sets the mock time.
func (c *Mock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
}

// Advance advances the mock time by d.
func (c *Mock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}

// Or returns c, or Real when c is nil.
func Or(c Clock) Clock {
	if c == nil {
		return Real{}
	}
	return c
}

// Stamp formats t with StampLayout in UTC.
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}
