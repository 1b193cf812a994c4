package timectrl

import (
	"sync"
	"time"
)

// Clock supplies timestamps for mission bookkeeping (creation, last
// modification, evaluation and iteration times).
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// SystemClock reads wall-clock time in UTC.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Default returns the clock used when callers do not inject one.
func Default() Clock { return SystemClock{} }

// ManualClock is a Clock that only moves when told to. Each call to Now
// advances it by Step, so successive timestamps stay distinct.
type ManualClock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration

	listeners []func(time.Time)
}

// NewManualClock constructs a clock starting at start.
func NewManualClock(start time.Time, step time.Duration) *ManualClock {
	return &ManualClock{current: start, Step: step}
}

// Now implements Clock.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	now := c.current
	c.current = c.current.Add(c.Step)
	c.mu.Unlock()
	return now
}

// Peek returns the current time without advancing.
func (c *ManualClock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance moves the clock forward by d and notifies listeners.
func (c *ManualClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	now := c.current
	listeners := append([]func(time.Time){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(now)
	}
	return now
}

// Set jumps the clock to t and notifies listeners.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	listeners := append([]func(time.Time){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
}

// AddListener registers a callback invoked whenever the clock is moved
// explicitly via Advance or Set.
func (c *ManualClock) AddListener(fn func(time.Time)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}
