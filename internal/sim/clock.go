package sim

import (
	"fmt"
	"sync"
	"time"
)

// Clock turns wall-clock time into fixed simulation steps. Time that does
// not fill a whole step carries over to the next Advance.
type Clock struct {
	step    time.Duration
	pending time.Duration
	ticks   int64
	elapsed time.Duration
	mu      sync.RWMutex
}

// NewClock creates a clock with the given step.
func NewClock(step time.Duration) *Clock {
	if step <= 0 {
		step = 100 * time.Millisecond
	}
	return &Clock{step: step}
}

// Step returns the simulated duration of one tick.
func (c *Clock) Step() time.Duration { return c.step }

// StepSeconds returns the tick length in seconds, as passed to Tick.
func (c *Clock) StepSeconds() float64 { return c.step.Seconds() }

// Advance adds real time and returns how many steps are now due.
func (c *Clock) Advance(real time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending += real
	n := int(c.pending / c.step)
	c.pending -= time.Duration(n) * c.step
	c.ticks += int64(n)
	c.elapsed += time.Duration(n) * c.step
	return n
}

// Ticks returns the number of steps handed out.
func (c *Clock) Ticks() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ticks
}

// Elapsed returns the simulated time handed out.
func (c *Clock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.elapsed
}

// String returns the elapsed time as mm:ss.t
func (c *Clock) String() string {
	e := c.Elapsed()
	minutes := int(e / time.Minute)
	seconds := (e % time.Minute).Seconds()
	return fmt.Sprintf("%02d:%04.1f", minutes, seconds)
}
