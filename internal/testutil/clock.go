// Package testutil holds deterministic stand-ins for the sources of
// run-to-run variation in logged renders: render seq numbers, render IDs
// and log output.
package testutil

import "sync"

// DeterministicClock hands out render seq numbers without touching the
// database, so a scenario logged twice gets the same seqs both times.
//
// Thread-safety: All methods are safe for concurrent use.
type DeterministicClock struct {
	mu    sync.Mutex
	start int64
	seq   int64
}

// NewDeterministicClock returns a clock whose first Next is 1.
func NewDeterministicClock() *DeterministicClock {
	return NewDeterministicClockAt(0)
}

// NewDeterministicClockAt returns a clock whose first Next is start+1.
// Reset returns it to start.
func NewDeterministicClockAt(start int64) *DeterministicClock {
	return &DeterministicClock{start: start, seq: start}
}

// Next increments and returns the seq.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the last seq handed out, or the start value.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds to the start value.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = c.start
}
