package engine

import "github.com/roach88/deafbeat/internal/ir"

// DefaultMaxEvents is the default queue capacity. A full segment of the
// densest pattern set holds far fewer events.
const DefaultMaxEvents = 512

// Queue is the fixed-capacity, append-only event queue of one composition.
//
// INVARIANTS:
//   - Events are non-decreasing in Time; Push rejects anything earlier.
//   - Len never exceeds the capacity; overflow is dropped and counted.
//   - The cursor only moves forward and never passes Len.
//
// Not safe for concurrent use. The scheduler is its only reader.
type Queue struct {
	events  []ir.Event
	cursor  int
	dropped int
}

// NewQueue creates an empty queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity < 0 {
		capacity = 0
	}
	return &Queue{events: make([]ir.Event, 0, capacity)}
}

// Push appends ev. It returns false, and counts the event as dropped, when
// the queue is full or ev would break time ordering.
func (q *Queue) Push(ev ir.Event) bool {
	if len(q.events) == cap(q.events) {
		q.dropped++
		return false
	}
	if n := len(q.events); n > 0 && ev.Time < q.events[n-1].Time {
		q.dropped++
		return false
	}
	q.events = append(q.events, ev)
	return true
}

// Peek returns the event at the cursor.
func (q *Queue) Peek() (ir.Event, bool) {
	if q.cursor >= len(q.events) {
		return ir.Event{}, false
	}
	return q.events[q.cursor], true
}

// Advance moves the cursor past the current event. It is a no-op at the end.
func (q *Queue) Advance() {
	if q.cursor < len(q.events) {
		q.cursor++
	}
}

// Cursor returns the index of the next event to dispatch.
func (q *Queue) Cursor() int { return q.cursor }

// Len returns the number of queued events.
func (q *Queue) Len() int { return len(q.events) }

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return cap(q.events) }

// Dropped returns how many pushes were rejected.
func (q *Queue) Dropped() int { return q.dropped }

// Events returns a copy of the queued events in order.
func (q *Queue) Events() []ir.Event {
	out := make([]ir.Event, len(q.events))
	copy(out, q.events)
	return out
}
