package engine

// DefaultMaxFrames bounds the frames a single Render may produce. The
// longest segment, at the slowest tempo, fits inside it.
const DefaultMaxFrames = 424000

// FrameQuota hands out frames against a fixed budget. Each composition gets
// its own quota; once exhausted, further requests are granted zero frames.
//
// Exhaustion is a silent truncation: events past the last rendered frame
// are simply never dispatched.
type FrameQuota struct {
	limit uint64
	used  uint64
}

// NewFrameQuota creates a quota of limit frames.
func NewFrameQuota(limit uint64) *FrameQuota {
	return &FrameQuota{limit: limit}
}

// Take grants up to n frames and returns how many were granted.
func (q *FrameQuota) Take(n uint64) uint64 {
	remaining := q.limit - q.used
	if n > remaining {
		n = remaining
	}
	q.used += n
	return n
}

// Used returns the frames granted so far.
func (q *FrameQuota) Used() uint64 { return q.used }

// Limit returns the budget.
func (q *FrameQuota) Limit() uint64 { return q.limit }

// Remaining returns the frames still available.
func (q *FrameQuota) Remaining() uint64 { return q.limit - q.used }

// Exhausted reports whether the budget is spent.
func (q *FrameQuota) Exhausted() bool { return q.used >= q.limit }
