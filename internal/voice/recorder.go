package voice

import "sync"

// Record is one trigger captured with the frame offset at which it fired.
type Record struct {
	Frame   uint64
	Trigger Trigger
}

// Recorder is a silent Voice that logs every trigger. It advances its frame
// counter on Render so each record carries the sample position it fired at.
//
// Thread-safety: safe for concurrent use, though the scheduler only ever
// calls it from one goroutine.
type Recorder struct {
	mu      sync.Mutex
	frame   uint64
	records []Record
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Trigger records tr at the current frame.
func (r *Recorder) Trigger(tr Trigger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, Record{Frame: r.frame, Trigger: tr})
}

// Render advances the frame counter; the recorder contributes no audio.
func (r *Recorder) Render(left, right []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame += uint64(len(left))
}

// Records returns a copy of everything recorded so far.
func (r *Recorder) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}

// Frames returns the number of frames rendered so far.
func (r *Recorder) Frames() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame
}
