// Package timeline exports a rendered composition as a fixed-layout text
// document and reads such documents back.
//
// The document is the sidecar consumed by visual renderers: it carries the
// tempo grid and every event, so audio-reactive signals can be computed per
// frame without re-running the composition.
package timeline

import (
	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/ir"
)

// Timeline is the in-memory form of an interchange document.
//
// A parsed Timeline owns its Steps, Beats and Events slices until Release.
type Timeline struct {
	Seed         uint64
	SampleRate   uint32
	BPM          float64
	StepSamples  uint32
	TotalSamples uint32

	Steps  []uint32
	Beats  []uint32
	Events []ir.Event

	released bool
}

// FromComposition captures a composition's header, grid and queued events.
// The composition need not have been rendered; the export covers the whole
// queue either way.
func FromComposition(c *engine.Composition) *Timeline {
	clock := c.Clock()
	return &Timeline{
		Seed:         c.Seed(),
		SampleRate:   clock.SampleRate,
		BPM:          clock.BPM,
		StepSamples:  clock.StepSamples,
		TotalSamples: clock.SegmentFrames,
		Steps:        clock.Steps(),
		Beats:        clock.Beats(),
		Events:       c.Queue().Events(),
	}
}

// Release drops the three arrays. Safe to call more than once and on nil.
func (tl *Timeline) Release() {
	if tl == nil || tl.released {
		return
	}
	tl.Steps = nil
	tl.Beats = nil
	tl.Events = nil
	tl.released = true
}

// Released reports whether Release has been called.
func (tl *Timeline) Released() bool {
	return tl != nil && tl.released
}

// Seconds converts a sample offset to seconds at the timeline's rate.
func (tl *Timeline) Seconds(sample uint32) float64 {
	if tl.SampleRate == 0 {
		return 0
	}
	return float64(sample) / float64(tl.SampleRate)
}

// Duration returns the segment length in seconds.
func (tl *Timeline) Duration() float64 {
	return tl.Seconds(tl.TotalSamples)
}

// Count returns the number of events of type t.
func (tl *Timeline) Count(t ir.EventType) int {
	n := 0
	for _, ev := range tl.Events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

// Hash returns the content hash of an encoded document.
func Hash(doc []byte) string {
	return ir.HashWithDomain(ir.DomainTimeline, doc)
}
