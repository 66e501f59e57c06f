package music

import (
	"math"

	"github.com/roach88/deafbeat/internal/ir"
)

// Clock converts tempo and sample rate into step, beat and segment sample
// counts. Computed once per composition; immutable afterwards.
type Clock struct {
	BPM           float64
	SampleRate    uint32
	BeatSec       float64
	StepSamples   uint32
	StepSec       float64
	SegmentFrames uint32
}

// NewClock derives the clock for bpm at sampleRate.
func NewClock(bpm float64, sampleRate uint32) Clock {
	beatSec := 60.0 / bpm
	stepSamples := uint32(math.Round(float64(sampleRate) * beatSec / float64(ir.StepsPerBeat)))
	return Clock{
		BPM:           bpm,
		SampleRate:    sampleRate,
		BeatSec:       beatSec,
		StepSamples:   stepSamples,
		StepSec:       float64(stepSamples) / float64(sampleRate),
		SegmentFrames: ir.TotalSteps * stepSamples,
	}
}

// StepStart returns the first sample of step.
func (c Clock) StepStart(step uint32) uint32 {
	return step * c.StepSamples
}

// BeatStart returns the first sample of beat.
func (c Clock) BeatStart(beat uint32) uint32 {
	return beat * ir.StepsPerBeat * c.StepSamples
}

// Steps returns the starting sample of every step in the segment.
func (c Clock) Steps() []uint32 {
	out := make([]uint32, ir.TotalSteps)
	for s := range out {
		out[s] = c.StepStart(uint32(s))
	}
	return out
}

// Beats returns the starting sample of every beat in the segment.
func (c Clock) Beats() []uint32 {
	out := make([]uint32, ir.TotalBeats)
	for b := range out {
		out[b] = c.BeatStart(uint32(b))
	}
	return out
}

// Seconds converts a sample offset to seconds.
func (c Clock) Seconds(sample uint32) float64 {
	return float64(sample) / float64(c.SampleRate)
}
