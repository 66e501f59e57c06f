package store

import (
	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/voice"
)

// Render is one logged composition render.
type Render struct {
	ID              string
	Seq             int64
	Seed            uint64
	Label           string
	BPM             float64
	SampleRate      uint32
	StepSamples     uint32
	TotalSamples    uint32
	EventCount      int
	Frames          uint64
	Truncated       bool
	DocHash         string
	Document        []byte
	Meta            ir.Object
	EngineVersion   string
	TimelineVersion string
}

// RenderFrom fills the render fields derived from a composition and its
// exported document. ID, Seq, Label and Meta are left to the caller.
func RenderFrom(c *engine.Composition, doc []byte) Render {
	clock := c.Clock()
	return Render{
		Seed:            c.Seed(),
		BPM:             clock.BPM,
		SampleRate:      clock.SampleRate,
		StepSamples:     clock.StepSamples,
		TotalSamples:    clock.SegmentFrames,
		EventCount:      c.Queue().Len(),
		Frames:          c.Scheduler().Frame(),
		Truncated:       c.Truncated(),
		DocHash:         ir.HashWithDomain(ir.DomainTimeline, doc),
		Document:        doc,
		EngineVersion:   ir.EngineVersion,
		TimelineVersion: ir.TimelineVersion,
	}
}

// Trigger is one logged voice trigger.
type Trigger struct {
	Index     int
	Frame     uint64
	Step      uint32
	Type      ir.EventType
	Kind      string
	Aux       uint8
	Frequency float64
	Duration  float64
	Waveform  string
	Preset    string
	Velocity  uint8
}

// TriggersFromRecords converts recorder output into log rows. stepSamples
// maps each frame back to its step.
func TriggersFromRecords(records []voice.Record, stepSamples uint32) []Trigger {
	out := make([]Trigger, len(records))
	for i, r := range records {
		var step uint32
		if stepSamples > 0 {
			step = uint32(r.Frame / uint64(stepSamples))
		}
		tr := r.Trigger
		out[i] = Trigger{
			Index:     i,
			Frame:     r.Frame,
			Step:      step,
			Type:      tr.Event.Type,
			Kind:      tr.Kind.String(),
			Aux:       tr.Event.Aux,
			Frequency: tr.Frequency,
			Duration:  tr.Duration,
			Waveform:  waveformName(tr.Style.Waveform),
			Preset:    tr.Style.FM.Name,
			Velocity:  tr.Style.Velocity,
		}
	}
	return out
}

func waveformName(w voice.Waveform) string {
	if w == voice.WaveNone {
		return ""
	}
	return w.String()
}
