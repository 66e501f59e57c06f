package engine

import (
	"log/slog"
	"math"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/music"
	"github.com/roach88/deafbeat/internal/rng"
	"github.com/roach88/deafbeat/internal/voice"
)

// midGain and midDecay shape the simple-waveform mid voice.
const (
	midGain  = 0.2
	midDecay = 6.0
)

var midWaveforms = [...]voice.Waveform{voice.WaveTriangle, voice.WaveSine, voice.WaveSquare}

// Scheduler walks the segment sample by sample and dispatches queued events
// at step boundaries.
//
// Dispatch happens only when posInStep is zero. At that point every event at
// the cursor whose time equals the step's first sample is dispatched and the
// cursor advanced; the scan stops at the first mismatch. Events beyond the
// rendered range are never reached, and a drained queue dispatches nothing.
//
// The draw source is explicit so that the melody, mid and bass draws follow
// the parameter draws on the same stream.
type Scheduler struct {
	clock  music.Clock
	params music.Params
	queue  *Queue
	draw   rng.Drawer
	bank   *voice.Bank

	step      uint32
	posInStep uint32
	frame     uint64

	melodyHit  bool
	bassHit    bool
	dispatched int
}

// NewScheduler creates a scheduler positioned at step 0.
func NewScheduler(clock music.Clock, params music.Params, queue *Queue, draw rng.Drawer, bank *voice.Bank) *Scheduler {
	return &Scheduler{
		clock:  clock,
		params: params,
		queue:  queue,
		draw:   draw,
		bank:   bank,
	}
}

// Process renders len(left) frames into left and right, dispatching events
// as step boundaries are crossed. right must be at least as long as left.
func (s *Scheduler) Process(left, right []float32) {
	n := uint32(len(left))
	if s.clock.StepSamples == 0 {
		return
	}
	for off := uint32(0); off < n; {
		if s.posInStep == 0 {
			s.triggerStep()
		}
		chunk := s.clock.StepSamples - s.posInStep
		if rest := n - off; chunk > rest {
			chunk = rest
		}
		s.bank.Render(left[off:off+chunk], right[off:off+chunk])
		off += chunk
		s.frame += uint64(chunk)
		s.posInStep += chunk
		if s.posInStep == s.clock.StepSamples {
			s.posInStep = 0
			s.step++
		}
	}
}

func (s *Scheduler) triggerStep() {
	s.melodyHit = false
	s.bassHit = false

	start := uint64(s.step) * uint64(s.clock.StepSamples)
	for {
		ev, ok := s.queue.Peek()
		if !ok || uint64(ev.Time) != start {
			return
		}
		s.dispatch(ev)
		s.queue.Advance()
	}
}

func (s *Scheduler) dispatch(ev ir.Event) {
	root := s.params.Root()
	scale := s.params.Scale()
	tr := voice.Trigger{Event: ev, Style: voice.Style{Velocity: ev.Aux}}

	switch ev.Type {
	case ir.EventKick:
		tr.Kind = voice.KindKick
	case ir.EventSnare:
		tr.Kind = voice.KindSnare
	case ir.EventHat:
		tr.Kind = voice.KindHat
	case ir.EventMelody:
		tr.Kind = voice.KindMelody
		tr.Frequency = melodyFrequency(root, scale, ev.Aux, s.draw)
		tr.Duration = s.clock.BeatSec
		s.melodyHit = true
	case ir.EventMid:
		deg := scale[rng.IntN(s.draw, len(scale))]
		tr.Frequency = root * math.Pow(2, float64(deg)/12+1)
		if ev.Aux < uint8(len(midWaveforms)) {
			tr.Kind = voice.KindMidSimple
			tr.Duration = s.clock.StepSec
			tr.Style.Waveform = midWaveforms[ev.Aux]
			tr.Style.Gain = midGain
			tr.Style.Decay = midDecay
		} else {
			p := voice.MidPresets[int(ev.Aux-3)%len(voice.MidPresets)]
			tr.Kind = voice.KindMidFM
			tr.Duration = s.clock.StepSec + 1/float64(s.clock.SampleRate)
			tr.Style.FM = p
			tr.Style.Gain = p.Amp
			tr.Style.Decay = p.Decay
		}
	case ir.EventBass:
		deg := scale[rng.IntN(s.draw, len(scale))]
		p := voice.BassPresets[rng.IntN(s.draw, len(voice.BassPresets))]
		tr.Kind = voice.KindBass
		tr.Frequency = root / 4 * math.Pow(2, float64(deg)/12)
		tr.Duration = 2 * s.clock.BeatSec
		tr.Style.FM = p
		tr.Style.Gain = p.Amp
		tr.Style.Decay = p.Decay
		s.bassHit = true
	default:
		slog.Debug("skipping unknown event type", "time", ev.Time, "type", ev.Type.String())
		return
	}

	s.dispatched++
	slog.Debug("trigger",
		"step", s.step,
		"type", ev.Type.String(),
		"aux", ev.Aux,
		"freq", tr.Frequency,
	)
	s.bank.Dispatch(tr)
}

// melodyFrequency maps the melody aux code to a pitch. Codes 1 and 3 draw a
// non-root scale degree; unknown codes play the root without drawing.
func melodyFrequency(root float64, scale music.Scale, aux uint8, draw rng.Drawer) float64 {
	switch aux {
	case 0, 2:
		return root * 4
	case 1:
		deg := scale[rng.IntN(draw, len(scale)-1)+1]
		return root * math.Pow(2, float64(deg)/12+1)
	case 3:
		deg := scale[rng.IntN(draw, len(scale)-1)+1]
		return root * math.Pow(2, float64(deg)/12)
	default:
		return root
	}
}

// Step returns the current step index.
func (s *Scheduler) Step() uint32 { return s.step }

// PosInStep returns the sample offset within the current step.
func (s *Scheduler) PosInStep() uint32 { return s.posInStep }

// Frame returns the number of frames processed.
func (s *Scheduler) Frame() uint64 { return s.frame }

// MelodyHit reports whether the most recently triggered step dispatched a
// melody event.
func (s *Scheduler) MelodyHit() bool { return s.melodyHit }

// BassHit reports whether the most recently triggered step dispatched a bass
// event.
func (s *Scheduler) BassHit() bool { return s.bassHit }

// Dispatched returns the number of triggers sent to the bank.
func (s *Scheduler) Dispatched() int { return s.dispatched }
