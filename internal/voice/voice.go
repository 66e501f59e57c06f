// Package voice defines the boundary between the scheduler and the synthesis
// voices. Per-sample DSP lives behind the Voice interface; the engine only
// triggers voices and later pulls their mixed output.
package voice

import (
	"fmt"

	"github.com/roach88/deafbeat/internal/ir"
)

// Waveform selects the oscillator of the simple mid voice.
type Waveform uint8

const (
	WaveNone Waveform = iota
	WaveTriangle
	WaveSine
	WaveSquare
)

func (w Waveform) String() string {
	switch w {
	case WaveTriangle:
		return "triangle"
	case WaveSine:
		return "sine"
	case WaveSquare:
		return "square"
	default:
		return "none"
	}
}

// Kind names the bank slot a trigger is routed to.
type Kind uint8

const (
	KindKick Kind = iota
	KindSnare
	KindHat
	KindMelody
	KindMidSimple
	KindMidFM
	KindBass
)

var kindNames = [...]string{"kick", "snare", "hat", "melody", "mid_simple", "mid_fm", "bass"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// Style carries the per-trigger shaping parameters. Unused fields are zero.
type Style struct {
	Waveform Waveform
	FM       Preset
	Gain     float64
	Decay    float64
	Velocity uint8
}

// Trigger is one fire-and-forget voice activation.
type Trigger struct {
	Kind      Kind
	Event     ir.Event
	Frequency float64 // Hz; zero for unpitched percussion
	Duration  float64 // seconds; zero lets the voice pick its own envelope
	Style     Style
}

// Voice is a synthesis unit. Trigger starts an envelope; Render adds
// len(left) frames of output to left and right.
type Voice interface {
	Trigger(tr Trigger)
	Render(left, right []float32)
}

// Bank holds one voice per slot. Nil slots are silent, and a nil *Bank
// drops every trigger.
type Bank struct {
	Kick      Voice
	Snare     Voice
	Hat       Voice
	Melody    Voice
	MidSimple Voice
	MidFM     Voice
	Bass      Voice
}

// Shared builds a bank that routes every slot to v.
func Shared(v Voice) *Bank {
	return &Bank{Kick: v, Snare: v, Hat: v, Melody: v, MidSimple: v, MidFM: v, Bass: v}
}

func (b *Bank) slots() [7]Voice {
	return [7]Voice{b.Kick, b.Snare, b.Hat, b.Melody, b.MidSimple, b.MidFM, b.Bass}
}

// Dispatch sends tr to the voice in its slot.
func (b *Bank) Dispatch(tr Trigger) {
	if b == nil {
		return
	}
	slots := b.slots()
	if int(tr.Kind) >= len(slots) {
		return
	}
	if v := slots[tr.Kind]; v != nil {
		v.Trigger(tr)
	}
}

// Render adds len(left) frames from every distinct voice to left and right.
// A voice that fills several slots is rendered once.
func (b *Bank) Render(left, right []float32) {
	if b == nil {
		return
	}
	slots := b.slots()
	for i, v := range slots {
		if v == nil || seenBefore(slots[:i], v) {
			continue
		}
		v.Render(left, right)
	}
}

func seenBefore(prev []Voice, v Voice) bool {
	for _, p := range prev {
		if p == v {
			return true
		}
	}
	return false
}
