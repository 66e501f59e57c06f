// Package signal derives per-frame visual driver values from a timeline.
//
// Every function here is a pure function of its arguments. Frame N can be
// computed without computing frames 0..N-1, and frames can be computed in
// any order on any number of goroutines.
package signal

import (
	"math"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/rng"
	"github.com/roach88/deafbeat/internal/timeline"
)

// DefaultFPS is the frame rate used when none is given.
const DefaultFPS = 60

// Values returned when no timeline is available.
const (
	FallbackLevel  = 0.0
	FallbackGlitch = 0.3
	FallbackHue    = 0.5
)

const (
	levelTau    = 0.2
	kickWeight  = 1.0
	snareWeight = 0.6

	glitchBase  = 0.2
	glitchSwing = 0.3
	glitchRate  = 3.0
	glitchSpike = 0.1
	glitchTau   = 0.08
	glitchMax   = 1.5

	hueRate = 0.1
	hueJump = 0.05
	hueTau  = 0.4
)

func frameSeconds(frame, fps int) float64 {
	return float64(frame) / float64(fps)
}

// decay sums weight(ev) * exp(-elapsed/tau) over events already started.
func decay(tl *timeline.Timeline, t, tau float64, weight func(ir.EventType) float64) float64 {
	sum := 0.0
	for _, ev := range tl.Events {
		w := weight(ev.Type)
		if w == 0 {
			continue
		}
		elapsed := t - tl.Seconds(ev.Time)
		if elapsed < 0 {
			continue
		}
		sum += w * math.Exp(-elapsed/tau)
	}
	return sum
}

func levelWeight(t ir.EventType) float64 {
	switch t {
	case ir.EventKick:
		return kickWeight
	case ir.EventSnare:
		return snareWeight
	}
	return 0
}

func glitchWeight(t ir.EventType) float64 {
	if t == ir.EventHat || t == ir.EventMelody {
		return glitchSpike
	}
	return 0
}

func hueWeight(t ir.EventType) float64 {
	if t == ir.EventBass {
		return hueJump
	}
	return 0
}

// Level is the kick/snare envelope at frame, clamped to [0, 1].
func Level(tl *timeline.Timeline, frame, fps int) float64 {
	if tl == nil || fps <= 0 {
		return FallbackLevel
	}
	v := decay(tl, frameSeconds(frame, fps), levelTau, levelWeight)
	return clamp(v, 0, 1)
}

// Glitch is a slow sine plus hat and melody spikes, clamped to [0, 1.5].
func Glitch(tl *timeline.Timeline, frame, fps int) float64 {
	if tl == nil || fps <= 0 {
		return FallbackGlitch
	}
	t := frameSeconds(frame, fps)
	v := glitchBase + glitchSwing*math.Sin(glitchRate*t)
	v += decay(tl, t, glitchTau, glitchWeight)
	return clamp(v, 0, glitchMax)
}

// Hue is a slow rotation nudged by bass events, wrapped into [0, 1).
func Hue(tl *timeline.Timeline, frame, fps int) float64 {
	if tl == nil || fps <= 0 {
		return FallbackHue
	}
	t := frameSeconds(frame, fps)
	v := wrap(t * hueRate)
	v += decay(tl, t, hueTau, hueWeight)
	return wrap(v)
}

// Sparkle is a per-frame jitter in [0, 1) from the effects stream. It needs
// no history: the stream is re-seeded from the frame index.
func Sparkle(streams rng.Streams, frame int) float64 {
	return rng.At(streams.Effects, frame).Float()
}

// StreamsFor derives the visual streams for a timeline's seed.
func StreamsFor(tl *timeline.Timeline) rng.Streams {
	var seed uint64
	if tl != nil {
		seed = tl.Seed
	}
	return rng.NewStreams(rng.New(seed).State())
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// wrap maps v into [0, 1).
func wrap(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	if v >= 1 {
		v = 0
	}
	return v
}
