package signal

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/deafbeat/internal/rng"
	"github.com/roach88/deafbeat/internal/timeline"
)

// Frame holds every driver value for one video frame.
type Frame struct {
	Index   int     `json:"frame"`
	Level   float64 `json:"level"`
	Glitch  float64 `json:"glitch"`
	Hue     float64 `json:"hue"`
	Sparkle float64 `json:"sparkle"`
}

// minSlice keeps tiny ranges on one goroutine.
const minSlice = 64

// At computes frame index for tl.
func At(tl *timeline.Timeline, streams rng.Streams, index, fps int) Frame {
	return Frame{
		Index:   index,
		Level:   Level(tl, index, fps),
		Glitch:  Glitch(tl, index, fps),
		Hue:     Hue(tl, index, fps),
		Sparkle: Sparkle(streams, index),
	}
}

// Render computes frames [from, to) using up to workers goroutines. The
// range is split into contiguous slices, each written into its own part of
// the result, so the output is identical to a sequential pass. workers <= 0
// uses GOMAXPROCS.
func Render(ctx context.Context, tl *timeline.Timeline, fps, from, to, workers int) ([]Frame, error) {
	if to < from {
		return nil, fmt.Errorf("invalid frame range [%d, %d)", from, to)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	n := to - from
	out := make([]Frame, n)
	if n == 0 {
		return out, nil
	}
	streams := StreamsFor(tl)

	size := max(minSlice, int(math.Ceil(float64(n)/float64(workers))))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for lo := 0; lo < n; lo += size {
		lo := lo
		hi := min(lo+size, n)
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if (i-lo)%minSlice == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				out[i] = At(tl, streams, from+i, fps)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("render signals: %w", err)
	}
	return out, nil
}

// BeatPhase is the position within the current beat, in [0, 1).
func BeatPhase(frame, fps int, bpm float64) float64 {
	if fps <= 0 {
		fps = DefaultFPS
	}
	if bpm <= 0 {
		bpm = fallbackBPM
	}
	beat := 60 / bpm
	return wrap(frameSeconds(frame, fps) / beat)
}

// fallbackBPM is assumed when no tempo is known either.
const fallbackBPM = 120

// beatAccent is the glitch boost during the first part of each beat.
const (
	beatAccent       = 0.3
	beatAccentWindow = 0.15
)

// Fallback estimates driver values from tempo alone, for use when no
// timeline could be loaded. Level pulses once per beat, glitch adds an
// accent on each downbeat and hue rotates at the usual rate.
func Fallback(frame, fps int, bpm float64) Frame {
	if fps <= 0 {
		fps = DefaultFPS
	}
	t := frameSeconds(frame, fps)
	phase := BeatPhase(frame, fps, bpm)

	glitch := glitchBase + glitchSwing*math.Sin(glitchRate*t)
	if phase < beatAccentWindow {
		glitch += beatAccent
	}
	return Frame{
		Index:  frame,
		Level:  clamp(1-phase, 0, 1),
		Glitch: clamp(glitch, 0, glitchMax),
		Hue:    wrap(t * hueRate),
	}
}
