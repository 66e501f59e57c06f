package music

import (
	"fmt"

	"github.com/roach88/deafbeat/internal/rng"
)

// Tempo range in beats per minute.
const (
	MinBPM   = 50.0
	BPMRange = 70.0
)

// Roots are the candidate root frequencies in Hz (A2 up to G3).
var Roots = [...]float64{110.00, 123.47, 130.81, 146.83, 164.81, 174.61, 196.00}

// Scale is a set of semitone offsets from the root. Index 0 is always the root.
type Scale []int

// Scales are the candidate scales. Every scale has at least two degrees so
// the melody's non-root pick (1 + draw % (len-1)) is always defined.
var Scales = [...]Scale{
	{0, 3, 5, 7, 10},       // minor pentatonic
	{0, 2, 4, 7, 9},        // major pentatonic
	{0, 2, 3, 5, 7, 9, 10}, // dorian
	{0, 2, 3, 5, 7, 8, 10}, // aeolian
}

// Params are the per-seed variation values.
type Params struct {
	KickHits   int
	SnareHits  int
	HatHits    int
	BPM        float64
	RootIndex  int
	ScaleIndex int
}

// Root returns the root frequency in Hz.
func (p Params) Root() float64 {
	return Roots[p.RootIndex]
}

// Scale returns the selected scale.
func (p Params) Scale() Scale {
	return Scales[p.ScaleIndex]
}

func (p Params) String() string {
	return fmt.Sprintf("kick=%d snare=%d hat=%d bpm=%.6f root=%.2f scale=%d",
		p.KickHits, p.SnareHits, p.HatHits, p.BPM, p.Root(), p.ScaleIndex)
}

// Derive draws the per-seed parameters from src in the fixed order.
func Derive(src *rng.Source) Params {
	var p Params
	p.KickHits = 2 + src.IntN(3)
	p.SnareHits = 1 + src.IntN(3)
	p.HatHits = 4 + src.IntN(5)
	p.BPM = MinBPM + src.Float()*BPMRange
	p.RootIndex = src.IntN(len(Roots))
	p.ScaleIndex = src.IntN(len(Scales))
	return p
}
