package music

import "github.com/roach88/deafbeat/internal/ir"

// PatternLen is the length of the repeating pattern cycle in steps.
const PatternLen = 8

// Pattern is a bitmask over an 8-step cycle; bit i fires on step i mod 8.
type Pattern uint8

// Fires reports whether the pattern has a hit on step.
func (p Pattern) Fires(step uint32) bool {
	return p&(1<<(step%PatternLen)) != 0
}

// Fixed pattern templates.
const (
	KickSparse  Pattern = 0x11 // steps 0, 4
	KickDense   Pattern = 0x91 // steps 0, 4, 7
	SnareSparse Pattern = 0x04 // step 2
	SnareDense  Pattern = 0x44 // steps 2, 6
	HatOffbeats Pattern = 0xAA // odd steps
	MelodyOdd   Pattern = 0xAA
	MidPattern  Pattern = 0x88 // steps 3, 7
	BassPattern Pattern = 0x11 // steps 0, 4
)

// Aux constants per channel (velocity / variant selector).
var channelAux = [...]uint8{
	ir.EventKick:   127,
	ir.EventSnare:  100,
	ir.EventHat:    80,
	ir.EventMelody: 100,
	ir.EventMid:    100,
	ir.EventBass:   80,
}

// Aux returns the fixed aux value for a channel.
func Aux(t ir.EventType) uint8 {
	if !t.Valid() {
		return 0
	}
	return channelAux[t]
}

// Patterns holds the selected pattern for each channel, indexed by event type.
type Patterns [6]Pattern

// SelectPatterns picks the channel patterns for p.
func SelectPatterns(p Params) Patterns {
	var pt Patterns
	pt[ir.EventKick] = KickSparse
	if p.KickHits >= 3 {
		pt[ir.EventKick] = KickDense
	}
	pt[ir.EventSnare] = SnareSparse
	if p.SnareHits >= 2 {
		pt[ir.EventSnare] = SnareDense
	}
	pt[ir.EventHat] = HatOffbeats
	pt[ir.EventMelody] = MelodyOdd
	pt[ir.EventMid] = MidPattern
	pt[ir.EventBass] = BassPattern
	return pt
}
