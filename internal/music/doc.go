// Package music derives per-seed musical parameters and expands the fixed
// pattern templates into a time-ordered event list.
//
// Draw order is part of the API. Derive consumes the stream in exactly this
// order: kick hits, snare hits, hat hits, bpm, root note, scale. The same
// stream continues into playback-time pitch choices, so inserting or
// reordering a draw here changes the music for every seed.
package music
