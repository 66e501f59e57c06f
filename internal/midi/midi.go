// Package midi exports a timeline as a Standard MIDI File.
//
// Each event type gets its own track. Drums go to the General MIDI
// percussion channel; pitched voices get their own channels. Timing is
// quantized to the step grid at 960 ticks per quarter note.
package midi

import (
	"fmt"
	"io"
	"math"
	"os"

	gm "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/timeline"
	"github.com/roach88/deafbeat/internal/voice"
)

// TicksPerQuarter is the file resolution.
const TicksPerQuarter = 960

const ticksPerStep = TicksPerQuarter / ir.StepsPerBeat

// channelMap places each event type on a channel and gives it a default
// note (used when no pitch is known) and a nominal length in steps.
type channelMap struct {
	channel uint8
	note    uint8
	steps   uint32
}

var channels = map[ir.EventType]channelMap{
	ir.EventKick:   {channel: 9, note: 36, steps: 1},
	ir.EventSnare:  {channel: 9, note: 38, steps: 1},
	ir.EventHat:    {channel: 9, note: 42, steps: 1},
	ir.EventMelody: {channel: 0, note: 72, steps: 4},
	ir.EventMid:    {channel: 1, note: 67, steps: 1},
	ir.EventBass:   {channel: 2, note: 36, steps: 8},
}

// note is one sounding note in ticks.
type note struct {
	start uint32
	key   uint8
	vel   uint8
}

// Write renders tl with a fixed note per event type.
func Write(w io.Writer, tl *timeline.Timeline) error {
	return write(w, tl, nil)
}

// WriteTriggers renders tl using the pitches captured by a recorder, so
// melody, mid and bass notes follow the frequencies actually dispatched.
// Records are matched to events by time and type.
func WriteTriggers(w io.Writer, tl *timeline.Timeline, records []voice.Record) error {
	pitches := make(map[pitchKey]uint8, len(records))
	for _, r := range records {
		if r.Trigger.Frequency > 0 {
			pitches[pitchKey{r.Trigger.Event.Time, r.Trigger.Event.Type}] = NoteForFrequency(r.Trigger.Frequency)
		}
	}
	return write(w, tl, pitches)
}

// WriteFile writes the file for tl to path.
func WriteFile(path string, tl *timeline.Timeline, records []voice.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create midi file: %w", err)
	}
	if err := WriteTriggers(f, tl, records); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close midi file: %w", err)
	}
	return nil
}

type pitchKey struct {
	time uint32
	typ  ir.EventType
}

func write(w io.Writer, tl *timeline.Timeline, pitches map[pitchKey]uint8) error {
	if tl == nil {
		return fmt.Errorf("midi: nil timeline")
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("seed 0x%016x", tl.Seed)))
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(tl.BPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	end := toTicks(tl, tl.TotalSamples)
	for _, typ := range ir.EventTypes {
		cm := channels[typ]
		var notes []note
		for _, ev := range tl.Events {
			if ev.Type != typ {
				continue
			}
			key := cm.note
			if p, ok := pitches[pitchKey{ev.Time, ev.Type}]; ok {
				key = p
			}
			notes = append(notes, note{start: toTicks(tl, ev.Time), key: key, vel: velocity(ev.Aux)})
		}
		if len(notes) == 0 {
			continue
		}
		if err := sm.Add(buildTrack(typ, cm, notes, end)); err != nil {
			return fmt.Errorf("add %s track: %w", typ, err)
		}
	}

	if _, err := sm.WriteTo(w); err != nil {
		return fmt.Errorf("write midi: %w", err)
	}
	return nil
}

// buildTrack lays notes out as delta-timed messages. A note is cut short
// where the next note on the same track starts.
func buildTrack(typ ir.EventType, cm channelMap, notes []note, end uint32) smf.Track {
	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(typ.String()))

	var cursor uint32
	for i, n := range notes {
		if n.start < cursor {
			n.start = cursor
		}
		length := cm.steps * ticksPerStep
		if i+1 < len(notes) && notes[i+1].start > n.start {
			length = min(length, notes[i+1].start-n.start)
		} else if i+1 < len(notes) {
			length = 0
		}
		tr.Add(n.start-cursor, gm.NoteOn(cm.channel, n.key, n.vel))
		tr.Add(length, gm.NoteOff(cm.channel, n.key))
		cursor = n.start + length
	}

	var tail uint32
	if end > cursor {
		tail = end - cursor
	}
	tr.Close(tail)
	return tr
}

// toTicks converts a sample offset to ticks on the step grid.
func toTicks(tl *timeline.Timeline, sample uint32) uint32 {
	if tl.StepSamples == 0 {
		return 0
	}
	return uint32(math.Round(float64(sample) * ticksPerStep / float64(tl.StepSamples)))
}

// velocity maps aux to a MIDI velocity. Zero would read as note-off.
func velocity(aux uint8) uint8 {
	return max(1, min(aux, 127))
}

// NoteForFrequency returns the nearest MIDI note for f in Hz.
func NoteForFrequency(f float64) uint8 {
	if f <= 0 {
		return 0
	}
	n := math.Round(69 + 12*math.Log2(f/440))
	return uint8(max(0, min(127, n)))
}
