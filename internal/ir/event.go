package ir

import "fmt"

// Timing constants fixed for every composition.
const (
	// SampleRate is the default render sample rate in Hz.
	SampleRate = 44100

	// StepsPerBeat is the scheduling resolution: one step is a 16th note.
	StepsPerBeat = 4

	// TotalSteps is the fixed composition length in steps (two 4/4 bars).
	TotalSteps = 32

	// TotalBeats is the number of beat boundaries exported per composition.
	TotalBeats = TotalSteps / StepsPerBeat
)

// EventType identifies the voice an event is dispatched to.
type EventType uint8

const (
	EventKick EventType = iota
	EventSnare
	EventHat
	EventMelody
	EventMid
	EventBass

	// EventUnknown marks an imported event whose type name is not in the table.
	EventUnknown EventType = 254
)

// eventNames is the closed symbol table shared by export and import.
var eventNames = [...]string{
	EventKick:   "kick",
	EventSnare:  "snare",
	EventHat:    "hat",
	EventMelody: "melody",
	EventMid:    "mid",
	EventBass:   "fm_bass",
}

// EventTypes lists the dispatchable types in channel priority order.
var EventTypes = []EventType{EventKick, EventSnare, EventHat, EventMelody, EventMid, EventBass}

// String returns the interchange symbol for the type ("unknown" for anything
// outside the table).
func (t EventType) String() string {
	if int(t) < len(eventNames) {
		return eventNames[t]
	}
	return "unknown"
}

// Valid reports whether t is one of the six dispatchable types.
func (t EventType) Valid() bool {
	return int(t) < len(eventNames)
}

// ParseEventType maps an interchange symbol back to its type.
// Unrecognized names map to EventUnknown rather than failing.
func ParseEventType(name string) EventType {
	for i, n := range eventNames {
		if n == name {
			return EventType(i)
		}
	}
	return EventUnknown
}

// Event is one scheduled trigger. Immutable once created.
type Event struct {
	Time uint32    `json:"time"` // sample offset from the start of the segment
	Type EventType `json:"type"`
	Aux  uint8     `json:"aux"` // variant selector / velocity
}

// String renders the event in the interchange object layout.
func (e Event) String() string {
	return fmt.Sprintf(`{"time": %d, "type": "%s", "aux": %d}`, e.Time, e.Type, e.Aux)
}
