package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventType_StringTable(t *testing.T) {
	want := map[EventType]string{
		EventKick:   "kick",
		EventSnare:  "snare",
		EventHat:    "hat",
		EventMelody: "melody",
		EventMid:    "mid",
		EventBass:   "fm_bass",
	}
	for typ, name := range want {
		assert.Equal(t, name, typ.String())
		assert.Equal(t, typ, ParseEventType(name))
		assert.True(t, typ.Valid())
	}
}

func TestEventType_Unknown(t *testing.T) {
	assert.Equal(t, EventUnknown, ParseEventType("cowbell"))
	assert.Equal(t, EventUnknown, ParseEventType(""))
	assert.Equal(t, EventUnknown, ParseEventType("Kick"), "names are case sensitive")
	assert.Equal(t, "unknown", EventUnknown.String())
	assert.False(t, EventUnknown.Valid())
}

func TestEventTypes_PriorityOrder(t *testing.T) {
	assert.Equal(t, []EventType{EventKick, EventSnare, EventHat, EventMelody, EventMid, EventBass}, EventTypes)
}

func TestEvent_String(t *testing.T) {
	ev := Event{Time: 5512, Type: EventBass, Aux: 80}
	assert.Equal(t, `{"time": 5512, "type": "fm_bass", "aux": 80}`, ev.String())
}

func TestTimingConstants(t *testing.T) {
	assert.Equal(t, 8, TotalBeats)
	assert.Equal(t, 0, TotalSteps%StepsPerBeat)
}
