package midi

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gm "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/roach88/deafbeat/internal/engine"
	"github.com/roach88/deafbeat/internal/timeline"
	"github.com/roach88/deafbeat/internal/voice"
)

type noteOn struct {
	tick uint32
	ch   uint8
	key  uint8
	vel  uint8
}

func noteOns(tr smf.Track) []noteOn {
	var out []noteOn
	var abs uint32
	for _, ev := range tr {
		abs += ev.Delta
		var ch, key, vel uint8
		if gm.Message(ev.Message).GetNoteOn(&ch, &key, &vel) {
			out = append(out, noteOn{abs, ch, key, vel})
		}
	}
	return out
}

func render(t *testing.T, seed uint64) (*timeline.Timeline, []voice.Record) {
	t.Helper()
	rec := voice.NewRecorder()
	c, err := engine.New(seed, engine.WithVoices(voice.Shared(rec)))
	require.NoError(t, err)
	c.Render()
	return timeline.FromComposition(c), rec.Records()
}

func TestWrite_TracksAndTempo(t *testing.T) {
	tl, _ := render(t, 0xCAFEBABE)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, tl))

	rd, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	// Tempo track plus one track per event type.
	require.Len(t, rd.Tracks, 7)

	tempos := rd.TempoChanges()
	require.NotEmpty(t, tempos)
	assert.InDelta(t, 91.172187, tempos[0].BPM, 0.01)

	kicks := noteOns(rd.Tracks[1])
	require.Len(t, kicks, 8)
	assert.Equal(t, noteOn{tick: 0, ch: 9, key: 36, vel: 127}, kicks[0])
	// Kick pattern 0x11 fires every fourth step.
	assert.Equal(t, uint32(4*ticksPerStep), kicks[1].tick)

	hats := noteOns(rd.Tracks[3])
	require.Len(t, hats, 16)
	assert.Equal(t, uint32(ticksPerStep), hats[0].tick)
	assert.Equal(t, uint8(42), hats[0].key)
	assert.Equal(t, uint8(80), hats[0].vel)
}

func TestWrite_Deterministic(t *testing.T) {
	tl, _ := render(t, 42)

	var a, b bytes.Buffer
	require.NoError(t, Write(&a, tl))
	require.NoError(t, Write(&b, tl))
	assert.Equal(t, a.Bytes(), b.Bytes())
}

func TestWriteTriggers_UsesDispatchedPitches(t *testing.T) {
	tl, records := render(t, 0xCAFEBABE)

	var buf bytes.Buffer
	require.NoError(t, WriteTriggers(&buf, tl, records))

	rd, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	melody := noteOns(rd.Tracks[4])
	require.NotEmpty(t, melody)
	// Melody plays the root (174.61 Hz, F3).
	assert.Equal(t, uint8(53), melody[0].key)

	bass := noteOns(rd.Tracks[6])
	require.NotEmpty(t, bass)
	assert.Equal(t, NoteForFrequency(65.40484967335935), bass[0].key)
	assert.Equal(t, uint8(2), bass[0].ch)
}

func TestWriteFile(t *testing.T) {
	tl, records := render(t, 7)
	path := filepath.Join(t.TempDir(), "out.mid")

	require.NoError(t, WriteFile(path, tl, records))

	rd, err := smf.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, rd.Tracks)
}

func TestWrite_NilTimeline(t *testing.T) {
	assert.Error(t, Write(&bytes.Buffer{}, nil))
}

func TestNoteForFrequency(t *testing.T) {
	assert.Equal(t, uint8(69), NoteForFrequency(440))
	assert.Equal(t, uint8(45), NoteForFrequency(110))
	assert.Equal(t, uint8(0), NoteForFrequency(0))
	assert.Equal(t, uint8(127), NoteForFrequency(1e6))
	assert.Equal(t, uint8(0), NoteForFrequency(1))
}

func TestVelocity(t *testing.T) {
	assert.Equal(t, uint8(1), velocity(0))
	assert.Equal(t, uint8(100), velocity(100))
	assert.Equal(t, uint8(127), velocity(200))
}
