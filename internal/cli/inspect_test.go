package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect_Text(t *testing.T) {
	out, err := execute(t, NewInspectCommand, "text", cafebabeGolden)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ "+cafebabeGolden)
	assert.Contains(t, out, "seed:     0x00000000cafebabe")
	assert.Contains(t, out, "bpm:      91.172187")
	assert.Contains(t, out, "rate:     44100 Hz, 7256 samples/step")
	assert.Contains(t, out, "length:   232192 samples (5.265s)")
	assert.Contains(t, out, "events:   64")
	assert.Contains(t, out, "kick     8")
	assert.Contains(t, out, "fm_bass  8")
	assert.Contains(t, out, "doc hash: "+cafebabeHash)
	assert.NotContains(t, out, "unknown")
}

func TestInspect_JSON(t *testing.T) {
	out, err := execute(t, NewInspectCommand, "json", cafebabeGolden)
	require.NoError(t, err)

	var result InspectResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]int{
		"kick": 8, "snare": 8, "hat": 16, "melody": 16, "mid": 8, "fm_bass": 8,
	}, result.Counts)
	assert.Equal(t, 64, result.Events)
	assert.Equal(t, uint32(7256), result.StepSamples)
	assert.Equal(t, cafebabeHash, result.DocHash)
}

func TestInspect_UnknownEventType(t *testing.T) {
	doc := `{"seed":"0x1","sample_rate":44100,"bpm":120.0,"step_samples":5512,"total_samples":176384,` +
		`"steps":[0],"beats":[0],"events":[{"time":0,"type":"cowbell","aux":0},{"time":0,"type":"kick","aux":127}]}`
	path := writeFile(t, t.TempDir(), "odd.json", doc)

	out, err := execute(t, NewInspectCommand, "json", path)
	require.NoError(t, err)

	var result InspectResult
	decodeData(t, out, &result)
	assert.Equal(t, 2, result.Events)
	assert.Equal(t, 1, result.Counts["kick"])
	assert.Equal(t, 1, result.Unknown)
}

func TestInspect_ParseFailure(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.json", `{"seed":"0x1","steps":[0],"beats":[0]}`)

	out, err := execute(t, NewInspectCommand, "text", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E301]")
}

func TestInspect_MissingFile(t *testing.T) {
	out, err := execute(t, NewInspectCommand, "text", filepath.Join(t.TempDir(), "none.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]")
}
