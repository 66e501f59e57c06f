package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deafbeat/internal/store"
)

func TestTest_ScenariosPass(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenarioDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ cafebabe_grid")
	assert.Contains(t, out, "✓ deadbeef_truncated")
	assert.Contains(t, out, "✓ zero_seed")
	assert.Contains(t, out, "3 passed, 0 failed")
}

func TestTest_JSON(t *testing.T) {
	out, err := execute(t, NewTestCommand, "json", scenarioDir)
	require.NoError(t, err)

	var report struct {
		Results []struct {
			Scenario string `json:"scenario"`
			Pass     bool   `json:"pass"`
			RenderID string `json:"render_id"`
			DocHash  string `json:"doc_hash"`
		} `json:"results"`
		Passed int `json:"passed"`
	}
	resp := decodeData(t, out, &report)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 3, report.Passed)
	require.Len(t, report.Results, 3)
	assert.Equal(t, "cafebabe_grid-0001", report.Results[0].RenderID)
	assert.Equal(t, cafebabeHash, report.Results[0].DocHash)
}

func TestTest_Filter(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenarioDir, "--filter", "zero")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ zero_seed")
	assert.NotContains(t, out, "cafebabe_grid")
	assert.Contains(t, out, "1 passed, 0 failed")
}

func TestTest_Golden(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", scenarioDir, "--golden", scenarioGolden)
	require.NoError(t, err)
	assert.Contains(t, out, "3 passed, 0 failed")
}

func TestTest_GoldenUpdateThenCompare(t *testing.T) {
	golden := filepath.Join(t.TempDir(), "golden")

	_, err := execute(t, NewTestCommand, "text", scenarioDir, "--golden", golden, "--update")
	require.NoError(t, err)
	assert.Equal(t,
		readFile(t, filepath.Join(scenarioGolden, "zero_seed.golden")),
		readFile(t, filepath.Join(golden, "zero_seed.golden")))

	out, err := execute(t, NewTestCommand, "text", scenarioDir, "--golden", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "3 passed, 0 failed")
}

func TestTest_GoldenMismatch(t *testing.T) {
	golden := t.TempDir()
	writeFile(t, golden, "cafebabe_grid.golden", "{}\n")

	out, err := execute(t, NewTestCommand, "text", scenarioDir, "--golden", golden, "--filter", "cafebabe")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ cafebabe_grid")
	assert.Contains(t, out, "document differs from golden file")
}

func TestTest_UpdateRequiresGolden(t *testing.T) {
	_, err := execute(t, NewTestCommand, "text", scenarioDir, "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_FailingScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: "kick count is off"
seed: "0xCAFEBABE"
assertions:
  - type: type_count
    event: kick
    count: 9
`)

	out, err := execute(t, NewTestCommand, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "    Assertion failed: type_count")
	assert.Contains(t, out, "0 passed, 1 failed")
}

func TestTest_InvalidScenario(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bad.yaml", "name: bad\n")

	_, err := execute(t, NewTestCommand, "text", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTest_MissingDir(t *testing.T) {
	out, err := execute(t, NewTestCommand, "text", filepath.Join(t.TempDir(), "none"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenario directory not found")
}

func TestTest_LogsToDatabaseForReplay(t *testing.T) {
	db := filepath.Join(t.TempDir(), "renders.db")
	_, err := execute(t, fixedRender("first"), "text", "5", "--db", db)
	require.NoError(t, err)

	_, err = execute(t, NewTestCommand, "text", scenarioDir, "--db", db)
	require.NoError(t, err)

	st, err := store.Open(db)
	require.NoError(t, err)
	renders, err := st.ListRenders(context.Background())
	require.NoError(t, err)
	require.NoError(t, st.Close())

	require.Len(t, renders, 4)
	assert.Equal(t, "first", renders[0].ID)
	assert.Equal(t, int64(2), renders[1].Seq, "scenario renders follow the last logged seq")
	assert.Equal(t, "cafebabe_grid", renders[1].Label)

	out, err := execute(t, NewReplayCommand, "text", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "4 reproduced, 0 drifted")
}

func TestCheckGolden_MissingFileIsMismatch(t *testing.T) {
	err := checkGolden(t.TempDir(), "absent", nil, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errGoldenMismatch)
}
