package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/deafbeat/internal/ir"
	"github.com/roach88/deafbeat/internal/store"
)

func fixedRender(ids ...string) func(*RootOptions) *cobra.Command {
	gen := store.NewFixedGenerator(ids...)
	return func(opts *RootOptions) *cobra.Command {
		return newRenderCommand(opts, gen)
	}
}

func TestRender_LogsToDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "renders.db")

	out, err := execute(t, fixedRender("r1"), "json", "0xCAFEBABE", "--db", db, "--label", "nightly")
	require.NoError(t, err)

	var result RenderResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "r1", result.ID)
	assert.Equal(t, int64(1), result.Seq)
	assert.Equal(t, 64, result.Events)
	assert.Equal(t, 64, result.Triggers)
	assert.Equal(t, uint64(232192), result.Frames)
	assert.Equal(t, cafebabeHash, result.DocHash)
	assert.True(t, result.Inserted)

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	r, err := st.GetRender(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xCAFEBABE), r.Seed)
	assert.Equal(t, "nightly", r.Label)
	assert.Equal(t, ir.Object{"max_events": ir.Int(512), "max_frames": ir.Int(424000)}, r.Meta)
	assert.Equal(t, readFile(t, cafebabeGolden), r.Document)

	counts, err := st.CountTriggers(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, 16, counts["melody"])
}

func TestRender_SeqIncrements(t *testing.T) {
	db := filepath.Join(t.TempDir(), "renders.db")
	newCmd := fixedRender("a", "b")

	_, err := execute(t, newCmd, "text", "1", "--db", db)
	require.NoError(t, err)
	out, err := execute(t, newCmd, "json", "2", "--db", db)
	require.NoError(t, err)

	var result RenderResult
	decodeData(t, out, &result)
	assert.Equal(t, "b", result.ID)
	assert.Equal(t, int64(2), result.Seq)
}

func TestRender_UUIDv7IDs(t *testing.T) {
	db := filepath.Join(t.TempDir(), "renders.db")

	out, err := execute(t, NewRenderCommand, "json", "42", "--db", db)
	require.NoError(t, err)

	var result RenderResult
	decodeData(t, out, &result)
	id, err := uuid.Parse(result.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}

func TestRender_ConfigLabelAndBudget(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "short.cue", "label: \"short\"\nmax_frames: 50000\n")
	db := filepath.Join(dir, "renders.db")

	out, err := execute(t, fixedRender("r1"), "text", "0xDEADBEEF", "--db", db, "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ render r1 (seq 1)")
	assert.Contains(t, out, "triggers=20")
	assert.Contains(t, out, "(truncated)")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	r, err := st.GetRender(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, "short", r.Label)
	assert.True(t, r.Truncated)
}

func TestRender_RequiresDB(t *testing.T) {
	_, err := execute(t, NewRenderCommand, "text", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"db" not set`)
}

func TestRender_InvalidSeed(t *testing.T) {
	db := filepath.Join(t.TempDir(), "renders.db")
	_, err := execute(t, NewRenderCommand, "text", "0xZZ", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
