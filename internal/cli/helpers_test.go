package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const cafebabeHash = "5724c81af7624bbea28dcb8c91da3a4c30327e50db3c1c22cc26a2ffeb546ed4"

var (
	cafebabeGolden = filepath.Join("..", "timeline", "testdata", "golden", "cafebabe.golden")
	scenarioDir    = filepath.Join("..", "harness", "testdata", "scenarios")
	scenarioGolden = filepath.Join("..", "harness", "testdata", "golden")
	configTestdata = filepath.Join("..", "config", "testdata")
)

// execute runs a subcommand built by newCmd with args and returns what it
// wrote to stdout.
func execute(t *testing.T, newCmd func(*RootOptions) *cobra.Command, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := newCmd(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// decodeData unmarshals the data field of a JSON response into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), out)
	if v != nil {
		require.NoError(t, json.Unmarshal(raw.Data, v))
	}
	return raw.CLIResponse
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
