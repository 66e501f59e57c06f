package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error(ErrCodeBadSeed, "invalid seed: beat", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeBadSeed, resp.Error.Code)
	assert.Equal(t, "invalid seed: beat", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"file": "show.cue", "line": "4"}
	err := formatter.Error("E004", "config does not compile", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("✓ 0x00000000cafebabe")
	require.NoError(t, err)
	assert.Equal(t, "✓ 0x00000000cafebabe\n", buf.String())
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error(ErrCodeBadSeed, "invalid seed: beat", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E201]")
	assert.Contains(t, buf.String(), "invalid seed: beat")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"file": "beat.json"}
	err := formatter.Error(ErrCodeBadSeed, "invalid seed: beat", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [E201]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("rendering %s", "0xcafebabe")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "rendering 0xcafebabe")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"events": 64},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "E401",
		Message: "1 of 3 render(s) did not reproduce",
		Details: []string{"first differing trigger: 5"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "E401", decoded.Code)
	assert.Equal(t, "1 of 3 render(s) did not reproduce", decoded.Message)
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "json",
		Writer:    out,
		ErrWriter: errOut,
		Verbose:   true,
	}

	formatter.VerboseLog("computed %d frame(s)", 60)
	assert.Empty(t, out.String())
	assert.Equal(t, "computed 60 frame(s)\n", errOut.String())
}

func TestOutputFormatter_JSONFailureKeepsData(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Failure(ErrCodeMismatch, "drifted", map[string]int{"drifted": 1})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeMismatch, resp.Error.Code)
}

func TestOutputFormatter_TextFailure(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Failure(ErrCodeMismatch, "drifted", "✗ r1"))
	assert.Equal(t, "✗ r1\nError [E401]: drifted\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"plain error", errors.New("boom"), ExitFailure},
		{"exit error", NewExitError(ExitCommandError, "bad seed"), ExitCommandError},
		{"wrapped exit error", fmt.Errorf("run: %w", NewExitError(ExitFailure, "drift")), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetExitCode(tt.err))
		})
	}
}

func TestExitError_Message(t *testing.T) {
	inner := errors.New("no such file")
	err := WrapExitError(ExitCommandError, "read timeline", inner)
	assert.Equal(t, "read timeline: no such file", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
}
