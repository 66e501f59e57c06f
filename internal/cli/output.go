package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Scenario failed, replay mismatch, invalid config
	ExitCommandError = 2 // Command error (bad seed, unreadable file, database not found, etc.)
)

// Error codes reported in CLI responses.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeBadSeed     = "E201" // Seed argument does not parse
	ErrCodeParse       = "E301" // Timeline document does not parse
	ErrCodeMismatch    = "E401" // Replay did not reproduce the stored render
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure for errors that are not an
// ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
// In text mode data is printed with fmt.Println, so payloads implement
// fmt.Stringer for a readable summary.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Failure outputs a result that carries a failure, such as a replay
// mismatch. The payload is still reported in full.
func (f *OutputFormatter) Failure(code, message string, data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Data:   data,
			Error:  &CLIError{Code: code, Message: message},
		})
	}
	fmt.Fprintln(f.Writer, data)
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

func (f *OutputFormatter) encode(resp CLIResponse) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, w, errW io.Writer) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    w,
		ErrWriter: errW, // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// fail reports an error through the formatter and returns the matching
// ExitError.
func fail(f *OutputFormatter, exitCode int, code, message string, err error) error {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %v", message, err)
	}
	_ = f.Error(code, msg, nil)
	return WrapExitError(exitCode, message, err)
}
