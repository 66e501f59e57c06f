package engine

import (
	"errors"
	"fmt"
)

// ConfigError reports an invalid composition option. Once New succeeds the
// composition itself never fails.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Option names the offending option.
	Option string

	// Message is a human-readable description.
	Message string
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidSampleRate indicates a zero sample rate.
	ErrCodeInvalidSampleRate ConfigErrorCode = "INVALID_SAMPLE_RATE"

	// ErrCodeInvalidMaxEvents indicates a queue capacity below one.
	ErrCodeInvalidMaxEvents ConfigErrorCode = "INVALID_MAX_EVENTS"

	// ErrCodeInvalidMaxFrames indicates a frame budget below one.
	ErrCodeInvalidMaxFrames ConfigErrorCode = "INVALID_MAX_FRAMES"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s (option=%s)", e.Code, e.Message, e.Option)
}

// IsConfigError returns true if err is, or wraps, a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
