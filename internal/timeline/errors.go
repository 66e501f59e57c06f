package timeline

import (
	"errors"
	"fmt"
)

// ParseError reports why a document could not be read. A failed parse never
// yields a partial Timeline.
type ParseError struct {
	// Code identifies the error category.
	Code ParseErrorCode

	// Field is the document key being read, if known.
	Field string

	// Offset is the byte offset of the offending token.
	Offset int

	// Message is a human-readable description.
	Message string
}

// ParseErrorCode categorizes parse failures.
type ParseErrorCode string

const (
	// ErrCodeMissingField indicates a required key is absent.
	ErrCodeMissingField ParseErrorCode = "MISSING_FIELD"

	// ErrCodeMalformedArray indicates an array that is not a list of
	// unsigned integers.
	ErrCodeMalformedArray ParseErrorCode = "MALFORMED_ARRAY"

	// ErrCodeMalformedEvent indicates an event object without exactly
	// time, type and aux.
	ErrCodeMalformedEvent ParseErrorCode = "MALFORMED_EVENT"

	// ErrCodeUnexpectedToken indicates a token the grammar does not allow
	// at that position.
	ErrCodeUnexpectedToken ParseErrorCode = "UNEXPECTED_TOKEN"

	// ErrCodeDuplicateField indicates a key given twice.
	ErrCodeDuplicateField ParseErrorCode = "DUPLICATE_FIELD"

	// ErrCodeBadValue indicates a value of the right shape but out of range.
	ErrCodeBadValue ParseErrorCode = "BAD_VALUE"
)

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field=%s, offset=%d)", e.Code, e.Message, e.Field, e.Offset)
	}
	return fmt.Sprintf("%s: %s (offset=%d)", e.Code, e.Message, e.Offset)
}

// IsParseError returns true if err is, or wraps, a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// ParseErrorCodeOf returns the code of a wrapped ParseError, or "".
func ParseErrorCodeOf(err error) ParseErrorCode {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}
