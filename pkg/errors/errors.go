// Package errors provides structured error types for phylonet.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across parsers, tree algorithms and the CLI
//   - Machine-readable error codes for programmatic handling
//   - Source offsets for errors raised while reading documents
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Parse failures are split into three fatal categories:
//   - LEX_ERROR: unrecognized input at a byte offset
//   - GRAMMAR_ERROR: an expected token was not found
//   - SEMANTIC_ERROR: well-formed input with invalid meaning (bad branch
//     lengths, unpaired hybrid nodes)
//
// Skipped trees are not errors; the batch parser in pkg/io reports them as
// outcomes.
//
// # Usage
//
//	err := errors.At(errors.ErrCodeGrammar, 12, "expected %s but found %s", want, got)
//	if errors.Is(err, errors.ErrCodeGrammar) {
//	    // Handle malformed input
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidInput, origErr, "read %s", path)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Document parsing errors
	ErrCodeLex      Code = "LEX_ERROR"
	ErrCodeGrammar  Code = "GRAMMAR_ERROR"
	ErrCodeSemantic Code = "SEMANTIC_ERROR"
	ErrCodeEmpty    Code = "EMPTY_DOCUMENT"

	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidStyle     Code = "INVALID_STYLE"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"

	// Resource not found errors
	ErrCodeNotFound Code = "NOT_FOUND"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// NoOffset marks errors that are not tied to a source position.
const NoOffset = -1

// Error is a structured error with a code, an optional source offset and an
// optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Offset  int    // Byte offset into the source document, or NoOffset
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if e.Offset != NoOffset {
		msg = fmt.Sprintf("%s (at offset %d)", msg, e.Offset)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Offset:  NoOffset,
	}
}

// At creates a new Error tied to a byte offset in the source document.
func At(code Code, offset int, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Offset:  NoOffset,
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// GetOffset extracts the source offset from an error, if available.
// Returns NoOffset if the error is not an *Error or carries no position.
func GetOffset(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Offset
	}
	return NoOffset
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Offset != NoOffset {
			return fmt.Sprintf("%s (at offset %d)", e.Message, e.Offset)
		}
		return e.Message
	}
	return err.Error()
}

// IsParseError reports whether err is one of the fatal document parse errors
// (lex, grammar or semantic).
func IsParseError(err error) bool {
	switch GetCode(err) {
	case ErrCodeLex, ErrCodeGrammar, ErrCodeSemantic:
		return true
	}
	return false
}
