// Package errors provides coded domain errors for the adventure scaler.
package errors

import "fmt"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidScale is returned when the scale ratio is outside the accepted range.
	CodeInvalidScale Code = "INVALID_SCALE"
	// CodeArchiveFormat is returned when the input is not a readable zip archive.
	CodeArchiveFormat Code = "ARCHIVE_FORMAT"
	// CodeMalformedScene is returned when a scene document is missing a field or has the wrong shape.
	CodeMalformedScene Code = "MALFORMED_SCENE"
	// CodeOutputWrite is returned when the output archive cannot be written.
	CodeOutputWrite Code = "OUTPUT_WRITE"
	// CodeCancelled is returned when a run stops because its context ended.
	CodeCancelled Code = "CANCELLED"
)

// Metadata keys.
const (
	MetaEntry = "entry"
	MetaField = "field"
)

// Sentinels for errors.Is checks by code.
var (
	ErrInvalidScale   = New(CodeInvalidScale, "invalid scale ratio")
	ErrArchiveFormat  = New(CodeArchiveFormat, "invalid archive")
	ErrMalformedScene = New(CodeMalformedScene, "malformed scene")
	ErrOutputWrite    = New(CodeOutputWrite, "output write failed")
	ErrCancelled      = New(CodeCancelled, "cancelled")
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Message  string            // Human-readable message
	Metadata map[string]string // entry path, field name
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := e.Message
	if entry := e.Metadata[MetaEntry]; entry != "" {
		msg = fmt.Sprintf("%s (entry %s)", msg, entry)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Entry returns the archive entry the error refers to, if any.
func (e *Error) Entry() string {
	return e.Metadata[MetaEntry]
}

// Field returns the document field the error refers to, if any.
func (e *Error) Field() string {
	return e.Metadata[MetaField]
}

// New creates a simple domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithEntry returns a copy of e annotated with the archive entry path.
func (e *Error) WithEntry(entry string) *Error {
	return e.with(MetaEntry, entry)
}

// WithField returns a copy of e annotated with the offending field name.
func (e *Error) WithField(field string) *Error {
	return e.with(MetaField, field)
}

func (e *Error) with(key, value string) *Error {
	out := *e
	out.Metadata = make(map[string]string, len(e.Metadata)+1)
	for k, v := range e.Metadata {
		out.Metadata[k] = v
	}
	out.Metadata[key] = value
	return &out
}

// Malformed builds a MALFORMED_SCENE error for a field.
func Malformed(field string, format string, args ...any) *Error {
	return New(CodeMalformedScene, fmt.Sprintf(format, args...)).WithField(field)
}
