package crate

import (
	"errors"
	"strings"
)

// Error categories. Every error returned by a Store operation is an *Error
// whose Err is one of these, so callers can test with errors.Is.
var (
	// ErrInvalidArgument is returned for nil records, empty or unsafe identifiers and kinds.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrConfiguration is returned when the storage root or another setting is malformed.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotFound is returned when no record file exists at the resolved path.
	ErrNotFound = errors.New("record not found")

	// ErrAccessDenied is returned when the resolved path is unreadable or not a regular file.
	ErrAccessDenied = errors.New("access denied")

	// ErrCorruptRecord is returned when a record file cannot be decoded.
	ErrCorruptRecord = errors.New("record corrupted")

	// ErrStorage is returned for write-side I/O failures: directory creation,
	// encoding, compression, permissions, disk space.
	ErrStorage = errors.New("storage failure")
)

// Error describes a failed Store operation.
type Error struct {
	// Op is the operation: "save", "open", "copy", "delete", ...
	Op string

	// Path is the resolved record path, if one was known.
	Path string

	// Err is the error category.
	Err error

	// Cause is the underlying error, if any.
	Cause error
}

func newError(op, path string, category, cause error) *Error {
	return &Error{Op: op, Path: path, Err: category, Cause: cause}
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("crate: ")
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes both the category and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}
