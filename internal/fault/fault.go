// Package fault defines the error taxonomy shared by the producer, the
// consumer and the CLI. Kinds are cockroachdb/errors marks, so a wrapped error
// keeps its kind through any amount of additional context:
//
//	err := fault.Filesystem(os.ErrNotExist, "open block %d", 7)
//	errors.Is(err, fault.ErrFilesystem) // true
//	errors.Is(err, os.ErrNotExist)      // true
package fault

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrConfiguration marks invalid user input detected before any I/O.
	ErrConfiguration = errors.New("configuration error")
	// ErrFilesystem marks a missing or unreadable source path or file.
	ErrFilesystem = errors.New("filesystem error")
	// ErrConnection marks an unreachable or failing log store.
	ErrConnection = errors.New("connection error")
	// ErrProtocol marks a log entry that does not have the expected shape.
	ErrProtocol = errors.New("protocol error")
	// ErrTruncation marks a failure to clear the log before a write pass.
	ErrTruncation = errors.New("truncation error")
)

var kinds = []struct {
	mark  error
	label string
}{
	{ErrConfiguration, "configuration"},
	{ErrFilesystem, "filesystem"},
	{ErrConnection, "connection"},
	{ErrProtocol, "protocol"},
	{ErrTruncation, "truncation"},
}

func mark(err, kind error, format string, args ...interface{}) error {
	if err == nil {
		err = errors.NewWithDepthf(2, format, args...)
	} else {
		err = errors.WrapWithDepthf(2, err, format, args...)
	}
	return errors.Mark(err, kind)
}

// Configuration wraps err (which may be nil) as a configuration error.
func Configuration(err error, format string, args ...interface{}) error {
	return mark(err, ErrConfiguration, format, args...)
}

// Filesystem wraps err (which may be nil) as a filesystem error.
func Filesystem(err error, format string, args ...interface{}) error {
	return mark(err, ErrFilesystem, format, args...)
}

// Connection wraps err (which may be nil) as a connection error.
func Connection(err error, format string, args ...interface{}) error {
	return mark(err, ErrConnection, format, args...)
}

// Protocol wraps err (which may be nil) as a protocol error.
func Protocol(err error, format string, args ...interface{}) error {
	return mark(err, ErrProtocol, format, args...)
}

// Truncation wraps err (which may be nil) as a truncation error.
func Truncation(err error, format string, args ...interface{}) error {
	return mark(err, ErrTruncation, format, args...)
}

// Kind returns a short label for the first kind err is marked with, or
// "internal" when it carries none.
func Kind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.mark) {
			return k.label
		}
	}
	return "internal"
}
