// Package logstore is the ordered append-only log primitive the feeder
// writes to and reads from. Two backends implement Store: an embedded
// Pebble-backed event log and a Redis stream.
package logstore

import (
	"context"
)

// Field is one named value of an entry.
type Field struct {
	Name  string
	Value []byte
}

// Entry is one appended record. ID is assigned by the store, strictly
// increasing in append order, and only meaningful to the same store.
type Entry struct {
	ID     string
	Fields []Field
}

// Store is an ordered append-only log.
type Store interface {
	// Reset removes every entry of the log. A missing log is already empty.
	Reset(ctx context.Context) error
	// Append adds one entry and returns its id.
	Append(ctx context.Context, fields ...Field) (string, error)
	// Read returns up to limit entries (0 means no limit) that come after the
	// entry with id after, or from the start when after is empty. It blocks
	// with no timeout until at least one such entry exists; only ctx ends
	// the wait.
	Read(ctx context.Context, after string, limit int) ([]Entry, error)
	// Len returns the number of entries currently in the log.
	Len(ctx context.Context) (int64, error)
	// LoadCursor returns the last id committed for group.
	LoadCursor(ctx context.Context, group string) (id string, ok bool, err error)
	// CommitCursor records id as the last entry group has processed.
	CommitCursor(ctx context.Context, group, id string) error
	// Name is the log's fixed identifier.
	Name() string
	Close() error
}
