// Package history models recorded entries and walks their ancestry lazily.
package history

import "errors"

var (
	// ErrNotFound is returned by a Store for an unknown id.
	ErrNotFound = errors.New("entry not found")
	// ErrClosed is returned by Stream.Next after Close.
	ErrClosed = errors.New("stream closed")
)

// Store loads entries by id.
// This abstraction allows the walk to run against Git or in-memory fixtures.
type Store interface {
	Entry(id ID) (*Entry, error)
}

// Stream is a forward-only, single-use sequence of entries.
// Next returns io.EOF once the sequence is exhausted.
type Stream interface {
	Next() (*Entry, error)
	Close() error
}
