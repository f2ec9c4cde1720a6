package history

import (
	"strings"
	"time"
)

// ID identifies a history entry by its content hash.
type ID string

// Short returns the first n characters of the id.
func (id ID) Short(n int) string {
	if n <= 0 || n >= len(id) {
		return string(id)
	}
	return string(id[:n])
}

// String returns the full id.
func (id ID) String() string {
	return string(id)
}

// Signature represents who recorded an entry and when.
type Signature struct {
	Name  string
	Email string
	When  time.Time
}

// Metadata is the decoded payload of an entry. Only templates read it.
type Metadata struct {
	Description string
	Author      Signature
	Committer   Signature
}

// Summary returns the first line of the description.
func (m *Metadata) Summary() string {
	desc := strings.TrimLeft(m.Description, "\n")
	if idx := strings.IndexByte(desc, '\n'); idx != -1 {
		return desc[:idx]
	}
	return desc
}

// Entry is one immutable recorded state.
type Entry struct {
	ID      ID
	Parents []ID
	// Timestamp orders the ancestor walk.
	Timestamp time.Time
	// Meta is nil when the payload could not be decoded.
	Meta *Metadata
}

// IsRoot reports whether the entry has no parents.
func (e *Entry) IsRoot() bool {
	return len(e.Parents) == 0
}
