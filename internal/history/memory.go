package history

import "sync"

// MemoryStore is an in-memory Store.
// It records every fetch so callers can check which entries were read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[ID]*Entry
	fetched []ID
	// Fail makes Entry return the given error for specific ids.
	Fail map[ID]error
}

// NewMemoryStore creates a store holding the given entries.
func NewMemoryStore(entries ...*Entry) *MemoryStore {
	s := &MemoryStore{entries: make(map[ID]*Entry, len(entries))}
	for _, e := range entries {
		s.Add(e)
	}
	return s
}

// Add inserts or replaces an entry.
func (s *MemoryStore) Add(e *Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[e.ID] = e
}

// Entry returns the entry with the given id.
func (s *MemoryStore) Entry(id ID) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, id)
	if err, ok := s.Fail[id]; ok {
		return nil, err
	}
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return e, nil
}

// Fetched returns the ids requested so far, in order.
func (s *MemoryStore) Fetched() []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ID(nil), s.fetched...)
}

// WasFetched reports whether id has been requested.
func (s *MemoryStore) WasFetched(id ID) bool {
	for _, f := range s.Fetched() {
		if f == id {
			return true
		}
	}
	return false
}

// Compile-time interface conformance check.
var _ Store = (*MemoryStore)(nil)
