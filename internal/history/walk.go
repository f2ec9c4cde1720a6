package history

import (
	"errors"
	"fmt"
	"io"

	"github.com/emirpasic/gods/queues/priorityqueue"
)

// newestFirst orders ready entries by timestamp, most recent first.
// Ties are broken by the larger id so the order is stable across runs.
func newestFirst(a, b interface{}) int {
	ea := a.(*Entry)
	eb := b.(*Entry)
	switch {
	case ea.Timestamp.After(eb.Timestamp):
		return -1
	case eb.Timestamp.After(ea.Timestamp):
		return 1
	case ea.ID > eb.ID:
		return -1
	case ea.ID < eb.ID:
		return 1
	default:
		return 0
	}
}

// ancestorWalk yields the ancestors of its heads, children before parents.
// Among entries whose loaded children have all been yielded, the newest
// comes first, so histories with ordered timestamps come out newest first.
//
// The parents of a yielded entry are loaded on the following call to Next,
// so a consumer that stops pulling never causes further store reads. A child
// only reachable through entries that are not loaded yet is not known, and
// cannot hold its parent back.
type ancestorWalk struct {
	store Store
	heads []ID

	ready   *priorityqueue.Queue
	loaded  map[ID]*Entry
	yielded map[ID]struct{}
	queued  map[ID]struct{}
	// waiting counts the loaded, not yet yielded children of an entry.
	waiting map[ID]int
	pending []ID

	started bool
	closed  bool
	err     error
}

// WalkAncestors returns a lazy stream over heads and all their ancestors.
// Each entry is yielded once; the stream may be consumed only once.
func WalkAncestors(store Store, heads []ID) Stream {
	return &ancestorWalk{
		store:   store,
		heads:   append([]ID(nil), heads...),
		ready:   priorityqueue.NewWith(newestFirst),
		loaded:  make(map[ID]*Entry),
		yielded: make(map[ID]struct{}),
		queued:  make(map[ID]struct{}),
		waiting: make(map[ID]int),
	}
}

func (w *ancestorWalk) Next() (*Entry, error) {
	if w.closed {
		return nil, ErrClosed
	}
	if w.err != nil {
		return nil, w.err
	}
	if !w.started {
		w.started = true
		if err := w.load(w.heads); err != nil {
			return nil, err
		}
		w.heads = nil
	}
	if len(w.pending) > 0 {
		pending := w.pending
		w.pending = nil
		if err := w.load(pending); err != nil {
			return nil, err
		}
	}
	for {
		v, ok := w.ready.Dequeue()
		if !ok {
			if len(w.yielded) < len(w.loaded) {
				w.err = errors.New("history contains a cycle")
				return nil, w.err
			}
			return nil, io.EOF
		}
		entry := v.(*Entry)
		delete(w.queued, entry.ID)
		// A child loaded after this entry was queued holds it back.
		if w.waiting[entry.ID] > 0 {
			continue
		}
		w.yielded[entry.ID] = struct{}{}
		for _, p := range uniqueParents(entry) {
			w.waiting[p]--
			w.push(p)
		}
		w.pending = entry.Parents
		return entry, nil
	}
}

func (w *ancestorWalk) load(ids []ID) error {
	for _, id := range ids {
		if _, ok := w.loaded[id]; ok {
			continue
		}
		entry, err := w.store.Entry(id)
		if err != nil {
			w.err = fmt.Errorf("load entry %s: %w", id, err)
			return w.err
		}
		w.loaded[id] = entry
		for _, p := range uniqueParents(entry) {
			w.waiting[p]++
		}
		w.push(id)
	}
	return nil
}

// push queues a loaded entry once nothing holds it back.
func (w *ancestorWalk) push(id ID) {
	entry, ok := w.loaded[id]
	if !ok || w.waiting[id] > 0 {
		return
	}
	if _, done := w.yielded[id]; done {
		return
	}
	if _, dup := w.queued[id]; dup {
		return
	}
	w.queued[id] = struct{}{}
	w.ready.Enqueue(entry)
}

func uniqueParents(e *Entry) []ID {
	if len(e.Parents) < 2 {
		return e.Parents
	}
	out := make([]ID, 0, len(e.Parents))
	for _, p := range e.Parents {
		dup := false
		for _, q := range out {
			if q == p {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, p)
		}
	}
	return out
}

func (w *ancestorWalk) Close() error {
	w.closed = true
	w.ready.Clear()
	w.pending = nil
	return nil
}

// limited stops after a fixed number of successful pulls.
type limited struct {
	inner     Stream
	remaining int
}

// Take truncates s to its first n entries. A negative n leaves s unbounded.
// The inner stream is not pulled once the limit is reached.
func Take(s Stream, n int) Stream {
	if n < 0 {
		return s
	}
	return &limited{inner: s, remaining: n}
}

func (l *limited) Next() (*Entry, error) {
	if l.remaining <= 0 {
		if l.inner == nil {
			return nil, ErrClosed
		}
		return nil, io.EOF
	}
	if l.inner == nil {
		return nil, ErrClosed
	}
	entry, err := l.inner.Next()
	if err != nil {
		return nil, err
	}
	l.remaining--
	return entry, nil
}

func (l *limited) Close() error {
	if l.inner == nil {
		return nil
	}
	err := l.inner.Close()
	l.inner = nil
	return err
}

// Collect drains s into a slice. Intended for small streams and tests.
func Collect(s Stream) ([]*Entry, error) {
	var entries []*Entry
	for {
		entry, err := s.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)
	}
}
