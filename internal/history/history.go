// Package history provides a linear undo/redo stack.
package history

import "sync"

// History is a linear list of records with a cursor. Records before the cursor
// can be undone, records after it can be redone. Pushing a record discards the
// redo tail.
//
// The zero value is an empty history ready to use.
type History[T any] struct {
	mu   sync.Mutex
	recs []T
	pos  int
}

// Push appends rec at the cursor and discards everything after it.
func (h *History[T]) Push(rec T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.recs[h.pos:])
	h.recs = append(h.recs[:h.pos], rec)
	h.pos++
}

// Undo steps the cursor back and returns the record to undo.
func (h *History[T]) Undo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.pos == 0 {
		return zero, false
	}
	h.pos--
	return h.recs[h.pos], true
}

// Redo steps the cursor forward and returns the record to redo.
func (h *History[T]) Redo() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.pos == len(h.recs) {
		return zero, false
	}
	h.pos++
	return h.recs[h.pos-1], true
}

// HasUndo reports whether there is a record to undo.
func (h *History[T]) HasUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos > 0
}

// HasRedo reports whether there is a record to redo.
func (h *History[T]) HasRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos < len(h.recs)
}

// Top returns the record that Undo would return next.
func (h *History[T]) Top() (T, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var zero T
	if h.pos == 0 {
		return zero, false
	}
	return h.recs[h.pos-1], true
}

// Position returns the cursor: the number of records that can be undone.
func (h *History[T]) Position() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pos
}

// Len returns the total number of records, including the redo tail.
func (h *History[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.recs)
}

// Clear drops every record.
func (h *History[T]) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clear(h.recs)
	h.recs = h.recs[:0]
	h.pos = 0
}
