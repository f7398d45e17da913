package engine

import "pdf-annotator/internal/domain"

// DefaultUndoLimit is the number of snapshots kept on each stack.
const DefaultUndoLimit = 100

// Snapshot is a deep copy of the store contents at one point in time.
// Markers are part of it, so undo also reverts marker placement, marker
// removal and the markers dropped by clear-all.
type Snapshot struct {
	Highlights []domain.Highlight
	Markers    []domain.NumberMarker
}

// Clone returns a structurally independent copy of s.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Highlights: make([]domain.Highlight, len(s.Highlights)),
		Markers:    make([]domain.NumberMarker, len(s.Markers)),
	}
	for i, h := range s.Highlights {
		out.Highlights[i] = h.Clone()
	}
	copy(out.Markers, s.Markers)
	return out
}

// History holds the bounded undo and redo stacks.
type History struct {
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

// NewHistory creates an empty history. A non-positive limit selects
// DefaultUndoLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultUndoLimit
	}
	return &History{limit: limit}
}

// Push records the pre-mutation state and invalidates everything redoable.
func (h *History) Push(s Snapshot) {
	h.undo = pushBounded(h.undo, s.Clone(), h.limit)
	h.redo = h.redo[:0]
}

// Undo pops the most recent snapshot and stores current on the redo stack.
// It reports false, leaving both stacks untouched, when nothing can be undone.
func (h *History) Undo(current Snapshot) (Snapshot, bool) {
	if len(h.undo) == 0 {
		return Snapshot{}, false
	}
	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = pushBounded(h.redo, current.Clone(), h.limit)
	return prev, true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current Snapshot) (Snapshot, bool) {
	if len(h.redo) == 0 {
		return Snapshot{}, false
	}
	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = pushBounded(h.undo, current.Clone(), h.limit)
	return next, true
}

// CanUndo reports whether the undo stack is non-empty.
func (h *History) CanUndo() bool { return len(h.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth returns the number of undoable snapshots.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth returns the number of redoable snapshots.
func (h *History) RedoDepth() int { return len(h.redo) }

// Reset drops both stacks.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
}

// pushBounded appends s, evicting the oldest entry once limit is exceeded.
func pushBounded(stack []Snapshot, s Snapshot, limit int) []Snapshot {
	stack = append(stack, s)
	if len(stack) > limit {
		copy(stack, stack[len(stack)-limit:])
		clear(stack[limit:])
		stack = stack[:limit]
	}
	return stack
}
