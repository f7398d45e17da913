package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdf-annotator/internal/domain"
)

func markerSnap(n int) Snapshot {
	return Snapshot{Markers: []domain.NumberMarker{{Number: n, PageNumber: 1}}}
}

func TestHistory_UndoRedo(t *testing.T) {
	h := NewHistory(0)
	h.Push(markerSnap(1))

	prev, ok := h.Undo(markerSnap(2))
	require.True(t, ok)
	assert.Equal(t, 1, prev.Markers[0].Number)
	assert.False(t, h.CanUndo())
	assert.True(t, h.CanRedo())

	next, ok := h.Redo(prev)
	require.True(t, ok)
	assert.Equal(t, 2, next.Markers[0].Number)
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_EmptyStacks(t *testing.T) {
	h := NewHistory(5)

	_, ok := h.Undo(markerSnap(1))
	assert.False(t, ok)
	_, ok = h.Redo(markerSnap(1))
	assert.False(t, ok)
	assert.Zero(t, h.UndoDepth())
	assert.Zero(t, h.RedoDepth())
}

func TestHistory_PushClearsRedo(t *testing.T) {
	h := NewHistory(5)
	h.Push(markerSnap(1))
	_, _ = h.Undo(markerSnap(2))
	require.True(t, h.CanRedo())

	h.Push(markerSnap(3))

	assert.False(t, h.CanRedo())
}

func TestHistory_EvictsOldest(t *testing.T) {
	h := NewHistory(DefaultUndoLimit)
	for i := 1; i <= 150; i++ {
		h.Push(markerSnap(i))
	}
	require.Equal(t, DefaultUndoLimit, h.UndoDepth())

	var last Snapshot
	for h.CanUndo() {
		last, _ = h.Undo(Snapshot{})
	}
	assert.Equal(t, 51, last.Markers[0].Number)
	assert.Equal(t, DefaultUndoLimit, h.RedoDepth())
}

func TestHistory_PushCopies(t *testing.T) {
	h := NewHistory(5)
	s := Snapshot{Highlights: []domain.Highlight{{ID: "a", Color: "#fff", Areas: []domain.Area{{Left: 1}}}}}
	h.Push(s)

	s.Highlights[0].Areas[0].Left = 99

	prev, ok := h.Undo(Snapshot{})
	require.True(t, ok)
	assert.Equal(t, 1.0, prev.Highlights[0].Areas[0].Left)
}
