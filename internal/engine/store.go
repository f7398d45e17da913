package engine

import (
	"fmt"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/id"
)

// Store is the in-memory collection of highlights and markers for the open
// document. Every structural mutation pushes the pre-mutation state onto
// the history first. Store is not safe for concurrent use; Engine
// serializes access to it.
type Store struct {
	highlights []domain.Highlight
	markers    []domain.NumberMarker
	history    *History
	onChange   func()
	newID      func() (string, error)
}

// NewStore creates an empty store recording into history.
func NewStore(history *History) *Store {
	return &Store{
		highlights: make([]domain.Highlight, 0),
		markers:    make([]domain.NumberMarker, 0),
		history:    history,
		onChange:   func() {},
		newID: func() (string, error) {
			return id.Generate(id.PrefixHighlight)
		},
	}
}

// OnChange registers fn to be called after every mutation, including
// benign no-op removals and undo/redo.
func (s *Store) OnChange(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.onChange = fn
}

// CreateHighlight appends a new highlight. Highlights without areas are
// rejected before anything is recorded.
func (s *Store) CreateHighlight(color string, areas []domain.Area, text string) (domain.Highlight, error) {
	if len(areas) == 0 {
		return domain.Highlight{}, ErrEmptyAreas
	}
	hid, err := s.newID()
	if err != nil {
		return domain.Highlight{}, fmt.Errorf("create highlight: %w", err)
	}

	h := domain.Highlight{ID: hid, Color: color, Areas: areas, Text: text}.Clone()

	s.history.Push(s.Snapshot())
	s.highlights = append(s.highlights, h)
	s.onChange()
	return h.Clone(), nil
}

// RemoveHighlight deletes the highlight with the given id. An unknown id is
// a no-op that is still recorded in the history.
func (s *Store) RemoveHighlight(highlightID string) bool {
	s.history.Push(s.Snapshot())

	removed := false
	kept := s.highlights[:0]
	for _, h := range s.highlights {
		if h.ID == highlightID {
			removed = true
			continue
		}
		kept = append(kept, h)
	}
	clear(s.highlights[len(kept):])
	s.highlights = kept
	s.onChange()
	return removed
}

// ClearAll empties highlights and markers.
func (s *Store) ClearAll() {
	s.history.Push(s.Snapshot())
	s.highlights = make([]domain.Highlight, 0)
	s.markers = make([]domain.NumberMarker, 0)
	s.onChange()
}

// AddMarker appends a marker record.
func (s *Store) AddMarker(m domain.NumberMarker) {
	s.history.Push(s.Snapshot())
	s.markers = append(s.markers, m)
	s.onChange()
}

// RemoveMarker deletes the first marker carrying number.
func (s *Store) RemoveMarker(number int) bool {
	idx := -1
	for i, m := range s.markers {
		if m.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.history.Push(s.Snapshot())
	s.markers = append(s.markers[:idx:idx], s.markers[idx+1:]...)
	s.onChange()
	return true
}

// ReplaceAll adopts snap without touching the history.
func (s *Store) ReplaceAll(snap Snapshot) {
	c := snap.Clone()
	s.highlights = c.Highlights
	s.markers = c.Markers
}

// ReplaceMarkers adopts markers without touching the history or highlights.
func (s *Store) ReplaceMarkers(markers []domain.NumberMarker) {
	s.markers = append(make([]domain.NumberMarker, 0, len(markers)), markers...)
}

// Undo restores the previous snapshot. It reports false when the undo stack
// is empty.
func (s *Store) Undo() bool {
	prev, ok := s.history.Undo(s.Snapshot())
	if !ok {
		return false
	}
	s.ReplaceAll(prev)
	s.onChange()
	return true
}

// Redo re-applies the most recently undone snapshot.
func (s *Store) Redo() bool {
	next, ok := s.history.Redo(s.Snapshot())
	if !ok {
		return false
	}
	s.ReplaceAll(next)
	s.onChange()
	return true
}

// Snapshot returns a deep copy of the current contents.
func (s *Store) Snapshot() Snapshot {
	return Snapshot{Highlights: s.highlights, Markers: s.markers}.Clone()
}

// Highlights returns a copy of the current highlights.
func (s *Store) Highlights() []domain.Highlight {
	return s.Snapshot().Highlights
}

// Markers returns a copy of the current markers.
func (s *Store) Markers() []domain.NumberMarker {
	return s.Snapshot().Markers
}

// History exposes the store's undo/redo stacks.
func (s *Store) History() *History {
	return s.history
}
