// Package surface provides rendering surfaces that do not draw to a screen.
package surface

import (
	"sync"

	"pdf-annotator/internal/engine"
)

// Headless records every painted frame. It is used by the CLI replay
// command and by tests.
type Headless struct {
	mu     sync.Mutex
	frames []engine.Frame
}

// NewHeadless creates an empty headless surface.
func NewHeadless() *Headless {
	return &Headless{}
}

// Paint implements engine.Surface.
func (h *Headless) Paint(frame engine.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = append(h.frames, frame)
}

// Latest returns the frame with the highest Seq, which is the current
// state even when concurrent updates painted out of order.
func (h *Headless) Latest() (engine.Frame, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.frames) == 0 {
		return engine.Frame{}, false
	}
	latest := h.frames[0]
	for _, f := range h.frames[1:] {
		if f.Seq > latest.Seq {
			latest = f
		}
	}
	return latest, true
}

// Count returns the number of frames painted so far.
func (h *Headless) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.frames)
}

// Pages builds mount announcements for pages first..first+n-1 that all
// share the same dimensions.
func Pages(first, n int, dims engine.PageDimensions) []engine.MountedPage {
	pages := make([]engine.MountedPage, n)
	for i := range pages {
		pages[i] = engine.MountedPage{Index: first + i, Dimensions: dims}
	}
	return pages
}
