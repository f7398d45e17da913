package engine

import "pdf-annotator/internal/domain"

// Surface is the rendering collaborator. Paint receives the complete overlay
// state for every mounted page and replaces whatever was painted before.
// Paint is called with no engine lock held and may call back into the
// engine. Frames carry an increasing Seq; when updates race, keep the
// highest.
type Surface interface {
	Paint(frame Frame)
}

// MountedPage announces a page element that is ready to receive overlays,
// together with its current rendered size.
type MountedPage struct {
	Index      int
	Dimensions PageDimensions
}

// Frame is the overlay state derived from the store.
type Frame struct {
	Seq   uint64
	Pages []PageFrame
}

// Page returns the frame for a page index.
func (f Frame) Page(index int) (PageFrame, bool) {
	for _, p := range f.Pages {
		if p.Index == index {
			return p, true
		}
	}
	return PageFrame{}, false
}

// PageFrame holds the overlays of one mounted page.
type PageFrame struct {
	Index      int
	Highlights []HighlightOverlay
	Markers    []MarkerOverlay
}

// HighlightOverlay paints one area of a highlight. Interactive overlays
// accept clicks (eraser mode); otherwise they are visually inert.
type HighlightOverlay struct {
	HighlightID string
	Color       string
	Rect        PixelRect
	Interactive bool
}

// MarkerOverlay paints a number marker as a circle inscribed in Rect.
type MarkerOverlay struct {
	Number      int
	Rect        PixelRect
	Interactive bool
}

// SelectionEvent is raised by the surface when the user selects text.
// Areas are percentages of the page.
type SelectionEvent struct {
	SelectedText    string
	PageIndex       int
	SelectionRegion domain.Area
	HighlightAreas  []domain.Area
}

// PointerEvent is a click on a page element in page-relative pixels.
type PointerEvent struct {
	PageIndex int
	X         float64
	Y         float64
}

// MarkerPosition is passed to collaborators when a marker is placed.
type MarkerPosition struct {
	X          float64
	Y          float64
	PageNumber int
}

type nopSurface struct{}

func (nopSurface) Paint(Frame) {}
