package engine

import (
	"math"

	"pdf-annotator/internal/domain"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
)

// PageDimensions is the size of a page as currently rendered, after zoom
// and rotation have been applied. Rotation is clockwise in degrees.
type PageDimensions struct {
	Width    float64
	Height   float64
	Rotation int
}

// Scaled returns the dimensions multiplied by zoom.
func (p PageDimensions) Scaled(zoom float64) PageDimensions {
	return PageDimensions{Width: p.Width * zoom, Height: p.Height * zoom, Rotation: p.Rotation}
}

// PixelRect is an axis-aligned rectangle in rendered page pixels, origin at
// the top-left corner of the page element.
type PixelRect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// ToPixels converts a percentage area into the rectangle to paint on a page
// with the given rendered dimensions. Percentages outside [0,100] are not
// clamped and simply land off the page.
func ToPixels(area domain.Area, page PageDimensions) PixelRect {
	w, h := naturalSize(page)
	x0 := area.Left / 100 * w
	y0 := area.Top / 100 * h
	x1 := x0 + area.Width/100*w
	y1 := y0 + area.Height/100*h

	m := rotation(normalizeRotation(page.Rotation), w, h)
	return bounds(m, x0, y0, x1, y1)
}

// FromPixels converts a rendered rectangle back into a percentage area.
func FromPixels(pageIndex int, r PixelRect, page PageDimensions) domain.Area {
	w, h := naturalSize(page)
	if w == 0 || h == 0 {
		return domain.Area{PageIndex: pageIndex}
	}

	inv := rotation(normalizeRotation(page.Rotation), w, h).Inv()
	n := bounds(inv, r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)

	return domain.Area{
		PageIndex: pageIndex,
		Left:      n.Left / w * 100,
		Top:       n.Top / h * 100,
		Width:     n.Width / w * 100,
		Height:    n.Height / h * 100,
	}
}

// naturalSize returns the unrotated page size. Quarter turns swap the sides.
func naturalSize(page PageDimensions) (float64, float64) {
	switch normalizeRotation(page.Rotation) {
	case 90, 270:
		return page.Height, page.Width
	default:
		return page.Width, page.Height
	}
}

// normalizeRotation maps any angle onto 0, 90, 180 or 270.
func normalizeRotation(deg int) int {
	turns := int(math.Round(float64(deg) / 90))
	return ((turns%4)+4)%4 * 90
}

// rotation maps unrotated page coordinates (w x h, y pointing down) onto the
// page rotated clockwise by deg.
func rotation(deg int, w, h float64) matrix.Matrix {
	switch deg {
	case 90:
		return matrix.Matrix{0, 1, -1, 0, h, 0}
	case 180:
		return matrix.Matrix{-1, 0, 0, -1, w, h}
	case 270:
		return matrix.Matrix{0, -1, 1, 0, 0, w}
	default:
		return matrix.Identity
	}
}

// bounds transforms two opposite corners and returns the enclosing rectangle.
func bounds(m matrix.Matrix, x0, y0, x1, y1 float64) PixelRect {
	ax, ay := m.Apply(x0, y0)
	r := rect.Rect{LLx: ax, LLy: ay, URx: ax, URy: ay}
	r.Add(m.Apply(x1, y1))
	return PixelRect{Left: r.LLx, Top: r.LLy, Width: r.Dx(), Height: r.Dy()}
}
