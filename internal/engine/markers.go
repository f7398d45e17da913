package engine

import (
	"context"
	"slices"
	"time"

	"pdf-annotator/internal/domain"
)

// DefaultMarkerRadius is the marker circle radius in pixels.
const DefaultMarkerRadius = 12.0

// DefaultRehydrateTimeout bounds how long Rehydrate waits for marker pages.
const DefaultRehydrateTimeout = 5 * time.Second

// PlaceMarker adds a marker at a page-relative pixel position and returns
// it. Numbers come from a session counter that only moves forward, so a
// marker removed by undo never gives its number back.
func (e *Engine) PlaceMarker(pageNumber int, x, y float64) domain.NumberMarker {
	m, _ := e.placeMarker(pageNumber, x, y, false)
	return m
}

func (e *Engine) placeMarker(pageNumber int, x, y float64, requireTool bool) (domain.NumberMarker, bool) {
	var (
		m      domain.NumberMarker
		placed bool
	)
	e.update(func() bool {
		if requireTool && !e.tools.placing() {
			return false
		}
		m = domain.NumberMarker{Number: e.nextMarker, X: x, Y: y, PageNumber: pageNumber}
		e.nextMarker++
		e.store.AddMarker(m)
		placed = true
		return true
	})
	if !placed {
		return domain.NumberMarker{}, false
	}

	e.logger.Debug("Marker placed", "number", m.Number, "page", pageNumber)
	if e.hooks.OnMarkerPlaced != nil {
		e.hooks.OnMarkerPlaced(m.Number, MarkerPosition{X: x, Y: y, PageNumber: pageNumber})
	}
	return m, true
}

// RemoveMarker deletes a marker by number.
func (e *Engine) RemoveMarker(number int) bool {
	var removed bool
	e.update(func() bool {
		removed = e.store.RemoveMarker(number)
		return removed
	})
	return removed
}

// NextMarkerNumber returns the number the next placed marker will get.
func (e *Engine) NextMarkerNumber() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nextMarker
}

// Rehydrate adopts saved markers without recording history, advances the
// counter past every saved number, then waits until the pages the markers
// live on have mounted. The wait is bounded by ctx and the configured
// rehydrate timeout; on expiry a *RehydrateError lists the missing pages.
func (e *Engine) Rehydrate(ctx context.Context, saved []domain.NumberMarker) error {
	e.update(func() bool {
		e.store.ReplaceMarkers(saved)
		for _, m := range saved {
			e.nextMarker = max(e.nextMarker, m.Number+1)
		}
		return false
	})

	pages := make([]int, 0, len(saved))
	for _, m := range saved {
		pages = append(pages, m.PageIndex())
	}
	slices.Sort(pages)
	pages = slices.Compact(pages)

	ctx, cancel := context.WithTimeout(ctx, e.rehydrateTimeout)
	defer cancel()
	return e.waitForPages(ctx, pages)
}

// waitForPages blocks until every page in pages has mounted.
func (e *Engine) waitForPages(ctx context.Context, pages []int) error {
	for {
		e.mu.Lock()
		var missing []int
		for _, p := range pages {
			if _, ok := e.mounted[p]; !ok {
				missing = append(missing, p)
			}
		}
		signal := e.mountSignal
		e.mu.Unlock()

		if len(missing) == 0 {
			return nil
		}

		select {
		case <-signal:
		case <-ctx.Done():
			e.logger.Warn("Marker pages did not mount in time", "pages", missing)
			return &RehydrateError{Missing: missing, Err: ctx.Err()}
		}
	}
}

func markerOverlay(m domain.NumberMarker, radius float64, interactive bool) MarkerOverlay {
	return MarkerOverlay{
		Number: m.Number,
		Rect: PixelRect{
			Left:   m.X - radius,
			Top:    m.Y - radius,
			Width:  2 * radius,
			Height: 2 * radius,
		},
		Interactive: interactive,
	}
}
