package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"pdf-annotator/internal/domain"
)

// Options configures an Engine.
type Options struct {
	UndoLimit        int
	MarkerRadius     float64
	RehydrateTimeout time.Duration
	Surface          Surface
	Logger           domain.Logger
	Hooks            Hooks
}

// Hooks are collaborator callbacks. They run with no engine lock held and
// may call back into the engine.
type Hooks struct {
	// OnChange fires after every store mutation.
	OnChange func()
	// OnStatus fires whenever toolbar-visible state may have changed.
	OnStatus func(Status)
	// OnMarkerPlaced lets collaborators such as a notes panel react.
	OnMarkerPlaced func(number int, pos MarkerPosition)
	// OnSelectionForwarded hands a selection to the chat/reference panel.
	OnSelectionForwarded func(SelectionEvent)
}

// Status is the state a toolbar needs to render its controls.
type Status struct {
	Tool             domain.Tool
	Color            string
	HighlighterColor string
	Style            string
	CanUndo          bool
	CanRedo          bool
	PendingSelection bool
}

// Engine owns the annotation store, the tool state machine and the marker
// counter for one open document. All methods are safe for concurrent use;
// every mutation is applied completely under a single lock.
type Engine struct {
	mu          sync.Mutex
	store       *Store
	tools       ToolState
	nextMarker  int
	pending     *SelectionEvent
	mounted     map[int]PageDimensions
	mountSignal chan struct{}
	seq         uint64

	paintMu     sync.Mutex
	lastPainted uint64

	radius           float64
	rehydrateTimeout time.Duration
	surface          Surface
	logger           domain.Logger
	hooks            Hooks
}

// New creates an engine with an empty store.
func New(opts Options) *Engine {
	if opts.MarkerRadius <= 0 {
		opts.MarkerRadius = DefaultMarkerRadius
	}
	if opts.RehydrateTimeout <= 0 {
		opts.RehydrateTimeout = DefaultRehydrateTimeout
	}
	if opts.Surface == nil {
		opts.Surface = nopSurface{}
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}

	return &Engine{
		store:            NewStore(NewHistory(opts.UndoLimit)),
		tools:            DefaultToolState(),
		nextMarker:       1,
		mounted:          make(map[int]PageDimensions),
		mountSignal:      make(chan struct{}),
		radius:           opts.MarkerRadius,
		rehydrateTimeout: opts.RehydrateTimeout,
		surface:          opts.Surface,
		logger:           opts.Logger,
		hooks:            opts.Hooks,
	}
}

// Load replaces the store with persisted annotations, clears the history
// and rehydrates the saved markers. Saved highlights without areas are
// dropped. Loading is not an edit and does not
// fire OnChange.
func (e *Engine) Load(ctx context.Context, a *domain.Annotations) error {
	if a == nil {
		a = domain.EmptyAnnotations()
	}
	highlights := make([]domain.Highlight, 0, len(a.Highlights))
	for _, h := range a.Highlights {
		if len(h.Areas) == 0 {
			e.logger.Warn("Dropping saved highlight without areas", "highlight_id", h.ID)
			continue
		}
		highlights = append(highlights, h)
	}

	e.update(func() bool {
		e.store.ReplaceAll(Snapshot{Highlights: highlights})
		e.store.History().Reset()
		return false
	})
	return e.Rehydrate(ctx, a.NumberMarkers)
}

// Export returns the current store contents as a persistable payload.
// LastModified is left for the persistence layer to stamp.
func (e *Engine) Export() *domain.Annotations {
	e.mu.Lock()
	snap := e.store.Snapshot()
	e.mu.Unlock()
	return &domain.Annotations{Highlights: snap.Highlights, NumberMarkers: snap.Markers}
}

// Highlights returns a copy of the current highlights.
func (e *Engine) Highlights() []domain.Highlight {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Highlights()
}

// Markers returns a copy of the current markers.
func (e *Engine) Markers() []domain.NumberMarker {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Markers()
}

// Status returns the toolbar-visible state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// UndoDepth returns the number of undoable snapshots.
func (e *Engine) UndoDepth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.History().UndoDepth()
}

// CreateHighlight adds a highlight in the given color.
func (e *Engine) CreateHighlight(color string, areas []domain.Area, text string) (domain.Highlight, error) {
	var (
		h   domain.Highlight
		err error
	)
	e.update(func() bool {
		h, err = e.store.CreateHighlight(color, areas, text)
		return err == nil
	})
	if err != nil {
		return domain.Highlight{}, err
	}
	e.logger.Debug("Highlight created", "highlight_id", h.ID, "areas", len(h.Areas))
	return h, nil
}

// RemoveHighlight deletes a highlight by id. Unknown ids are recorded as a
// no-op edit.
func (e *Engine) RemoveHighlight(highlightID string) bool {
	var removed bool
	e.update(func() bool {
		removed = e.store.RemoveHighlight(highlightID)
		return true
	})
	return removed
}

// ClearAll removes every highlight and marker.
func (e *Engine) ClearAll() {
	e.update(func() bool {
		e.store.ClearAll()
		return true
	})
}

// Undo restores the previous state. It reports false on an empty stack.
func (e *Engine) Undo() bool {
	var ok bool
	e.update(func() bool {
		ok = e.store.Undo()
		return ok
	})
	return ok
}

// Redo re-applies the last undone state. It reports false on an empty stack.
func (e *Engine) Redo() bool {
	var ok bool
	e.update(func() bool {
		ok = e.store.Redo()
		return ok
	})
	return ok
}

// Dispatch performs a toolbar command synchronously. Invalid commands are
// logged and ignored; the returned error is informational only.
func (e *Engine) Dispatch(cmd domain.Command) error {
	var (
		structural bool
		err        error
	)
	e.update(func() bool {
		structural, err = e.tools.apply(cmd)
		if err == nil && cmd.Action == domain.ActionActivateTool && !e.tools.acceptsSelection() {
			e.pending = nil
		}
		return false
	})
	if err != nil {
		e.logger.Warn("Ignoring toolbar command", "action", cmd.Action, "tool", cmd.Tool, "reason", err.Error())
		return err
	}
	if !structural {
		return nil
	}

	switch cmd.Action {
	case domain.ActionClearAll:
		e.ClearAll()
	case domain.ActionUndo:
		e.Undo()
	case domain.ActionRedo:
		e.Redo()
	}
	return nil
}

// Run consumes commands from slot until ctx is done. Each command is
// performed exactly once and acknowledged through the slot.
func (e *Engine) Run(ctx context.Context, slot *CommandSlot) error {
	for {
		for {
			cmd, ok := slot.take()
			if !ok {
				break
			}
			_ = e.Dispatch(cmd)
			slot.done()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-slot.ready:
		}
	}
}

// Post places cmd on slot, logging when an unobserved command is replaced.
func (e *Engine) Post(slot *CommandSlot, cmd domain.Command) {
	if slot.Post(cmd) {
		e.logger.Warn("Toolbar command overwritten before it was processed", "action", cmd.Action)
	}
}

// HandleSelection raises the confirm affordance for a text selection when
// the select or highlighter tool is active. Selections never mutate the
// store by themselves.
func (e *Engine) HandleSelection(ev SelectionEvent) bool {
	var accepted bool
	e.update(func() bool {
		if !e.tools.acceptsSelection() || len(ev.HighlightAreas) == 0 {
			return false
		}
		sel := ev
		sel.HighlightAreas = slices.Clone(ev.HighlightAreas)
		e.pending = &sel
		accepted = true
		return false
	})
	return accepted
}

// PendingSelection returns the selection awaiting confirmation.
func (e *Engine) PendingSelection() (SelectionEvent, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return SelectionEvent{}, false
	}
	return *e.pending, true
}

// ConfirmHighlight turns the pending selection into a highlight using the
// active highlighter color.
func (e *Engine) ConfirmHighlight() (domain.Highlight, error) {
	var (
		h   domain.Highlight
		err error
	)
	e.update(func() bool {
		if e.pending == nil {
			err = ErrNoPendingSelection
			return false
		}
		sel := e.pending
		h, err = e.store.CreateHighlight(e.tools.HighlighterColor, sel.HighlightAreas, sel.SelectedText)
		if err != nil {
			return false
		}
		e.pending = nil
		return true
	})
	return h, err
}

// ForwardSelection hands the pending selection to the chat/reference
// collaborator instead of highlighting it.
func (e *Engine) ForwardSelection() (SelectionEvent, error) {
	var (
		sel SelectionEvent
		err error
	)
	e.update(func() bool {
		if e.pending == nil {
			err = ErrNoPendingSelection
			return false
		}
		sel = *e.pending
		e.pending = nil
		return false
	})
	if err != nil {
		return SelectionEvent{}, err
	}
	if e.hooks.OnSelectionForwarded != nil {
		e.hooks.OnSelectionForwarded(sel)
	}
	return sel, nil
}

// DismissSelection drops the pending selection.
func (e *Engine) DismissSelection() {
	e.update(func() bool {
		e.pending = nil
		return false
	})
}

// HandleHighlightClick removes the clicked highlight when the eraser is
// active. Clicks under other tools are ignored.
func (e *Engine) HandleHighlightClick(highlightID string) bool {
	var removed bool
	e.update(func() bool {
		if !e.tools.erasing() {
			return false
		}
		removed = e.store.RemoveHighlight(highlightID)
		return true
	})
	return removed
}

// HandleMarkerClick removes the clicked marker when the eraser is active.
func (e *Engine) HandleMarkerClick(number int) bool {
	var removed bool
	e.update(func() bool {
		if !e.tools.erasing() {
			return false
		}
		removed = e.store.RemoveMarker(number)
		return removed
	})
	return removed
}

// HandlePagePointer places a marker at the pointer position when the number
// tool is active.
func (e *Engine) HandlePagePointer(ev PointerEvent) (domain.NumberMarker, bool) {
	return e.placeMarker(ev.PageIndex+1, ev.X, ev.Y, true)
}

// PagesMounted is the readiness signal from the surface. It records the
// rendered size of each page, repaints and wakes marker rehydration.
// Calling it again for a mounted page updates its size (zoom, rotation).
func (e *Engine) PagesMounted(pages ...MountedPage) {
	e.update(func() bool {
		for _, p := range pages {
			e.mounted[p.Index] = p.Dimensions
		}
		close(e.mountSignal)
		e.mountSignal = make(chan struct{})
		return false
	})
}

// PagesUnmounted forgets pages the surface has torn down.
func (e *Engine) PagesUnmounted(indexes ...int) {
	e.update(func() bool {
		for _, i := range indexes {
			delete(e.mounted, i)
		}
		return false
	})
}

// update runs fn under the lock, then paints and notifies with no lock
// held, so the surface and hooks may re-enter the engine. A frame older
// than one already handed out is dropped; under concurrent updates a
// surface may still receive frames out of Seq order and should keep the
// highest.
// fn reports whether the store changed.
func (e *Engine) update(fn func() bool) {
	e.mu.Lock()
	changed := fn()
	e.seq++
	frame := e.frameLocked()
	status := e.statusLocked()
	e.mu.Unlock()

	e.paintMu.Lock()
	fresh := frame.Seq > e.lastPainted
	if fresh {
		e.lastPainted = frame.Seq
	}
	e.paintMu.Unlock()

	if fresh {
		e.surface.Paint(frame)
		if e.hooks.OnStatus != nil {
			e.hooks.OnStatus(status)
		}
	}
	if changed && e.hooks.OnChange != nil {
		e.hooks.OnChange()
	}
}

func (e *Engine) statusLocked() Status {
	h := e.store.History()
	return Status{
		Tool:             e.tools.Tool,
		Color:            e.tools.Color,
		HighlighterColor: e.tools.HighlighterColor,
		Style:            e.tools.Style,
		CanUndo:          h.CanUndo(),
		CanRedo:          h.CanRedo(),
		PendingSelection: e.pending != nil,
	}
}

// frameLocked derives the overlays of every mounted page from the store.
func (e *Engine) frameLocked() Frame {
	indexes := make([]int, 0, len(e.mounted))
	for i := range e.mounted {
		indexes = append(indexes, i)
	}
	slices.Sort(indexes)

	interactive := e.tools.erasing()
	frame := Frame{Seq: e.seq, Pages: make([]PageFrame, 0, len(indexes))}
	byPage := make(map[int]int, len(indexes))
	for _, i := range indexes {
		byPage[i] = len(frame.Pages)
		frame.Pages = append(frame.Pages, PageFrame{Index: i})
	}

	for _, h := range e.store.highlights {
		for _, a := range h.Areas {
			pos, ok := byPage[a.PageIndex]
			if !ok {
				continue
			}
			pf := &frame.Pages[pos]
			pf.Highlights = append(pf.Highlights, HighlightOverlay{
				HighlightID: h.ID,
				Color:       h.Color,
				Rect:        ToPixels(a, e.mounted[a.PageIndex]),
				Interactive: interactive,
			})
		}
	}
	for _, m := range e.store.markers {
		pos, ok := byPage[m.PageIndex()]
		if !ok {
			continue
		}
		pf := &frame.Pages[pos]
		pf.Markers = append(pf.Markers, markerOverlay(m, e.radius, interactive))
	}
	return frame
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}
