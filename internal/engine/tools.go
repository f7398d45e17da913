package engine

import "pdf-annotator/internal/domain"

// Default tool attributes for a freshly opened document.
const (
	DefaultColor            = "#000000"
	DefaultHighlighterColor = "#ffff00"
	DefaultStyle            = "solid"
)

// ToolState is the active tool together with its attributes. Only
// HighlighterColor is applied to new highlights; Color and Style are kept
// and reported in Status for the pen and text tools of the host.
type ToolState struct {
	Tool             domain.Tool
	Color            string
	HighlighterColor string
	Style            string
}

// DefaultToolState returns the state a new engine starts in.
func DefaultToolState() ToolState {
	return ToolState{
		Tool:             domain.ToolSelect,
		Color:            DefaultColor,
		HighlighterColor: DefaultHighlighterColor,
		Style:            DefaultStyle,
	}
}

// acceptsSelection reports whether a text selection should raise the
// confirm affordance.
func (t ToolState) acceptsSelection() bool {
	return t.Tool == domain.ToolSelect || t.Tool == domain.ToolHighlighter
}

// erasing reports whether overlays are pointer-interactive.
func (t ToolState) erasing() bool {
	return t.Tool == domain.ToolEraser
}

// placing reports whether pointer events on a page place markers.
func (t ToolState) placing() bool {
	return t.Tool == domain.ToolNumber
}

// apply performs the tool-level part of a command. structural is returned
// for clear-all, undo and redo, which the caller forwards to the store.
func (t *ToolState) apply(cmd domain.Command) (structural bool, err error) {
	switch cmd.Action {
	case domain.ActionActivateTool:
		if !cmd.Tool.Valid() {
			return false, ErrUnknownTool
		}
		t.Tool = cmd.Tool
	case domain.ActionChangeColor:
		if cmd.Color == "" {
			return false, ErrMissingColor
		}
		t.Color = cmd.Color
	case domain.ActionChangeHighlighterColor:
		if cmd.Color == "" {
			return false, ErrMissingColor
		}
		t.HighlighterColor = cmd.Color
		if style, ok := cmd.Data["style"].(string); ok && style != "" {
			t.Style = style
		}
	case domain.ActionClearAll, domain.ActionUndo, domain.ActionRedo:
		return true, nil
	default:
		return false, ErrUnknownAction
	}
	return false, nil
}
