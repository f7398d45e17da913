package domain

// Tool identifies the active annotation tool.
type Tool string

const (
	ToolSelect      Tool = "select"
	ToolHighlighter Tool = "highlighter"
	ToolEraser      Tool = "eraser"
	ToolNumber      Tool = "number"
	ToolText        Tool = "text"
)

// Valid reports whether t is one of the known tools.
func (t Tool) Valid() bool {
	switch t {
	case ToolSelect, ToolHighlighter, ToolEraser, ToolNumber, ToolText:
		return true
	}
	return false
}

// Action names a toolbar command.
type Action string

const (
	ActionActivateTool           Action = "activate-tool"
	ActionChangeColor            Action = "change-color"
	ActionChangeHighlighterColor Action = "change-highlighter-color"
	ActionClearAll               Action = "clear-all"
	ActionUndo                   Action = "undo"
	ActionRedo                   Action = "redo"
)

// Command is a message posted by the toolbar to the engine.
type Command struct {
	Action Action         `json:"action" yaml:"action"`
	Tool   Tool           `json:"tool,omitempty" yaml:"tool,omitempty"`
	Color  string         `json:"color,omitempty" yaml:"color,omitempty"`
	Data   map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}
