package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/engine"
	"pdf-annotator/internal/session"
	"pdf-annotator/internal/surface"
)

// Script is a scripted editing session. Pages are mounted before the saved
// annotations are loaded; steps then run in order.
type Script struct {
	Pages ScriptPages  `yaml:"pages"`
	Steps []ScriptStep `yaml:"steps"`
}

// ScriptPages describes the rendered pages of the document.
type ScriptPages struct {
	Count    int     `yaml:"count"`
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Rotation int     `yaml:"rotation"`
}

// ScriptStep holds exactly one action.
type ScriptStep struct {
	Command   *domain.Command  `yaml:"command,omitempty"`
	Selection *ScriptSelection `yaml:"selection,omitempty"`
	Confirm   bool             `yaml:"confirm,omitempty"`
	Forward   bool             `yaml:"forward,omitempty"`
	Dismiss   bool             `yaml:"dismiss,omitempty"`
	Click     *ScriptClick     `yaml:"click,omitempty"`
	Pointer   *ScriptPointer   `yaml:"pointer,omitempty"`
	Mount     []int            `yaml:"mount,omitempty"`
	Unmount   []int            `yaml:"unmount,omitempty"`
}

// ScriptSelection is a text selection with areas in page percentages.
type ScriptSelection struct {
	Text      string        `yaml:"text"`
	PageIndex int           `yaml:"pageIndex"`
	Areas     []domain.Area `yaml:"areas"`
}

// ScriptClick clicks an overlay. Highlight is the 1-based position of the
// highlight in the current list, Marker the marker number.
type ScriptClick struct {
	Highlight int `yaml:"highlight,omitempty"`
	Marker    int `yaml:"marker,omitempty"`
}

// ScriptPointer is a click on a page in page-relative pixels.
type ScriptPointer struct {
	PageIndex int     `yaml:"pageIndex"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
}

// ReplayResult summarizes a replay.
type ReplayResult struct {
	Highlights int
	Markers    int
	Saves      int
	Frames     int
}

func newReplayCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <document-id> <script.yaml>",
		Short: "Replay a scripted editing session",
		Long: `Open a document, run the steps of a YAML script through the annotation
engine and save the result to the backend.

Example script:
  pages: {count: 2, width: 612, height: 792}
  steps:
    - command: {action: activate-tool, tool: highlighter}
    - selection:
        text: "Lorem ipsum"
        pageIndex: 0
        areas: [{pageIndex: 0, left: 10, top: 20, width: 30, height: 5}]
    - confirm: true
    - command: {action: activate-tool, tool: number}
    - pointer: {pageIndex: 1, x: 100, y: 140}`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := LoadScript(args[1])
			if err != nil {
				return err
			}
			res, err := replay(cmd.Context(), g, args[0], script)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Replayed %d step(s): %d highlight(s), %d marker(s), %d save(s)\n",
				len(script.Steps), res.Highlights, res.Markers, res.Saves)
			return nil
		},
	}
	return cmd
}

// LoadScript reads and checks a replay script.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

// ParseScript decodes a replay script and checks that every step holds
// exactly one action.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if s.Pages.Count < 0 || s.Pages.Width < 0 || s.Pages.Height < 0 {
		return nil, errors.New("parse script: page count and size must not be negative")
	}
	for i, step := range s.Steps {
		if n := step.actions(); n != 1 {
			return nil, fmt.Errorf("parse script: step %d has %d actions, want 1", i+1, n)
		}
	}
	return &s, nil
}

func (s ScriptStep) actions() int {
	n := 0
	for _, set := range []bool{
		s.Command != nil, s.Selection != nil, s.Confirm, s.Forward, s.Dismiss,
		s.Click != nil, s.Pointer != nil, s.Mount != nil, s.Unmount != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// replay opens documentID through the backend, runs the script against a
// headless surface and saves before returning.
func replay(ctx context.Context, g *globals, documentID string, script *Script) (ReplayResult, error) {
	headless := surface.NewHeadless()
	dims := engine.PageDimensions{Width: script.Pages.Width, Height: script.Pages.Height, Rotation: script.Pages.Rotation}

	s := session.New(g.adapter(), documentID, session.Options{
		Engine: engine.Options{
			UndoLimit:        g.cfg.GetUndoLimit(),
			MarkerRadius:     g.cfg.GetMarkerRadius(),
			RehydrateTimeout: g.cfg.GetRehydrateTimeout(),
			Surface:          headless,
		},
		AutosaveDelay: g.cfg.GetAutosaveDelay(),
		Logger:        g.logger,
	})
	e := s.Engine()
	e.PagesMounted(surface.Pages(0, script.Pages.Count, dims)...)

	if err := s.Open(ctx); err != nil {
		_ = s.Close(ctx)
		return ReplayResult{}, err
	}

	for i, step := range script.Steps {
		if err := runStep(e, step, dims); err != nil {
			g.logger.Warn("Replay step had no effect", "step", i+1, "reason", err.Error())
		}
	}

	if err := s.Close(ctx); err != nil {
		return ReplayResult{}, fmt.Errorf("save %s: %w", documentID, err)
	}
	return ReplayResult{
		Highlights: len(e.Highlights()),
		Markers:    len(e.Markers()),
		Saves:      s.SaveCount(),
		Frames:     headless.Count(),
	}, nil
}

var errNoEffect = errors.New("ignored by the active tool")

func runStep(e *engine.Engine, step ScriptStep, dims engine.PageDimensions) error {
	switch {
	case step.Command != nil:
		return e.Dispatch(*step.Command)
	case step.Selection != nil:
		sel := step.Selection
		ev := engine.SelectionEvent{
			SelectedText:   sel.Text,
			PageIndex:      sel.PageIndex,
			HighlightAreas: sel.Areas,
		}
		if len(sel.Areas) > 0 {
			ev.SelectionRegion = sel.Areas[0]
		}
		if !e.HandleSelection(ev) {
			return errNoEffect
		}
	case step.Confirm:
		_, err := e.ConfirmHighlight()
		return err
	case step.Forward:
		_, err := e.ForwardSelection()
		return err
	case step.Dismiss:
		e.DismissSelection()
	case step.Click != nil:
		return click(e, *step.Click)
	case step.Pointer != nil:
		p := step.Pointer
		if _, ok := e.HandlePagePointer(engine.PointerEvent{PageIndex: p.PageIndex, X: p.X, Y: p.Y}); !ok {
			return errNoEffect
		}
	case step.Mount != nil:
		pages := make([]engine.MountedPage, len(step.Mount))
		for i, idx := range step.Mount {
			pages[i] = engine.MountedPage{Index: idx, Dimensions: dims}
		}
		e.PagesMounted(pages...)
	case step.Unmount != nil:
		e.PagesUnmounted(step.Unmount...)
	}
	return nil
}

func click(e *engine.Engine, c ScriptClick) error {
	if c.Marker > 0 {
		if !e.HandleMarkerClick(c.Marker) {
			return errNoEffect
		}
		return nil
	}
	highlights := e.Highlights()
	if c.Highlight < 1 || c.Highlight > len(highlights) {
		return fmt.Errorf("no highlight at position %d", c.Highlight)
	}
	if !e.HandleHighlightClick(highlights[c.Highlight-1].ID) {
		return errNoEffect
	}
	return nil
}
