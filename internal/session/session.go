// Package session ties an engine to persistence for one open document.
package session

import (
	"context"
	"errors"
	"time"

	"pdf-annotator/internal/domain"
	"pdf-annotator/internal/engine"
	"pdf-annotator/internal/persistence"
)

// Options configures a Session.
type Options struct {
	Engine        engine.Options
	AutosaveDelay time.Duration
	OnSaveError   func(error)
	Logger        domain.Logger
}

// Session is one open document: its engine, the adapter it was loaded
// through and the autosaver watching it.
type Session struct {
	documentID string
	engine     *engine.Engine
	adapter    *persistence.Adapter
	saver      *persistence.AutoSaver
	logger     domain.Logger
}

// New creates a session for documentID. The engine is usable immediately
// so the host can announce mounted pages before or during Open.
func New(adapter *persistence.Adapter, documentID string, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = opts.Engine.Logger
	}
	if opts.Logger == nil {
		opts.Logger = discard{}
	}
	if opts.Engine.Logger == nil {
		opts.Engine.Logger = opts.Logger
	}

	s := &Session{documentID: documentID, adapter: adapter, logger: opts.Logger}

	hostChange := opts.Engine.Hooks.OnChange
	opts.Engine.Hooks.OnChange = func() {
		s.saver.Touch()
		if hostChange != nil {
			hostChange()
		}
	}
	s.engine = engine.New(opts.Engine)
	s.saver = persistence.NewAutoSaver(adapter, documentID, s.engine.Export, persistence.AutoSaveOptions{
		Delay:       opts.AutosaveDelay,
		Logger:      opts.Logger,
		OnSaveError: opts.OnSaveError,
	})
	return s
}

// Open loads the saved annotations into the engine and restores markers.
// Markers whose pages never mount are logged and painted later; only
// cancellation of ctx is returned as an error.
func (s *Session) Open(ctx context.Context) error {
	saved := s.adapter.Load(ctx, s.documentID)

	err := s.engine.Load(ctx, saved)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var rerr *engine.RehydrateError
	if errors.As(err, &rerr) {
		s.logger.Warn("Some markers wait for their pages", "document_id", s.documentID, "pages", rerr.Missing)
	} else if err != nil {
		return err
	}

	s.logger.Info("Document opened",
		"document_id", s.documentID,
		"highlights", len(saved.Highlights),
		"markers", len(saved.NumberMarkers))
	return nil
}

// Engine returns the session's engine.
func (s *Session) Engine() *engine.Engine {
	return s.engine
}

// DocumentID returns the open document.
func (s *Session) DocumentID() string {
	return s.documentID
}

// Dirty reports whether edits are waiting to be saved.
func (s *Session) Dirty() bool {
	return s.saver.Dirty()
}

// SaveCount returns the number of successful saves.
func (s *Session) SaveCount() int {
	return s.saver.SaveCount()
}

// Flush saves pending edits now.
func (s *Session) Flush(ctx context.Context) error {
	return s.saver.Flush(ctx)
}

// Close flushes pending edits and stops autosaving. The flush error is
// returned but the session is closed regardless.
func (s *Session) Close(ctx context.Context) error {
	err := s.saver.Flush(ctx)
	if err != nil {
		s.logger.Error("Final save failed", err, "document_id", s.documentID)
	}
	s.saver.Close()
	return err
}

type discard struct{}

func (discard) Info(string, ...interface{})         {}
func (discard) Error(string, error, ...interface{}) {}
func (discard) Debug(string, ...interface{})        {}
func (discard) Warn(string, ...interface{})         {}
