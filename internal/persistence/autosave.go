package persistence

import (
	"context"
	"sync"
	"time"

	"pdf-annotator/internal/domain"
)

// DefaultAutosaveDelay is the quiet period after the last edit before an
// automatic save.
const DefaultAutosaveDelay = 3 * time.Second

const saveTimeout = 30 * time.Second

// Saver stores a payload for a document. *Adapter implements it.
type Saver interface {
	Save(ctx context.Context, documentID string, annotations *domain.Annotations) error
}

// stopper is the part of *time.Timer the debounce needs.
type stopper interface {
	Stop() bool
}

// AutoSaveOptions configures an AutoSaver.
type AutoSaveOptions struct {
	Delay  time.Duration
	Logger domain.Logger
	// OnSaveError is notified of failed saves from its own goroutine.
	OnSaveError func(error)
}

// AutoSaver saves the current annotations once edits have been quiet for
// the configured delay. Each Touch restarts the delay.
type AutoSaver struct {
	saver      Saver
	documentID string
	current    func() *domain.Annotations
	delay      time.Duration
	logger     domain.Logger
	onError    func(error)
	afterFunc  func(time.Duration, func()) stopper

	mu     sync.Mutex
	timer  stopper
	dirty  bool
	gen    uint64
	saves  int
	closed bool

	// saveMu keeps saves for the document strictly sequential.
	saveMu sync.Mutex
}

// NewAutoSaver creates a debounced saver for documentID. current is called
// at save time to obtain the payload.
func NewAutoSaver(saver Saver, documentID string, current func() *domain.Annotations, opts AutoSaveOptions) *AutoSaver {
	if opts.Delay <= 0 {
		opts.Delay = DefaultAutosaveDelay
	}
	if opts.Logger == nil {
		opts.Logger = nopLogger{}
	}
	return &AutoSaver{
		saver:      saver,
		documentID: documentID,
		current:    current,
		delay:      opts.Delay,
		logger:     opts.Logger,
		onError:    opts.OnSaveError,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
	}
}

// Touch marks the document dirty and restarts the debounce timer.
func (s *AutoSaver) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.dirty = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.afterFunc(s.delay, s.fire)
}

// Flush saves immediately if there are unsaved changes.
func (s *AutoSaver) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.save(ctx)
}

// Close stops the timer. A save already in flight completes but its result
// is ignored.
func (s *AutoSaver) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Dirty reports whether there are unsaved changes.
func (s *AutoSaver) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// SaveCount returns the number of successful saves.
func (s *AutoSaver) SaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *AutoSaver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	_ = s.save(ctx)
}

func (s *AutoSaver) save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	if s.closed || !s.dirty {
		s.mu.Unlock()
		return nil
	}
	gen := s.gen
	s.mu.Unlock()

	err := s.saver.Save(ctx, s.documentID, s.current())

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return err
	}
	if err != nil {
		s.logger.Error("Autosave failed", err, "document_id", s.documentID)
		if s.onError != nil {
			go s.onError(err)
		}
		return err
	}
	s.saves++
	// Edits made while the save was running keep the document dirty.
	if s.gen == gen {
		s.dirty = false
	}
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})         {}
func (nopLogger) Error(string, error, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{})        {}
func (nopLogger) Warn(string, ...interface{})         {}
