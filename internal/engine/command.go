package engine

import (
	"sync"

	"pdf-annotator/internal/domain"
)

// CommandSlot is the single-slot channel between a toolbar and the engine.
// The toolbar posts one command and waits until Pending reports false
// before posting the next. Posting over an unconsumed command replaces it.
type CommandSlot struct {
	mu        sync.Mutex
	cmd       *domain.Command
	inFlight  bool
	processed uint64
	ready     chan struct{}
}

// NewCommandSlot creates an empty slot.
func NewCommandSlot() *CommandSlot {
	return &CommandSlot{ready: make(chan struct{}, 1)}
}

// Post places cmd in the slot. It reports true when an unconsumed command
// was overwritten.
func (s *CommandSlot) Post(cmd domain.Command) bool {
	s.mu.Lock()
	overwrote := s.cmd != nil
	s.cmd = &cmd
	s.mu.Unlock()

	select {
	case s.ready <- struct{}{}:
	default:
	}
	return overwrote
}

// Pending reports whether a command is waiting or being processed.
func (s *CommandSlot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cmd != nil || s.inFlight
}

// Processed returns how many commands have been fully handled.
func (s *CommandSlot) Processed() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.processed
}

// take removes the waiting command, marking the slot busy until done.
func (s *CommandSlot) take() (domain.Command, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil {
		return domain.Command{}, false
	}
	cmd := *s.cmd
	s.cmd = nil
	s.inFlight = true
	return cmd, true
}

// done acknowledges the command returned by the last take.
func (s *CommandSlot) done() {
	s.mu.Lock()
	s.inFlight = false
	s.processed++
	s.mu.Unlock()
}
