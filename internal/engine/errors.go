package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyAreas         = errors.New("highlight requires at least one area")
	ErrNoPendingSelection = errors.New("no pending selection")
	ErrUnknownAction      = errors.New("unknown command action")
	ErrUnknownTool        = errors.New("unknown tool")
	ErrMissingColor       = errors.New("command requires a color")
)

// RehydrateError reports pages that never mounted while restoring markers.
// The markers stay in the store and are painted once their page mounts.
type RehydrateError struct {
	Missing []int // zero-based page indexes
	Err     error
}

func (e *RehydrateError) Error() string {
	return fmt.Sprintf("pages %v not mounted: %v", e.Missing, e.Err)
}

func (e *RehydrateError) Unwrap() error {
	return e.Err
}
