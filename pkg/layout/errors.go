package layout

import "errors"

var (
	// ErrInvalidTree is returned when a pass follows an index that is not in
	// the arena or the parent/child links are inconsistent.
	ErrInvalidTree = errors.New("invalid layout tree")

	// ErrMissingContainingBlock is reported for an out-of-flow box whose
	// containing block cannot be resolved; the viewport is used instead.
	ErrMissingContainingBlock = errors.New("missing containing block")

	// ErrScrollbarNonConvergence is returned when scrollbar presence keeps
	// changing after the maximum number of reflow iterations.
	ErrScrollbarNonConvergence = errors.New("scrollbar layout did not converge")

	// errReflow aborts a used-size pass after a cached ScrollbarInfo changed.
	errReflow = errors.New("scrollbar change requires reflow")
)
