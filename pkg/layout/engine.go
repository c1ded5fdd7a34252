package layout

import (
	"go.uber.org/zap"

	"boxflow/pkg/text"
)

// DefaultMaxReflowIterations bounds the scrollbar fixed-point loop.
const DefaultMaxReflowIterations = 4

// Options configure a LayoutEngine.
type Options struct {
	// ScrollbarWidth is the thickness of a classic scrollbar.
	ScrollbarWidth float64
	// OverlayScrollbars draw over content and take no layout space.
	OverlayScrollbars bool
	// MaxReflowIterations caps scrollbar-triggered reflows per frame.
	MaxReflowIterations int
	Logger              *zap.Logger
}

// LayoutEngine runs the intrinsic, used-size, scrollbar and out-of-flow
// passes over a Tree. It keeps no per-frame state of its own.
type LayoutEngine struct {
	shaper         text.Shaper
	scrollbarWidth float64
	overlay        bool
	maxIterations  int
	logger         *zap.Logger
}

// NewLayoutEngine creates an engine that delegates inline flow to shaper.
// A nil shaper lays inline content out as empty.
func NewLayoutEngine(shaper text.Shaper, opts Options) *LayoutEngine {
	le := &LayoutEngine{
		shaper:         shaper,
		scrollbarWidth: opts.ScrollbarWidth,
		overlay:        opts.OverlayScrollbars,
		maxIterations:  opts.MaxReflowIterations,
		logger:         opts.Logger,
	}
	if le.maxIterations <= 0 {
		le.maxIterations = DefaultMaxReflowIterations
	}
	if le.logger == nil {
		le.logger = zap.NewNop()
	}
	return le
}

// Shaper returns the inline shaping collaborator.
func (le *LayoutEngine) Shaper() text.Shaper { return le.shaper }

// ScrollbarWidth returns the configured scrollbar thickness.
func (le *LayoutEngine) ScrollbarWidth() float64 { return le.scrollbarWidth }

func (le *LayoutEngine) rootConstraints(t *Tree) constraints {
	return constraints{Avail: t.Viewport, StretchWidth: -1, StretchHeight: -1}
}
