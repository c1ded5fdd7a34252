// Package engine drives one document through reconcile, layout, scroll
// registration and display-list generation, and keeps the last good frame
// for queries.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"boxflow/pkg/display"
	"boxflow/pkg/layout"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// ErrNoFrame is returned by operations that need a committed frame before
// the first successful Layout.
var ErrNoFrame = errors.New("no committed frame")

// Options configure an Engine.
type Options struct {
	Layout layout.Options
	// Scroll is shared by every engine that renders into the same host.
	// NewEngine creates a private manager when nil.
	Scroll *scroll.Manager
	// OverlayScrollbarWidth and MinThumb are passed to the display list
	// generator.
	OverlayScrollbarWidth float64
	MinThumb              float64
	// WheelDuration and WheelEasing animate Wheel scrolls.
	WheelDuration time.Duration
	WheelEasing   scroll.Easing
	Logger        *zap.Logger
}

// Frame is one committed layout result.
type Frame struct {
	Doc      *style.Document
	Tree     *layout.Tree
	List     *display.List
	Viewport layout.Size
	// Result reports the reflow of this frame; zero when Reused.
	Result layout.Result
	// Reused is set when the document was unchanged and the previous tree
	// was kept.
	Reused bool

	selection *display.Selection
}

// Engine is the per-document layout orchestrator. It is not safe for
// concurrent use.
type Engine struct {
	le     *layout.LayoutEngine
	scroll *scroll.Manager
	opts   Options
	logger *zap.Logger

	frame *Frame
}

// NewEngine creates an engine that shapes inline content with shaper.
func NewEngine(shaper text.Shaper, opts Options) *Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Layout.Logger == nil {
		opts.Layout.Logger = opts.Logger.Named("layout")
	}
	if opts.Scroll == nil {
		opts.Scroll = scroll.NewManager(scroll.Options{Logger: opts.Logger.Named("scroll")})
	}
	return &Engine{
		le:     layout.NewLayoutEngine(shaper, opts.Layout),
		scroll: opts.Scroll,
		opts:   opts,
		logger: opts.Logger,
	}
}

// Scroll returns the scroll manager the engine registers containers with.
func (e *Engine) Scroll() *scroll.Manager { return e.scroll }

// Frame returns the committed frame, or nil before the first Layout.
func (e *Engine) Frame() *Frame { return e.frame }

// Layout produces the frame for doc. The previous tree is diffed against
// doc so only changed subtrees are laid out again; an unchanged document
// keeps the committed tree and only regenerates the display list. On error
// the previous frame stays committed.
func (e *Engine) Layout(doc *style.Document, viewport layout.Size, sel *display.Selection, now time.Time) (*Frame, error) {
	start := time.Now()
	frame, err := e.layout(doc, viewport, sel, now)
	if err != nil {
		e.logger.Error("frame dropped", zap.Error(err))
		return nil, err
	}
	if e.frame != nil && e.frame.Doc.ID != doc.ID {
		e.scroll.RemoveDocument(e.frame.Doc.ID)
	}
	e.frame = frame
	e.logger.Debug("frame committed",
		zap.Int("nodes", frame.Tree.Len()),
		zap.Int("iterations", frame.Result.Iterations),
		zap.Bool("reused", frame.Reused),
		zap.Int("items", frame.List.Len()),
		zap.Duration("elapsed", time.Since(start)))
	return frame, nil
}

func (e *Engine) layout(doc *style.Document, viewport layout.Size, sel *display.Selection, now time.Time) (*Frame, error) {
	if doc == nil {
		return nil, fmt.Errorf("layout of nil document: %w", layout.ErrInvalidTree)
	}
	var prev *layout.Tree
	if e.frame != nil && e.frame.Doc.ID == doc.ID {
		prev = e.frame.Tree
	}

	tree, dirty, err := layout.Reconcile(prev, doc, viewport)
	if err != nil {
		return nil, fmt.Errorf("failed to reconcile: %w", err)
	}
	frame := &Frame{Doc: doc, Viewport: viewport, selection: sel}
	if dirty.Clean && prev != nil {
		frame.Tree, frame.Reused = prev, true
	} else {
		res, err := e.le.Reflow(tree, dirty.LayoutRoots)
		if err != nil {
			return nil, fmt.Errorf("failed to lay out document %s: %w", doc.ID, err)
		}
		for _, w := range res.Warnings {
			e.logger.Warn("layout warning", zap.Error(w))
		}
		frame.Tree, frame.Result = tree, res
	}

	e.register(doc.ID, frame.Tree, now)
	frame.List, err = e.generate(frame, now)
	if err != nil {
		return nil, err
	}
	return frame, nil
}

// register hands the visible and content sizes of every scroll container
// to the scroll manager so offsets stay clamped to the new layout.
func (e *Engine) register(doc uuid.UUID, t *layout.Tree, now time.Time) {
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if n.Source == style.NoNode || !n.IsScrollContainer() {
			continue
		}
		e.scroll.UpdateBounds(now, scroll.Key{Doc: doc, Node: n.Source}, ScrollViewport(n), n.Overflow)
	}
}

// ScrollViewport is the visible size of a scroll container: its padding
// box less the space taken by scrollbars.
func ScrollViewport(n *layout.Node) layout.Size {
	pb := n.PaddingBox()
	s := layout.Size{Width: pb.Width, Height: pb.Height}
	if n.Scrollbar.NeedsVertical {
		s.Width = max(0, s.Width-n.Scrollbar.ScrollbarWidth)
	}
	if n.Scrollbar.NeedsHorizontal {
		s.Height = max(0, s.Height-n.Scrollbar.ScrollbarHeight)
	}
	return s
}

func (e *Engine) generate(f *Frame, now time.Time) (*display.List, error) {
	l, err := display.Generate(f.Tree, display.Options{
		Scroll:                e.scroll.View(f.Doc.ID, now),
		Selection:             f.selection,
		OverlayScrollbarWidth: e.opts.OverlayScrollbarWidth,
		MinThumb:              e.opts.MinThumb,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build display list: %w", err)
	}
	return l, nil
}

// Repaint regenerates the display list of the committed frame with the
// scroll offsets and scrollbar fade at now, without layout.
func (e *Engine) Repaint(now time.Time) (*display.List, error) {
	if e.frame == nil {
		return nil, ErrNoFrame
	}
	l, err := e.generate(e.frame, now)
	if err != nil {
		e.logger.Error("repaint failed", zap.Error(err))
		return nil, err
	}
	e.frame.List = l
	return l, nil
}

// Tick advances scroll animations and repaints when they or a scrollbar
// fade moved.
func (e *Engine) Tick(now time.Time) (scroll.TickResult, error) {
	res := e.scroll.Tick(now)
	if !res.NeedsRepaint && len(res.Updated) == 0 {
		return res, nil
	}
	_, err := e.Repaint(now)
	return res, err
}

// Wheel scrolls the topmost scroll container under p by delta. It reports
// the node that was scrolled.
func (e *Engine) Wheel(now time.Time, p, delta layout.Point) (style.NodeID, bool) {
	if e.frame == nil {
		return style.NoNode, false
	}
	node, ok := e.frame.List.ScrollTarget(p)
	if !ok {
		return style.NoNode, false
	}
	e.scroll.ScrollBy(now, scroll.Key{Doc: e.frame.Doc.ID, Node: node}, delta, e.opts.WheelDuration, e.opts.WheelEasing)
	return node, true
}

// SetSelection replaces the selection painted by later Repaints.
func (e *Engine) SetSelection(sel *display.Selection) {
	if e.frame != nil {
		e.frame.selection = sel
	}
}

// Bounds returns the border box of a document node in document
// coordinates.
func (e *Engine) Bounds(id style.NodeID) (layout.Rect, bool) {
	if e.frame == nil {
		return layout.Rect{}, false
	}
	i, ok := e.frame.Tree.IndexOf(id)
	if !ok {
		return layout.Rect{}, false
	}
	return e.frame.Tree.AbsoluteRect(i), true
}

// UsedSize returns the border-box size of a document node.
func (e *Engine) UsedSize(id style.NodeID) (layout.Size, bool) {
	r, ok := e.Bounds(id)
	return layout.Size{Width: r.Width, Height: r.Height}, ok
}

// HitTest returns the topmost hit-test area at p in viewport coordinates.
func (e *Engine) HitTest(p layout.Point) (display.HitTestArea, bool) {
	if e.frame == nil {
		return display.HitTestArea{}, false
	}
	return e.frame.List.HitTest(p)
}

// Close forgets the committed frame and its scroll state.
func (e *Engine) Close() {
	if e.frame != nil {
		e.scroll.RemoveDocument(e.frame.Doc.ID)
		e.frame = nil
	}
}
