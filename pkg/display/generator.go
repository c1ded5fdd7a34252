package display

import (
	"fmt"

	"boxflow/pkg/layout"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// Scroller reports scroll state per document node. A nil Scroller means
// nothing is scrolled and scrollbars are fully opaque.
type Scroller interface {
	Offset(node style.NodeID) layout.Point
	ScrollbarOpacity(node style.NodeID) float64
}

// TextRange selects bytes [Start, End) of a text node.
type TextRange struct {
	Node       style.NodeID
	Start, End int
}

// Caret places the text cursor before byte Offset of a text node.
type Caret struct {
	Node   style.NodeID
	Offset int
}

// Selection is the text selection painted with the document.
type Selection struct {
	Ranges []TextRange
	Caret  *Caret
	// Color of the highlight; DefaultSelectionColor when zero.
	Color style.Color
	// CaretColor defaults to the text color.
	CaretColor style.Color
}

// DefaultSelectionColor is a translucent blue.
var DefaultSelectionColor = style.Color{R: 51, G: 144, B: 255, A: 96}

// Options are the per-frame inputs of Generate besides the tree.
type Options struct {
	Scroll    Scroller
	Selection *Selection
	// OverlayScrollbarWidth is the painted thickness of scrollbars that take
	// no layout space.
	OverlayScrollbarWidth float64
	// MinThumb is the shortest scrollbar thumb.
	MinThumb float64
}

const (
	defaultOverlayWidth = 8
	defaultMinThumb     = 16
)

type generator struct {
	t    *layout.Tree
	opts Options
	list *List

	// shift is the scroll translation applied to each node's border box.
	shift []layout.Point
	// clips is the stack of effective (intersected) clip rectangles.
	clips   []layout.Rect
	opacity float64
	ranges  map[style.NodeID][]TextRange
}

// Generate walks the stacking-context tree of t and emits its paint
// commands in CSS painting order. The tree must have been laid out.
func Generate(t *layout.Tree, opts Options) (*List, error) {
	if t == nil || len(t.Nodes) == 0 {
		return nil, fmt.Errorf("display list of empty tree: %w", layout.ErrInvalidTree)
	}
	if len(t.Absolute) != len(t.Nodes) {
		return nil, fmt.Errorf("tree has no positions: %w", layout.ErrInvalidTree)
	}
	if opts.OverlayScrollbarWidth <= 0 {
		opts.OverlayScrollbarWidth = defaultOverlayWidth
	}
	if opts.MinThumb <= 0 {
		opts.MinThumb = defaultMinThumb
	}
	g := &generator{
		t:       t,
		opts:    opts,
		list:    &List{Viewport: t.Viewport},
		opacity: 1,
		ranges:  map[style.NodeID][]TextRange{},
	}
	if opts.Selection != nil {
		for _, r := range opts.Selection.Ranges {
			g.ranges[r.Node] = append(g.ranges[r.Node], r)
		}
	}
	g.computeShifts()
	g.paintContext(layout.BuildStackingContextTree(t))
	return g.list, nil
}

func (g *generator) emit(it Item) { g.list.Items = append(g.list.Items, it) }

func (g *generator) offset(i layout.NodeIndex) layout.Point {
	n := &g.t.Nodes[i]
	if g.opts.Scroll == nil || n.Source == style.NoNode || !n.IsScrollContainer() {
		return layout.Point{}
	}
	return g.opts.Scroll.Offset(n.Source)
}

// computeShifts derives scroll translations in document order. Fixed boxes
// never move; absolute boxes move with the scrollers at or above their
// containing block; everything else moves with its parent's content.
func (g *generator) computeShifts() {
	g.shift = make([]layout.Point, len(g.t.Nodes))
	for k := range g.t.Nodes {
		n := &g.t.Nodes[k]
		switch {
		case n.Parent == layout.NoIndex, n.Style.Position == style.PositionFixed:
		case n.Style.Position == style.PositionAbsolute:
			if n.ContainingBlock != layout.NoIndex {
				g.shift[k] = g.contentShift(n.ContainingBlock)
			}
		default:
			g.shift[k] = g.contentShift(n.Parent)
		}
	}
}

func (g *generator) contentShift(i layout.NodeIndex) layout.Point {
	return g.shift[i].Sub(g.offset(i))
}

// rect returns the painted border box of i.
func (g *generator) rect(i layout.NodeIndex) layout.Rect {
	s := g.shift[i]
	return g.t.AbsoluteRect(i).Translate(s.X, s.Y)
}

// clipRect is the padding box of i without scrollbar space.
func (g *generator) clipRect(i layout.NodeIndex) layout.Rect {
	n := &g.t.Nodes[i]
	r := g.rect(i)
	pb := n.PaddingBox().Translate(r.X, r.Y)
	if n.Scrollbar.NeedsVertical {
		pb.Width = max(0, pb.Width-n.Scrollbar.ScrollbarWidth)
	}
	if n.Scrollbar.NeedsHorizontal {
		pb.Height = max(0, pb.Height-n.Scrollbar.ScrollbarHeight)
	}
	return pb
}

func (g *generator) fade(c style.Color) style.Color {
	if g.opacity < 1 {
		c.A = uint8(float64(c.A)*g.opacity + 0.5)
	}
	return c
}

func (g *generator) paintContext(sc *layout.StackingContext) {
	n := &g.t.Nodes[sc.Node]
	saved := g.opacity
	g.opacity *= n.Style.Opacity
	defer func() { g.opacity = saved }()

	g.box(sc.Node)
	for _, c := range sc.NegativeZContexts {
		g.childContext(sc, c)
	}
	g.contents(sc.Node)
	for _, c := range sc.ZeroZContexts {
		g.childContext(sc, c)
	}
	for _, c := range sc.PositiveZContexts {
		g.childContext(sc, c)
	}
}

// childContext paints c inside the clips of the clipping ancestors between
// it and its parent context. An absolute box only sees clips at or above
// its containing block; a fixed box sees none.
func (g *generator) childContext(parent, c *layout.StackingContext) {
	chain := g.clippingChain(parent.Node, c.Node)
	for k := len(chain) - 1; k >= 0; k-- {
		g.pushClip(chain[k])
	}
	g.paintContext(c)
	for _, a := range chain {
		g.popClip(a)
	}
}

// clippingChain lists clipping ancestors of c up to and including p,
// innermost first.
func (g *generator) clippingChain(p, c layout.NodeIndex) []layout.NodeIndex {
	n := &g.t.Nodes[c]
	limit := n.Parent
	switch n.Style.Position {
	case style.PositionFixed:
		return nil
	case style.PositionAbsolute:
		limit = n.ContainingBlock
		if limit == layout.NoIndex {
			return nil
		}
	}
	var chain []layout.NodeIndex
	for a := n.Parent; a != layout.NoIndex; a = g.t.Nodes[a].Parent {
		if g.t.Nodes[a].IsScrollContainer() && (a == limit || g.t.IsAncestor(a, limit)) {
			chain = append(chain, a)
		}
		if a == p {
			break
		}
	}
	return chain
}

func (g *generator) pushClip(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	clip := g.clipRect(i)
	if n.Style.OverflowX.Scrollable() || n.Style.OverflowY.Scrollable() {
		g.emit(PushScrollFrame{Node: n.Source, Clip: clip, Offset: g.offset(i), Content: n.Overflow})
	} else {
		g.emit(PushClip{Node: n.Source, Bounds: clip})
	}
	if k := len(g.clips); k > 0 {
		clip = g.clips[k-1].Intersect(clip)
	}
	g.clips = append(g.clips, clip)
}

func (g *generator) popClip(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	if n.Style.OverflowX.Scrollable() || n.Style.OverflowY.Scrollable() {
		g.emit(PopScrollFrame{Node: n.Source})
	} else {
		g.emit(PopClip{Node: n.Source})
	}
	g.clips = g.clips[:len(g.clips)-1]
}

// box emits the background, border and hit-test area of i.
func (g *generator) box(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	r := g.rect(i)
	if !n.Style.Background.Transparent() && r.Width > 0 && r.Height > 0 {
		g.emit(Rect{Node: n.Source, Bounds: r, Color: g.fade(n.Style.Background)})
	}
	if b := n.Box.Border; b.Horizontal()+b.Vertical() > 0 {
		c := n.Style.BorderColor
		if c.Transparent() {
			c = n.Style.Color
		}
		g.emit(Border{Node: n.Source, Bounds: r, Widths: b, Color: g.fade(c)})
	}
	if n.Source != style.NoNode && (n.Style.Interactive || n.IsScrollContainer()) {
		a := HitTestArea{
			Node:   n.Source,
			Bounds: r,
			Scroll: n.Style.OverflowX.Scrollable() || n.Style.OverflowY.Scrollable(),
		}
		if k := len(g.clips); k > 0 {
			a.Clip, a.Clipped = g.clips[k-1], true
		}
		g.emit(a)
	}
}

// contents paints the in-flow content of i: inline content, replaced
// content and non-context children, clipped when i clips its overflow.
// Scrollbars follow the clip.
func (g *generator) contents(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	clips := n.IsScrollContainer()
	if clips {
		g.pushClip(i)
	}

	if n.Inline != nil {
		g.inline(i)
	}
	if n.Kind == layout.KindReplaced && n.Image != "" {
		r := g.rect(i)
		f := n.Box.Frame()
		g.emit(Image{Node: n.Source, Src: n.Image, Bounds: layout.Rect{
			X: r.X + f.Left, Y: r.Y + f.Top,
			Width: max(0, r.Width-f.Horizontal()), Height: max(0, r.Height-f.Vertical()),
		}})
	}
	for _, c := range n.Children {
		cn := &g.t.Nodes[c]
		if n.Inline != nil || cn.Kind == layout.KindInline || layout.NodeCreatesStackingContext(cn) {
			continue
		}
		g.box(c)
		g.contents(c)
	}

	if clips {
		g.popClip(i)
		g.scrollbars(i)
	}
}

func fromText(r text.Rect, o layout.Point) layout.Rect {
	return layout.Rect{X: r.X + o.X, Y: r.Y + o.Y, Width: r.W, Height: r.H}
}

// inline paints the inline formatting context owned by i: inline element
// boxes, selection, caret, text runs and then atomic inlines.
func (g *generator) inline(i layout.NodeIndex) {
	n := &g.t.Nodes[i]
	l := n.Inline
	origin := g.t.Absolute[i].Add(g.contentShift(i)).Add(n.Box.ContentOffset())

	g.inlineBoxes(i)

	if sel := g.opts.Selection; sel != nil {
		color := sel.Color
		if color == (style.Color{}) {
			color = DefaultSelectionColor
		}
		for k, src := range n.InlineItems {
			id := g.t.Nodes[src].Source
			for _, r := range g.ranges[id] {
				for _, rect := range l.SelectionRects(k, r.Start, r.End) {
					g.emit(SelectionRect{Node: id, Bounds: fromText(rect, origin), Color: g.fade(color)})
				}
			}
		}
		if c := sel.Caret; c != nil {
			for k, src := range n.InlineItems {
				sn := &g.t.Nodes[src]
				if sn.Source != c.Node {
					continue
				}
				if rect, ok := l.CursorRect(k, c.Offset); ok {
					color := sel.CaretColor
					if color == (style.Color{}) {
						color = sn.Style.Color
					}
					g.emit(CursorRect{Node: c.Node, Bounds: fromText(rect, origin), Color: g.fade(color)})
				}
			}
		}
	}

	vertical := n.Style.WritingMode.IsVertical()
	for _, run := range l.Runs {
		if run.Item >= len(n.InlineItems) {
			continue
		}
		g.emit(TextRun{
			Node:       g.t.Nodes[n.InlineItems[run.Item]].Source,
			Bounds:     fromText(run.Rect, origin),
			Text:       run.Text,
			Font:       run.Font,
			Size:       run.FontSize,
			Color:      g.fade(run.Color),
			Baseline:   run.Baseline,
			Decoration: run.Decoration,
			Vertical:   vertical,
		})
	}

	for _, src := range n.InlineItems {
		sn := &g.t.Nodes[src]
		if sn.Kind == layout.KindInline || layout.NodeCreatesStackingContext(sn) {
			continue
		}
		g.box(src)
		g.contents(src)
	}
}

// inlineBoxes paints backgrounds and borders of inline descendants, before
// any text.
func (g *generator) inlineBoxes(i layout.NodeIndex) {
	for _, c := range g.t.Nodes[i].Children {
		if g.t.Nodes[c].Kind != layout.KindInline {
			continue
		}
		g.box(c)
		g.inlineBoxes(c)
	}
}
