package layout

import (
	"boxflow/pkg/style"
)

// placement is a child border-box origin relative to the parent content box.
type placement struct {
	child NodeIndex
	pos   Point
	// mirror marks vertical-rl block flow: pos.X is measured from the
	// right content edge to the child's right border edge.
	mirror bool
	// static placements record where an out-of-flow child would sit.
	static bool
}

func resolveEdges(e style.Edges, ref float64) Edges {
	if ref < 0 {
		ref = 0
	}
	return Edges{
		Top:    e.Top.Resolve(ref),
		Right:  e.Right.Resolve(ref),
		Bottom: e.Bottom.Resolve(ref),
		Left:   e.Left.Resolve(ref),
	}
}

// resolveBox resolves edges against the containing block inline size.
// Auto margins resolve to zero here; centering is applied by the caller.
func resolveBox(s style.Style, cbInline float64) BoxModel {
	return BoxModel{
		Margin:  resolveEdges(s.Margin, cbInline),
		Border:  resolveEdges(s.BorderWidth, cbInline),
		Padding: resolveEdges(s.Padding, cbInline),
	}
}

func (le *LayoutEngine) cacheHit(t *Tree, i NodeIndex, c constraints) bool {
	n := &t.Nodes[i]
	return n.cacheValid && n.Visited &&
		!t.dirty[i] && !t.childDirty[i] && !t.intrinsicChanged[i] &&
		n.cache == cacheKey{cons: c, scrollbar: n.Scrollbar}
}

// layoutNode computes the used size of i and positions its in-flow
// children. Clean nodes whose constraints match the cache are reused.
func (le *LayoutEngine) layoutNode(t *Tree, i NodeIndex, c constraints) error {
	n, err := t.Node(i)
	if err != nil {
		return err
	}
	if le.cacheHit(t, i, c) {
		return nil
	}

	cbInline := CrossSize(c.Avail, c.WM)
	if cbInline < 0 {
		cbInline = CrossSize(t.Viewport, c.WM)
	}
	n.Box = resolveBox(n.Style, cbInline)
	frame := n.Box.Frame()
	wm := n.Style.WritingMode

	barW, barH := 0.0, 0.0
	if n.Scrollbar.NeedsVertical {
		barW = n.Scrollbar.ScrollbarWidth
	}
	if n.Scrollbar.NeedsHorizontal {
		barH = n.Scrollbar.ScrollbarHeight
	}

	width, wKnown := le.axisSize(t, n, c, true)
	height, hKnown := le.axisSize(t, n, c, false)
	if n.Kind == KindReplaced {
		width, height = replacedSize(n, c, width, wKnown, height, hKnown)
		wKnown, hKnown = true, true
	}

	inner := Size{Width: -1, Height: -1}
	if wKnown {
		inner.Width = max(0, width-frame.Horizontal()-barW)
	}
	if hKnown {
		inner.Height = max(0, height-frame.Vertical()-barH)
	}

	var content Size
	var places []placement
	inlineFlow := false
	n.Inline, n.InlineItems, n.HasBaseline = nil, nil, false
	switch {
	case n.Kind == KindReplaced:
	case establishesInlineContext(t, n):
		inlineFlow = true
		content, places, err = le.layoutInlineChildren(t, i, inner, wm)
	default:
		content, places, err = le.layoutBlockChildren(t, i, inner, wm)
	}
	if err != nil {
		return err
	}

	if !wKnown {
		width = clampContent(n.Style.MinWidth, n.Style.MaxWidth, c.Avail.Width, content.Width) + frame.Horizontal() + barW
	}
	if !hKnown {
		height = clampContent(n.Style.MinHeight, n.Style.MaxHeight, c.Avail.Height, content.Height) + frame.Vertical() + barH
	}
	n.Used = Size{Width: width, Height: height}
	n.Visited = true

	contentW := max(0, width-frame.Horizontal()-barW)
	origin := n.Box.ContentOffset()
	shiftX := 0.0
	if inlineFlow && wm == style.VerticalRL {
		shiftX = contentW - content.Width
	}
	var inlinePos map[NodeIndex]Point
	if inlineFlow {
		inlinePos = make(map[NodeIndex]Point, len(places))
	}
	for _, p := range places {
		child := &t.Nodes[p.child]
		pos := p.pos
		if p.mirror {
			w := child.Used.Width
			if p.static {
				w = 0
			}
			pos.X = contentW - pos.X - w
		}
		pos.X += shiftX
		if p.static {
			if parent, ok := inlinePos[child.Parent]; ok {
				child.StaticPosition = pos.Sub(parent)
			} else {
				child.StaticPosition = origin.Add(pos)
			}
			continue
		}
		if inlineFlow {
			inlinePos[p.child] = pos
			if parent, ok := inlinePos[child.Parent]; ok {
				// Nested inline content is placed relative to its inline parent.
				child.Position = pos.Sub(parent)
				continue
			}
		}
		child.Position = origin.Add(pos)
	}

	n.Overflow = Size{
		Width:  content.Width + n.Box.Padding.Horizontal(),
		Height: content.Height + n.Box.Padding.Vertical(),
	}

	if n.IsScrollContainer() {
		sb := le.scrollbarFor(n.Style, content, Size{
			Width:  max(0, width-frame.Horizontal()),
			Height: max(0, height-frame.Vertical()),
		})
		if sb != n.Scrollbar {
			le.logger.Debug("scrollbar change",
				zapIndex(i),
				zapScrollbar("old", n.Scrollbar),
				zapScrollbar("new", sb))
			n.Scrollbar = sb
			n.cacheValid = false
			return errReflow
		}
	}

	n.cache = cacheKey{cons: c, scrollbar: n.Scrollbar}
	n.cacheValid = true
	t.dirty[i] = false
	t.childDirty[i] = false
	t.intrinsicChanged[i] = false
	return nil
}

// axisSize returns the border-box size of n along one physical axis when it
// does not depend on content.
func (le *LayoutEngine) axisSize(t *Tree, n *Node, c constraints, horizontal bool) (float64, bool) {
	prop, minP, maxP := n.Style.Height, n.Style.MinHeight, n.Style.MaxHeight
	cb, edges, margins, stretch := c.Avail.Height, n.Box.Frame().Vertical(), n.Box.Margin.Vertical(), c.StretchHeight
	if horizontal {
		prop, minP, maxP = n.Style.Width, n.Style.MinWidth, n.Style.MaxWidth
		cb, edges, margins, stretch = c.Avail.Width, n.Box.Frame().Horizontal(), n.Box.Margin.Horizontal(), c.StretchWidth
	}

	if !prop.IsAuto() && (prop.Unit != style.UnitPercent || cb >= 0) {
		return clampContent(minP, maxP, cb, prop.Resolve(cb)) + edges, true
	}
	if n.Kind == KindReplaced || n.Kind == KindInline {
		return 0, false
	}
	if stretch >= 0 {
		return clampContent(minP, maxP, cb, max(0, stretch-margins-edges)) + edges, true
	}

	// Only the containing block's inline axis is known up front.
	if horizontal == c.WM.IsVertical() {
		return 0, false
	}
	if cb < 0 {
		if horizontal {
			cb = t.Viewport.Width
		} else {
			cb = t.Viewport.Height
		}
	}
	avail := max(0, cb-margins)
	if c.ShrinkToFit {
		if horizontal == n.Style.WritingMode.IsVertical() {
			// Orthogonal flow: no usable intrinsic inline size on this axis.
			return avail, true
		}
		fit := min(max(n.Intrinsic.MinContent, avail), n.Intrinsic.MaxContent)
		return clampContent(minP, maxP, cb, max(0, fit-edges)) + edges, true
	}
	return clampContent(minP, maxP, cb, max(0, avail-edges)) + edges, true
}

// clampContent applies min/max constraints to a content-box size. An auto
// max means none.
func clampContent(minP, maxP style.Length, cb, v float64) float64 {
	if !maxP.IsAuto() && (maxP.Unit != style.UnitPercent || cb >= 0) {
		v = min(v, maxP.Resolve(cb))
	}
	if !minP.IsAuto() && (minP.Unit != style.UnitPercent || cb >= 0) {
		v = max(v, minP.Resolve(cb))
	}
	return max(0, v)
}

// replacedSize sizes a replaced box from explicit dimensions and its
// natural aspect ratio.
func replacedSize(n *Node, c constraints, w float64, wKnown bool, h float64, hKnown bool) (float64, float64) {
	frame := n.Box.Frame()
	nat := n.NaturalSize
	switch {
	case wKnown && hKnown:
	case wKnown:
		cw := w - frame.Horizontal()
		ch := nat.Height
		if nat.Width > 0 {
			ch = cw * nat.Height / nat.Width
		}
		h = clampContent(n.Style.MinHeight, n.Style.MaxHeight, c.Avail.Height, ch) + frame.Vertical()
	case hKnown:
		ch := h - frame.Vertical()
		cw := nat.Width
		if nat.Height > 0 {
			cw = ch * nat.Width / nat.Height
		}
		w = clampContent(n.Style.MinWidth, n.Style.MaxWidth, c.Avail.Width, cw) + frame.Horizontal()
	default:
		w = clampContent(n.Style.MinWidth, n.Style.MaxWidth, c.Avail.Width, nat.Width) + frame.Horizontal()
		h = clampContent(n.Style.MinHeight, n.Style.MaxHeight, c.Avail.Height, nat.Height) + frame.Vertical()
	}
	return w, h
}

// establishesInlineContext reports whether n lays its children out as
// lines: inline content itself, or a block whose in-flow children are all
// inline-level.
func establishesInlineContext(t *Tree, n *Node) bool {
	if n.Kind == KindInline {
		return true
	}
	found := false
	for _, c := range n.Children {
		child := &t.Nodes[c]
		if child.IsOutOfFlow() {
			continue
		}
		if !child.IsInlineLevel() {
			return false
		}
		found = true
	}
	return found
}

// childConstraints are the constraints a block container hands its
// in-flow children.
func childConstraints(t *Tree, inner Size, wm style.WritingMode) constraints {
	if CrossSize(inner, wm) < 0 {
		// Orthogonal flow with an indefinite inline size falls back to the viewport.
		if wm.IsVertical() {
			inner.Height = t.Viewport.Height
		} else {
			inner.Width = t.Viewport.Width
		}
	}
	return constraints{Avail: inner, WM: wm, StretchWidth: -1, StretchHeight: -1}
}

// layoutBlockChildren stacks in-flow children along the block axis and
// collapses adjoining sibling margins. The first child's start margin and
// the last child's end margin stay inside the container.
func (le *LayoutEngine) layoutBlockChildren(t *Tree, i NodeIndex, inner Size, wm style.WritingMode) (Size, []placement, error) {
	n := &t.Nodes[i]
	cc := childConstraints(t, inner, wm)

	var places []placement
	cursor := 0.0
	prevEnd := 0.0
	first := true
	crossExtent := 0.0
	innerCross := CrossSize(cc.Avail, wm)

	for _, ci := range n.Children {
		child, err := t.Node(ci)
		if err != nil {
			return Size{}, nil, err
		}
		if child.IsOutOfFlow() {
			gap := 0.0
			if !first {
				gap = prevEnd
			}
			places = append(places, logicalPlacement(ci, 0, cursor+gap, wm, true))
			continue
		}
		if err := le.layoutNode(t, ci, cc); err != nil {
			return Size{}, nil, err
		}

		m := child.Box.Margin
		mStart, mEnd := m.MainStart(wm), m.MainEnd(wm)
		gap := mStart
		if !first {
			gap = collapseMargins(prevEnd, mStart)
		}
		main := cursor + gap

		cross := m.CrossStart(wm)
		childCross := CrossSize(child.Used, wm)
		if autoCrossMargins(child.Style, wm) && innerCross >= 0 {
			if free := innerCross - childCross; free > 0 {
				cross = free / 2
			}
		}
		places = append(places, logicalPlacement(ci, cross, main, wm, false))

		cursor = main + MainSize(child.Used, wm)
		prevEnd = mEnd
		first = false
		crossExtent = max(crossExtent, cross+childCross+m.CrossEnd(wm))
	}
	if !first {
		cursor += prevEnd
	}
	return LogicalSize(crossExtent, cursor, wm), places, nil
}

func logicalPlacement(ci NodeIndex, cross, main float64, wm style.WritingMode, static bool) placement {
	switch wm {
	case style.VerticalRL:
		return placement{child: ci, pos: Point{X: main, Y: cross}, mirror: true, static: static}
	case style.VerticalLR:
		return placement{child: ci, pos: Point{X: main, Y: cross}, static: static}
	}
	return placement{child: ci, pos: Point{X: cross, Y: main}, static: static}
}

func autoCrossMargins(s style.Style, wm style.WritingMode) bool {
	if wm.IsVertical() {
		return s.Margin.Top.IsAuto() && s.Margin.Bottom.IsAuto() && !s.Height.IsAuto()
	}
	return s.Margin.Left.IsAuto() && s.Margin.Right.IsAuto() && !s.Width.IsAuto()
}
