package layout

import (
	"errors"

	"go.uber.org/zap"

	"boxflow/pkg/style"
)

// offsets are resolved top/right/bottom/left values; auto sides are unset.
type offsets struct {
	top, right, bottom, left             float64
	hasTop, hasRight, hasBottom, hasLeft bool
}

func resolveOffsets(s style.Style, cb Size) offsets {
	var o offsets
	if !s.Top.IsAuto() {
		o.top, o.hasTop = s.Top.Resolve(cb.Height), true
	}
	if !s.Bottom.IsAuto() {
		o.bottom, o.hasBottom = s.Bottom.Resolve(cb.Height), true
	}
	if !s.Left.IsAuto() {
		o.left, o.hasLeft = s.Left.Resolve(cb.Width), true
	}
	if !s.Right.IsAuto() {
		o.right, o.hasRight = s.Right.Resolve(cb.Width), true
	}
	return o
}

// applyRelativeOffsets shifts position:relative boxes; percentages resolve
// against the parent content box.
func (t *Tree) applyRelativeOffsets() {
	for k := range t.Nodes {
		n := &t.Nodes[k]
		n.Offset = Point{}
		if n.Style.Position != style.PositionRelative || n.Parent == NoIndex {
			continue
		}
		o := resolveOffsets(n.Style, t.Nodes[n.Parent].ContentSize())
		switch {
		case o.hasLeft:
			n.Offset.X = o.left
		case o.hasRight:
			n.Offset.X = -o.right
		}
		switch {
		case o.hasTop:
			n.Offset.Y = o.top
		case o.hasBottom:
			n.Offset.Y = -o.bottom
		}
	}
}

// positionOutOfFlow is the positioner: after in-flow layout it visits
// absolute and fixed boxes in document order, lays each out against its
// containing block and stores its position. Unresolvable containing blocks
// are logged and returned as warnings.
func (le *LayoutEngine) positionOutOfFlow(t *Tree) ([]error, error) {
	t.applyRelativeOffsets()
	if err := t.UpdateAbsolute(); err != nil {
		return nil, err
	}

	var warnings []error
	for k := range t.Nodes {
		i := NodeIndex(k)
		n := &t.Nodes[i]
		if i == t.Root || !n.IsOutOfFlow() || !t.reachable(i) {
			continue
		}
		cbIndex, err := t.FindContainingBlock(i)
		if err != nil {
			if !errors.Is(err, ErrMissingContainingBlock) {
				return warnings, err
			}
			le.logger.Warn("falling back to viewport", zapIndex(i), zap.Error(err))
			warnings = append(warnings, err)
		}
		n.ContainingBlock = cbIndex
		if err := le.applyAbsolutePositioning(t, i, t.containingBlockRect(cbIndex)); err != nil {
			return warnings, err
		}
	}
	return warnings, nil
}

// reachable reports whether every ancestor of i has been laid out.
func (t *Tree) reachable(i NodeIndex) bool {
	for p := t.Nodes[i].Parent; p != NoIndex; p = t.Nodes[p].Parent {
		if !t.Nodes[p].Visited {
			return false
		}
	}
	return true
}

// applyAbsolutePositioning positions an absolutely positioned box
// following CSS 2.1 §10.3.7 (horizontal) and §10.6.4 (vertical)
func (le *LayoutEngine) applyAbsolutePositioning(t *Tree, i NodeIndex, cb containingBlock) error {
	n := &t.Nodes[i]
	off := resolveOffsets(n.Style, cb.content)

	c := constraints{Avail: cb.content, WM: cb.wm, StretchWidth: -1, StretchHeight: -1}
	if n.Style.Width.IsAuto() {
		if off.hasLeft && off.hasRight {
			c.StretchWidth = max(0, cb.padding.Width-off.left-off.right)
		} else {
			c.ShrinkToFit = true
		}
	}
	if n.Style.Height.IsAuto() && off.hasTop && off.hasBottom {
		c.StretchHeight = max(0, cb.padding.Height-off.top-off.bottom)
	}
	if err := le.layoutNode(t, i, c); err != nil {
		return err
	}

	parentAbs := Point{}
	if n.Parent != NoIndex {
		parentAbs = t.Absolute[n.Parent]
	}
	static := parentAbs.Add(n.StaticPosition)
	m := n.Box.Margin
	w, h := n.Used.Width, n.Used.Height

	// When left, right, and width are all non-auto, and both margins are auto,
	// the margins should be equal (centering the element horizontally)
	var x float64
	switch {
	case off.hasLeft && off.hasRight && n.Style.Margin.Left.IsAuto() && n.Style.Margin.Right.IsAuto():
		free := max(0, cb.padding.Width-off.left-off.right-w)
		x = cb.padding.X + off.left + free/2
	case off.hasLeft:
		x = cb.padding.X + off.left + m.Left
	case off.hasRight:
		x = cb.padding.X + cb.padding.Width - off.right - m.Right - w
	default:
		x = static.X
	}

	var y float64
	switch {
	case off.hasTop && off.hasBottom && n.Style.Margin.Top.IsAuto() && n.Style.Margin.Bottom.IsAuto():
		free := max(0, cb.padding.Height-off.top-off.bottom-h)
		y = cb.padding.Y + off.top + free/2
	case off.hasTop:
		y = cb.padding.Y + off.top + m.Top
	case off.hasBottom:
		y = cb.padding.Y + cb.padding.Height - off.bottom - m.Bottom - h
	default:
		y = static.Y
	}

	n.Position = Point{X: x, Y: y}.Sub(parentAbs)
	return t.updateAbsolute(i, parentAbs)
}
