package layout

import (
	"fmt"

	"boxflow/pkg/style"
)

// containingBlock describes the box out-of-flow offsets resolve against.
type containingBlock struct {
	index NodeIndex // NoIndex for the viewport
	// padding is the padding box in document coordinates.
	padding Rect
	// content is the final content-box size, used for percentages.
	content Size
	wm      style.WritingMode
}

// FindContainingBlock returns the containing block of an out-of-flow node.
// For absolute: nearest positioned or stacking-context ancestor, or the
// viewport when there is none. For fixed: the viewport.
// An ancestor that cannot act as one (inline content, or not laid out)
// yields ErrMissingContainingBlock together with the viewport.
func (t *Tree) FindContainingBlock(i NodeIndex) (NodeIndex, error) {
	n, err := t.Node(i)
	if err != nil {
		return NoIndex, err
	}
	if n.Style.Position == style.PositionFixed {
		return NoIndex, nil
	}
	for p := n.Parent; p != NoIndex; p = t.Nodes[p].Parent {
		if !establishesContainingBlock(&t.Nodes[p]) {
			continue
		}
		if t.Nodes[p].Kind == KindInline || !t.Nodes[p].Visited {
			return NoIndex, fmt.Errorf("node %d: ancestor %d cannot contain it: %w", i, p, ErrMissingContainingBlock)
		}
		return p, nil
	}
	return NoIndex, nil
}

func establishesContainingBlock(n *Node) bool {
	return n.Style.Position != style.PositionStatic || n.Style.CreatesStackingContext()
}

func (t *Tree) viewportBlock() containingBlock {
	return containingBlock{
		index:   NoIndex,
		padding: Rect{Width: t.Viewport.Width, Height: t.Viewport.Height},
		content: t.Viewport,
	}
}

func (t *Tree) containingBlockRect(cb NodeIndex) containingBlock {
	if cb == NoIndex {
		return t.viewportBlock()
	}
	n := &t.Nodes[cb]
	pb := n.PaddingBox()
	abs := t.Absolute[cb]
	return containingBlock{
		index:   cb,
		padding: pb.Translate(abs.X, abs.Y),
		content: n.ContentSize(),
		wm:      n.Style.WritingMode,
	}
}
