package layout

import (
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

func marginBox(n *Node) Size {
	return Size{
		Width:  n.Used.Width + n.Box.Margin.Horizontal(),
		Height: n.Used.Height + n.Box.Margin.Vertical(),
	}
}

func textItem(n *Node, ordinal int) text.InlineItem {
	return text.InlineItem{
		Source:     ordinal,
		Text:       n.Text,
		FontSize:   n.Style.FontSize,
		Color:      n.Style.Color,
		Decoration: n.Style.Decoration,
	}
}

// inlineWalker flattens the inline-level descendants of a block container
// into shaper items in document order.
type inlineWalker struct {
	t       *Tree
	items   []text.InlineItem
	sources []NodeIndex
	// visit lists inline descendants in pre-order.
	visit []NodeIndex
	// statics are out-of-flow descendants with the index of the item that
	// follows them.
	statics []staticItem
	// atomic is called for inline-blocks and replaced boxes and returns the
	// item size along (inline, block).
	atomic func(NodeIndex) (text.Size, error)
}

type staticItem struct {
	node NodeIndex
	next int
}

func (w *inlineWalker) walk(i NodeIndex) error {
	n, err := w.t.Node(i)
	if err != nil {
		return err
	}
	if n.IsOutOfFlow() {
		w.statics = append(w.statics, staticItem{node: i, next: len(w.items)})
		return nil
	}
	w.visit = append(w.visit, i)
	if n.Kind != KindInline {
		sz, err := w.atomic(i)
		if err != nil {
			return err
		}
		w.items = append(w.items, text.InlineItem{Source: len(w.items), Atomic: &sz})
		w.sources = append(w.sources, i)
		return nil
	}
	if len(n.Children) == 0 {
		w.items = append(w.items, textItem(n, len(w.items)))
		w.sources = append(w.sources, i)
		return nil
	}
	for _, c := range n.Children {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

func (w *inlineWalker) walkChildren(t *Tree, i NodeIndex) error {
	n := &t.Nodes[i]
	if n.Kind == KindInline && len(n.Children) == 0 {
		w.items = append(w.items, textItem(n, 0))
		w.sources = append(w.sources, i)
		return nil
	}
	for _, c := range n.Children {
		if err := w.walk(c); err != nil {
			return err
		}
	}
	return nil
}

// layoutInlineChildren delegates line layout to the shaper and places the
// inline descendants of i from the item bounds it reports.
func (le *LayoutEngine) layoutInlineChildren(t *Tree, i NodeIndex, inner Size, wm style.WritingMode) (Size, []placement, error) {
	cc := childConstraints(t, inner, wm)
	cc.ShrinkToFit = true
	w := &inlineWalker{t: t}
	w.atomic = func(ci NodeIndex) (text.Size, error) {
		if err := le.layoutNode(t, ci, cc); err != nil {
			return text.Size{}, err
		}
		mb := marginBox(&t.Nodes[ci])
		return text.Size{W: CrossSize(mb, wm), H: MainSize(mb, wm)}, nil
	}
	if err := w.walkChildren(t, i); err != nil {
		return Size{}, nil, err
	}

	var shaped *text.ShapedInlineLayout
	if le.shaper != nil {
		shaped = le.shaper.LayoutInline(w.items, text.Constraints{
			AvailableWidth: CrossSize(cc.Avail, wm),
			WritingMode:    wm,
		})
	} else {
		shaped = &text.ShapedInlineLayout{ItemBounds: make([]text.Rect, len(w.items))}
	}

	n := &t.Nodes[i]
	n.Inline = shaped
	n.InlineItems = w.sources
	n.Baseline = shaped.Baseline
	n.HasBaseline = shaped.Lines > 0

	rects := make(map[NodeIndex]text.Rect, len(w.visit))
	for k, src := range w.sources {
		if k < len(shaped.ItemBounds) {
			rects[src] = shaped.ItemBounds[k]
		}
	}
	// Inline elements span the union of their descendants.
	for k := len(w.visit) - 1; k >= 0; k-- {
		d := w.visit[k]
		if p := t.Nodes[d].Parent; p != i && p != NoIndex {
			rects[p] = rects[p].Union(rects[d])
		}
	}

	places := make([]placement, 0, len(w.visit))
	for _, d := range w.visit {
		if d == i {
			continue
		}
		dn := &t.Nodes[d]
		r := rects[d]
		pos := Point{X: r.X, Y: r.Y}
		if dn.Kind == KindInline {
			dn.Box = BoxModel{}
			dn.Used = Size{Width: r.W, Height: r.H}
			dn.Visited = true
			t.dirty[d] = false
			t.childDirty[d] = false
			t.intrinsicChanged[d] = false
		} else {
			pos = pos.Add(Point{X: dn.Box.Margin.Left, Y: dn.Box.Margin.Top})
		}
		places = append(places, placement{child: d, pos: pos})
	}
	// An out-of-flow box sits where the content after it starts, or at the
	// end of the content before it.
	for _, st := range w.statics {
		var pos Point
		switch b := shaped.ItemBounds; {
		case st.next < len(b):
			pos = Point{X: b[st.next].X, Y: b[st.next].Y}
		case st.next > 0 && st.next <= len(b):
			last := b[st.next-1]
			pos = Point{X: last.X + last.W, Y: last.Y}
		}
		places = append(places, placement{child: st.node, pos: pos, static: true})
	}
	return Size{Width: shaped.Size.W, Height: shaped.Size.H}, places, nil
}
