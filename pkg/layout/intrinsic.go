package layout

import (
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// ComputeIntrinsic recomputes min/max-content contributions of every
// intrinsic-dirty node, children before parents. Inline content without a
// shaper measures as zero.
func (le *LayoutEngine) ComputeIntrinsic(t *Tree) error {
	for k := len(t.Nodes) - 1; k >= 0; k-- {
		i := NodeIndex(k)
		if !t.intrinsicDirty[i] {
			continue
		}
		n := &t.Nodes[i]
		old := n.Intrinsic
		sizes, err := le.intrinsicSizes(t, i)
		if err != nil {
			return err
		}
		n.Intrinsic = sizes
		t.intrinsicDirty[i] = false
		if sizes != old {
			t.intrinsicChanged[i] = true
		}
	}
	return nil
}

// inlineAxis returns the properties and frame of n along its own inline
// axis. Percentages resolve against zero during intrinsic sizing.
func inlineAxis(n *Node) (prop, minP, maxP style.Length, frame, margins float64) {
	wm := n.Style.WritingMode
	b := resolveBox(n.Style, 0)
	frame = b.Frame().Cross(wm)
	margins = b.Margin.Cross(wm)
	if wm.IsVertical() {
		return n.Style.Height, n.Style.MinHeight, n.Style.MaxHeight, frame, margins
	}
	return n.Style.Width, n.Style.MinWidth, n.Style.MaxWidth, frame, margins
}

func definite(l style.Length) bool { return l.Unit == style.UnitPx }

func (le *LayoutEngine) intrinsicSizes(t *Tree, i NodeIndex) (IntrinsicSizes, error) {
	n := &t.Nodes[i]
	prop, minP, maxP, frame, _ := inlineAxis(n)

	var minC, maxC float64
	switch {
	case n.Kind == KindReplaced:
		minC = CrossSize(n.NaturalSize, n.Style.WritingMode)
		maxC = minC
	case establishesInlineContext(t, n):
		minC, maxC = le.inlineMinMax(t, i)
	default:
		for _, c := range n.Children {
			child, err := t.Node(c)
			if err != nil {
				return IntrinsicSizes{}, err
			}
			if child.IsOutOfFlow() {
				continue
			}
			_, _, _, _, margins := inlineAxis(child)
			minC = max(minC, child.Intrinsic.MinContent+margins)
			maxC = max(maxC, child.Intrinsic.MaxContent+margins)
		}
	}

	if definite(prop) {
		minC, maxC = prop.Value, prop.Value
	}
	if definite(maxP) {
		minC, maxC = min(minC, maxP.Value), min(maxC, maxP.Value)
	}
	if definite(minP) {
		minC, maxC = max(minC, minP.Value), max(maxC, minP.Value)
	}
	if n.Kind == KindInline {
		// Inline content contributes through its block container.
		frame = 0
	}
	return IntrinsicSizes{MinContent: minC + frame, MaxContent: maxC + frame}, nil
}

// inlineMinMax measures the inline items of i twice: with atomic inlines at
// their min-content and at their max-content contribution.
func (le *LayoutEngine) inlineMinMax(t *Tree, i NodeIndex) (float64, float64) {
	if le.shaper == nil {
		return 0, 0
	}
	measure := func(useMax bool) []text.InlineItem {
		w := &inlineWalker{t: t}
		w.atomic = func(ci NodeIndex) (text.Size, error) {
			c := &t.Nodes[ci]
			_, _, _, _, margins := inlineAxis(c)
			if useMax {
				return text.Size{W: c.Intrinsic.MaxContent + margins}, nil
			}
			return text.Size{W: c.Intrinsic.MinContent + margins}, nil
		}
		if err := w.walkChildren(t, i); err != nil {
			return nil
		}
		return w.items
	}
	minC, _ := le.shaper.MinMaxContent(measure(false))
	_, maxC := le.shaper.MinMaxContent(measure(true))
	return minC, maxC
}
