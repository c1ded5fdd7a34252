package layout

import (
	"sort"

	"boxflow/pkg/style"
)

// StackingContext represents a CSS stacking context.
// A stacking context is created by certain CSS properties (z-index, opacity, transform, etc.)
// and establishes a new local coordinate system for z-ordering.
type StackingContext struct {
	Node   NodeIndex // The node that creates this context (the tree root for the root context)
	ZIndex int       // Z-index value (0 for root and auto)
	Parent *StackingContext

	// Child stacking contexts organized by z-index
	NegativeZContexts []*StackingContext // z-index < 0, sorted ascending
	ZeroZContexts     []*StackingContext // z-index == 0 or auto, document order
	PositiveZContexts []*StackingContext // z-index > 0, sorted ascending
}

// AddChildContext adds a child stacking context to the appropriate z-index category.
func (sc *StackingContext) AddChildContext(child *StackingContext) {
	child.Parent = sc
	switch {
	case child.ZIndex < 0:
		sc.NegativeZContexts = append(sc.NegativeZContexts, child)
	case child.ZIndex > 0:
		sc.PositiveZContexts = append(sc.PositiveZContexts, child)
	default:
		sc.ZeroZContexts = append(sc.ZeroZContexts, child)
	}
}

// NodeCreatesStackingContext returns true if the node creates a new stacking context:
// absolute/fixed positioning, relative with a non-zero z-index, opacity < 1 or a transform.
func NodeCreatesStackingContext(n *Node) bool {
	return n.Kind != KindInline && n.Style.CreatesStackingContext()
}

// effectiveZIndex is the z-index used for ordering; it only applies to
// positioned boxes.
func effectiveZIndex(n *Node) int {
	if n.Style.Position == style.PositionStatic || !n.Style.ZIndex.Set {
		return 0
	}
	return n.Style.ZIndex.Value
}

// BuildStackingContextTree builds the stacking context tree rooted at the
// tree root. Only contexts are recorded; descendants without their own
// context are painted by walking the layout tree from the context node.
func BuildStackingContextTree(t *Tree) *StackingContext {
	root := &StackingContext{Node: t.Root}
	for _, c := range t.Nodes[t.Root].Children {
		collectChildContexts(t, c, root)
	}
	sortContexts(root)
	return root
}

// collectChildContexts finds all stacking contexts in the subtree and adds them to the parent context.
func collectChildContexts(t *Tree, i NodeIndex, parentCtx *StackingContext) {
	n := &t.Nodes[i]
	if NodeCreatesStackingContext(n) {
		childCtx := &StackingContext{Node: i, ZIndex: effectiveZIndex(n)}
		parentCtx.AddChildContext(childCtx)
		for _, c := range n.Children {
			collectChildContexts(t, c, childCtx)
		}
		sortContexts(childCtx)
		return
	}

	// This node doesn't create a stacking context, so its children
	// belong to the same parent context
	for _, c := range n.Children {
		collectChildContexts(t, c, parentCtx)
	}
}

// sortContexts orders negative and positive child contexts by z-index,
// keeping document order among equal values.
func sortContexts(sc *StackingContext) {
	for _, list := range [][]*StackingContext{sc.NegativeZContexts, sc.PositiveZContexts} {
		sort.SliceStable(list, func(a, b int) bool { return list[a].ZIndex < list[b].ZIndex })
	}
}

// Walk visits sc and its descendants in paint order.
func (sc *StackingContext) Walk(fn func(*StackingContext)) {
	for _, c := range sc.NegativeZContexts {
		c.Walk(fn)
	}
	fn(sc)
	for _, c := range sc.ZeroZContexts {
		c.Walk(fn)
	}
	for _, c := range sc.PositiveZContexts {
		c.Walk(fn)
	}
}
