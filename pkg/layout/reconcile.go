package layout

import (
	"sort"

	"boxflow/pkg/style"
)

// Dirty is the reconciler output for one frame.
type Dirty struct {
	// Intrinsic marks, per node of the new tree, intrinsic sizes that must be
	// recomputed. Marks propagate to every ancestor.
	Intrinsic []bool
	// LayoutRoots are the topmost nodes whose used size must be recomputed,
	// in document order. None is a descendant of another.
	LayoutRoots []NodeIndex
	// Clean is set when nothing changed since the previous frame.
	Clean bool

	// dirty lists every changed node, including those covered by a root.
	dirty []NodeIndex
}

// reconciler carries matching state between the previous and next tree.
type reconciler struct {
	prev, next *Tree
	oldToNew   []NodeIndex
	intrinsic  []bool
	changed    []bool
}

// Reconcile builds the tree for doc and diffs it against prev. Matched
// nodes carry their intrinsic sizes, scrollbar state and layout cache
// forward; changes turn into intrinsic-dirty marks and layout roots. A nil
// prev or a viewport change invalidates everything.
//
// Children are matched by position. When the new child has a key, the old
// sibling with the same key is used instead, wherever it sits.
func Reconcile(prev *Tree, doc *style.Document, viewport Size) (*Tree, Dirty, error) {
	next, err := Build(doc, viewport)
	if err != nil {
		return nil, Dirty{}, err
	}
	all := Dirty{Intrinsic: make([]bool, len(next.Nodes)), LayoutRoots: []NodeIndex{next.Root}}
	for i := range all.Intrinsic {
		all.Intrinsic[i] = true
	}
	if prev == nil || len(prev.Nodes) == 0 {
		return next, all, nil
	}

	r := &reconciler{
		prev:      prev,
		next:      next,
		oldToNew:  make([]NodeIndex, len(prev.Nodes)),
		intrinsic: make([]bool, len(next.Nodes)),
		changed:   make([]bool, len(next.Nodes)),
	}
	for i := range r.oldToNew {
		r.oldToNew[i] = NoIndex
	}
	if sameIdentity(&prev.Nodes[prev.Root], &next.Nodes[next.Root]) {
		r.match(prev.Root, next.Root)
	} else {
		r.unmatched(next.Root)
	}
	r.remapInlineItems()

	next.resetFlags()
	if viewport != prev.Viewport {
		// Scrollbar state still carries over as the first guess.
		next.MarkAllDirty()
		return next, all, nil
	}

	d := r.dirtySet()
	next.ApplyDirty(d)
	return next, d, nil
}

func sameIdentity(a, b *Node) bool {
	return a.Kind == b.Kind && a.Key == b.Key && (a.Source == style.NoNode) == (b.Source == style.NoNode)
}

// match pairs old node o with new node n and recurses into their children.
func (r *reconciler) match(o, n NodeIndex) {
	on, nn := &r.prev.Nodes[o], &r.next.Nodes[n]
	r.oldToNew[o] = n
	copyLayoutState(nn, on)

	if nn.Style != on.Style {
		r.changed[n] = true
		if nn.Style.AffectsIntrinsic(on.Style) {
			r.intrinsic[n] = true
		}
	}
	if nn.Text != on.Text || nn.Image != on.Image || nn.NaturalSize != on.NaturalSize {
		r.changed[n] = true
		r.intrinsic[n] = true
	}

	used := make([]bool, len(on.Children))
	pairs := make([]NodeIndex, len(nn.Children))
	for k, nc := range nn.Children {
		pairs[k] = r.pick(on.Children, used, k, &r.next.Nodes[nc])
	}

	// Any insertion, removal or reordering changes the child set.
	childSet := len(nn.Children) != len(on.Children)
	for k, oc := range pairs {
		if oc == NoIndex || oc != on.Children[k] {
			childSet = true
		}
	}
	if childSet {
		r.changed[n] = true
		r.intrinsic[n] = true
	}

	for k, nc := range nn.Children {
		if pairs[k] == NoIndex {
			r.unmatched(nc)
			continue
		}
		r.match(pairs[k], nc)
	}
}

// pick returns the old sibling matching the k-th new child, or NoIndex.
func (r *reconciler) pick(old []NodeIndex, used []bool, k int, nn *Node) NodeIndex {
	if nn.Key != "" {
		for j, oc := range old {
			if !used[j] && sameIdentity(&r.prev.Nodes[oc], nn) {
				used[j] = true
				return oc
			}
		}
		return NoIndex
	}
	if k < len(old) && !used[k] && sameIdentity(&r.prev.Nodes[old[k]], nn) {
		used[k] = true
		return old[k]
	}
	return NoIndex
}

// unmatched marks a new subtree as fully dirty.
func (r *reconciler) unmatched(n NodeIndex) {
	r.changed[n] = true
	r.intrinsic[n] = true
	for _, c := range r.next.Nodes[n].Children {
		r.unmatched(c)
	}
}

// copyLayoutState moves the results of the previous frame onto a matched
// node. Containing blocks are resolved again by the positioner.
func copyLayoutState(dst, src *Node) {
	dst.Box = src.Box
	dst.Intrinsic = src.Intrinsic
	dst.Used = src.Used
	dst.Visited = src.Visited
	dst.Position = src.Position
	dst.Offset = src.Offset
	dst.StaticPosition = src.StaticPosition
	dst.Baseline = src.Baseline
	dst.HasBaseline = src.HasBaseline
	dst.Inline = src.Inline
	dst.InlineItems = src.InlineItems
	dst.Scrollbar = src.Scrollbar
	dst.Overflow = src.Overflow
	dst.cache = src.cache
	dst.cacheValid = src.cacheValid
}

// remapInlineItems rewrites carried-over item sources to new indices. A
// layout whose items cannot all be found is dropped.
func (r *reconciler) remapInlineItems() {
	for k := range r.next.Nodes {
		n := &r.next.Nodes[k]
		if len(n.InlineItems) == 0 {
			continue
		}
		items := make([]NodeIndex, len(n.InlineItems))
		ok := true
		for j, o := range n.InlineItems {
			if int(o) >= len(r.oldToNew) || r.oldToNew[o] == NoIndex {
				ok = false
				break
			}
			items[j] = r.oldToNew[o]
		}
		if !ok {
			n.Inline, n.InlineItems, n.cacheValid = nil, nil, false
			r.changed[k] = true
			r.intrinsic[k] = true
			continue
		}
		n.InlineItems = items
	}
}

// dirtySet turns per-node marks into the reconciler output.
func (r *reconciler) dirtySet() Dirty {
	t := r.next
	d := Dirty{Intrinsic: r.intrinsic}

	for k := len(t.Nodes) - 1; k >= 0; k-- {
		if !d.Intrinsic[k] {
			continue
		}
		for p := t.Nodes[k].Parent; p != NoIndex && !d.Intrinsic[p]; p = t.Nodes[p].Parent {
			d.Intrinsic[p] = true
		}
	}

	isRoot := make([]bool, len(t.Nodes))
	for k, c := range r.changed {
		if !c {
			continue
		}
		i := NodeIndex(k)
		d.dirty = append(d.dirty, i)
		if t.Nodes[i].Kind == KindInline {
			// Inline content is laid out by its block container.
			i = t.blockContainer(i)
			d.dirty = append(d.dirty, i)
		}
		isRoot[i] = true
	}
	for k, root := range isRoot {
		if !root {
			continue
		}
		covered := false
		for p := t.Nodes[k].Parent; p != NoIndex; p = t.Nodes[p].Parent {
			if isRoot[p] {
				covered = true
				break
			}
		}
		if !covered {
			d.LayoutRoots = append(d.LayoutRoots, NodeIndex(k))
		}
	}
	sort.Slice(d.LayoutRoots, func(a, b int) bool { return d.LayoutRoots[a] < d.LayoutRoots[b] })

	d.Clean = len(d.LayoutRoots) == 0
	for _, v := range d.Intrinsic {
		if v {
			d.Clean = false
			break
		}
	}
	return d
}
