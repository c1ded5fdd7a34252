package layout

import (
	"fmt"

	"boxflow/pkg/style"
)

// Tree is the per-frame arena of layout nodes. Node 0 is the root and nodes
// are stored in document pre-order.
type Tree struct {
	Nodes    []Node
	Root     NodeIndex
	Viewport Size

	// Absolute holds border-box origins in document coordinates, excluding
	// scroll offsets. Filled by UpdateAbsolute.
	Absolute []Point

	bySource map[style.NodeID]NodeIndex

	// dirty marks nodes that must not reuse their layout cache; childDirty
	// marks ancestors of such nodes.
	dirty          []bool
	childDirty     []bool
	intrinsicDirty []bool
	// intrinsicChanged marks nodes whose intrinsic sizes moved in the last
	// intrinsic pass; shrink-to-fit boxes depend on them.
	intrinsicChanged []bool
}

// Len returns the number of nodes.
func (t *Tree) Len() int { return len(t.Nodes) }

// Node returns the node at i or ErrInvalidTree.
func (t *Tree) Node(i NodeIndex) (*Node, error) {
	if i < 0 || int(i) >= len(t.Nodes) {
		return nil, fmt.Errorf("node index %d of %d: %w", i, len(t.Nodes), ErrInvalidTree)
	}
	return &t.Nodes[i], nil
}

// IndexOf returns the box generated for a document node.
func (t *Tree) IndexOf(id style.NodeID) (NodeIndex, bool) {
	i, ok := t.bySource[id]
	return i, ok
}

// AbsoluteRect returns the border box of i in document coordinates.
func (t *Tree) AbsoluteRect(i NodeIndex) Rect {
	n := &t.Nodes[i]
	p := t.Absolute[i]
	return Rect{X: p.X, Y: p.Y, Width: n.Used.Width, Height: n.Used.Height}
}

// Validate checks the arena invariants: a single parentless root, every
// other node listed in exactly one child list that matches its parent link,
// and parent chains that reach the root.
func (t *Tree) Validate() error {
	if len(t.Nodes) == 0 {
		return fmt.Errorf("empty tree: %w", ErrInvalidTree)
	}
	if _, err := t.Node(t.Root); err != nil {
		return err
	}
	seen := make([]int, len(t.Nodes))
	for i := range t.Nodes {
		n := &t.Nodes[i]
		if NodeIndex(i) == t.Root {
			if n.Parent != NoIndex {
				return fmt.Errorf("root %d has parent %d: %w", i, n.Parent, ErrInvalidTree)
			}
		} else if n.Parent == NoIndex {
			return fmt.Errorf("node %d has no parent: %w", i, ErrInvalidTree)
		}
		for _, c := range n.Children {
			child, err := t.Node(c)
			if err != nil {
				return err
			}
			if child.Parent != NodeIndex(i) {
				return fmt.Errorf("node %d listed under %d but parent is %d: %w", c, i, child.Parent, ErrInvalidTree)
			}
			seen[c]++
		}
	}
	for i := range t.Nodes {
		if NodeIndex(i) == t.Root {
			if seen[i] != 0 {
				return fmt.Errorf("root listed as a child: %w", ErrInvalidTree)
			}
			continue
		}
		if seen[i] != 1 {
			return fmt.Errorf("node %d listed %d times: %w", i, seen[i], ErrInvalidTree)
		}
		steps := 0
		for p := NodeIndex(i); p != t.Root; p = t.Nodes[p].Parent {
			if _, err := t.Node(p); err != nil {
				return err
			}
			if steps++; steps > len(t.Nodes) {
				return fmt.Errorf("cycle through node %d: %w", i, ErrInvalidTree)
			}
		}
	}
	return nil
}

// UpdateAbsolute recomputes Absolute from relative positions and offsets.
func (t *Tree) UpdateAbsolute() error {
	if len(t.Absolute) != len(t.Nodes) {
		t.Absolute = make([]Point, len(t.Nodes))
	}
	return t.updateAbsolute(t.Root, Point{})
}

func (t *Tree) updateAbsolute(i NodeIndex, parent Point) error {
	n, err := t.Node(i)
	if err != nil {
		return err
	}
	abs := parent.Add(n.Position).Add(n.Offset)
	t.Absolute[i] = abs
	for _, c := range n.Children {
		if err := t.updateAbsolute(c, abs); err != nil {
			return err
		}
	}
	return nil
}

// IsAncestor reports whether a is a proper ancestor of i.
func (t *Tree) IsAncestor(a, i NodeIndex) bool {
	for p := t.Nodes[i].Parent; p != NoIndex; p = t.Nodes[p].Parent {
		if p == a {
			return true
		}
	}
	return false
}

// blockContainer returns the nearest ancestor-or-self that is not inline
// content; it owns the inline formatting context i belongs to.
func (t *Tree) blockContainer(i NodeIndex) NodeIndex {
	for i != NoIndex && t.Nodes[i].Kind == KindInline {
		i = t.Nodes[i].Parent
	}
	return i
}

// markDirty invalidates the layout cache of i and flags its ancestors.
func (t *Tree) markDirty(i NodeIndex) {
	t.dirty[i] = true
	for p := t.Nodes[i].Parent; p != NoIndex && !t.childDirty[p]; p = t.Nodes[p].Parent {
		t.childDirty[p] = true
	}
}

// MarkAllDirty drops every layout and intrinsic cache.
func (t *Tree) MarkAllDirty() {
	for i := range t.Nodes {
		t.dirty[i] = true
		t.childDirty[i] = true
		t.intrinsicDirty[i] = true
	}
}

// ApplyDirty installs the reconciler output on t.
func (t *Tree) ApplyDirty(d Dirty) {
	for i, v := range d.Intrinsic {
		if v {
			t.intrinsicDirty[i] = true
		}
	}
	for _, i := range d.dirty {
		t.markDirty(i)
	}
	for _, i := range d.LayoutRoots {
		t.markDirty(i)
	}
}

func (t *Tree) resetFlags() {
	n := len(t.Nodes)
	t.dirty = make([]bool, n)
	t.childDirty = make([]bool, n)
	t.intrinsicDirty = make([]bool, n)
	t.intrinsicChanged = make([]bool, n)
}

// Build converts a styled document into a fresh tree with every node dirty.
// Nodes with display:none are skipped with their subtrees. Runs of
// inline-level children in a block container that also has block-level
// children are wrapped in anonymous blocks.
func Build(doc *style.Document, viewport Size) (*Tree, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("nil document: %w", ErrInvalidTree)
	}
	t := &Tree{Viewport: viewport, bySource: map[style.NodeID]NodeIndex{}}

	root := doc.Root
	if root.Kind != style.KindElement || root.Style.Display != style.DisplayBlock {
		// The root always establishes a block formatting context.
		wrapper := t.add(Node{Source: style.NoNode, Kind: KindAnonymous, Parent: NoIndex, Style: anonymousStyle(root.Style)})
		t.buildChildren(wrapper, []*style.Node{root})
	} else {
		t.buildNode(root, NoIndex)
	}
	t.Root = 0
	t.resetFlags()
	t.MarkAllDirty()
	return t, nil
}

func (t *Tree) add(n Node) NodeIndex {
	n.ContainingBlock = NoIndex
	i := NodeIndex(len(t.Nodes))
	t.Nodes = append(t.Nodes, n)
	if n.Source != style.NoNode {
		t.bySource[n.Source] = i
	}
	if n.Parent != NoIndex {
		t.Nodes[n.Parent].Children = append(t.Nodes[n.Parent].Children, i)
	}
	return i
}

func (t *Tree) buildNode(sn *style.Node, parent NodeIndex) {
	n := Node{Source: sn.ID, Key: sn.Key, Parent: parent, Style: sn.Style}
	switch sn.Kind {
	case style.KindText:
		n.Kind = KindInline
		n.Text = sn.Text
	case style.KindImage:
		n.Kind = KindReplaced
		n.Image = sn.Image
		n.NaturalSize = Size{Width: sn.IntrinsicWidth, Height: sn.IntrinsicHeight}
	default:
		if sn.Style.Display == style.DisplayInline && parent != NoIndex && !sn.Style.Position.OutOfFlow() {
			n.Kind = KindInline
		} else {
			n.Kind = KindBlock
		}
	}
	i := t.add(n)
	if sn.Kind == style.KindElement {
		t.buildChildren(i, sn.Children)
	}
}

func (t *Tree) buildChildren(parent NodeIndex, children []*style.Node) {
	visible := children[:0:0]
	for _, c := range children {
		if c.Style.Display != style.DisplayNone {
			visible = append(visible, c)
		}
	}

	// Inline parents and pure-inline or pure-block containers need no
	// anonymous boxes.
	if t.Nodes[parent].Kind == KindInline || !mixedContent(visible) {
		for _, c := range visible {
			t.buildNode(c, parent)
		}
		return
	}

	anon := NoIndex
	for _, c := range visible {
		if isInlineLevel(c) {
			if anon == NoIndex {
				anon = t.add(Node{
					Source: style.NoNode, Kind: KindAnonymous, Parent: parent,
					Style: anonymousStyle(t.Nodes[parent].Style),
				})
			}
			t.buildNode(c, anon)
			continue
		}
		anon = NoIndex
		t.buildNode(c, parent)
	}
}

func isInlineLevel(n *style.Node) bool {
	if n.Style.Position.OutOfFlow() {
		return false
	}
	return n.Kind == style.KindText || n.Style.Display == style.DisplayInline || n.Style.Display == style.DisplayInlineBlock
}

func mixedContent(children []*style.Node) bool {
	var inline, block bool
	for _, c := range children {
		if c.Style.Position.OutOfFlow() {
			continue
		}
		if isInlineLevel(c) {
			inline = true
		} else {
			block = true
		}
	}
	return inline && block
}

func anonymousStyle(parent style.Style) style.Style {
	s := parent.Inherit()
	s.Display = style.DisplayBlock
	return s
}
