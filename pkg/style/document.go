package style

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID identifies a node inside one Document. IDs are assigned in
// pre-order starting at 0 for the root.
type NodeID int

// NoNode is the absent NodeID.
const NoNode NodeID = -1

// Kind is the type of a styled node.
type Kind uint8

const (
	KindElement Kind = iota
	KindText
	KindImage
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	}
	return "element"
}

// Node is one node of a styled document.
type Node struct {
	ID    NodeID
	Key   string
	Kind  Kind
	Style Style

	// Text content for KindText nodes.
	Text string
	// Image reference and its natural size for KindImage nodes.
	Image           string
	IntrinsicWidth  float64
	IntrinsicHeight float64

	Children []*Node
	Parent   *Node
}

// Document is a styled tree with a stable identity across frames.
type Document struct {
	ID   uuid.UUID
	Root *Node

	nodes []*Node
}

// NewDocument assigns node ids, parent links and inherited text styles and
// returns the document. A nil id gets a fresh random one.
func NewDocument(id uuid.UUID, root *Node) (*Document, error) {
	if root == nil {
		return nil, fmt.Errorf("document has no root node")
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	d := &Document{ID: id, Root: root}
	if err := d.index(root, nil, map[*Node]bool{}); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Document) index(n, parent *Node, seen map[*Node]bool) error {
	if seen[n] {
		return fmt.Errorf("node %q is attached more than once", n.Key)
	}
	seen[n] = true
	n.ID = NodeID(len(d.nodes))
	n.Parent = parent
	d.nodes = append(d.nodes, n)

	if n.Kind == KindText && parent != nil {
		inherited := parent.Style.Inherit()
		inherited.Interactive = n.Style.Interactive
		n.Style = inherited
	}
	if n.Kind != KindElement && len(n.Children) > 0 {
		return fmt.Errorf("%s node %d cannot have children", n.Kind, n.ID)
	}
	for _, c := range n.Children {
		if err := d.index(c, n, seen); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of nodes.
func (d *Document) Len() int { return len(d.nodes) }

// Node returns the node with the given id or nil.
func (d *Document) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(d.nodes) {
		return nil
	}
	return d.nodes[id]
}

// Walk visits nodes in document (pre-)order until fn returns false.
func (d *Document) Walk(fn func(*Node) bool) {
	for _, n := range d.nodes {
		if !fn(n) {
			return
		}
	}
}

// ByKey returns the first node in document order carrying key.
func (d *Document) ByKey(key string) (*Node, bool) {
	var found *Node
	d.Walk(func(n *Node) bool {
		if n.Key == key {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// El builds an element node.
func El(s Style, children ...*Node) *Node {
	return &Node{Kind: KindElement, Style: s, Children: children}
}

// Text builds a text node. Its style is inherited from the parent when the
// document is indexed.
func Text(s string) *Node {
	return &Node{Kind: KindText, Text: s, Style: Default()}
}

// Image builds a replaced image node with a natural size.
func Image(s Style, src string, w, h float64) *Node {
	return &Node{Kind: KindImage, Style: s, Image: src, IntrinsicWidth: w, IntrinsicHeight: h}
}

// WithKey sets a reconciliation key and returns the node.
func (n *Node) WithKey(key string) *Node {
	n.Key = key
	return n
}
