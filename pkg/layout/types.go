package layout

import (
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// NodeIndex addresses a node in a Tree arena. Indices are stable within one
// frame only.
type NodeIndex int

// NoIndex is the absent NodeIndex.
const NoIndex NodeIndex = -1

// FormattingKind tags how a node participates in layout.
type FormattingKind uint8

const (
	// KindBlock is a block container: a block-level box or an inline-block.
	KindBlock FormattingKind = iota
	// KindInline is non-atomic inline content: text and inline elements.
	KindInline
	// KindAnonymous is a generated block wrapping a run of inline content
	// inside a block container that also has block children.
	KindAnonymous
	// KindReplaced is an image or other box with natural dimensions.
	KindReplaced
)

func (k FormattingKind) String() string {
	switch k {
	case KindInline:
		return "inline"
	case KindAnonymous:
		return "anonymous"
	case KindReplaced:
		return "replaced"
	}
	return "block"
}

// Rect represents a rectangular region
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Contains reports whether the point lies inside r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// Intersect returns the overlap of r and o; empty when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.X+r.Width, o.X+o.Width), min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Translate returns r moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Size represents dimensions (width and height)
type Size struct {
	Width  float64
	Height float64
}

// Point represents a 2D coordinate
type Point struct {
	X float64
	Y float64
}

// Add returns p+o.
func (p Point) Add(o Point) Point { return Point{X: p.X + o.X, Y: p.Y + o.Y} }

// Sub returns p-o.
func (p Point) Sub(o Point) Point { return Point{X: p.X - o.X, Y: p.Y - o.Y} }

// Edges are resolved pixel widths of the four sides of a box.
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Horizontal returns Left+Right.
func (e Edges) Horizontal() float64 { return e.Left + e.Right }

// Vertical returns Top+Bottom.
func (e Edges) Vertical() float64 { return e.Top + e.Bottom }

// The block (main) axis is the direction boxes stack in; the inline (cross)
// axis is the direction text runs in. horizontal-tb stacks top to bottom,
// vertical-rl right to left and vertical-lr left to right.

// MainStart returns the edge at the start of the block axis.
func (e Edges) MainStart(wm style.WritingMode) float64 {
	switch wm {
	case style.VerticalRL:
		return e.Right
	case style.VerticalLR:
		return e.Left
	}
	return e.Top
}

// MainEnd returns the edge at the end of the block axis.
func (e Edges) MainEnd(wm style.WritingMode) float64 {
	switch wm {
	case style.VerticalRL:
		return e.Left
	case style.VerticalLR:
		return e.Right
	}
	return e.Bottom
}

// CrossStart returns the edge at the start of the inline axis.
func (e Edges) CrossStart(wm style.WritingMode) float64 {
	if wm.IsVertical() {
		return e.Top
	}
	return e.Left
}

// CrossEnd returns the edge at the end of the inline axis.
func (e Edges) CrossEnd(wm style.WritingMode) float64 {
	if wm.IsVertical() {
		return e.Bottom
	}
	return e.Right
}

// Main returns the sum of both block-axis edges.
func (e Edges) Main(wm style.WritingMode) float64 { return e.MainStart(wm) + e.MainEnd(wm) }

// Cross returns the sum of both inline-axis edges.
func (e Edges) Cross(wm style.WritingMode) float64 { return e.CrossStart(wm) + e.CrossEnd(wm) }

// MainSize returns the block-axis component of s.
func MainSize(s Size, wm style.WritingMode) float64 {
	if wm.IsVertical() {
		return s.Width
	}
	return s.Height
}

// CrossSize returns the inline-axis component of s.
func CrossSize(s Size, wm style.WritingMode) float64 {
	if wm.IsVertical() {
		return s.Height
	}
	return s.Width
}

// LogicalSize builds a physical size from inline (cross) and block (main)
// components.
func LogicalSize(cross, main float64, wm style.WritingMode) Size {
	if wm.IsVertical() {
		return Size{Width: main, Height: cross}
	}
	return Size{Width: cross, Height: main}
}

// BoxModel holds the resolved margin, border and padding of a node.
type BoxModel struct {
	Margin  Edges
	Border  Edges
	Padding Edges
}

// ContentOffset is the offset of the content box from the border box origin.
func (b BoxModel) ContentOffset() Point {
	return Point{X: b.Border.Left + b.Padding.Left, Y: b.Border.Top + b.Padding.Top}
}

// Frame returns border+padding per side.
func (b BoxModel) Frame() Edges {
	return Edges{
		Top:    b.Border.Top + b.Padding.Top,
		Right:  b.Border.Right + b.Padding.Right,
		Bottom: b.Border.Bottom + b.Padding.Bottom,
		Left:   b.Border.Left + b.Padding.Left,
	}
}

// IntrinsicSizes are the min/max-content contributions of a node's border
// box along its inline axis.
type IntrinsicSizes struct {
	MinContent float64
	MaxContent float64
}

// ScrollbarInfo records whether a box needs scrollbars and how much layout
// space they take. Overlay scrollbars are needed but take no space.
type ScrollbarInfo struct {
	NeedsHorizontal bool
	NeedsVertical   bool
	// ScrollbarWidth is the inline space taken by the vertical bar.
	ScrollbarWidth float64
	// ScrollbarHeight is the block space taken by the horizontal bar.
	ScrollbarHeight float64
}

// Any reports whether either scrollbar is needed.
func (s ScrollbarInfo) Any() bool { return s.NeedsHorizontal || s.NeedsVertical }

// constraints are the inputs of a node's used-size computation. They double
// as the layout cache key together with the node's ScrollbarInfo.
type constraints struct {
	// Avail is the containing block content size. A negative height means
	// indefinite.
	Avail Size
	// WM is the containing block writing mode.
	WM style.WritingMode
	// ShrinkToFit sizes an auto inline size to fit content.
	ShrinkToFit bool
	// Stretch forces an auto size on an axis (left+right or top+bottom
	// constrained out-of-flow boxes); negative means unset.
	StretchWidth  float64
	StretchHeight float64
}

type cacheKey struct {
	cons      constraints
	scrollbar ScrollbarInfo
}

// Node is one box in the arena.
type Node struct {
	// Source is the styled-document node, style.NoNode for generated boxes.
	Source   style.NodeID
	Key      string
	Parent   NodeIndex
	Children []NodeIndex
	Kind     FormattingKind
	Style    style.Style

	Text        string
	Image       string
	NaturalSize Size

	Box       BoxModel
	Intrinsic IntrinsicSizes

	// Used is the border-box size; valid once Visited is set.
	Used    Size
	Visited bool
	// Position is the border-box origin relative to the parent border box.
	Position Point
	// Offset is the relative-positioning shift.
	Offset Point
	// StaticPosition is where an out-of-flow box would sit in normal flow,
	// relative to its parent border box.
	StaticPosition Point
	// ContainingBlock is set for out-of-flow boxes; NoIndex means the viewport.
	ContainingBlock NodeIndex

	Baseline    float64
	HasBaseline bool

	// Inline is the shaped line layout of a block container whose children
	// are all inline-level; coordinates are relative to its content box.
	Inline *text.ShapedInlineLayout
	// InlineItems maps Inline item indices to the nodes that produced them.
	InlineItems []NodeIndex

	Scrollbar ScrollbarInfo
	// Overflow is the scrollable content size measured from the padding box
	// origin.
	Overflow Size

	cache      cacheKey
	cacheValid bool
}

// IsOutOfFlow reports whether the node is absolutely or fixed positioned.
func (n *Node) IsOutOfFlow() bool { return n.Style.Position.OutOfFlow() }

// IsInlineLevel reports whether the node takes part in an inline
// formatting context of its parent.
func (n *Node) IsInlineLevel() bool {
	if n.IsOutOfFlow() {
		return false
	}
	switch n.Kind {
	case KindInline:
		return true
	case KindBlock, KindReplaced:
		return n.Style.Display == style.DisplayInline || n.Style.Display == style.DisplayInlineBlock
	}
	return false
}

// IsAtomicInline reports whether the node is inline-level but laid out as a
// single unbreakable box.
func (n *Node) IsAtomicInline() bool {
	return n.IsInlineLevel() && n.Kind != KindInline
}

// IsScrollContainer reports whether the node clips overflow on some axis.
func (n *Node) IsScrollContainer() bool {
	return n.Kind != KindInline && n.Style.IsScrollContainer()
}

// PaddingBox returns the padding box relative to the node's border box.
func (n *Node) PaddingBox() Rect {
	b := n.Box.Border
	return Rect{X: b.Left, Y: b.Top, Width: n.Used.Width - b.Horizontal(), Height: n.Used.Height - b.Vertical()}
}

// ContentSize returns the content-box size excluding scrollbar space.
func (n *Node) ContentSize() Size {
	f := n.Box.Frame()
	return Size{
		Width:  max(0, n.Used.Width-f.Horizontal()-n.Scrollbar.ScrollbarWidth*b2f(n.Scrollbar.NeedsVertical)),
		Height: max(0, n.Used.Height-f.Vertical()-n.Scrollbar.ScrollbarHeight*b2f(n.Scrollbar.NeedsHorizontal)),
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
