// Package display turns a laid-out tree into an ordered, renderer-agnostic
// list of paint commands.
package display

import (
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

// Item is one paint command. Renderers type-switch over the concrete
// types below; coordinates are viewport pixels after scrolling.
type Item interface {
	// Source is the document node the item was produced for, or style.NoNode.
	Source() style.NodeID
}

// Rect fills a box background.
type Rect struct {
	Node   style.NodeID
	Bounds layout.Rect
	Color  style.Color
}

// Border strokes the four border sides inside Bounds.
type Border struct {
	Node   style.NodeID
	Bounds layout.Rect
	Widths layout.Edges
	Color  style.Color
}

// TextRun draws a run of shaped text.
type TextRun struct {
	Node   style.NodeID
	Bounds layout.Rect
	Text   string
	Font   string
	Size   float64
	Color  style.Color
	// Baseline is the distance from the top of Bounds to the baseline, or
	// from the left for vertical text.
	Baseline   float64
	Decoration style.Decoration
	Vertical   bool
}

// Image draws a replaced image into its content box.
type Image struct {
	Node   style.NodeID
	Bounds layout.Rect
	Src    string
}

// SelectionRect highlights selected text.
type SelectionRect struct {
	Node   style.NodeID
	Bounds layout.Rect
	Color  style.Color
}

// CursorRect draws the text caret.
type CursorRect struct {
	Node   style.NodeID
	Bounds layout.Rect
	Color  style.Color
}

// ScrollBar draws a scrollbar track and thumb.
type ScrollBar struct {
	Node     style.NodeID
	Track    layout.Rect
	Thumb    layout.Rect
	Vertical bool
	// Opacity is the fade level reported by the scroll manager.
	Opacity float64
}

// PushClip restricts painting to Bounds until the matching PopClip.
type PushClip struct {
	Node   style.NodeID
	Bounds layout.Rect
}

// PopClip ends the innermost clip.
type PopClip struct {
	Node style.NodeID
}

// PushScrollFrame opens a scroll container: painting is clipped to Clip,
// and the enclosed items are already shifted by Offset.
type PushScrollFrame struct {
	Node    style.NodeID
	Clip    layout.Rect
	Offset  layout.Point
	Content layout.Size
}

// PopScrollFrame ends the innermost scroll frame.
type PopScrollFrame struct {
	Node style.NodeID
}

// HitTestArea registers a region that receives pointer input. Clip is the
// intersection of the clips active where the area was emitted.
type HitTestArea struct {
	Node    style.NodeID
	Bounds  layout.Rect
	Clip    layout.Rect
	Clipped bool
	// Scroll marks the area of a scroll container.
	Scroll bool
}

func (i Rect) Source() style.NodeID { return i.Node }
func (i Border) Source() style.NodeID { return i.Node }
func (i TextRun) Source() style.NodeID { return i.Node }
func (i Image) Source() style.NodeID { return i.Node }
func (i SelectionRect) Source() style.NodeID { return i.Node }
func (i CursorRect) Source() style.NodeID { return i.Node }
func (i ScrollBar) Source() style.NodeID { return i.Node }
func (i PushClip) Source() style.NodeID { return i.Node }
func (i PopClip) Source() style.NodeID { return i.Node }
func (i PushScrollFrame) Source() style.NodeID { return i.Node }
func (i PopScrollFrame) Source() style.NodeID { return i.Node }
func (i HitTestArea) Source() style.NodeID { return i.Node }

// Contains reports whether p hits the visible part of the area.
func (i HitTestArea) Contains(p layout.Point) bool {
	if !i.Bounds.Contains(p) {
		return false
	}
	return !i.Clipped || i.Clip.Contains(p)
}

// List is an append-only sequence of paint commands in paint order.
type List struct {
	Items    []Item
	Viewport layout.Size
}

// Len returns the number of items.
func (l *List) Len() int { return len(l.Items) }

// HitTest returns the topmost hit-test area containing p.
func (l *List) HitTest(p layout.Point) (HitTestArea, bool) {
	for k := len(l.Items) - 1; k >= 0; k-- {
		if a, ok := l.Items[k].(HitTestArea); ok && a.Contains(p) {
			return a, true
		}
	}
	return HitTestArea{}, false
}

// ScrollTarget returns the topmost scroll container under p.
func (l *List) ScrollTarget(p layout.Point) (style.NodeID, bool) {
	for k := len(l.Items) - 1; k >= 0; k-- {
		if a, ok := l.Items[k].(HitTestArea); ok && a.Scroll && a.Contains(p) {
			return a.Node, true
		}
	}
	return style.NoNode, false
}
