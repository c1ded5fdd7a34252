// Package text is the inline shaping collaborator used by layout: it breaks
// runs of inline items into lines and reports glyph clusters, cursor and
// selection geometry for the result.
package text

import "boxflow/pkg/style"

// Size is a width/height pair.
type Size struct {
	W, H float64
}

// Rect is an axis-aligned rectangle.
type Rect struct {
	X, Y, W, H float64
}

// Union returns the smallest rectangle containing r and o. Empty rectangles
// are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.W == 0 && r.H == 0 {
		return o
	}
	if o.W == 0 && o.H == 0 {
		return r
	}
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.X+r.W, o.X+o.W), max(r.Y+r.H, o.Y+o.H)
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// InlineItem is one piece of inline content handed to the shaper: either a
// run of text or an atomic box (inline-block, image) of fixed size.
type InlineItem struct {
	// Source is an opaque caller handle, returned untouched in clusters.
	Source     int
	Text       string
	FontSize   float64
	Color      style.Color
	Decoration style.Decoration
	Atomic     *Size
}

// Constraints bound an inline layout.
type Constraints struct {
	// AvailableWidth is the inline-axis size lines break against.
	AvailableWidth float64
	WritingMode    style.WritingMode
}

// Cluster is a grapheme cluster (or atomic box) positioned in the layout's
// physical coordinate space.
type Cluster struct {
	Item       int
	Offset     int // byte offset into the item's text
	Len        int
	Text       string
	Rect       Rect
	Advance    float64
	Ascent     float64
	Line       int
	Atomic     bool
	Color      style.Color
	Decoration style.Decoration
	FontSize   float64
	Font       string
}

// Run is a maximal sequence of clusters of one item on one line.
type Run struct {
	Item       int
	Line       int
	Text       string
	Rect       Rect
	Baseline   float64 // distance from Rect.Y to the baseline
	Color      style.Color
	Decoration style.Decoration
	FontSize   float64
	Font       string
}

// ShapedInlineLayout is the opaque result of LayoutInline.
type ShapedInlineLayout struct {
	Size     Size
	Baseline float64 // first line baseline from the top
	Lines    int
	Clusters []Cluster
	Runs     []Run
	// ItemBounds holds the union of each item's clusters, indexed like the input.
	ItemBounds []Rect

	items    []InlineItem
	vertical bool
}

// CursorRect returns the caret rectangle before byte offset of item.
func (l *ShapedInlineLayout) CursorRect(item, offset int) (Rect, bool) {
	var last *Cluster
	for i := range l.Clusters {
		c := &l.Clusters[i]
		if c.Item != item {
			continue
		}
		if offset >= c.Offset && offset < c.Offset+c.Len {
			return l.caretAt(c, false), true
		}
		last = c
	}
	if last != nil && offset == last.Offset+last.Len {
		return l.caretAt(last, true), true
	}
	return Rect{}, false
}

func (l *ShapedInlineLayout) caretAt(c *Cluster, after bool) Rect {
	r := c.Rect
	if !l.vertical {
		x := r.X
		if after {
			x += r.W
		}
		return Rect{X: x, Y: r.Y, W: 1, H: r.H}
	}
	y := r.Y
	if after {
		y += r.H
	}
	return Rect{X: r.X, Y: y, W: r.W, H: 1}
}

// SelectionRects returns one rectangle per line covering the clusters of
// item whose text overlaps [start, end).
func (l *ShapedInlineLayout) SelectionRects(item, start, end int) []Rect {
	if end <= start {
		return nil
	}
	var out []Rect
	line := -1
	for _, c := range l.Clusters {
		if c.Item != item || c.Offset+c.Len <= start || c.Offset >= end {
			continue
		}
		if c.Line != line {
			out = append(out, c.Rect)
			line = c.Line
			continue
		}
		out[len(out)-1] = out[len(out)-1].Union(c.Rect)
	}
	return out
}

// Item returns the input item i.
func (l *ShapedInlineLayout) Item(i int) InlineItem { return l.items[i] }

// Shaper lays out inline content.
type Shaper interface {
	LayoutInline(items []InlineItem, c Constraints) *ShapedInlineLayout
	MinMaxContent(items []InlineItem) (minContent, maxContent float64)
}
