package text

import (
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"boxflow/pkg/style"
)

// Measurer supplies glyph metrics to the line breaker.
type Measurer interface {
	Advance(s string, fontSize float64) float64
	// LineMetrics returns the ascent and the full line height for a font size.
	LineMetrics(fontSize float64) (ascent, height float64)
	FontName(fontSize float64) string
}

// Greedy is a Shaper that fills each line with as many words as fit,
// breaking only at white space and around atomic inlines.
type Greedy struct {
	m Measurer
}

// NewGreedy returns a greedy shaper over m.
func NewGreedy(m Measurer) *Greedy {
	return &Greedy{m: m}
}

// Measurer returns the metrics source of the shaper.
func (g *Greedy) Measurer() Measurer { return g.m }

type segment struct {
	clusters []Cluster
	width    float64
	space    bool
}

// segments splits items into break-opportunity delimited segments. A word
// spanning several text items stays one segment.
func (g *Greedy) segments(items []InlineItem) []segment {
	var segs []segment
	var word *segment
	flush := func() {
		if word != nil {
			segs = append(segs, *word)
			word = nil
		}
	}

	for i, it := range items {
		if it.Atomic != nil {
			flush()
			segs = append(segs, segment{
				width: it.Atomic.W,
				clusters: []Cluster{{
					Item: i, Atomic: true,
					Advance: it.Atomic.W, Ascent: it.Atomic.H,
					Rect: Rect{W: it.Atomic.W, H: it.Atomic.H},
				}},
			})
			continue
		}

		ascent, height := g.m.LineMetrics(it.FontSize)
		font := g.m.FontName(it.FontSize)
		base := Cluster{
			Item: i, Ascent: ascent, Color: it.Color, Decoration: it.Decoration,
			FontSize: it.FontSize, Font: font, Rect: Rect{H: height},
		}

		state := -1
		offset := 0
		rest := it.Text
		for len(rest) > 0 {
			var cl string
			cl, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			r, _ := utf8.DecodeRuneInString(cl)

			if unicode.IsSpace(r) {
				flush()
				// Collapse runs of white space into one space cluster.
				if n := len(segs); n > 0 && segs[n-1].space && segs[n-1].clusters[0].Item == i {
					segs[n-1].clusters[0].Len += len(cl)
				} else {
					c := base
					c.Offset, c.Len, c.Text = offset, len(cl), " "
					c.Advance = g.m.Advance(" ", it.FontSize)
					c.Rect.W = c.Advance
					segs = append(segs, segment{clusters: []Cluster{c}, width: c.Advance, space: true})
				}
				offset += len(cl)
				continue
			}

			if word == nil {
				word = &segment{}
			}
			c := base
			c.Offset, c.Len, c.Text = offset, len(cl), cl
			c.Advance = g.m.Advance(cl, it.FontSize)
			c.Rect.W = c.Advance
			word.clusters = append(word.clusters, c)
			word.width += c.Advance
			offset += len(cl)
		}
	}
	flush()
	return segs
}

// MinMaxContent returns the widest unbreakable segment and the width of all
// content on a single line.
func (g *Greedy) MinMaxContent(items []InlineItem) (minContent, maxContent float64) {
	line := 0.0
	for _, s := range g.segments(items) {
		if s.space {
			if line > 0 {
				line += s.width
			}
			continue
		}
		minContent = max(minContent, s.width)
		line += s.width
	}
	return minContent, line
}

// LayoutInline breaks items into lines no wider than c.AvailableWidth.
// Segments wider than the available width overflow on a line of their own.
func (g *Greedy) LayoutInline(items []InlineItem, c Constraints) *ShapedInlineLayout {
	avail := c.AvailableWidth
	if avail <= 0 {
		avail = math.Inf(1)
	}

	var lines [][]Cluster
	var cur []Cluster
	x := 0.0
	closeLine := func() {
		for len(cur) > 0 && cur[len(cur)-1].Text == " " && !cur[len(cur)-1].Atomic {
			cur = cur[:len(cur)-1]
		}
		lines = append(lines, cur)
		cur, x = nil, 0
	}

	for _, s := range g.segments(items) {
		if s.space {
			if len(cur) == 0 {
				continue
			}
		} else if len(cur) > 0 && x+s.width > avail {
			closeLine()
		}
		for _, cl := range s.clusters {
			cl.Rect.X = x
			cl.Line = len(lines)
			x += cl.Advance
			cur = append(cur, cl)
		}
	}
	if len(cur) > 0 {
		closeLine()
	}

	out := &ShapedInlineLayout{
		Lines:      len(lines),
		ItemBounds: make([]Rect, len(items)),
		items:      items,
		vertical:   c.WritingMode.IsVertical(),
	}

	top := 0.0
	for i, ln := range lines {
		ascent, descent, width := 0.0, 0.0, 0.0
		for _, cl := range ln {
			ascent = max(ascent, cl.Ascent)
			descent = max(descent, cl.Rect.H-cl.Ascent)
			width = max(width, cl.Rect.X+cl.Advance)
		}
		if i == 0 {
			out.Baseline = ascent
		}
		for _, cl := range ln {
			cl.Rect.Y = top + ascent - cl.Ascent
			out.Clusters = append(out.Clusters, cl)
		}
		top += ascent + descent
		out.Size.W = max(out.Size.W, width)
	}
	out.Size.H = top

	if out.vertical {
		out.toVertical(c.WritingMode)
	}
	out.collectRuns()
	return out
}

// toVertical maps logical (inline, block) geometry onto physical axes.
func (l *ShapedInlineLayout) toVertical(wm style.WritingMode) {
	inline, block := l.Size.W, l.Size.H
	for i := range l.Clusters {
		r := l.Clusters[i].Rect
		p := Rect{X: r.Y, Y: r.X, W: r.H, H: r.W}
		if wm == style.VerticalRL {
			p.X = block - r.Y - r.H
		}
		l.Clusters[i].Rect = p
	}
	l.Size = Size{W: block, H: inline}
}

func (l *ShapedInlineLayout) collectRuns() {
	for _, c := range l.Clusters {
		l.ItemBounds[c.Item] = l.ItemBounds[c.Item].Union(c.Rect)
		if c.Atomic {
			continue
		}
		if n := len(l.Runs); n > 0 && l.Runs[n-1].Item == c.Item && l.Runs[n-1].Line == c.Line {
			r := &l.Runs[n-1]
			r.Text += c.Text
			r.Rect = r.Rect.Union(c.Rect)
			continue
		}
		l.Runs = append(l.Runs, Run{
			Item: c.Item, Line: c.Line, Text: c.Text, Rect: c.Rect,
			Baseline: c.Ascent, Color: c.Color, Decoration: c.Decoration,
			FontSize: c.FontSize, Font: c.Font,
		})
	}
}
