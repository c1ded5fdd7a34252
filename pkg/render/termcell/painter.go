// Package termcell replays a display list onto a terminal cell grid. Each
// cell covers a fixed number of layout pixels, matching the grid of
// text.CellMeasurer.
package termcell

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"boxflow/pkg/display"
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
)

// Screen is the part of tcell.Screen the painter draws to.
type Screen interface {
	SetContent(x, y int, mainc rune, combc []rune, style tcell.Style)
	Size() (int, int)
}

type cellRect struct{ x0, y0, x1, y1 int }

func (r cellRect) contains(x, y int) bool {
	return x >= r.x0 && x < r.x1 && y >= r.y0 && y < r.y1
}

func (r cellRect) intersect(o cellRect) cellRect {
	out := cellRect{max(r.x0, o.x0), max(r.y0, o.y0), min(r.x1, o.x1), min(r.y1, o.y1)}
	if out.x1 < out.x0 {
		out.x1 = out.x0
	}
	if out.y1 < out.y0 {
		out.y1 = out.y0
	}
	return out
}

type cell struct {
	ch      rune
	comb    []rune
	fg, bg  style.Color
	reverse bool
}

// Painter draws display lists cell by cell.
type Painter struct {
	screen       Screen
	cellW, cellH float64
	Background   style.Color
	Foreground   style.Color
	w, h         int
	grid         []cell
	clips        []cellRect
}

// NewPainter draws onto s with cells of cellW x cellH pixels.
func NewPainter(s Screen, cellW, cellH float64) *Painter {
	return &Painter{
		screen:     s,
		cellW:      cellW,
		cellH:      cellH,
		Background: style.Color{A: 255},
		Foreground: style.Color{R: 220, G: 220, B: 220, A: 255},
	}
}

// Viewport is the screen size in layout pixels.
func (p *Painter) Viewport() layout.Size {
	w, h := p.screen.Size()
	return layout.Size{Width: float64(w) * p.cellW, Height: float64(h) * p.cellH}
}

// Point returns the layout point at the center of cell (x, y).
func (p *Painter) Point(x, y int) layout.Point {
	return layout.Point{X: (float64(x) + 0.5) * p.cellW, Y: (float64(y) + 0.5) * p.cellH}
}

// toCells maps a pixel rectangle onto the cells whose centers it covers.
func (p *Painter) toCells(r layout.Rect) cellRect {
	return cellRect{
		x0: int(math.Round(r.X / p.cellW)),
		y0: int(math.Round(r.Y / p.cellH)),
		x1: int(math.Round((r.X + r.Width) / p.cellW)),
		y1: int(math.Round((r.Y + r.Height) / p.cellH)),
	}
}

func (p *Painter) clip() cellRect {
	return p.clips[len(p.clips)-1]
}

func (p *Painter) at(x, y int) *cell {
	if !p.clip().contains(x, y) {
		return nil
	}
	return &p.grid[y*p.w+x]
}

// Render paints l and flushes the cells to the screen. Call Show on a
// tcell.Screen afterwards.
func (p *Painter) Render(l *display.List) {
	p.w, p.h = p.screen.Size()
	p.grid = make([]cell, p.w*p.h)
	for i := range p.grid {
		p.grid[i] = cell{ch: ' ', fg: p.Foreground, bg: p.Background}
	}
	p.clips = append(p.clips[:0], cellRect{0, 0, p.w, p.h})

	for _, it := range l.Items {
		switch v := it.(type) {
		case display.Rect:
			p.fill(v.Bounds, v.Color)
		case display.Border:
			p.border(v)
		case display.TextRun:
			p.text(v)
		case display.Image:
			p.glyphs(v.Bounds, '▒', style.Color{R: 128, G: 128, B: 128, A: 255})
		case display.SelectionRect:
			p.fill(v.Bounds, v.Color)
		case display.CursorRect:
			p.cursor(v)
		case display.ScrollBar:
			p.scrollBar(v)
		case display.PushClip:
			p.clips = append(p.clips, p.clip().intersect(p.toCells(v.Bounds)))
		case display.PushScrollFrame:
			p.clips = append(p.clips, p.clip().intersect(p.toCells(v.Clip)))
		case display.PopClip, display.PopScrollFrame:
			if len(p.clips) > 1 {
				p.clips = p.clips[:len(p.clips)-1]
			}
		}
	}
	p.flush()
}

func (p *Painter) flush() {
	for y := 0; y < p.h; y++ {
		for x := 0; x < p.w; x++ {
			c := &p.grid[y*p.w+x]
			if c.ch == 0 {
				// Trailing half of a wide rune.
				continue
			}
			st := tcell.StyleDefault.Foreground(tcellColor(c.fg)).Background(tcellColor(c.bg)).Reverse(c.reverse)
			p.screen.SetContent(x, y, c.ch, c.comb, st)
		}
	}
}

func tcellColor(c style.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// blend composes c over dst.
func blend(dst, c style.Color) style.Color {
	if c.A == 255 {
		return c
	}
	a := float64(c.A) / 255
	mix := func(d, s uint8) uint8 { return uint8(float64(d)*(1-a) + float64(s)*a + 0.5) }
	return style.Color{R: mix(dst.R, c.R), G: mix(dst.G, c.G), B: mix(dst.B, c.B), A: 255}
}

func (p *Painter) fill(b layout.Rect, col style.Color) {
	if col.Transparent() {
		return
	}
	r := p.toCells(b)
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			if c := p.at(x, y); c != nil {
				c.bg = blend(c.bg, col)
				if col.A == 255 {
					c.ch, c.comb = ' ', nil
				}
			}
		}
	}
}

func (p *Painter) glyphs(b layout.Rect, ch rune, fg style.Color) {
	r := p.toCells(b)
	for y := r.y0; y < r.y1; y++ {
		for x := r.x0; x < r.x1; x++ {
			if c := p.at(x, y); c != nil {
				c.ch, c.comb, c.fg = ch, nil, fg
			}
		}
	}
}

func (p *Painter) border(b display.Border) {
	if b.Color.Transparent() {
		return
	}
	r := p.toCells(b.Bounds)
	if r.x1-r.x0 < 1 || r.y1-r.y0 < 1 {
		return
	}
	set := func(x, y int, ch rune) {
		if c := p.at(x, y); c != nil {
			c.ch, c.comb, c.fg = ch, nil, b.Color
		}
	}
	top, bottom := b.Widths.Top > 0, b.Widths.Bottom > 0
	left, right := b.Widths.Left > 0, b.Widths.Right > 0
	for x := r.x0; x < r.x1; x++ {
		if top {
			set(x, r.y0, '─')
		}
		if bottom {
			set(x, r.y1-1, '─')
		}
	}
	for y := r.y0; y < r.y1; y++ {
		if left {
			set(r.x0, y, '│')
		}
		if right {
			set(r.x1-1, y, '│')
		}
	}
	corner := func(x, y int, ok bool, ch rune) {
		if ok {
			set(x, y, ch)
		}
	}
	corner(r.x0, r.y0, top && left, '┌')
	corner(r.x1-1, r.y0, top && right, '┐')
	corner(r.x0, r.y1-1, bottom && left, '└')
	corner(r.x1-1, r.y1-1, bottom && right, '┘')
}

// text writes one grapheme cluster per cell run, advancing by its display
// width.
func (p *Painter) text(t display.TextRun) {
	if t.Color.Transparent() {
		return
	}
	x := int(math.Round(t.Bounds.X / p.cellW))
	y := int(math.Round(t.Bounds.Y / p.cellH))
	rest, state := t.Text, -1
	var cl string
	for rest != "" {
		cl, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := runewidth.StringWidth(cl)
		if w == 0 {
			continue
		}
		runes := []rune(cl)
		if c := p.at(x, y); c != nil {
			c.ch, c.comb, c.fg = runes[0], runes[1:], t.Color
			if w == 2 && p.clip().contains(x+1, y) {
				p.grid[y*p.w+x+1].ch = 0
			}
		}
		if t.Vertical {
			y++
		} else {
			x += w
		}
	}
}

func (p *Painter) cursor(cr display.CursorRect) {
	r := p.toCells(cr.Bounds)
	if c := p.at(r.x0, r.y0); c != nil {
		c.reverse = true
	}
}

func (p *Painter) scrollBar(sb display.ScrollBar) {
	if sb.Opacity <= 0 {
		return
	}
	track := '│'
	if !sb.Vertical {
		track = '─'
	}
	dim := style.Color{R: 110, G: 110, B: 110, A: 255}
	p.glyphs(sb.Track, track, dim)
	p.glyphs(sb.Thumb, '█', p.Foreground)
}
