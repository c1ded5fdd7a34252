// Package render replays a display list onto a gg raster canvas.
package render

import (
	"image"
	"io"
	"math"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"boxflow/pkg/display"
	"boxflow/pkg/images"
	"boxflow/pkg/layout"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

// FaceSource supplies the faces text runs are drawn with. Scale maps the
// face returned for a size onto that size.
type FaceSource interface {
	Face(size float64) font.Face
	Scale(size float64) float64
}

// Options configure a Renderer.
type Options struct {
	// Background clears the canvas; white when zero.
	Background style.Color
	// Fonts defaults to the built-in bitmap face.
	Fonts FaceSource
	// Images defaults to a loader relative to the working directory.
	Images *images.Loader
	Logger *zap.Logger
}

var (
	trackColor = style.Color{R: 220, G: 220, B: 220, A: 255}
	thumbColor = style.Color{R: 140, G: 140, B: 140, A: 255}
)

// Renderer paints display lists into an RGBA image.
type Renderer struct {
	context *gg.Context
	opts    Options
}

// NewRenderer creates a width x height canvas.
func NewRenderer(width, height int, opts Options) *Renderer {
	if opts.Background == (style.Color{}) {
		opts.Background = style.Color{R: 255, G: 255, B: 255, A: 255}
	}
	if opts.Fonts == nil {
		m, _ := text.NewFontMeasurer("")
		opts.Fonts = m
	}
	if opts.Images == nil {
		opts.Images = images.NewLoader("")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Renderer{context: gg.NewContext(width, height), opts: opts}
}

func (r *Renderer) setColor(c style.Color) {
	r.context.SetRGBA255(int(c.R), int(c.G), int(c.B), int(c.A))
}

func (r *Renderer) fill(b layout.Rect, c style.Color) {
	if c.Transparent() || b.Width <= 0 || b.Height <= 0 {
		return
	}
	r.setColor(c)
	r.context.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	r.context.Fill()
}

// Render clears the canvas and paints l in order.
func (r *Renderer) Render(l *display.List) {
	r.context.ResetClip()
	r.setColor(r.opts.Background)
	r.context.Clear()

	depth := 0
	for _, it := range l.Items {
		switch v := it.(type) {
		case display.Rect:
			r.fill(v.Bounds, v.Color)
		case display.Border:
			r.drawBorder(v)
		case display.TextRun:
			r.drawText(v)
		case display.Image:
			r.drawImage(v)
		case display.SelectionRect:
			r.fill(v.Bounds, v.Color)
		case display.CursorRect:
			r.fill(v.Bounds, v.Color)
		case display.ScrollBar:
			r.drawScrollBar(v)
		case display.PushClip:
			r.pushClip(v.Bounds)
			depth++
		case display.PushScrollFrame:
			r.pushClip(v.Clip)
			depth++
		case display.PopClip, display.PopScrollFrame:
			if depth > 0 {
				r.context.Pop()
				depth--
			}
		}
	}
	for ; depth > 0; depth-- {
		r.context.Pop()
	}
}

func (r *Renderer) pushClip(b layout.Rect) {
	r.context.Push()
	r.context.DrawRectangle(b.X, b.Y, max(0, b.Width), max(0, b.Height))
	r.context.Clip()
}

func (r *Renderer) drawBorder(b display.Border) {
	x, y, w, h := b.Bounds.X, b.Bounds.Y, b.Bounds.Width, b.Bounds.Height
	e := b.Widths
	r.fill(layout.Rect{X: x, Y: y, Width: w, Height: e.Top}, b.Color)
	r.fill(layout.Rect{X: x, Y: y + h - e.Bottom, Width: w, Height: e.Bottom}, b.Color)
	r.fill(layout.Rect{X: x, Y: y + e.Top, Width: e.Left, Height: h - e.Top - e.Bottom}, b.Color)
	r.fill(layout.Rect{X: x + w - e.Right, Y: y + e.Top, Width: e.Right, Height: h - e.Top - e.Bottom}, b.Color)
}

// drawText draws a run so that it fills its shaped bounds, whatever
// measurer produced them.
func (r *Renderer) drawText(t display.TextRun) {
	if t.Color.Transparent() || t.Text == "" {
		return
	}
	face := r.opts.Fonts.Face(t.Size)
	s := r.opts.Fonts.Scale(t.Size)
	r.context.SetFontFace(face)
	r.setColor(t.Color)

	along := t.Bounds.Width
	if t.Vertical {
		along = t.Bounds.Height
	}
	adv, _ := r.context.MeasureString(t.Text)
	sx := s
	if adv > 0 && along > 0 {
		sx = along / adv
	}

	r.context.Push()
	if t.Vertical {
		r.context.Translate(t.Bounds.X+t.Baseline, t.Bounds.Y)
		r.context.Rotate(math.Pi / 2)
	} else {
		r.context.Translate(t.Bounds.X, t.Bounds.Y+t.Baseline)
	}
	r.context.Scale(sx, s)
	r.context.DrawString(t.Text, 0, 0)
	r.context.Pop()

	if t.Decoration != 0 && !t.Vertical {
		r.drawDecoration(t)
	}
}

func (r *Renderer) drawDecoration(t display.TextRun) {
	thickness := max(1, t.Size/12)
	line := func(y float64) {
		r.fill(layout.Rect{X: t.Bounds.X, Y: y, Width: t.Bounds.Width, Height: thickness}, t.Color)
	}
	if t.Decoration&style.DecorationUnderline != 0 {
		line(t.Bounds.Y + t.Baseline + t.Size*0.1)
	}
	if t.Decoration&style.DecorationOverline != 0 {
		line(t.Bounds.Y)
	}
	if t.Decoration&style.DecorationLineThrough != 0 {
		line(t.Bounds.Y + t.Baseline - t.Size*0.3)
	}
}

func (r *Renderer) drawImage(im display.Image) {
	b := im.Bounds
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	img, err := r.opts.Images.Load(im.Src)
	if err != nil {
		r.opts.Logger.Debug("image placeholder", zap.String("src", im.Src), zap.Error(err))
		r.context.SetRGB(0.9, 0.9, 0.9)
		r.context.DrawRectangle(b.X, b.Y, b.Width, b.Height)
		r.context.Fill()

		r.context.SetRGB(0.5, 0.5, 0.5)
		r.context.SetLineWidth(2)
		r.context.DrawLine(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
		r.context.DrawLine(b.X+b.Width, b.Y, b.X, b.Y+b.Height)
		r.context.Stroke()
		return
	}

	size := img.Bounds()
	r.context.Push()
	r.context.Translate(b.X, b.Y)
	r.context.Scale(b.Width/float64(size.Dx()), b.Height/float64(size.Dy()))
	r.context.DrawImage(img, 0, 0)
	r.context.Pop()
}

func (r *Renderer) drawScrollBar(sb display.ScrollBar) {
	if sb.Opacity <= 0 {
		return
	}
	fade := func(c style.Color) style.Color {
		c.A = uint8(float64(c.A)*min(sb.Opacity, 1) + 0.5)
		return c
	}
	r.fill(sb.Track, fade(trackColor))
	r.fill(sb.Thumb, fade(thumbColor))
}

// Image returns the canvas.
func (r *Renderer) Image() image.Image {
	return r.context.Image()
}

// SavePNG writes the canvas to filename.
func (r *Renderer) SavePNG(filename string) error {
	return r.context.SavePNG(filename)
}

// EncodePNG writes the canvas to w.
func (r *Renderer) EncodePNG(w io.Writer) error {
	return r.context.EncodePNG(w)
}
