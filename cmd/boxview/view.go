package main

import (
	"image"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"boxflow/internal/app"
	"boxflow/pkg/layout"
	"boxflow/pkg/render"
	"boxflow/pkg/style"
)

// docView shows the rendered frame of one document and forwards wheel
// events to the engine.
type docView struct {
	widget.BaseWidget

	app      *app.App
	doc      *style.Document
	renderer *render.Renderer
	image    *canvas.Image
	// OnStatus receives a line for the status bar.
	OnStatus func(string)
}

var (
	_ fyne.Scrollable   = (*docView)(nil)
	_ desktop.Hoverable = (*docView)(nil)
)

func newDocView(a *app.App, doc *style.Document, dir string) *docView {
	v := &docView{
		app:      a,
		doc:      doc,
		renderer: a.Renderer(dir),
	}
	vp := a.Viewport()
	v.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, int(vp.Width), int(vp.Height))))
	v.image.FillMode = canvas.ImageFillOriginal
	v.ExtendBaseWidget(v)
	return v
}

func (v *docView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.image)
}

func (v *docView) MinSize() fyne.Size {
	vp := v.app.Viewport()
	return fyne.NewSize(float32(vp.Width), float32(vp.Height))
}

func (v *docView) status(s string) {
	if v.OnStatus != nil {
		v.OnStatus(s)
	}
}

// load lays the document out and paints the first frame.
func (v *docView) load(now time.Time) error {
	f, err := v.app.Engine.Layout(v.doc, v.app.Viewport(), nil, now)
	if err != nil {
		return err
	}
	v.paint()
	v.status(statusLine(f.Result.Iterations, f.List.Len()))
	return nil
}

func (v *docView) paint() {
	f := v.app.Engine.Frame()
	if f == nil {
		return
	}
	v.renderer.Render(f.List)
	v.image.Image = v.renderer.Image()
	v.image.Refresh()
}

// tick advances scroll animations and repaints when needed.
func (v *docView) tick(now time.Time) {
	res, err := v.app.Engine.Tick(now)
	if err != nil {
		v.app.Logger.Error("tick failed", zap.Error(err))
		return
	}
	if res.NeedsRepaint || len(res.Updated) > 0 {
		v.paint()
	}
}

func toPoint(p fyne.Position) layout.Point {
	return layout.Point{X: float64(p.X), Y: float64(p.Y)}
}

// Scrolled implements fyne.Scrollable. Positive DY scrolls up.
func (v *docView) Scrolled(ev *fyne.ScrollEvent) {
	delta := layout.Point{X: -float64(ev.Scrolled.DX), Y: -float64(ev.Scrolled.DY)}
	if id, ok := v.app.Engine.Wheel(time.Now(), toPoint(ev.Position), delta); ok {
		v.app.Logger.Debug("wheel", zap.Int("node", int(id)), zap.Float64("dy", delta.Y))
	}
}

func (v *docView) MouseIn(ev *desktop.MouseEvent) { v.MouseMoved(ev) }

// MouseMoved reports the node under the pointer in the status bar.
func (v *docView) MouseMoved(ev *desktop.MouseEvent) {
	hit, ok := v.app.Engine.HitTest(toPoint(ev.Position))
	if !ok {
		v.status("")
		return
	}
	v.status(nodeLabel(v.doc, hit.Node))
}

func (v *docView) MouseOut() { v.status("") }
