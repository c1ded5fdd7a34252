package main

import (
	"bytes"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/internal/app"
	"boxflow/internal/config"
	"boxflow/pkg/layout"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
)

const fixture = `
root:
  style: {width: 200px}
  children:
    - key: list
      style: {height: 100px, overflow: auto, interactive: "true"}
      children:
        - style: {height: 300px, background: "#00ff00"}
`

func newTestView(t *testing.T) (*docView, *style.Document) {
	t.Helper()
	test.NewTempApp(t)
	cfg := config.NewDefaultConfig()
	cfg.Viewport.Width, cfg.Viewport.Height = 200, 150
	cfg.Scroll.DefaultDuration = 0
	a, err := app.New(cfg, nil)
	require.NoError(t, err)
	doc, err := style.Load(bytes.NewReader([]byte(fixture)))
	require.NoError(t, err)
	return newDocView(a, doc, ""), doc
}

func TestViewPaintsFirstFrame(t *testing.T) {
	v, _ := newTestView(t)
	var status string
	v.OnStatus = func(s string) { status = s }
	require.NoError(t, v.load(time.Now()))

	assert.Contains(t, status, "display items")
	assert.Equal(t, fyne.NewSize(200, 150), v.MinSize())
	r, g, b, _ := v.image.Image.At(10, 10).RGBA()
	assert.Equal(t, [3]uint32{0, 0xffff, 0}, [3]uint32{r, g, b})
}

func TestViewWheelScrollsContainer(t *testing.T) {
	v, doc := newTestView(t)
	require.NoError(t, v.load(time.Now()))
	list, _ := doc.ByKey("list")

	v.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)},
		Scrolled:   fyne.NewDelta(0, -40),
	})
	assert.Equal(t, layout.Point{Y: 40}, v.app.Engine.Scroll().Offset(scroll.Key{Doc: doc.ID, Node: list.ID}))

	v.tick(time.Now())
	v.paint()
	r, g, b, _ := v.image.Image.At(10, 10).RGBA()
	assert.Equal(t, [3]uint32{0, 0xffff, 0}, [3]uint32{r, g, b})
}

func TestViewHoverReportsNode(t *testing.T) {
	v, _ := newTestView(t)
	require.NoError(t, v.load(time.Now()))
	var status string
	v.OnStatus = func(s string) { status = s }

	v.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 10)}})
	assert.Equal(t, "element #1 (list)", status)

	v.MouseMoved(&desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(10, 130)}})
	assert.Empty(t, status)
}

func TestNodeLabel(t *testing.T) {
	doc, err := style.Load(bytes.NewReader([]byte(fixture)))
	require.NoError(t, err)
	assert.Equal(t, "element #0", nodeLabel(doc, 0))
	assert.Equal(t, "", nodeLabel(doc, 42))
}
