package app

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/internal/config"
	"boxflow/pkg/engine"
	"boxflow/pkg/layout"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func scrollDoc(t *testing.T) *style.Document {
	t.Helper()
	inner := style.Default()
	require.NoError(t, inner.Apply("height", "400px"))
	box := style.Default()
	require.NoError(t, box.Apply("height", "100px"))
	require.NoError(t, box.Apply("overflow", "auto"))
	d, err := style.NewDocument(uuid.New(), style.El(style.Default(), style.El(box, style.El(inner)).WithKey("box")))
	require.NoError(t, err)
	return d
}

func TestNewFromDefaults(t *testing.T) {
	cfg := config.NewDefaultConfig()
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, layout.Size{Width: 800, Height: 600}, a.Viewport())
	assert.NotNil(t, a.Shaper)
	assert.Nil(t, a.fonts)

	r := a.Renderer("")
	assert.Equal(t, 800, r.Image().Bounds().Dx())
}

func TestNewRejectsUnknownEasing(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Scroll.Easing = "bounce"
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestFontShaperWithBitmapFallback(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.Text.Shaper = "font"
	a, err := New(cfg, nil)
	require.NoError(t, err)
	assert.NotNil(t, a.fonts)
}

func TestApplyOffsets(t *testing.T) {
	a, err := New(config.NewDefaultConfig(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, a.ApplyOffsets(t0, map[string]layout.Point{"box": {Y: 10}}), engine.ErrNoFrame)

	d := scrollDoc(t)
	_, err = a.Engine.Layout(d, a.Viewport(), nil, t0)
	require.NoError(t, err)

	require.NoError(t, a.ApplyOffsets(t0, map[string]layout.Point{"box": {Y: 1000}}))
	box, _ := d.ByKey("box")
	assert.Equal(t, layout.Point{Y: 300}, a.Engine.Scroll().Offset(scroll.Key{Doc: d.ID, Node: box.ID}))

	assert.Error(t, a.ApplyOffsets(t0, map[string]layout.Point{"nope": {}}))
}

func TestPainterUsesCellGrid(t *testing.T) {
	a, err := New(config.NewDefaultConfig(), nil)
	require.NoError(t, err)
	s := tcell.NewSimulationScreen("")
	require.NoError(t, s.Init())
	defer s.Fini()
	s.SetSize(10, 5)
	assert.Equal(t, layout.Size{Width: 80, Height: 80}, a.Painter(s).Viewport())
}
