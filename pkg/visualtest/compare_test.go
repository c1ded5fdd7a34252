package visualtest

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/pkg/engine"
	"boxflow/pkg/layout"
	"boxflow/pkg/render"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompareIdentical(t *testing.T) {
	a := solid(4, 4, color.White)
	res, err := Compare(a, solid(4, 4, color.White), DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 16, res.TotalPixels)
	assert.Zero(t, res.MaxDifference)
}

func TestCompareTolerance(t *testing.T) {
	a := solid(2, 2, color.RGBA{100, 100, 100, 255})
	b := solid(2, 2, color.RGBA{102, 100, 100, 255})
	res, err := Compare(a, b, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 2, res.MaxDifference)

	res, err = Compare(a, b, Options{Tolerance: 1, Diff: true})
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 4, res.DifferentPixels)
	assert.Equal(t, 100.0, res.Percent())
	require.NotNil(t, res.Diff)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, res.Diff.RGBAAt(0, 0))
}

func TestCompareFuzzyRadius(t *testing.T) {
	// A one-pixel dot shifted by one pixel.
	a := solid(5, 5, color.White)
	b := solid(5, 5, color.White)
	a.Set(2, 2, color.Black)
	b.Set(3, 2, color.Black)

	res, err := Compare(a, b, DefaultOptions())
	require.NoError(t, err)
	assert.False(t, res.Match)
	assert.Equal(t, 2, res.DifferentPixels)

	res, err = Compare(a, b, Options{FuzzyRadius: 1})
	require.NoError(t, err)
	assert.True(t, res.Match)
}

func TestCompareMaxDifferentPercent(t *testing.T) {
	a := solid(10, 10, color.White)
	b := solid(10, 10, color.White)
	b.Set(0, 0, color.Black)

	res, err := Compare(a, b, Options{MaxDifferentPercent: 1, Diff: true})
	require.NoError(t, err)
	assert.True(t, res.Match)
	assert.Equal(t, 1, res.DifferentPixels)
	assert.Nil(t, res.Diff)
}

func TestCompareBoundsMismatch(t *testing.T) {
	_, err := Compare(solid(2, 2, color.White), solid(3, 2, color.White), DefaultOptions())
	require.Error(t, err)
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "a.png"), filepath.Join(dir, "b.png")
	require.NoError(t, WritePNG(a, solid(3, 3, color.Black)))
	require.NoError(t, WritePNG(b, solid(3, 3, color.Black)))

	res, err := CompareFiles(a, b, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match)

	_, err = CompareFiles(a, filepath.Join(dir, "missing.png"), DefaultOptions())
	require.Error(t, err)
}

// An animated scroll that has finished paints the same pixels as a jump to
// the same offset.
func TestAnimatedScrollMatchesJump(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	render1 := renderScrolled(t, t0, func(m *scroll.Manager, k scroll.Key) {
		m.ScrollTo(t0, k, layout.Point{Y: 70}, 100*time.Millisecond, scroll.EaseInOut)
	})
	render2 := renderScrolled(t, t0, func(m *scroll.Manager, k scroll.Key) {
		m.Set(t0, k, layout.Point{Y: 70})
	})
	res, err := Compare(render1, render2, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, res.Match, "%d pixels differ", res.DifferentPixels)
}

func renderScrolled(t *testing.T, t0 time.Time, move func(*scroll.Manager, scroll.Key)) image.Image {
	t.Helper()
	el := func(decls map[string]string, children ...*style.Node) *style.Node {
		s := style.Default()
		for p, v := range decls {
			require.NoError(t, s.Apply(p, v))
		}
		return style.El(s, children...)
	}
	box := el(map[string]string{"height": "100px", "overflow-y": "auto"},
		el(map[string]string{"height": "50px", "background": "red"}),
		el(map[string]string{"height": "50px", "background": "blue"}),
		el(map[string]string{"height": "100px", "background": "green"}),
	)
	d, err := style.NewDocument(uuid.New(), el(map[string]string{"width": "120px"}, box))
	require.NoError(t, err)

	e := engine.NewEngine(text.NewCellShaper(8, 16), engine.Options{Layout: layout.Options{ScrollbarWidth: 10}})
	_, err = e.Layout(d, layout.Size{Width: 120, Height: 120}, nil, t0)
	require.NoError(t, err)

	move(e.Scroll(), scroll.Key{Doc: d.ID, Node: box.ID})
	_, err = e.Tick(t0.Add(time.Second))
	require.NoError(t, err)
	l, err := e.Repaint(t0.Add(time.Second))
	require.NoError(t, err)

	r := render.NewRenderer(120, 120, render.Options{})
	r.Render(l)
	return r.Image()
}
