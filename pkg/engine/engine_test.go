package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/pkg/display"
	"boxflow/pkg/layout"
	"boxflow/pkg/scroll"
	"boxflow/pkg/style"
	"boxflow/pkg/text"
)

var (
	t0       = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	viewport = layout.Size{Width: 400, Height: 300}
)

func css(t *testing.T, decls string) style.Style {
	t.Helper()
	s := style.Default()
	for _, decl := range strings.Split(decls, ";") {
		if decl = strings.TrimSpace(decl); decl == "" {
			continue
		}
		prop, val, ok := strings.Cut(decl, ":")
		require.True(t, ok, decl)
		require.NoError(t, s.Apply(strings.TrimSpace(prop), strings.TrimSpace(val)))
	}
	return s
}

func el(t *testing.T, decls string, children ...*style.Node) *style.Node {
	return style.El(css(t, decls), children...)
}

func doc(t *testing.T, id uuid.UUID, root *style.Node) *style.Document {
	t.Helper()
	d, err := style.NewDocument(id, root)
	require.NoError(t, err)
	return d
}

func newTestEngine(opts Options) *Engine {
	opts.Layout.ScrollbarWidth = 16
	return NewEngine(text.NewCellShaper(8, 16), opts)
}

func items[T display.Item](l *display.List) []T {
	var out []T
	for _, it := range l.Items {
		if v, ok := it.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// scroller is a 300x200 auto-scrolling box around 400px of content.
func scroller(t *testing.T) (root, box, inner *style.Node) {
	inner = el(t, "height: 400px; background: red")
	box = el(t, "width: 300px; height: 200px; overflow: auto", inner)
	return el(t, "width: 400px", box), box, inner
}

func TestEndToEndBlockStacking(t *testing.T) {
	a := el(t, "height: 100px")
	b := el(t, "height: 150px")
	d := doc(t, uuid.Nil, el(t, "width: 400px; height: 300px", a, b))

	e := newTestEngine(Options{})
	f, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Result.Iterations)
	assert.Empty(t, items[display.ScrollBar](f.List))

	ra, ok := e.Bounds(a.ID)
	require.True(t, ok)
	assert.Equal(t, layout.Rect{X: 0, Y: 0, Width: 400, Height: 100}, ra)
	rb, ok := e.Bounds(b.ID)
	require.True(t, ok)
	assert.Equal(t, layout.Rect{X: 0, Y: 100, Width: 400, Height: 150}, rb)

	sz, ok := e.UsedSize(d.Root.ID)
	require.True(t, ok)
	assert.Equal(t, layout.Size{Width: 400, Height: 300}, sz)

	_, ok = e.Bounds(99)
	assert.False(t, ok)
}

func TestUnchangedDocumentReusesTree(t *testing.T) {
	root, _, _ := scroller(t)
	d := doc(t, uuid.Nil, root)
	e := newTestEngine(Options{})

	first, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)
	second, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Same(t, first.Tree, second.Tree)
	assert.Zero(t, second.Result.Iterations)
	assert.Equal(t, first.List.Len(), second.List.Len())
}

func TestChangedDocumentIsLaidOutAgain(t *testing.T) {
	e := newTestEngine(Options{})
	id := uuid.New()
	a := el(t, "height: 100px")
	_, err := e.Layout(doc(t, id, el(t, "width: 400px", a, el(t, "height: 50px"))), viewport, nil, t0)
	require.NoError(t, err)

	b := el(t, "height: 50px")
	f, err := e.Layout(doc(t, id, el(t, "width: 400px", el(t, "height: 120px"), b)), viewport, nil, t0)
	require.NoError(t, err)
	assert.False(t, f.Reused)

	rb, ok := e.Bounds(b.ID)
	require.True(t, ok)
	assert.Equal(t, 120.0, rb.Y)
}

func TestScrollContainersAreRegistered(t *testing.T) {
	root, box, _ := scroller(t)
	d := doc(t, uuid.Nil, root)
	e := newTestEngine(Options{})
	_, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)

	k := scroll.Key{Doc: d.ID, Node: box.ID}
	s, ok := e.Scroll().State(k)
	require.True(t, ok)
	assert.Equal(t, layout.Size{Width: 284, Height: 200}, s.Container)
	assert.Equal(t, layout.Size{Width: 284, Height: 400}, s.Content)

	e.Scroll().Set(t0, k, layout.Point{Y: 5000})
	assert.Equal(t, layout.Point{Y: 200}, e.Scroll().Offset(k))

	l, err := e.Repaint(t0)
	require.NoError(t, err)
	bg := items[display.Rect](l)
	require.Len(t, bg, 1)
	assert.Equal(t, -200.0, bg[0].Bounds.Y)
	assert.Same(t, l, e.Frame().List)
}

func TestWheelAnimatesThroughTick(t *testing.T) {
	root, box, _ := scroller(t)
	d := doc(t, uuid.Nil, root)
	e := newTestEngine(Options{WheelDuration: 100 * time.Millisecond, WheelEasing: scroll.Linear})
	_, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)

	node, ok := e.Wheel(t0, layout.Point{X: 10, Y: 10}, layout.Point{Y: 100})
	require.True(t, ok)
	assert.Equal(t, box.ID, node)

	res, err := e.Tick(t0.Add(50 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, res.NeedsRepaint)
	assert.Equal(t, -50.0, items[display.Rect](e.Frame().List)[0].Bounds.Y)

	_, ok = e.Wheel(t0, layout.Point{X: 350, Y: 10}, layout.Point{Y: 100})
	assert.False(t, ok, "outside any scroll container")
}

func TestFatalFrameKeepsPreviousFrame(t *testing.T) {
	a := el(t, "height: 100px; interactive: true")
	d := doc(t, uuid.Nil, el(t, "width: 400px", a))
	e := newTestEngine(Options{})
	good, err := e.Layout(d, viewport, nil, t0)
	require.NoError(t, err)

	// Without a bar the image overflows; with one it fits.
	img := style.Image(css(t, "width: 100%"), "tall.png", 100, 105)
	bad := doc(t, d.ID, el(t, "width: 100px; height: 100px; overflow-y: auto", img))
	_, err = e.Layout(bad, viewport, nil, t0)
	require.ErrorIs(t, err, layout.ErrScrollbarNonConvergence)

	assert.Same(t, good, e.Frame())
	hit, ok := e.HitTest(layout.Point{X: 10, Y: 10})
	require.True(t, ok)
	assert.Equal(t, a.ID, hit.Node)
}

func TestSwitchingDocumentsDropsScrollState(t *testing.T) {
	root, box, _ := scroller(t)
	d1 := doc(t, uuid.Nil, root)
	e := newTestEngine(Options{})
	_, err := e.Layout(d1, viewport, nil, t0)
	require.NoError(t, err)
	require.Len(t, e.Scroll().Keys(), 1)

	d2 := doc(t, uuid.New(), el(t, "width: 400px"))
	_, err = e.Layout(d2, viewport, nil, t0)
	require.NoError(t, err)
	_, ok := e.Scroll().State(scroll.Key{Doc: d1.ID, Node: box.ID})
	assert.False(t, ok)
}

func TestQueriesBeforeFirstFrame(t *testing.T) {
	e := newTestEngine(Options{})
	_, err := e.Repaint(t0)
	assert.ErrorIs(t, err, ErrNoFrame)
	_, ok := e.HitTest(layout.Point{})
	assert.False(t, ok)
	_, ok = e.Bounds(0)
	assert.False(t, ok)
	_, err = e.Layout(nil, viewport, nil, t0)
	assert.ErrorIs(t, err, layout.ErrInvalidTree)
}
