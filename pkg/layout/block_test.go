package layout

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/pkg/style"
)

func TestCollapseMargins(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{20, -5, 15},
		{10, 10, 10},
		{-10, -5, -10},
		{0, 30, 30},
		{-20, 5, -15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, collapseMargins(tt.a, tt.b), "%v & %v", tt.a, tt.b)
	}
}

func TestBlockStacking(t *testing.T) {
	a := el(t, "height: 100px")
	b := el(t, "height: 150px")
	d := doc(t, el(t, "width: 400px; height: 300px", a, b))

	tree, res := layout(t, newEngine(), d, 400, 300)
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, res.Warnings)

	assert.Equal(t, Rect{X: 0, Y: 0, Width: 400, Height: 100}, rectOf(t, tree, a))
	assert.Equal(t, Rect{X: 0, Y: 100, Width: 400, Height: 150}, rectOf(t, tree, b))
	for _, n := range tree.Nodes {
		assert.False(t, n.Scrollbar.Any())
	}
}

func TestSiblingMarginsCollapse(t *testing.T) {
	a := el(t, "height: 100px; margin-bottom: 20px")
	b := el(t, "height: 50px; margin-top: -5px")
	c := el(t, "height: 50px; margin-top: 10px; margin-bottom: 10px")
	e := el(t, "height: 50px; margin-top: 10px")
	d := doc(t, el(t, "width: 400px", a, b, c, e))

	tree, _ := layout(t, newEngine(), d, 400, 600)
	assert.Equal(t, 0.0, rectOf(t, tree, a).Y)
	assert.Equal(t, 115.0, rectOf(t, tree, b).Y)
	assert.Equal(t, 175.0, rectOf(t, tree, c).Y)
	assert.Equal(t, 235.0, rectOf(t, tree, e).Y)
	// The last child's margin stays inside the auto-height parent.
	assert.Equal(t, 285.0, tree.Nodes[tree.Root].Used.Height)
}

func TestBoxModelAndAutoMargins(t *testing.T) {
	centered := el(t, "width: 100px; height: 10px; margin: 0 auto")
	padded := el(t, "height: 10px; padding: 5px; border-width: 2px; margin: 3px")
	d := doc(t, el(t, "width: 400px", centered, padded))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	assert.Equal(t, Rect{X: 150, Y: 0, Width: 100, Height: 10}, rectOf(t, tree, centered))
	// width auto: 400 - 2*3 margins; height: 10 + 2*5 + 2*2
	assert.Equal(t, Rect{X: 3, Y: 13, Width: 394, Height: 24}, rectOf(t, tree, padded))
}

func TestPercentagesAndMinMax(t *testing.T) {
	half := el(t, "width: 50%; height: 10px")
	capped := el(t, "max-width: 120px; height: 10px")
	floor := el(t, "width: 10px; min-width: 60px; height: 10px")
	d := doc(t, el(t, "width: 400px", half, capped, floor))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	assert.Equal(t, 200.0, rectOf(t, tree, half).Width)
	assert.Equal(t, 120.0, rectOf(t, tree, capped).Width)
	assert.Equal(t, 60.0, rectOf(t, tree, floor).Width)
}

func TestVerticalRLStacksRightToLeft(t *testing.T) {
	a := el(t, "width: 100px")
	b := el(t, "width: 150px")
	d := doc(t, el(t, "writing-mode: vertical-rl; width: 400px; height: 300px", a, b))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	assert.Equal(t, Rect{X: 300, Y: 0, Width: 100, Height: 300}, rectOf(t, tree, a))
	assert.Equal(t, Rect{X: 150, Y: 0, Width: 150, Height: 300}, rectOf(t, tree, b))
}

func TestReplacedKeepsAspectRatio(t *testing.T) {
	img := style.Image(css(t, "width: 50px"), "cat.png", 200, 100)
	natural := style.Image(style.Default(), "dog.png", 30, 40)
	d := doc(t, el(t, "width: 400px", img, natural))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 50, Height: 25}, rectOf(t, tree, img))
	assert.Equal(t, Rect{X: 0, Y: 25, Width: 30, Height: 40}, rectOf(t, tree, natural))
}

func TestInlineContent(t *testing.T) {
	txt := style.Text("hello world foo")
	p := el(t, "width: 100px", txt)
	d := doc(t, el(t, "width: 400px", p))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	pi := indexOf(t, tree, p)
	pn := &tree.Nodes[pi]
	assert.Equal(t, Size{Width: 100, Height: 32}, pn.Used)
	require.NotNil(t, pn.Inline)
	assert.Equal(t, 2, pn.Inline.Lines)
	assert.True(t, pn.HasBaseline)
	assert.Equal(t, 12.0, pn.Baseline)
	assert.Equal(t, []NodeIndex{indexOf(t, tree, txt)}, pn.InlineItems)
	assert.Equal(t, 0.0, rectOf(t, tree, txt).Y)
}

func TestMixedContentGetsAnonymousBlocks(t *testing.T) {
	div := el(t, "height: 20px")
	d := doc(t, el(t, "width: 400px", style.Text("before"), div, style.Text("after")))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	require.NoError(t, tree.Validate())

	root := &tree.Nodes[tree.Root]
	require.Len(t, root.Children, 3)
	assert.Equal(t, KindAnonymous, tree.Nodes[root.Children[0]].Kind)
	assert.Equal(t, KindBlock, tree.Nodes[root.Children[1]].Kind)
	assert.Equal(t, KindAnonymous, tree.Nodes[root.Children[2]].Kind)
	assert.Equal(t, 16.0, rectOf(t, tree, div).Y)
	assert.Equal(t, 52.0, root.Used.Height)
}

func TestInlineBlockIsAtomic(t *testing.T) {
	box := el(t, "display: inline-block; width: 20px; height: 30px")
	p := el(t, "width: 400px", style.Text("ab"), box)
	d := doc(t, el(t, "width: 400px", p))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	r := rectOf(t, tree, box)
	assert.Equal(t, 16.0, r.X)
	assert.Equal(t, Size{Width: 20, Height: 30}, Size{Width: r.Width, Height: r.Height})
	assert.True(t, tree.Nodes[indexOf(t, tree, box)].IsAtomicInline())
}

func TestDisplayNoneIsSkipped(t *testing.T) {
	hidden := el(t, "display: none; height: 100px", el(t, "height: 10px"))
	shown := el(t, "height: 10px")
	d := doc(t, el(t, "width: 400px", hidden, shown))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	_, ok := tree.IndexOf(hidden.ID)
	assert.False(t, ok)
	assert.Equal(t, 0.0, rectOf(t, tree, shown).Y)
	assert.Equal(t, 2, tree.Len())
}

func TestTreeInvariant(t *testing.T) {
	d := doc(t, el(t, "",
		style.Text("a"),
		el(t, "", el(t, "display: inline", style.Text("b"))),
		el(t, "position: absolute"),
	))
	tree, _ := layout(t, newEngine(), d, 400, 300)
	require.NoError(t, tree.Validate())
	for i := range tree.Nodes {
		steps := 0
		for p := NodeIndex(i); p != tree.Root; p = tree.Nodes[p].Parent {
			steps++
			require.LessOrEqual(t, steps, tree.Len())
		}
	}

	tree.Nodes[2].Parent = 0
	assert.ErrorIs(t, tree.Validate(), ErrInvalidTree)
}

func TestInvalidIndex(t *testing.T) {
	tree, _ := layout(t, newEngine(), doc(t, el(t, "")), 400, 300)
	_, err := tree.Node(99)
	assert.True(t, errors.Is(err, ErrInvalidTree))
}

func TestLayoutIsIdempotent(t *testing.T) {
	d := doc(t, el(t, "width: 300px; padding: 4px",
		el(t, "height: 40px; margin: 10px"),
		el(t, "width: 120px", style.Text("some wrapped inline text here")),
		el(t, "height: 60px; overflow: auto", el(t, "height: 200px")),
		el(t, "position: absolute; left: 5px; top: 5px", style.Text("abs")),
	))
	le := newEngine()
	tree, _ := layout(t, le, d, 400, 300)

	snapshot := func() []Rect {
		out := make([]Rect, tree.Len())
		for i := range tree.Nodes {
			out[i] = tree.AbsoluteRect(NodeIndex(i))
		}
		return out
	}
	first := snapshot()

	tree.MarkAllDirty()
	_, err := le.Reflow(tree, []NodeIndex{tree.Root})
	require.NoError(t, err)
	if diff := cmp.Diff(first, snapshot()); diff != "" {
		t.Errorf("second layout differs (-first +second):\n%s", diff)
	}

	// A clean tree reuses every cache.
	_, err = le.Reflow(tree, []NodeIndex{tree.Root})
	require.NoError(t, err)
	if diff := cmp.Diff(first, snapshot()); diff != "" {
		t.Errorf("cached layout differs (-first +second):\n%s", diff)
	}
}

func TestShrinkToFitUsesIntrinsicSizes(t *testing.T) {
	abs := el(t, "position: absolute; left: 0; top: 0", style.Text("hi there"))
	d := doc(t, el(t, "width: 400px", abs))

	tree, _ := layout(t, newEngine(), d, 400, 300)
	ai := indexOf(t, tree, abs)
	assert.Equal(t, IntrinsicSizes{MinContent: 40, MaxContent: 64}, tree.Nodes[ai].Intrinsic)
	assert.Equal(t, Rect{X: 0, Y: 0, Width: 64, Height: 16}, tree.AbsoluteRect(ai))
}
