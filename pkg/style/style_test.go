package style

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLength(t *testing.T) {
	tests := []struct {
		in   string
		want Length
		err  bool
	}{
		{"auto", Auto, false},
		{"12px", Px(12), false},
		{"12", Px(12), false},
		{"50%", Percent(50), false},
		{"-5px", Px(-5), false},
		{"abc", Auto, true},
	}
	for _, tt := range tests {
		got, err := ParseLength(tt.in)
		if tt.err {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestLengthResolve(t *testing.T) {
	assert.Equal(t, 30.0, Percent(10).Resolve(300))
	assert.Equal(t, 7.0, Px(7).Resolve(300))
	assert.Equal(t, 0.0, Auto.Resolve(300))
	assert.Equal(t, 42.0, Auto.ResolveOr(300, 42))
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#f00")
	require.NoError(t, err)
	assert.Equal(t, Color{255, 0, 0, 255}, c)

	c, err = ParseColor("#00ff0080")
	require.NoError(t, err)
	assert.Equal(t, Color{0, 255, 0, 128}, c)

	c, err = ParseColor("Navy")
	require.NoError(t, err)
	assert.Equal(t, Color{0, 0, 128, 255}, c)

	_, err = ParseColor("#12345")
	assert.Error(t, err)
}

func TestApplyShorthands(t *testing.T) {
	s := Default()
	require.NoError(t, s.Apply("margin", "10px 20px"))
	assert.Equal(t, Edges{Top: Px(10), Right: Px(20), Bottom: Px(10), Left: Px(20)}, s.Margin)

	require.NoError(t, s.Apply("padding", "1px 2px 3px"))
	assert.Equal(t, Edges{Top: Px(1), Right: Px(2), Bottom: Px(3), Left: Px(2)}, s.Padding)

	require.NoError(t, s.Apply("border", "2px solid red"))
	assert.Equal(t, UniformEdges(Px(2)), s.BorderWidth)
	assert.Equal(t, Color{255, 0, 0, 255}, s.BorderColor)

	require.NoError(t, s.Apply("overflow", "hidden auto"))
	assert.Equal(t, OverflowHidden, s.OverflowX)
	assert.Equal(t, OverflowAuto, s.OverflowY)

	require.NoError(t, s.Apply("z-index", "-3"))
	assert.Equal(t, Z(-3), s.ZIndex)

	assert.Error(t, s.Apply("float", "left"))
}

func TestCreatesStackingContext(t *testing.T) {
	s := Default()
	assert.False(t, s.CreatesStackingContext())

	s.Position = PositionRelative
	assert.False(t, s.CreatesStackingContext())
	s.ZIndex = Z(0)
	assert.False(t, s.CreatesStackingContext())
	s.ZIndex = Z(2)
	assert.True(t, s.CreatesStackingContext())

	s = Default()
	s.Opacity = 0.5
	assert.True(t, s.CreatesStackingContext())

	s = Default()
	s.Position = PositionFixed
	assert.True(t, s.CreatesStackingContext())
}

func TestAffectsIntrinsic(t *testing.T) {
	a := Default()
	b := a
	b.Background = Color{1, 2, 3, 255}
	assert.False(t, a.AffectsIntrinsic(b))
	b.Padding.Left = Px(4)
	assert.True(t, a.AffectsIntrinsic(b))
}

func TestNewDocumentAssignsPreOrderIDs(t *testing.T) {
	parent := Default()
	parent.Color = Color{9, 9, 9, 255}
	parent.FontSize = 20
	txt := Text("hi")
	root := El(Default(), El(parent, txt), El(Default()))

	doc, err := NewDocument(uuid.Nil, root)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, doc.ID)
	assert.Equal(t, 4, doc.Len())
	assert.Equal(t, NodeID(2), txt.ID)
	assert.Equal(t, Color{9, 9, 9, 255}, txt.Style.Color)
	assert.Equal(t, 20.0, txt.Style.FontSize)
	assert.Equal(t, DisplayInline, txt.Style.Display)
	assert.Same(t, root.Children[0], txt.Parent)

	var order []NodeID
	doc.Walk(func(n *Node) bool {
		order = append(order, n.ID)
		return true
	})
	assert.Equal(t, []NodeID{0, 1, 2, 3}, order)
}

func TestByKey(t *testing.T) {
	a := El(Default()).WithKey("a")
	doc, err := NewDocument(uuid.Nil, El(Default(), El(Default(), a), El(Default()).WithKey("b")))
	require.NoError(t, err)

	n, ok := doc.ByKey("a")
	require.True(t, ok)
	assert.Same(t, a, n)
	_, ok = doc.ByKey("missing")
	assert.False(t, ok)
}

func TestNewDocumentRejectsSharedNode(t *testing.T) {
	shared := El(Default())
	_, err := NewDocument(uuid.Nil, El(Default(), shared, shared))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	src := `
id: 2b1f2c6e-9f0c-4d7a-9d1e-3b9a4f0c8e11
root:
  style: {width: 400px, height: 300px, overflow: auto}
  children:
    - key: first
      style: {height: 100px, margin: 5px, margin-top: 0}
    - text: "hello world"
    - image: logo.png
      size: [64, 32]
`
	doc, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, "2b1f2c6e-9f0c-4d7a-9d1e-3b9a4f0c8e11", doc.ID.String())
	assert.Equal(t, Px(400), doc.Root.Style.Width)
	assert.Equal(t, OverflowAuto, doc.Root.Style.OverflowY)

	first := doc.Root.Children[0]
	assert.Equal(t, "first", first.Key)
	assert.Equal(t, Px(0), first.Style.Margin.Top)
	assert.Equal(t, Px(5), first.Style.Margin.Left)

	assert.Equal(t, KindText, doc.Root.Children[1].Kind)
	assert.Equal(t, KindImage, doc.Root.Children[2].Kind)
	assert.Equal(t, 64.0, doc.Root.Children[2].IntrinsicWidth)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader("root:\n  style: {width: wide}\n"))
	assert.ErrorContains(t, err, "root")

	_, err = Load(strings.NewReader("root:\n  image: x.png\n"))
	assert.ErrorContains(t, err, "size")
}
