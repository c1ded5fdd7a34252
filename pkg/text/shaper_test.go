package text

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxflow/pkg/style"
)

func textItem(s string) InlineItem {
	return InlineItem{Text: s, FontSize: 16, Color: style.Color{A: 255}}
}

func TestGreedyBreaksAtSpaces(t *testing.T) {
	sh := NewCellShaper(8, 16)
	l := sh.LayoutInline([]InlineItem{textItem("hello world")}, Constraints{AvailableWidth: 48})

	assert.Equal(t, 2, l.Lines)
	assert.Equal(t, Size{W: 40, H: 32}, l.Size)
	assert.Equal(t, 12.0, l.Baseline)
	require.Len(t, l.Runs, 2)
	assert.Equal(t, "hello", l.Runs[0].Text)
	assert.Equal(t, "world", l.Runs[1].Text)
	assert.Equal(t, Rect{X: 0, Y: 16, W: 40, H: 16}, l.Runs[1].Rect)
}

func TestGreedyMinMaxContent(t *testing.T) {
	sh := NewCellShaper(8, 16)
	minC, maxC := sh.MinMaxContent([]InlineItem{textItem("hello world")})
	assert.Equal(t, 40.0, minC)
	assert.Equal(t, 88.0, maxC)

	l := sh.LayoutInline([]InlineItem{textItem("hello world")}, Constraints{AvailableWidth: math.Inf(1)})
	assert.Equal(t, 1, l.Lines)
	assert.Equal(t, maxC, l.Size.W)
	require.Len(t, l.Runs, 1)
	assert.Equal(t, "hello world", l.Runs[0].Text)
}

func TestGreedyOverlongWordOverflows(t *testing.T) {
	sh := NewCellShaper(8, 16)
	l := sh.LayoutInline([]InlineItem{textItem("abcdefgh ij")}, Constraints{AvailableWidth: 24})
	assert.Equal(t, 2, l.Lines)
	assert.Equal(t, 64.0, l.Size.W)
}

func TestWordSpansItems(t *testing.T) {
	sh := NewCellShaper(8, 16)
	l := sh.LayoutInline([]InlineItem{textItem("ab"), textItem("cd ef")}, Constraints{AvailableWidth: 40})
	// "abcd" cannot break between items.
	assert.Equal(t, 2, l.Lines)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 16, H: 16}, l.ItemBounds[0])
	assert.Equal(t, Rect{X: 0, Y: 0, W: 32, H: 32}, l.ItemBounds[1])
}

func TestCursorAndSelection(t *testing.T) {
	sh := NewCellShaper(8, 16)
	l := sh.LayoutInline([]InlineItem{textItem("hello world")}, Constraints{AvailableWidth: 48})

	r, ok := l.CursorRect(0, 6)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 16, W: 1, H: 16}, r)

	r, ok = l.CursorRect(0, 11)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 40, Y: 16, W: 1, H: 16}, r)

	_, ok = l.CursorRect(1, 0)
	assert.False(t, ok)

	rects := l.SelectionRects(0, 3, 8)
	assert.Equal(t, []Rect{{X: 24, Y: 0, W: 16, H: 16}, {X: 0, Y: 16, W: 16, H: 16}}, rects)
	assert.Nil(t, l.SelectionRects(0, 4, 4))
}

func TestCollapsedWhitespaceOffsets(t *testing.T) {
	sh := NewCellShaper(8, 16)
	l := sh.LayoutInline([]InlineItem{textItem("a   b")}, Constraints{AvailableWidth: 100})
	assert.Equal(t, 24.0, l.Size.W)

	r, ok := l.CursorRect(0, 2)
	require.True(t, ok)
	assert.Equal(t, 8.0, r.X)

	r, ok = l.CursorRect(0, 4)
	require.True(t, ok)
	assert.Equal(t, 16.0, r.X)
}

func TestAtomicInline(t *testing.T) {
	sh := NewCellShaper(8, 16)
	items := []InlineItem{
		textItem("ab"),
		{Atomic: &Size{W: 20, H: 30}},
		textItem("c"),
	}
	l := sh.LayoutInline(items, Constraints{AvailableWidth: 1000})

	assert.Equal(t, 1, l.Lines)
	assert.Equal(t, 30.0, l.Baseline)
	assert.Equal(t, Size{W: 44, H: 34}, l.Size)
	assert.Equal(t, Rect{X: 16, Y: 0, W: 20, H: 30}, l.ItemBounds[1])
	assert.Equal(t, Rect{X: 0, Y: 18, W: 16, H: 16}, l.ItemBounds[0])
	assert.Equal(t, Rect{X: 36, Y: 18, W: 8, H: 16}, l.ItemBounds[2])
	for _, r := range l.Runs {
		assert.NotEqual(t, 1, r.Item)
	}
}

func TestVerticalWritingModes(t *testing.T) {
	sh := NewCellShaper(8, 16)
	items := []InlineItem{textItem("ab cd")}

	rl := sh.LayoutInline(items, Constraints{AvailableWidth: 16, WritingMode: style.VerticalRL})
	assert.Equal(t, Size{W: 32, H: 16}, rl.Size)
	assert.Equal(t, Rect{X: 16, Y: 0, W: 16, H: 8}, rl.Clusters[0].Rect)
	assert.Equal(t, Rect{X: 0, Y: 0, W: 16, H: 8}, rl.Clusters[2].Rect)

	lr := sh.LayoutInline(items, Constraints{AvailableWidth: 16, WritingMode: style.VerticalLR})
	assert.Equal(t, Rect{X: 0, Y: 8, W: 16, H: 8}, lr.Clusters[1].Rect)
	assert.Equal(t, Rect{X: 16, Y: 0, W: 16, H: 8}, lr.Clusters[2].Rect)

	r, ok := lr.CursorRect(0, 1)
	require.True(t, ok)
	assert.Equal(t, Rect{X: 0, Y: 8, W: 16, H: 1}, r)
}

func TestFontMeasurerFallback(t *testing.T) {
	m, err := NewFontMeasurer("")
	require.NoError(t, err)
	assert.Equal(t, 7.0, m.Advance("a", 13))
	assert.Equal(t, 14.0, m.Advance("a", 26))
	_, h := m.LineMetrics(13)
	assert.Greater(t, h, 0.0)

	_, err = NewFontMeasurer("/nonexistent/font.ttf")
	assert.Error(t, err)
}
