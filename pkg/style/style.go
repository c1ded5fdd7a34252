package style

import "fmt"

// Unit is the unit of a Length.
type Unit uint8

const (
	UnitAuto Unit = iota
	UnitPx
	UnitPercent
)

// Length is a computed length value: auto, pixels or a percentage of a
// reference size supplied at layout time.
type Length struct {
	Value float64
	Unit  Unit
}

// Auto is the zero Length.
var Auto = Length{}

// Px returns a pixel length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPx} }

// Percent returns a percentage length (50 means 50%).
func Percent(v float64) Length { return Length{Value: v, Unit: UnitPercent} }

// IsAuto reports whether the length is auto.
func (l Length) IsAuto() bool { return l.Unit == UnitAuto }

// Resolve converts the length to pixels against ref. Auto resolves to 0.
func (l Length) Resolve(ref float64) float64 {
	switch l.Unit {
	case UnitPx:
		return l.Value
	case UnitPercent:
		return ref * l.Value / 100
	}
	return 0
}

// ResolveOr is Resolve with an explicit value for auto.
func (l Length) ResolveOr(ref, auto float64) float64 {
	if l.IsAuto() {
		return auto
	}
	return l.Resolve(ref)
}

func (l Length) String() string {
	switch l.Unit {
	case UnitPx:
		return fmt.Sprintf("%gpx", l.Value)
	case UnitPercent:
		return fmt.Sprintf("%g%%", l.Value)
	}
	return "auto"
}

// Edges holds the four sides of a margin, padding or border specification.
type Edges struct {
	Top    Length
	Right  Length
	Bottom Length
	Left   Length
}

// UniformEdges returns edges with the same length on every side.
func UniformEdges(l Length) Edges {
	return Edges{Top: l, Right: l, Bottom: l, Left: l}
}

// Display is the outer display type of an element.
type Display uint8

const (
	DisplayBlock Display = iota
	DisplayInline
	DisplayInlineBlock
	DisplayNone
)

// Overflow is the value of overflow-x / overflow-y.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowHidden
	OverflowClip
	OverflowScroll
	OverflowAuto
)

// Clips reports whether content outside the padding box is clipped.
func (o Overflow) Clips() bool { return o != OverflowVisible }

// Scrollable reports whether the axis can be scrolled by the user.
func (o Overflow) Scrollable() bool { return o == OverflowScroll || o == OverflowAuto }

func (o Overflow) String() string {
	switch o {
	case OverflowHidden:
		return "hidden"
	case OverflowClip:
		return "clip"
	case OverflowScroll:
		return "scroll"
	case OverflowAuto:
		return "auto"
	}
	return "visible"
}

// Position is the position scheme of a box.
type Position uint8

const (
	PositionStatic Position = iota
	PositionRelative
	PositionAbsolute
	PositionFixed
)

// OutOfFlow reports whether the box is taken out of normal flow.
func (p Position) OutOfFlow() bool { return p == PositionAbsolute || p == PositionFixed }

// WritingMode selects the block flow direction.
type WritingMode uint8

const (
	HorizontalTB WritingMode = iota
	VerticalRL
	VerticalLR
)

// IsVertical reports whether blocks stack horizontally.
func (w WritingMode) IsVertical() bool { return w != HorizontalTB }

// Decoration is a bit set of text decoration lines.
type Decoration uint8

const (
	DecorationUnderline Decoration = 1 << iota
	DecorationLineThrough
	DecorationOverline
)

// Color is a non-premultiplied RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Transparent reports whether the color paints nothing.
func (c Color) Transparent() bool { return c.A == 0 }

// ZIndex is an integer z-index or auto when Set is false.
type ZIndex struct {
	Value int
	Set   bool
}

// Z returns a non-auto z-index.
func Z(v int) ZIndex { return ZIndex{Value: v, Set: true} }

// Style is the computed style of a node as consumed by layout and paint.
// It is comparable; the reconciler relies on == to detect style changes.
type Style struct {
	Display     Display
	WritingMode WritingMode

	Width     Length
	Height    Length
	MinWidth  Length
	MinHeight Length
	MaxWidth  Length // auto means none
	MaxHeight Length // auto means none

	Margin      Edges
	Padding     Edges
	BorderWidth Edges
	BorderColor Color

	Background Color
	Color      Color
	FontSize   float64
	Decoration Decoration

	OverflowX Overflow
	OverflowY Overflow

	Position Position
	Top      Length
	Right    Length
	Bottom   Length
	Left     Length
	ZIndex   ZIndex

	Opacity   float64
	Transform bool

	// Interactive marks nodes that receive pointer input and get a hit-test region.
	Interactive bool
}

// Default returns the initial style values.
func Default() Style {
	zero := UniformEdges(Px(0))
	return Style{
		Margin:      zero,
		Padding:     zero,
		BorderWidth: zero,
		Color:       Color{A: 255},
		FontSize:    16,
		Opacity:     1,
	}
}

// Inherit returns a style carrying only the inherited properties of s.
func (s Style) Inherit() Style {
	d := Default()
	d.Display = DisplayInline
	d.Color = s.Color
	d.FontSize = s.FontSize
	d.Decoration = s.Decoration
	d.WritingMode = s.WritingMode
	return d
}

// IsScrollContainer reports whether either axis clips its overflow.
func (s Style) IsScrollContainer() bool {
	return s.OverflowX.Clips() || s.OverflowY.Clips()
}

// AffectsIntrinsic reports whether the difference between s and o changes
// the min/max-content contribution of the node.
func (s Style) AffectsIntrinsic(o Style) bool {
	return s.Display != o.Display ||
		s.WritingMode != o.WritingMode ||
		s.Width != o.Width || s.Height != o.Height ||
		s.MinWidth != o.MinWidth || s.MinHeight != o.MinHeight ||
		s.MaxWidth != o.MaxWidth || s.MaxHeight != o.MaxHeight ||
		s.Margin != o.Margin || s.Padding != o.Padding || s.BorderWidth != o.BorderWidth ||
		s.FontSize != o.FontSize || s.Position != o.Position
}

// CreatesStackingContext reports whether the box starts a new stacking context.
func (s Style) CreatesStackingContext() bool {
	switch {
	case s.Position.OutOfFlow():
		return true
	case s.Position == PositionRelative && s.ZIndex.Set && s.ZIndex.Value != 0:
		return true
	case s.Opacity < 1:
		return true
	case s.Transform:
		return true
	}
	return false
}
