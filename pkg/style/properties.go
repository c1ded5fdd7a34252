package style

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLength parses "auto", "none", "12", "12px" or "50%".
func ParseLength(val string) (Length, error) {
	val = strings.TrimSpace(strings.ToLower(val))
	switch val {
	case "", "auto", "none":
		return Auto, nil
	}
	if strings.HasSuffix(val, "%") {
		num, err := strconv.ParseFloat(strings.TrimSuffix(val, "%"), 64)
		if err != nil {
			return Auto, fmt.Errorf("invalid percentage %q: %w", val, err)
		}
		return Percent(num), nil
	}
	num, err := strconv.ParseFloat(strings.TrimSuffix(val, "px"), 64)
	if err != nil {
		return Auto, fmt.Errorf("invalid length %q: %w", val, err)
	}
	return Px(num), nil
}

var namedColors = map[string]Color{
	"transparent": {},
	"red":         {255, 0, 0, 255},
	"green":       {0, 128, 0, 255},
	"blue":        {0, 0, 255, 255},
	"yellow":      {255, 255, 0, 255},
	"cyan":        {0, 255, 255, 255},
	"magenta":     {255, 0, 255, 255},
	"white":       {255, 255, 255, 255},
	"black":       {0, 0, 0, 255},
	"gray":        {128, 128, 128, 255},
	"orange":      {255, 165, 0, 255},
	"purple":      {128, 0, 128, 255},
	"pink":        {255, 192, 203, 255},
	"brown":       {165, 42, 42, 255},
	"lime":        {0, 255, 0, 255},
	"navy":        {0, 0, 128, 255},
	"teal":        {0, 128, 128, 255},
	"silver":      {192, 192, 192, 255},
}

// ParseColor parses a named color, #rgb, #rrggbb or #rrggbbaa.
func ParseColor(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

func parseOverflow(val string) (Overflow, error) {
	switch val {
	case "visible":
		return OverflowVisible, nil
	case "hidden":
		return OverflowHidden, nil
	case "clip":
		return OverflowClip, nil
	case "scroll":
		return OverflowScroll, nil
	case "auto":
		return OverflowAuto, nil
	}
	return OverflowVisible, fmt.Errorf("invalid overflow %q", val)
}

// Apply sets a single property from its textual value, expanding the
// margin, padding, border and overflow shorthands.
func (s *Style) Apply(property, value string) error {
	property = strings.TrimSpace(strings.ToLower(property))
	value = strings.TrimSpace(value)

	switch property {
	case "margin":
		return applyBox(&s.Margin, value)
	case "padding":
		return applyBox(&s.Padding, value)
	case "border-width":
		return applyBox(&s.BorderWidth, value)
	case "border":
		return s.applyBorder(value)
	case "overflow":
		parts := strings.Fields(value)
		if len(parts) == 0 || len(parts) > 2 {
			return fmt.Errorf("invalid overflow %q", value)
		}
		x, err := parseOverflow(parts[0])
		if err != nil {
			return err
		}
		y := x
		if len(parts) == 2 {
			if y, err = parseOverflow(parts[1]); err != nil {
				return err
			}
		}
		s.OverflowX, s.OverflowY = x, y
		return nil
	case "overflow-x":
		o, err := parseOverflow(value)
		s.OverflowX = o
		return err
	case "overflow-y":
		o, err := parseOverflow(value)
		s.OverflowY = o
		return err
	case "display":
		switch value {
		case "block":
			s.Display = DisplayBlock
		case "inline":
			s.Display = DisplayInline
		case "inline-block":
			s.Display = DisplayInlineBlock
		case "none":
			s.Display = DisplayNone
		default:
			return fmt.Errorf("unsupported display %q", value)
		}
		return nil
	case "position":
		switch value {
		case "static":
			s.Position = PositionStatic
		case "relative":
			s.Position = PositionRelative
		case "absolute":
			s.Position = PositionAbsolute
		case "fixed":
			s.Position = PositionFixed
		default:
			return fmt.Errorf("invalid position %q", value)
		}
		return nil
	case "writing-mode":
		switch value {
		case "horizontal-tb":
			s.WritingMode = HorizontalTB
		case "vertical-rl":
			s.WritingMode = VerticalRL
		case "vertical-lr":
			s.WritingMode = VerticalLR
		default:
			return fmt.Errorf("invalid writing-mode %q", value)
		}
		return nil
	case "z-index":
		if value == "auto" {
			s.ZIndex = ZIndex{}
			return nil
		}
		z, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid z-index %q: %w", value, err)
		}
		s.ZIndex = Z(z)
		return nil
	case "opacity":
		o, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid opacity %q: %w", value, err)
		}
		s.Opacity = clamp01(o)
		return nil
	case "transform":
		s.Transform = value != "none" && value != ""
		return nil
	case "font-size":
		l, err := ParseLength(value)
		if err != nil {
			return err
		}
		s.FontSize = l.Resolve(s.FontSize)
		return nil
	case "color", "background", "background-color", "border-color":
		c, err := ParseColor(value)
		if err != nil {
			return err
		}
		switch property {
		case "color":
			s.Color = c
		case "border-color":
			s.BorderColor = c
		default:
			s.Background = c
		}
		return nil
	case "text-decoration":
		s.Decoration = 0
		for _, part := range strings.Fields(value) {
			switch part {
			case "underline":
				s.Decoration |= DecorationUnderline
			case "line-through":
				s.Decoration |= DecorationLineThrough
			case "overline":
				s.Decoration |= DecorationOverline
			case "none":
			default:
				return fmt.Errorf("invalid text-decoration %q", value)
			}
		}
		return nil
	case "interactive":
		b, err := strconv.ParseBool(value)
		s.Interactive = b
		return err
	}

	if dst := s.lengthProperty(property); dst != nil {
		l, err := ParseLength(value)
		if err != nil {
			return fmt.Errorf("%s: %w", property, err)
		}
		*dst = l
		return nil
	}
	return fmt.Errorf("unsupported property %q", property)
}

func (s *Style) lengthProperty(property string) *Length {
	switch property {
	case "width":
		return &s.Width
	case "height":
		return &s.Height
	case "min-width":
		return &s.MinWidth
	case "min-height":
		return &s.MinHeight
	case "max-width":
		return &s.MaxWidth
	case "max-height":
		return &s.MaxHeight
	case "top":
		return &s.Top
	case "right":
		return &s.Right
	case "bottom":
		return &s.Bottom
	case "left":
		return &s.Left
	case "margin-top":
		return &s.Margin.Top
	case "margin-right":
		return &s.Margin.Right
	case "margin-bottom":
		return &s.Margin.Bottom
	case "margin-left":
		return &s.Margin.Left
	case "padding-top":
		return &s.Padding.Top
	case "padding-right":
		return &s.Padding.Right
	case "padding-bottom":
		return &s.Padding.Bottom
	case "padding-left":
		return &s.Padding.Left
	case "border-top-width":
		return &s.BorderWidth.Top
	case "border-right-width":
		return &s.BorderWidth.Right
	case "border-bottom-width":
		return &s.BorderWidth.Bottom
	case "border-left-width":
		return &s.BorderWidth.Left
	}
	return nil
}

// applyBox expands margin/padding shorthand
// Supports: "10px" (all), "10px 20px" (vertical horizontal),
// "10px 20px 30px" (top h bottom), "10px 20px 30px 40px" (t r b l)
func applyBox(e *Edges, value string) error {
	parts := strings.Fields(value)
	ls := make([]Length, len(parts))
	for i, p := range parts {
		l, err := ParseLength(p)
		if err != nil {
			return err
		}
		ls[i] = l
	}

	switch len(ls) {
	case 1:
		*e = UniformEdges(ls[0])
	case 2:
		*e = Edges{Top: ls[0], Bottom: ls[0], Right: ls[1], Left: ls[1]}
	case 3:
		*e = Edges{Top: ls[0], Right: ls[1], Left: ls[1], Bottom: ls[2]}
	case 4:
		*e = Edges{Top: ls[0], Right: ls[1], Bottom: ls[2], Left: ls[3]}
	default:
		return fmt.Errorf("invalid box shorthand %q", value)
	}
	return nil
}

// applyBorder expands border shorthand
// Format: "1px solid black" or "2px #FF0000"
func (s *Style) applyBorder(value string) error {
	for _, part := range strings.Fields(value) {
		switch {
		case part == "solid" || part == "dotted" || part == "dashed" || part == "double":
		case strings.HasSuffix(part, "px") || isNumber(part):
			l, err := ParseLength(part)
			if err != nil {
				return err
			}
			s.BorderWidth = UniformEdges(l)
		default:
			c, err := ParseColor(part)
			if err != nil {
				return err
			}
			s.BorderColor = c
		}
	}
	return nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
