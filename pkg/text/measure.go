package text

import (
	"fmt"
	"strconv"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// FontMeasurer measures text with a TrueType face loaded through gg. Faces
// are cached per size. Without a font file it falls back to the 7x13
// bitmap face, scaled to the requested size.
type FontMeasurer struct {
	path  string
	faces map[float64]font.Face
}

// NewFontMeasurer loads the font at path. An empty path selects the
// built-in bitmap face.
func NewFontMeasurer(path string) (*FontMeasurer, error) {
	m := &FontMeasurer{path: path, faces: map[float64]font.Face{}}
	if path != "" {
		if _, err := m.load(16); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// NewFontShaper returns a greedy shaper over a FontMeasurer.
func NewFontShaper(path string) (*Greedy, error) {
	m, err := NewFontMeasurer(path)
	if err != nil {
		return nil, err
	}
	return NewGreedy(m), nil
}

func (m *FontMeasurer) load(size float64) (font.Face, error) {
	if f, ok := m.faces[size]; ok {
		return f, nil
	}
	f, err := gg.LoadFontFace(m.path, size)
	if err != nil {
		return nil, fmt.Errorf("failed to load font %s: %w", m.path, err)
	}
	m.faces[size] = f
	return f, nil
}

// Face returns the face used for size, for renderers that draw what was
// measured here.
func (m *FontMeasurer) Face(size float64) font.Face {
	if m.path == "" {
		return basicfont.Face7x13
	}
	f, err := m.load(size)
	if err != nil {
		return basicfont.Face7x13
	}
	return f
}

// Scale is the factor applied to Face(size) to reach size: 1 for TrueType
// faces, size/13 for the bitmap fallback.
func (m *FontMeasurer) Scale(size float64) float64 {
	if m.path != "" || size <= 0 {
		return 1
	}
	return size / 13
}

// Advance implements Measurer.
func (m *FontMeasurer) Advance(s string, size float64) float64 {
	adv := font.MeasureString(m.Face(size), s)
	return float64(adv) / 64 * m.Scale(size)
}

// LineMetrics implements Measurer.
func (m *FontMeasurer) LineMetrics(size float64) (ascent, height float64) {
	met := m.Face(size).Metrics()
	scale := m.Scale(size)
	return float64(met.Ascent) / 64 * scale, float64(met.Height) / 64 * scale
}

// FontName implements Measurer.
func (m *FontMeasurer) FontName(size float64) string {
	if m.path == "" {
		return "basic@" + strconv.FormatFloat(size, 'f', -1, 64)
	}
	return m.path + "@" + strconv.FormatFloat(size, 'f', -1, 64)
}
