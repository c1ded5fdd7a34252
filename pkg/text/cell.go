package text

import "github.com/mattn/go-runewidth"

// CellMeasurer measures text on a fixed character grid, ignoring font size.
// It backs the terminal renderer and keeps layout tests deterministic.
type CellMeasurer struct {
	CellWidth  float64
	LineHeight float64
}

// NewCellShaper returns a greedy shaper over a cellWidth x lineHeight grid.
func NewCellShaper(cellWidth, lineHeight float64) *Greedy {
	return NewGreedy(CellMeasurer{CellWidth: cellWidth, LineHeight: lineHeight})
}

// Advance returns the display width of s in cells times the cell width.
func (m CellMeasurer) Advance(s string, _ float64) float64 {
	return float64(runewidth.StringWidth(s)) * m.CellWidth
}

// LineMetrics puts the baseline at 3/4 of the cell.
func (m CellMeasurer) LineMetrics(_ float64) (ascent, height float64) {
	return m.LineHeight * 0.75, m.LineHeight
}

// FontName implements Measurer.
func (m CellMeasurer) FontName(_ float64) string { return "cell" }
