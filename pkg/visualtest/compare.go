// Package visualtest compares rendered frames pixel by pixel.
package visualtest

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
)

// Result summarizes a comparison.
type Result struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	// MaxDifference is the largest 8-bit channel difference found.
	MaxDifference int
	// Diff marks differing pixels red over a gray copy of the actual image.
	// Set only when Options.Diff is true and the images differ.
	Diff *image.RGBA
}

// Percent is the share of differing pixels.
func (r *Result) Percent() float64 {
	if r.TotalPixels == 0 {
		return 0
	}
	return float64(r.DifferentPixels) / float64(r.TotalPixels) * 100
}

// Options tune a comparison.
type Options struct {
	// Tolerance is the largest per-channel difference that still matches.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within the radius,
	// absorbing one-pixel antialiasing shifts.
	FuzzyRadius int
	// MaxDifferentPercent accepts images with at most this share of
	// differing pixels.
	MaxDifferentPercent float64
	Diff                bool
}

// DefaultOptions allows small rasterization differences.
func DefaultOptions() Options {
	return Options{Tolerance: 2}
}

func channels(c color.Color) [4]int {
	r, g, b, a := c.RGBA()
	return [4]int{int(r >> 8), int(g >> 8), int(b >> 8), int(a >> 8)}
}

func distance(a, b [4]int) int {
	d := 0
	for i := range a {
		d = max(d, abs(a[i]-b[i]))
	}
	return d
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Compare checks actual against expected. Images of different bounds are
// an error.
func Compare(actual, expected image.Image, opts Options) (*Result, error) {
	b := actual.Bounds()
	if b != expected.Bounds() {
		return &Result{}, fmt.Errorf("image bounds differ: actual=%v, expected=%v", b, expected.Bounds())
	}

	res := &Result{Match: true, TotalPixels: b.Dx() * b.Dy()}
	var diff *image.RGBA
	if opts.Diff {
		diff = image.NewRGBA(b)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			a := channels(actual.At(x, y))
			d := distance(a, channels(expected.At(x, y)))
			res.MaxDifference = max(res.MaxDifference, d)

			differs := d > opts.Tolerance &&
				!(opts.FuzzyRadius > 0 && nearMatch(a, expected, x, y, opts))
			if differs {
				res.Match = false
				res.DifferentPixels++
			}
			if diff != nil {
				if differs {
					diff.Set(x, y, color.RGBA{R: 255, A: 255})
				} else {
					gray := uint8((a[0] + a[1] + a[2]) / 3)
					diff.Set(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
				}
			}
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.Percent() <= opts.MaxDifferentPercent {
		res.Match = true
	}
	if !res.Match {
		res.Diff = diff
	}
	return res, nil
}

// nearMatch reports whether any expected pixel within the radius of (x, y)
// is within tolerance of a.
func nearMatch(a [4]int, expected image.Image, x, y int, opts Options) bool {
	b := expected.Bounds()
	r := opts.FuzzyRadius
	for ny := max(y-r, b.Min.Y); ny <= min(y+r, b.Max.Y-1); ny++ {
		for nx := max(x-r, b.Min.X); nx <= min(x+r, b.Max.X-1); nx++ {
			if distance(a, channels(expected.At(nx, ny))) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// ReadPNG decodes the PNG at path.
func ReadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// CompareFiles compares two PNG files.
func CompareFiles(actualPath, expectedPath string, opts Options) (*Result, error) {
	actual, err := ReadPNG(actualPath)
	if err != nil {
		return nil, err
	}
	expected, err := ReadPNG(expectedPath)
	if err != nil {
		return nil, err
	}
	return Compare(actual, expected, opts)
}
