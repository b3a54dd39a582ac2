package render

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"github.com/pkg/errors"
)

// CompareOptions controls how close two renderings must be to match.
type CompareOptions struct {
	// Tolerance is the largest per-channel difference (0-255) still
	// counted as equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel this many pixels
	// away, absorbing small glyph shifts.
	FuzzyRadius int
	// MaxDifferentPercent passes comparisons with at most this share of
	// differing pixels.
	MaxDifferentPercent float64
}

type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int
	// Diff marks differing pixels red over a gray copy of actual.
	Diff *image.RGBA
}

// Compare compares two images of the same bounds pixel by pixel.
func Compare(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return nil, errors.Errorf("image bounds differ: actual %v, expected %v", bounds, expected.Bounds())
	}

	res := &CompareResult{
		Match:       true,
		TotalPixels: bounds.Dx() * bounds.Dy(),
		Diff:        image.NewRGBA(bounds),
	}
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := actual.At(x, y)
			d := channelDiff(a, expected.At(x, y))
			res.MaxDifference = max(res.MaxDifference, d)

			if d > opts.Tolerance && !near(a, expected, x, y, opts) {
				res.Match = false
				res.DifferentPixels++
				res.Diff.Set(x, y, color.RGBA{0xff, 0, 0, 0xff})
				continue
			}
			res.Diff.Set(x, y, color.GrayModel.Convert(a))
		}
	}

	if !res.Match && opts.MaxDifferentPercent > 0 && res.TotalPixels > 0 {
		pct := float64(res.DifferentPixels) / float64(res.TotalPixels) * 100
		res.Match = pct <= opts.MaxDifferentPercent
	}
	return res, nil
}

// near reports whether a matches an expected pixel within the fuzzy radius
// of (x, y).
func near(a color.Color, expected image.Image, x, y int, opts CompareOptions) bool {
	bounds := expected.Bounds()
	r := opts.FuzzyRadius
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			p := image.Pt(x+dx, y+dy)
			if (dx == 0 && dy == 0) || !p.In(bounds) {
				continue
			}
			if channelDiff(a, expected.At(p.X, p.Y)) <= opts.Tolerance {
				return true
			}
		}
	}
	return false
}

// channelDiff is the largest 8-bit channel difference between a and b.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return max(
		absDiff(ar, br),
		absDiff(ag, bg),
		absDiff(ab, bb),
		absDiff(aa, ba),
	)
}

func absDiff(a, b uint32) int {
	d := int(a>>8) - int(b>>8)
	if d < 0 {
		return -d
	}
	return d
}

// LoadPNG reads a reference image.
func LoadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening reference image")
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", path)
	}
	return img, nil
}

// SavePNG writes img to path.
func SavePNG(img image.Image, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating image file")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encoding %s", path)
	}
	return f.Close()
}
