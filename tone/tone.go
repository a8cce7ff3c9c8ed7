// Package tone turns raw hit counts into 8-bit grayscale intensities.
package tone

import (
	"errors"
	"image"
	"image/draw"
	"math"

	"github.com/anthonynsimon/bild/transform"

	"github.com/marben/bbrot/histogram"
)

var ErrNoHits = errors.New("histogram has no hits")

// Map normalizes the counters of f by 2·width·height / total and squares the
// result, which brightens sparse regions. Intensities saturate at 255.
// The buffer is row-major, one byte per cell.
func Map(f *histogram.Field) ([]uint8, error) {
	if f.Total() == 0 {
		return nil, ErrNoHits
	}
	factor := 2 * float64(f.Width()*f.Height()) / float64(f.Total())

	counts := f.Counts()
	pix := make([]uint8, len(counts))
	for i, v := range counts {
		x := float64(v) * factor
		pix[i] = uint8(math.Min(math.MaxUint8, math.Round(x*x)))
	}
	return pix, nil
}

// Gray returns the tone mapped field as an image.
func Gray(f *histogram.Field) (*image.Gray, error) {
	pix, err := Map(f)
	if err != nil {
		return nil, err
	}
	return &image.Gray{
		Pix:    pix,
		Stride: f.Width(),
		Rect:   image.Rect(0, 0, f.Width(), f.Height()),
	}, nil
}

// Rotate turns img clockwise by degrees, growing the bounds to fit.
// Buddhabrot renderings are traditionally shown rotated by 90 degrees.
func Rotate(img *image.Gray, degrees float64) *image.Gray {
	if math.Mod(degrees, 360) == 0 {
		return img
	}
	rotated := transform.Rotate(img, degrees, &transform.RotationOptions{ResizeBounds: true})

	b := rotated.Bounds()
	out := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), rotated, b.Min, draw.Src)
	return out
}
