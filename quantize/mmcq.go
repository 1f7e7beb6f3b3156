package quantize

import (
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"

	"picpal/palette"
)

// sampleImage presents a sample as a one pixel high image.
type sampleImage palette.Sample

func (s sampleImage) ColorModel() color.Model { return color.RGBAModel }

func (s sampleImage) Bounds() image.Rectangle { return image.Rect(0, 0, len(s), 1) }

func (s sampleImage) At(x, y int) color.Color {
	if y != 0 || x < 0 || x >= len(s) {
		return color.RGBA{}
	}
	c := s[x]
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF}
}

// quantizeMMCQ takes its candidates from a pixel-weighted median cut that
// splits along the channel with the widest range and averages each bucket.
func quantizeMMCQ(s palette.Sample, distinct, n, bits int) (palette.Palette, error) {
	q := quantize.MedianCutQuantizer{Aggregation: quantize.Mean}
	img := sampleImage(s)

	return grow(n, n, distinct, bits, func(k int) ([]palette.Color, error) {
		pal := q.Quantize(make(color.Palette, 0, k), img)
		return palette.FromColors(pal), nil
	})
}
