package palette

import (
	"fmt"
	"image/color"
	"math"
)

// Color is an opaque 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

var _ color.Color = Color{}

// Model converts any color.Color to Color, dropping alpha.
var Model = color.ModelFunc(modelConvert)

func modelConvert(c color.Color) color.Color {
	if pc, ok := c.(Color); ok {
		return pc
	}
	return FromColor(c)
}

// FromColor returns the non-premultiplied RGB channels of c.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return Color{R: n.R, G: n.G, B: n.B}
}

func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r := uint32(c.R)
	g := uint32(c.G)
	b := uint32(c.B)
	return r | r<<8, g | g<<8, b | b<<8, 0xFFFF
}

// Luminance returns the Rec. 709 relative luminance on the 0-255 scale.
func (c Color) Luminance() float64 {
	return 0.2126*float64(c.R) + 0.7152*float64(c.G) + 0.0722*float64(c.B)
}

// Snap moves every channel onto the grid of 2^bits evenly spaced levels.
func (c Color) Snap(bits int) Color {
	return Color{
		R: SnapChannel(float64(c.R), bits),
		G: SnapChannel(float64(c.G), bits),
		B: SnapChannel(float64(c.B), bits),
	}
}

// SnapChannel rounds v to the nearest of the 2^bits levels spanning 0-255.
// For 4 bits the levels are multiples of 17, which map one-to-one onto RGB444 nibbles.
func SnapChannel(v float64, bits int) uint8 {
	switch {
	case bits >= 8:
		return clamp(math.Round(v))
	case bits < 1:
		bits = 1
	}
	steps := float64(int(1)<<bits - 1)
	level := math.Round(v * steps / 255)
	return clamp(math.Round(level * 255 / steps))
}

// GridCells returns the number of distinct colors representable at the given bit depth.
func GridCells(bits int) int {
	l := 1 << bits
	return l * l * l
}

func clamp(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}

func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// distance returns the squared euclidean distance between two colors.
func distance(a, b Color) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}
