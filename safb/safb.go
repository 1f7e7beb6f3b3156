// Package safb reads and writes SAFB paletted bitmaps: a big-endian header,
// a DATA block of nibble-packed pixel indices and a PAL4 block of RGB444
// palette entries.
//
//	offset  size   field
//	0       4      "SAFB"
//	4       2      width
//	6       2      height
//	8       2      palette size
//	10      4      "DATA"
//	14      w*h/2  two pixels per byte, high nibble first
//	...     4      "PAL4"
//	...     n*2    0x0RGB per entry
package safb

import (
	"errors"
	"fmt"

	"picpal/palette"
	"picpal/raster"
)

const (
	Magic      = "SAFB"
	TagData    = "DATA"
	TagPalette = "PAL4"

	// MaxPaletteSize is the 4-bit index ceiling.
	MaxPaletteSize = 16
	// MaxDimension is the largest width or height the header can hold.
	MaxDimension = 0xFFFF

	headerSize = 10
)

var (
	ErrInvalidMagic    = errors.New("invalid magic")
	ErrMissingBlock    = errors.New("missing block")
	ErrTruncated       = errors.New("truncated data")
	ErrOddPixelCount   = errors.New("pixel count must be even")
	ErrPaletteTooLarge = errors.New("palette holds more than 16 colors")
	ErrDimensions      = errors.New("dimensions out of range")
	ErrIndexOutOfRange = errors.New("pixel index outside the palette")
)

// PackRGB444 keeps the high nibble of each channel as 0x0RGB.
func PackRGB444(c palette.Color) uint16 {
	return uint16(c.R>>4)<<8 | uint16(c.G>>4)<<4 | uint16(c.B>>4)
}

// UnpackRGB444 expands 0x0RGB by shifting each nibble back up.
func UnpackRGB444(v uint16) palette.Color {
	return palette.Color{
		R: uint8(v>>8&0xF) << 4,
		G: uint8(v>>4&0xF) << 4,
		B: uint8(v&0xF) << 4,
	}
}

func validate(img *raster.Indexed) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrDimensions)
	}
	if img.Width < 0 || img.Height < 0 || img.Width > MaxDimension || img.Height > MaxDimension {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, img.Width, img.Height)
	}
	if len(img.Pix) != img.Width*img.Height {
		return fmt.Errorf("%w: %d pixels for %dx%d", ErrDimensions, len(img.Pix), img.Width, img.Height)
	}
	if len(img.Pix)%2 != 0 {
		return fmt.Errorf("%w: %dx%d", ErrOddPixelCount, img.Width, img.Height)
	}
	if len(img.Palette) > MaxPaletteSize {
		return fmt.Errorf("%w: got %d", ErrPaletteTooLarge, len(img.Palette))
	}
	return checkIndices(img.Pix, len(img.Palette))
}

func checkIndices(pix []uint8, size int) error {
	for i, v := range pix {
		if int(v) >= size {
			return fmt.Errorf("%w: pixel %d has index %d, palette holds %d", ErrIndexOutOfRange, i, v, size)
		}
	}
	return nil
}

// pack stores pixel pairs in scan order, the even pixel in the high nibble.
func pack(pix []uint8) []byte {
	res := make([]byte, len(pix)/2)
	for i := range res {
		res[i] = pix[2*i]<<4 | pix[2*i+1]&0xF
	}
	return res
}

func unpack(data []byte) []uint8 {
	res := make([]uint8, len(data)*2)
	for i, b := range data {
		res[2*i] = b >> 4
		res[2*i+1] = b & 0xF
	}
	return res
}
