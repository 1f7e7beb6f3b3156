// Package raster holds the true-color and indexed pixel buffers that flow
// through the reduction pipeline, and the per-pixel passes over them.
package raster

import (
	"errors"
	"image"
	"image/color"
	"slices"

	"picpal/palette"
)

var ErrInvalidPalette = errors.New("palette must hold between 1 and 256 colors")

// Raster is a true-color image stored row-major.
type Raster struct {
	Width  int
	Height int
	Pix    []palette.Color
}

var _ image.Image = &Raster{}

func New(width, height int) *Raster {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]palette.Color, width*height),
	}
}

// FromImage copies the RGB channels of img, dropping alpha.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	r := New(b.Dx(), b.Dy())
	for y := range r.Height {
		row := r.Pix[y*r.Width : (y+1)*r.Width]
		for x := range row {
			row[x] = palette.FromColor(img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return r
}

func (r *Raster) Clone() *Raster {
	return &Raster{
		Width:  r.Width,
		Height: r.Height,
		Pix:    slices.Clone(r.Pix),
	}
}

func (r *Raster) ColorModel() color.Model {
	return palette.Model
}

func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

func (r *Raster) At(x, y int) color.Color {
	return r.RGBAt(x, y)
}

func (r *Raster) RGBAt(x, y int) palette.Color {
	if !(image.Point{X: x, Y: y}.In(r.Bounds())) {
		return palette.Color{}
	}
	return r.Pix[y*r.Width+x]
}

func (r *Raster) Set(x, y int, c palette.Color) {
	if !(image.Point{X: x, Y: y}.In(r.Bounds())) {
		return
	}
	r.Pix[y*r.Width+x] = c
}

func (r *Raster) row(y int) []palette.Color {
	return r.Pix[y*r.Width : (y+1)*r.Width]
}

// Indexed is a raster of palette indices that owns its palette.
type Indexed struct {
	Width   int
	Height  int
	Pix     []uint8
	Palette palette.Palette
}

var _ image.PalettedImage = &Indexed{}

func NewIndexed(width, height int, pal palette.Palette) *Indexed {
	if width < 0 || height < 0 {
		width, height = 0, 0
	}
	return &Indexed{
		Width:   width,
		Height:  height,
		Pix:     make([]uint8, width*height),
		Palette: pal,
	}
}

func (m *Indexed) ColorModel() color.Model {
	return m.Palette.Colors()
}

func (m *Indexed) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Indexed) At(x, y int) color.Color {
	if len(m.Palette) == 0 {
		return palette.Color{}
	}
	i := int(m.ColorIndexAt(x, y))
	if i >= len(m.Palette) {
		return palette.Color{}
	}
	return m.Palette[i]
}

func (m *Indexed) ColorIndexAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return 0
	}
	return m.Pix[y*m.Width+x]
}

func (m *Indexed) SetColorIndex(x, y int, index uint8) {
	if !(image.Point{X: x, Y: y}.In(m.Bounds())) {
		return
	}
	m.Pix[y*m.Width+x] = index
}

// Paletted copies m into a standard library paletted image.
func (m *Indexed) Paletted() *image.Paletted {
	dst := image.NewPaletted(m.Bounds(), m.Palette.Colors())
	for y := range m.Height {
		copy(dst.Pix[y*dst.Stride:], m.Pix[y*m.Width:(y+1)*m.Width])
	}
	return dst
}
