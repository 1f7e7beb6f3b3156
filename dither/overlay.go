// Package dither perturbs or maps rasters ahead of palette indexing to break
// up the banding left by a small palette.
package dither

import (
	"errors"
	"fmt"

	"picpal/palette"
	"picpal/raster"
)

var ErrInvalidAmplitude = errors.New("dither amplitude must be within [0,1]")

// Overlay applies a 2x2 checkerboard of gray levels around mid-gray to r
// using the overlay blend. Even (x+y) cells are blended with (1-amplitude)/2,
// odd cells with (1+amplitude)/2. An amplitude of 0 returns an untouched copy.
func Overlay(r *raster.Raster, amplitude float64, progress raster.Progress) (*raster.Raster, error) {
	if amplitude < 0 || amplitude > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmplitude, amplitude)
	}
	if r == nil {
		return raster.New(0, 0), nil
	}

	res := r.Clone()
	if amplitude == 0 {
		if progress != nil {
			progress(1)
		}
		return res, nil
	}

	levels := [2]float64{(1 - amplitude) / 2, (1 + amplitude) / 2}
	raster.Rows(res, progress, func(y int, row []palette.Color) {
		for x, c := range row {
			b := levels[(x+y)%2]
			row[x] = palette.Color{
				R: blend(c.R, b),
				G: blend(c.G, b),
				B: blend(c.B, b),
			}
		}
	})

	return res, nil
}

func blend(channel uint8, b float64) uint8 {
	a := float64(channel) / 255
	var v float64
	if a <= 0.5 {
		v = 2 * a * b
	} else {
		v = 1 - 2*(1-a)*(1-b)
	}
	v *= 255
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v)
}
