package raster

import (
	"fmt"

	"picpal/palette"
	"picpal/parallel"
)

// Sample flattens r into its pixel colors in scan order, reporting once per row.
func Sample(r *Raster, progress Progress) palette.Sample {
	if r == nil || r.Width == 0 || r.Height == 0 {
		return palette.Sample{}
	}

	res := make(palette.Sample, 0, r.Width*r.Height)
	for y := range r.Height {
		res = append(res, r.row(y)...)
		progress.report(y+1, r.Height)
	}
	return res
}

// Index maps every pixel of r to its nearest palette entry. The result owns pal.
func Index(r *Raster, pal palette.Palette, progress Progress) (*Indexed, error) {
	if len(pal) == 0 || len(pal) > 256 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPalette, len(pal))
	}
	if r == nil {
		r = New(0, 0)
	}

	res := NewIndexed(r.Width, r.Height, pal)
	rows := &rowCounter{total: r.Height, progress: progress}
	parallel.Rows(r.Height, func(y int) {
		dst := res.Pix[y*r.Width : (y+1)*r.Width]
		for x, c := range r.row(y) {
			dst[x] = uint8(pal.Index(c))
		}
		rows.rowDone()
	})

	return res, nil
}

// Rows runs fn over every row of r on the worker pool, reporting progress per row.
func Rows(r *Raster, progress Progress, fn func(y int, row []palette.Color)) {
	rows := &rowCounter{total: r.Height, progress: progress}
	parallel.Rows(r.Height, func(y int) {
		fn(y, r.row(y))
		rows.rowDone()
	})
}
