package quantize

import (
	"fmt"

	"picpal/palette"
)

// combine concatenates two palettes of n colors and halves the result back
// to n with another k-means pass.
func combine(n, bits int, first, second func() (palette.Palette, error)) (palette.Palette, error) {
	a, err := first()
	if err != nil {
		return nil, fmt.Errorf("could not build first palette: %w", err)
	}
	b, err := second()
	if err != nil {
		return nil, fmt.Errorf("could not build second palette: %w", err)
	}

	combined := make(palette.Sample, 0, len(a)+len(b))
	combined = append(combined, a...)
	combined = append(combined, b...)

	return halve(combined, n, bits)
}

func halve(colors palette.Sample, n, bits int) (palette.Palette, error) {
	pts := points(palette.Histogram(colors))
	return grow(n, n, len(pts), bits, func(k int) ([]palette.Color, error) {
		return centroidColors(cluster(pts, k, halvingSeed)), nil
	})
}
