package quantize

import (
	"slices"

	"picpal/palette"
)

// quantizePopularity keeps the most frequent colors. It starts from twice
// the requested size so grid collisions rarely force a second pass.
func quantizePopularity(hist []palette.Entry, n, bits int) (palette.Palette, error) {
	ranked := slices.Clone(hist)
	slices.SortStableFunc(ranked, func(a, b palette.Entry) int {
		return b.Count - a.Count
	})

	start := min(2*n, len(ranked))
	return grow(n, start, len(ranked), bits, func(k int) ([]palette.Color, error) {
		res := make([]palette.Color, k)
		for i, e := range ranked[:k] {
			res[i] = e.Color
		}
		return res, nil
	})
}
