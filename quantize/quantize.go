// Package quantize reduces a color sample to a small palette whose entries
// stay distinct once snapped to a coarse per-channel bit depth.
//
// Every channel-based method follows the same recovery rule: candidates are
// snapped to the grid and deduplicated, and when too few distinct colors
// survive the request size grows by one and the candidates are regenerated.
// Growth stops at the number of distinct colors in the sample, after which
// ErrConvergence is returned. Octree leaves can merge colors that sit in
// different cells, so that method finally tops up from the sample colors.
package quantize

import (
	"errors"
	"fmt"

	"picpal/palette"
)

var (
	ErrInvalidCount     = errors.New("palette size must be within [1,256]")
	ErrInvalidBits      = errors.New("bits per channel must be within [1,8]")
	ErrUnknownMethod    = errors.New("unknown quantization method")
	ErrInsufficientData = errors.New("insufficient data")
	ErrConvergence      = errors.New("could not reach the requested number of distinct colors")
)

const MaxColors = 256

// Quantize returns exactly n colors that are distinct on the bits-per-channel grid.
func Quantize(s palette.Sample, n int, m Method, bits int) (palette.Palette, error) {
	if n < 1 || n > MaxColors {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, n)
	}
	if bits < 1 || bits > 8 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBits, bits)
	}
	if m < 0 || int(m) >= len(methodNames) {
		return nil, fmt.Errorf("%w: %v", ErrUnknownMethod, m)
	}
	if len(s) == 0 {
		return nil, fmt.Errorf("%w: empty sample", ErrInsufficientData)
	}
	if cells := palette.CountCells(s, bits); cells < n {
		return nil, fmt.Errorf("%w: sample covers %d grid cells at %d bits, %d requested",
			ErrConvergence, cells, bits, n)
	}

	hist := palette.Histogram(s)
	switch m {
	case KMeans:
		return quantizeKMeans(hist, n, bits)
	case MedianCut:
		return quantizeMedianCut(s, n, bits)
	case Popularity:
		return quantizePopularity(hist, n, bits)
	case Octree:
		return quantizeOctree(s, hist, n, bits)
	case MMCQ:
		return quantizeMMCQ(s, len(hist), n, bits)
	case HybridKMeansMedianCut:
		return combine(n, bits,
			func() (palette.Palette, error) { return quantizeKMeans(hist, n, bits) },
			func() (palette.Palette, error) { return quantizeMedianCut(s, n, bits) })
	default: // HybridKMeansMMCQ
		return combine(n, bits,
			func() (palette.Palette, error) { return quantizeKMeans(hist, n, bits) },
			func() (palette.Palette, error) { return quantizeMMCQ(s, len(hist), n, bits) })
	}
}

// grow calls gen with request sizes start, start+1, ... limit and returns
// the first n distinct grid colors of the first candidate set that has enough.
func grow(n, start, limit, bits int, gen func(k int) ([]palette.Color, error)) (palette.Palette, error) {
	limit = max(limit, start)
	best := 0
	for k := start; k <= limit; k++ {
		candidates, err := gen(k)
		if err != nil {
			return nil, err
		}
		uniq := palette.GridQuantize(candidates, bits)
		if len(uniq) >= n {
			return uniq[:n], nil
		}
		best = max(best, len(uniq))
	}
	return nil, fmt.Errorf("%w: best attempt gave %d of %d colors after growing the request to %d",
		ErrConvergence, best, n, limit)
}
