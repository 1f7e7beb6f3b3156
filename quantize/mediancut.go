package quantize

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"picpal/palette"
)

type bucket struct {
	colors []palette.Color
	mean   [3]float64
}

func newBucket(colors []palette.Color) bucket {
	b := bucket{colors: colors}
	var sum [3]float64
	for _, c := range colors {
		sum[0] += float64(c.R)
		sum[1] += float64(c.G)
		sum[2] += float64(c.B)
	}
	if n := float64(len(colors)); n > 0 {
		for ch := range 3 {
			b.mean[ch] = sum[ch] / n
		}
	}
	return b
}

func channel(c palette.Color, ch int) uint8 {
	switch ch {
	case 0:
		return c.R
	case 1:
		return c.G
	default:
		return c.B
	}
}

// widestChannel returns the channel with the greatest population standard
// deviation, the first one on ties.
func (b bucket) widestChannel() int {
	var variance [3]float64
	for _, c := range b.colors {
		for ch := range 3 {
			d := float64(channel(c, ch)) - b.mean[ch]
			variance[ch] += d * d
		}
	}
	best := 0
	for ch := 1; ch < 3; ch++ {
		if math.Sqrt(variance[ch]) > math.Sqrt(variance[best]) {
			best = ch
		}
	}
	return best
}

// split sorts the bucket along its widest channel and cuts it at the median index.
func (b bucket) split() (bucket, bucket) {
	ch := b.widestChannel()
	sort.SliceStable(b.colors, func(i, j int) bool {
		return channel(b.colors[i], ch) < channel(b.colors[j], ch)
	})
	mid := len(b.colors) / 2
	return newBucket(b.colors[:mid]), newBucket(b.colors[mid:])
}

func quantizeMedianCut(s palette.Sample, n, bits int) (palette.Palette, error) {
	buckets := []bucket{newBucket(slices.Clone(s))}
	means := make([]palette.Color, 0, n)

	for {
		means = means[:0]
		for _, b := range buckets {
			means = append(means, palette.Color{
				R: palette.SnapChannel(b.mean[0], bits),
				G: palette.SnapChannel(b.mean[1], bits),
				B: palette.SnapChannel(b.mean[2], bits),
			})
		}
		if uniq := palette.Dedupe(means); len(uniq) >= n {
			return uniq[:n], nil
		}

		largest := 0
		for i, b := range buckets {
			if len(b.colors) > len(buckets[largest].colors) {
				largest = i
			}
		}
		if len(buckets[largest].colors) < 2 {
			return nil, fmt.Errorf("%w: median cut ran out of colors to split after %d buckets",
				ErrConvergence, len(buckets))
		}

		lo, hi := buckets[largest].split()
		buckets[largest] = lo
		buckets = append(buckets, hi)
	}
}
