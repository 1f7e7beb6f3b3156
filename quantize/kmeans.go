package quantize

import (
	"math"
	"math/rand"

	"picpal/palette"
)

const (
	kmeansSeed   = 42
	halvingSeed  = 0
	kmeansRounds = 300
	kmeansTol    = 1e-10
)

// point is a distinct color normalised to [0,1] per channel, weighted by
// its pixel count.
type point struct {
	v [3]float64
	w float64
}

func points(hist []palette.Entry) []point {
	res := make([]point, len(hist))
	for i, e := range hist {
		res[i] = point{
			v: [3]float64{float64(e.Color.R) / 255, float64(e.Color.G) / 255, float64(e.Color.B) / 255},
			w: float64(e.Count),
		}
	}
	return res
}

func quantizeKMeans(hist []palette.Entry, n, bits int) (palette.Palette, error) {
	pts := points(hist)
	return grow(n, n, len(pts), bits, func(k int) ([]palette.Color, error) {
		return centroidColors(cluster(pts, k, kmeansSeed)), nil
	})
}

func centroidColors(centers [][3]float64) []palette.Color {
	res := make([]palette.Color, len(centers))
	for i, c := range centers {
		res[i] = palette.Color{
			R: palette.SnapChannel(c[0]*255, 8),
			G: palette.SnapChannel(c[1]*255, 8),
			B: palette.SnapChannel(c[2]*255, 8),
		}
	}
	return res
}

func dist2(a, b [3]float64) float64 {
	d0 := a[0] - b[0]
	d1 := a[1] - b[1]
	d2 := a[2] - b[2]
	return d0*d0 + d1*d1 + d2*d2
}

// nearest returns the closest center, the first one on ties.
func nearest(v [3]float64, centers [][3]float64) (int, float64) {
	ret, best := 0, math.MaxFloat64
	for i, c := range centers {
		if d := dist2(v, c); d < best {
			ret, best = i, d
		}
	}
	return ret, best
}

// cluster runs weighted Lloyd iterations from a k-means++ seeding. The same
// seed always gives the same centers.
func cluster(pts []point, k int, seed int64) [][3]float64 {
	if len(pts) == 0 || k < 1 {
		return nil
	}
	k = min(k, len(pts))
	rng := rand.New(rand.NewSource(seed))

	centers := seedCenters(pts, k, rng)
	assign := make([]int, len(pts))
	for i := range assign {
		assign[i] = -1
	}
	sums := make([][3]float64, k)
	weights := make([]float64, k)
	d2 := make([]float64, len(pts))

	for range kmeansRounds {
		changed := false
		for i, p := range pts {
			c, d := nearest(p.v, centers)
			d2[i] = d
			if assign[i] != c {
				assign[i] = c
				changed = true
			}
		}
		if !changed {
			break
		}

		clear(sums)
		clear(weights)
		for i, p := range pts {
			c := assign[i]
			for ch := range 3 {
				sums[c][ch] += p.v[ch] * p.w
			}
			weights[c] += p.w
		}

		shift := 0.0
		for c := range centers {
			var next [3]float64
			if weights[c] == 0 {
				// Empty cluster: restart it on the worst fitted point.
				worst := 0
				for i := range pts {
					if d2[i]*pts[i].w > d2[worst]*pts[worst].w {
						worst = i
					}
				}
				next = pts[worst].v
				d2[worst] = 0
			} else {
				for ch := range 3 {
					next[ch] = sums[c][ch] / weights[c]
				}
			}
			shift += dist2(centers[c], next)
			centers[c] = next
		}
		if shift < kmeansTol {
			break
		}
	}

	return centers
}

// seedCenters picks k starting centers, each with probability proportional
// to its weight times the squared distance to the centers picked so far.
func seedCenters(pts []point, k int, rng *rand.Rand) [][3]float64 {
	centers := make([][3]float64, 0, k)
	d2 := make([]float64, len(pts))
	for i := range d2 {
		d2[i] = 1
	}

	for len(centers) < k {
		pick := weightedPick(pts, d2, rng)
		c := pts[pick].v
		for i, p := range pts {
			d := dist2(p.v, c)
			if len(centers) == 0 || d < d2[i] {
				d2[i] = d
			}
		}
		centers = append(centers, c)
	}

	return centers
}

func weightedPick(pts []point, d2 []float64, rng *rand.Rand) int {
	total := 0.0
	last := -1
	for i, p := range pts {
		if f := p.w * d2[i]; f > 0 {
			total += f
			last = i
		}
	}
	if last < 0 {
		return rng.Intn(len(pts))
	}

	target := rng.Float64() * total
	for i, p := range pts {
		target -= p.w * d2[i]
		if target < 0 {
			return i
		}
	}
	return last
}
