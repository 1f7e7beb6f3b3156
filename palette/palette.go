// Package palette holds the color types shared by the quantizers, the
// indexer and the container codecs, plus palette post-processing helpers.
package palette

import (
	"image/color"
	"math"
	"slices"
	"sort"
)

// Sample is the flat list of pixel colors taken from a raster in scan order.
// Duplicates are kept.
type Sample []Color

// Palette is an ordered list of representative colors.
type Palette []Color

// Entry is a distinct color and the number of times it occurs in a sample.
type Entry struct {
	Color Color
	Count int
}

// Histogram counts the distinct colors of s in first-seen order.
func Histogram(s Sample) []Entry {
	seen := make(map[Color]int, len(s)/4)
	var res []Entry
	for _, c := range s {
		if i, ok := seen[c]; ok {
			res[i].Count++
			continue
		}
		seen[c] = len(res)
		res = append(res, Entry{Color: c, Count: 1})
	}
	return res
}

// Dedupe drops repeated colors, keeping the first occurrence.
func Dedupe(colors []Color) Palette {
	seen := make(map[Color]struct{}, len(colors))
	res := make(Palette, 0, len(colors))
	for _, c := range colors {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		res = append(res, c)
	}
	return res
}

// GridQuantize snaps every color to the bit depth grid and drops the
// duplicates that collapse onto the same cell, in first-seen order.
func GridQuantize(colors []Color, bits int) Palette {
	snapped := make([]Color, len(colors))
	for i, c := range colors {
		snapped[i] = c.Snap(bits)
	}
	return Dedupe(snapped)
}

// CountCells returns how many distinct grid cells the sample covers.
func CountCells(s Sample, bits int) int {
	cells := make(map[Color]struct{})
	for _, c := range s {
		cells[c.Snap(bits)] = struct{}{}
	}
	return len(cells)
}

// SortByLuminance returns a copy of p in ascending luminance order.
// Colors of equal luminance keep their relative order.
func SortByLuminance(p Palette) Palette {
	res := slices.Clone(p)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Luminance() < res[j].Luminance()
	})
	return res
}

// Index returns the position of the entry nearest to c. Ties go to the
// earliest entry. An empty palette returns 0.
func (p Palette) Index(c Color) int {
	ret, best := 0, math.MaxInt
	for i, v := range p {
		sum := distance(c, v)
		if sum < best {
			if sum == 0 {
				return i
			}
			ret, best = i, sum
		}
	}
	return ret
}

// Convert returns the entry nearest to c.
func (p Palette) Convert(c Color) Color {
	if len(p) == 0 {
		return Color{}
	}
	return p[p.Index(c)]
}

// Colors returns p as a standard library palette.
func (p Palette) Colors() color.Palette {
	res := make(color.Palette, len(p))
	for i, c := range p {
		res[i] = c
	}
	return res
}

// FromColors converts a standard library palette, dropping alpha.
func FromColors(pal color.Palette) Palette {
	res := make(Palette, len(pal))
	for i, c := range pal {
		res[i] = FromColor(c)
	}
	return res
}
