package dither

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/makeworld-the-better-one/dither/v2"

	"picpal/palette"
	"picpal/raster"
)

var (
	ErrUnknownMatrix   = errors.New("unknown error diffusion matrix")
	ErrPaletteTooSmall = errors.New("error diffusion needs at least two palette colors")
)

var edmName = map[string]dither.ErrorDiffusionMatrix{
	"simple2d":            dither.Simple2D,
	"floydsteinberg":      dither.FloydSteinberg,
	"falsefloydsteinberg": dither.FalseFloydSteinberg,
	"jarvisjudiceninke":   dither.JarvisJudiceNinke,
	"atkinson":            dither.Atkinson,
	"stucki":              dither.Stucki,
	"burkes":              dither.Burkes,
	"sierra":              dither.Sierra,
	"sierra3":             dither.Sierra3,
	"tworowsierra":        dither.TwoRowSierra,
	"sierralite":          dither.SierraLite,
	"sierra2_4a":          dither.Sierra2_4A,
	"stevenpigeon":        dither.StevenPigeon,
}

// Matrices lists the accepted error diffusion matrix names.
func Matrices() []string {
	names := make([]string, 0, len(edmName))
	for name := range edmName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ParseMatrix normalises a matrix name such as "Floyd-Steinberg".
func ParseMatrix(name string) (string, error) {
	key := strings.ToLower(name)
	key = strings.ReplaceAll(key, "-", "")
	key = strings.ReplaceAll(key, " ", "")
	if _, ok := edmName[key]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMatrix, name)
	}
	return key, nil
}

// Diffuse indexes r against pal with error diffusion instead of a plain
// nearest-color scan. The result owns pal.
func Diffuse(r *raster.Raster, pal palette.Palette, matrix string, strength float32) (*raster.Indexed, error) {
	key, err := ParseMatrix(matrix)
	if err != nil {
		return nil, err
	}
	if len(pal) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrPaletteTooSmall, len(pal))
	}
	if len(pal) > 256 {
		return nil, fmt.Errorf("%w: got %d", raster.ErrInvalidPalette, len(pal))
	}

	d := dither.NewDitherer(pal.Colors())
	if d == nil {
		return nil, fmt.Errorf("could not create ditherer for %d colors", len(pal))
	}
	if strength == 0 {
		strength = 1
	}
	d.Matrix = dither.ErrorDiffusionStrength(edmName[key], strength)
	// Results must not depend on scheduling.
	d.SingleThreaded = true

	res := raster.NewIndexed(r.Width, r.Height, pal)
	if r.Width == 0 || r.Height == 0 {
		return res, nil
	}

	p := d.DitherPaletted(r)
	b := p.Bounds()
	for y := range r.Height {
		for x := range r.Width {
			res.Pix[y*r.Width+x] = p.ColorIndexAt(b.Min.X+x, b.Min.Y+y)
		}
	}
	return res, nil
}
