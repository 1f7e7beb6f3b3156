package convert

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	"github.com/mccutchen/palettor"

	"picpal/palette"
)

const (
	reportThumbnail  = 200
	reportIterations = 500
)

// report logs the dominant colors of img, weighted by coverage, next to the
// palette that was generated for it.
func report(logger *slog.Logger, img image.Image, pal palette.Palette) error {
	thumbnail := imaging.Resize(img, reportThumbnail, reportThumbnail, imaging.NearestNeighbor)

	dominant, err := palettor.Extract(len(pal), reportIterations, thumbnail)
	if err != nil {
		return fmt.Errorf("could not extract palette: %w", err)
	}

	attrs := make([]any, 0, len(pal))
	for i, c := range dominant.Colors() {
		dc := palette.FromColor(c)
		attrs = append(attrs, slog.Group(fmt.Sprintf("c%d", i),
			"color", dc.String(),
			"weight", fmt.Sprintf("%.3f", dominant.Weight(c)),
			"nearest", pal[pal.Index(dc)].String()))
	}
	logger.Info("dominant colors", attrs...)
	return nil
}
