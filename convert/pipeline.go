package convert

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/disintegration/imaging"

	"picpal/dither"
	"picpal/palette"
	"picpal/quantize"
	"picpal/raster"
)

func (c *CLICmd) convert(logger *slog.Logger, filePath, fileName string) error {
	img, err := imaging.Open(filePath, imaging.AutoOrientation(!c.NoExifRotation))
	if err != nil {
		return fmt.Errorf("could not open image: %w", err)
	}

	if c.Resize {
		img = resize(logger, img, c.Width, c.Height, c.Crop, c.FillColor)
	}

	src := raster.FromImage(img)
	progress := logProgress(logger)

	idx, err := c.reduce(logger, src, progress)
	if err != nil {
		return err
	}

	if c.Report {
		if err := report(logger, img, idx.Palette); err != nil {
			logger.Warn("could not extract dominant colors", "error", err)
		}
	}

	if err := c.save(logger, idx, fileName); err != nil {
		return err
	}
	progress(1)
	return nil
}

// reduce samples, quantizes, dithers and indexes src.
func (c *CLICmd) reduce(logger *slog.Logger, src *raster.Raster, progress raster.Progress) (*raster.Indexed, error) {
	sample := raster.Sample(src, progress.Window(0, .2))

	pal, err := quantize.Quantize(sample, c.Colors, c.Method, c.Bits)
	if err != nil {
		return nil, fmt.Errorf("could not build %s palette: %w", c.Method, err)
	}
	if !c.NoSort {
		pal = palette.SortByLuminance(pal)
	}
	logger.Info("palette", "method", c.Method.String(), "colors", pal)
	progress.Window(.2, .4)(1)

	dithered, err := dither.Overlay(src, c.Amplitude, progress.Window(.4, .6))
	if err != nil {
		return nil, fmt.Errorf("could not dither image: %w", err)
	}

	if c.Diffusion != "" {
		idx, err := dither.Diffuse(dithered, pal, c.Diffusion, c.Strength)
		if err != nil {
			return nil, fmt.Errorf("could not diffuse image: %w", err)
		}
		progress.Window(.6, .9)(1)
		return idx, nil
	}

	idx, err := raster.Index(dithered, pal, progress.Window(.6, .9))
	if err != nil {
		return nil, fmt.Errorf("could not index image: %w", err)
	}
	return idx, nil
}

// logProgress logs a debug record each time another tenth of the work is done.
func logProgress(logger *slog.Logger) raster.Progress {
	var mu sync.Mutex
	next := 0.0
	return func(v float64) {
		mu.Lock()
		defer mu.Unlock()
		if v < next {
			return
		}
		logger.Debug("progress", "done", math.Round(v*100))
		next = math.Floor(v*10)/10 + .1
	}
}
