// Package convert implements the batch command that turns every picture in a
// folder into a 16-color SAFB bitmap.
package convert

import (
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/alecthomas/kong"

	"picpal/dither"
	"picpal/folder"
	"picpal/parallel"
	"picpal/quantize"
	"picpal/safb"
)

type CLICmd struct {
	Scan string `help:"Source folder to scan" default:"."`
	Dest string `help:"Destination folder for bitmaps. Relative to scan dir if not absolute." default:"raw"`

	Colors int             `help:"Palette size" default:"16" group:"palette"`
	Method quantize.Method `help:"Quantization method: kmeans, median-cut, popularity, octree, mmcq, kmeans+median-cut, kmeans+mmcq" default:"kmeans" group:"palette"`
	Bits   int             `help:"Bits per channel the palette colors must stay distinct at" default:"4" group:"palette"`
	NoSort bool            `help:"Keep palette in generation order instead of sorting by luminance" group:"palette"`

	Amplitude float64 `help:"Checkerboard overlay amplitude in [0,1], 0 disables it" default:"0" group:"dither"`
	Diffusion string  `help:"Error diffusion matrix used instead of nearest color indexing (e.g. floyd-steinberg, atkinson)" group:"dither"`
	Strength  float32 `help:"Error diffusion strength" default:"1" group:"dither"`

	Resize bool   `help:"Fit image to the target size before sampling" default:"false" group:"resize"`
	Width  int    `help:"Max width" group:"resize"`
	Height int    `help:"Max height" group:"resize"`
	Crop   bool   `help:"Crop image to maintain requested aspect ratio" default:"false" group:"resize"`
	Fill   string `help:"If given and not cropping, fill background with this hex or SVG color to keep the target aspect ratio" group:"resize"`

	Legacy         bool `help:"Write headerless bitmaps (.raw)" group:"output"`
	Compress       bool `help:"Compress bitmaps with zstd (.safb.zst)" group:"output"`
	Pal            bool `help:"Also write the palette as a RIFF .pal file" group:"output"`
	Preview        bool `help:"Also write a PNG preview of the indexed result" group:"output"`
	Upscale        int  `help:"Nearest neighbour upscale factor for the preview" default:"1" group:"output"`
	Report         bool `help:"Log the dominant colors of each source next to the generated palette" group:"output"`
	NoExifRotation bool `help:"Ignore EXIF orientation of the source"`

	FillColor color.Color `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	var err error
	if c.Scan, c.Dest, err = folder.Resolve(c.Scan, c.Dest); err != nil {
		return err
	}

	switch {
	case c.Colors < 1 || c.Colors > safb.MaxPaletteSize:
		return fmt.Errorf("invalid palette size %d: must be within [1,%d]", c.Colors, safb.MaxPaletteSize)
	case c.Bits < 1 || c.Bits > 8:
		return fmt.Errorf("invalid bits per channel %d: must be within [1,8]", c.Bits)
	case c.Amplitude < 0 || c.Amplitude > 1:
		return fmt.Errorf("invalid dither amplitude %g: must be within [0,1]", c.Amplitude)
	case c.Upscale < 1:
		return fmt.Errorf("invalid upscale factor: %d", c.Upscale)
	case c.Legacy && c.Compress:
		return fmt.Errorf("legacy bitmaps cannot be compressed")
	}

	if c.Diffusion != "" {
		if c.Diffusion, err = dither.ParseMatrix(c.Diffusion); err != nil {
			return err
		}
		if c.Colors < 2 {
			return fmt.Errorf("error diffusion needs at least 2 colors, got %d", c.Colors)
		}
	}

	if c.Resize {
		switch {
		case (c.Width < 0):
			return fmt.Errorf("invalid resize width: %d", c.Width)
		case (c.Height < 0):
			return fmt.Errorf("invalid resize height: %d", c.Height)
		case (c.Width == 0) && (c.Height == 0):
			return fmt.Errorf("no resize dimensions given")
		}
	}

	if (!c.Crop) && (c.Fill != "") {
		if c.FillColor, err = parseColor(c.Fill); err != nil {
			return err
		}
	}

	return nil
}

func (c *CLICmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	files, err := folder.Files(c.Scan, c.Dest)
	if err != nil {
		return err
	}

	var processedCount, errCount atomic.Uint64
	for _, fileName := range files {
		worker(func() {
			filePath := filepath.Join(c.Scan, fileName)
			logger := slog.Default().With("file", filePath)

			if err := c.convert(logger, filePath, fileName); err != nil {
				errCount.Add(1)
				logger.Error("could not convert image", "error", err)
				return
			}
			processedCount.Add(1)
		})
	}

	wait(true)

	return folder.Report("processed", processedCount.Load(), errCount.Load())
}
