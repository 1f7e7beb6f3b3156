package convert

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/disintegration/imaging"

	"picpal/palette"
	"picpal/raster"
	"picpal/safb"
)

const (
	ExtSAFB       = ".safb"
	ExtCompressed = ".safb.zst"
	ExtLegacy     = ".raw"
	ExtPalette    = ".pal"
	ExtPreview    = ".png"
)

// bitmapName maps a source file name to its bitmap name.
func (c *CLICmd) bitmapName(srcName string) string {
	base := srcName[:len(srcName)-len(filepath.Ext(srcName))]
	switch {
	case c.Legacy:
		return base + ExtLegacy
	case c.Compress:
		return base + ExtCompressed
	default:
		return base + ExtSAFB
	}
}

func (c *CLICmd) save(logger *slog.Logger, idx *raster.Indexed, srcName string) error {
	destName := c.bitmapName(srcName)
	base := srcName[:len(srcName)-len(filepath.Ext(srcName))]

	err := writeFile(c.Dest, destName, func(w io.Writer) error {
		switch {
		case c.Legacy:
			return safb.EncodeLegacy(w, idx)
		case c.Compress:
			return safb.EncodeCompressed(w, idx)
		default:
			return safb.Encode(w, idx)
		}
	})
	if err != nil {
		return err
	}
	logger.Info("saved", "dest", filepath.Join(c.Dest, destName),
		"width", idx.Width, "height", idx.Height, "colors", len(idx.Palette))

	if c.Pal {
		err = writeFile(c.Dest, base+ExtPalette, func(w io.Writer) error {
			_, err := palette.WriteRIFF(w, idx.Palette)
			return err
		})
		if err != nil {
			return err
		}
	}

	if c.Preview {
		err = writeFile(c.Dest, base+ExtPreview, func(w io.Writer) error {
			return encodePNG(w, upscale(idx.Paletted(), c.Upscale))
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// writeFile writes into a temporary file in destDir and renames it to
// destName once write and flush both succeed.
func writeFile(destDir, destName string, write func(io.Writer) error) (err error) {
	outFile, err := os.CreateTemp(destDir, destName+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination %q: %w", destName, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination %q: %w", destName, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination %q: %w", destName, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), filepath.Join(destDir, destName)); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", destName, defErr)
			}
		}
		if err != nil {
			_ = os.Remove(outFile.Name())
		}
	}()

	if err = write(outFile); err != nil {
		return fmt.Errorf("could not encode destination %q: %w", destName, err)
	}

	canRename = true
	return nil
}

func upscale(img *image.Paletted, factor int) image.Image {
	if factor <= 1 {
		return img
	}

	scaled := imaging.Resize(img, img.Bounds().Dx()*factor, 0, imaging.NearestNeighbor)
	res := image.NewPaletted(scaled.Bounds(), img.Palette)
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			res.Set(x, y, scaled.At(x, y))
		}
	}
	return res
}

func encodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{
		CompressionLevel: png.BestCompression,
		BufferPool:       pngPool,
	}
	return enc.Encode(w, img)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
