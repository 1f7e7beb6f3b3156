// Package unpack turns SAFB bitmaps back into PNG pictures or RIFF palettes.
package unpack

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"picpal/folder"
	"picpal/raster"
	"picpal/safb"
)

type OpParams struct {
	Scan   string `help:"Source folder to scan for .safb, .safb.zst and .raw bitmaps" default:"."`
	Dest   string `help:"Destination folder. Relative to scan dir if not absolute." default:"unpacked"`
	Legacy bool   `help:"Also read headerless .raw bitmaps" group:"legacy"`
	Width  int    `help:"Width of headerless bitmaps" group:"legacy"`
	Height int    `help:"Height of headerless bitmaps" group:"legacy"`
}

type CLICmd struct {
	Png struct {
		OpParams
	} `cmd:"" help:"Write each bitmap as a PNG picture"`
	Pal struct {
		OpParams
	} `cmd:"" help:"Write the palette of each bitmap as a RIFF .pal file"`
}

func (c *CLICmd) params(subCmd string) *OpParams {
	switch subCmd {
	case "pal":
		return &c.Pal.OpParams
	default:
		return &c.Png.OpParams
	}
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	conf := c.params(kctx.Selected().Name)

	var err error
	if conf.Scan, conf.Dest, err = folder.Resolve(conf.Scan, conf.Dest); err != nil {
		return err
	}

	if conf.Legacy {
		switch {
		case conf.Width <= 0 || conf.Width > safb.MaxDimension:
			return fmt.Errorf("invalid legacy width: %d", conf.Width)
		case conf.Height <= 0 || conf.Height > safb.MaxDimension:
			return fmt.Errorf("invalid legacy height: %d", conf.Height)
		}
	}

	return nil
}

func (c *CLICmd) Run(subCmd string) error {
	conf := *c.params(subCmd)

	var write func(dest string, img *raster.Indexed) error
	var ext string
	switch subCmd {
	case "pal":
		write, ext = writePalette, ".pal"
	default:
		write, ext = writePicture, ".png"
	}

	files, err := folder.Files(conf.Scan, conf.Dest)
	if err != nil {
		return err
	}

	var unpackedCount, errCount uint64
	for _, fileName := range files {
		base, k := bitmapKind(fileName)
		if k == kindUnknown || (k == kindLegacy && !conf.Legacy) {
			continue
		}

		name := filepath.Join(conf.Scan, fileName)
		dest := filepath.Join(conf.Dest, base+ext)

		img, err := load(name, k, conf.Width, conf.Height)
		if err != nil {
			errCount++
			slog.Error("could not decode bitmap", "file", name, "error", err)
			continue
		}

		if err = write(dest, img); err != nil {
			errCount++
			slog.Error("could not unpack bitmap", "from", name, "to", dest, "error", err)
			continue
		}
		unpackedCount++
	}

	return folder.Report("unpacked", unpackedCount, errCount)
}

type kind int

const (
	kindUnknown kind = iota
	kindSAFB
	kindCompressed
	kindLegacy
)

func bitmapKind(name string) (string, kind) {
	lower := strings.ToLower(name)
	for _, k := range []struct {
		ext  string
		kind kind
	}{
		{".safb.zst", kindCompressed},
		{".safb", kindSAFB},
		{".raw", kindLegacy},
	} {
		if strings.HasSuffix(lower, k.ext) {
			return name[:len(name)-len(k.ext)], k.kind
		}
	}
	return name, kindUnknown
}
