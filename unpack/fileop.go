package unpack

import (
	"errors"
	"fmt"
	"image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"picpal/palette"
	"picpal/raster"
	"picpal/safb"
)

func load(src string, k kind, width, height int) (*raster.Indexed, error) {
	inFile, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("could not open source file %q: %w", src, err)
	}
	defer func() {
		if close_err := inFile.Close(); close_err != nil {
			slog.Error("could not close source file", "name", src, "error", close_err)
		}
	}()

	if k == kindLegacy {
		return safb.DecodeLegacy(inFile, width, height)
	}

	// .safb and .safb.zst are told apart by content, not by name.
	data, err := io.ReadAll(inFile)
	if err != nil {
		return nil, fmt.Errorf("could not read source file %q: %w", src, err)
	}
	return safb.Load(data)
}

func writePicture(dest string, img *raster.Indexed) error {
	slog.Info("writing picture", "to", dest)
	return create(dest, func(f *os.File) error {
		return png.Encode(f, img.Paletted())
	})
}

func writePalette(dest string, img *raster.Indexed) error {
	slog.Info("writing palette", "to", dest, "colors", len(img.Palette))
	return create(dest, func(f *os.File) error {
		_, err := palette.WriteRIFF(f, img.Palette)
		return err
	})
}

func create(dest string, write func(*os.File) error) error {
	if err := checkFile(dest); err != nil {
		return err
	}

	outFile, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("could not open destination file %q: %w", dest, err)
	}
	defer func() {
		if close_err := outFile.Close(); close_err != nil {
			slog.Error("could not close destination file", "name", dest, "error", close_err)
		}
	}()

	if err = write(outFile); err != nil {
		return fmt.Errorf("could not write %q: %w", dest, err)
	}

	err = outFile.Sync()
	if err != nil {
		return fmt.Errorf("could not flush destination file %q: %w", dest, err)
	}
	return nil
}

func checkFile(dest string) error {
	destFileInfo, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
	} else {
		return fmt.Errorf("destination file already exists: %q", destFileInfo.Name())
	}

	return nil
}
