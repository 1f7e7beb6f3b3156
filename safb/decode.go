package safb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"picpal/palette"
	"picpal/raster"
)

// Decode reads one SAFB stream. Any missing, misplaced or short block fails
// the whole decode; no partial image is returned.
func Decode(r io.Reader) (*raster.Indexed, error) {
	var header [headerSize]byte
	if err := readFull(r, header[:], "header"); err != nil {
		return nil, err
	}

	if magic := string(header[:4]); magic != Magic {
		return nil, fmt.Errorf("%w: expected %q, got %q", ErrInvalidMagic, Magic, magic)
	}

	width := int(binary.BigEndian.Uint16(header[4:6]))
	height := int(binary.BigEndian.Uint16(header[6:8]))
	size := int(binary.BigEndian.Uint16(header[8:10]))

	if (width*height)%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrOddPixelCount, width, height)
	}
	if size > MaxPaletteSize {
		return nil, fmt.Errorf("%w: header declares %d", ErrPaletteTooLarge, size)
	}

	if err := expectTag(r, TagData); err != nil {
		return nil, err
	}
	data, err := readBlock(r, width*height/2, "pixel data")
	if err != nil {
		return nil, err
	}

	if err := expectTag(r, TagPalette); err != nil {
		return nil, err
	}
	pal, err := readPalette(r, size)
	if err != nil {
		return nil, err
	}

	pix := unpack(data)
	if err := checkIndices(pix, len(pal)); err != nil {
		return nil, err
	}

	return &raster.Indexed{
		Width:   width,
		Height:  height,
		Pix:     pix,
		Palette: pal,
	}, nil
}

// Unmarshal decodes a SAFB document held in memory.
func Unmarshal(data []byte) (*raster.Indexed, error) {
	return Decode(bytes.NewReader(data))
}

// DecodeLegacy reads the headerless layout. The palette size is taken from
// whatever follows the width*height/2 pixel bytes.
func DecodeLegacy(r io.Reader, width, height int) (*raster.Indexed, error) {
	if width < 0 || height < 0 || width > MaxDimension || height > MaxDimension {
		return nil, fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}
	if (width*height)%2 != 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrOddPixelCount, width, height)
	}

	data, err := readBlock(r, width*height/2, "pixel data")
	if err != nil {
		return nil, err
	}

	rest, err := io.ReadAll(io.LimitReader(r, MaxPaletteSize*2+1))
	if err != nil {
		return nil, fmt.Errorf("could not read palette: %w", err)
	}
	switch {
	case len(rest) > MaxPaletteSize*2:
		return nil, fmt.Errorf("%w: more than %d trailing bytes", ErrPaletteTooLarge, MaxPaletteSize*2)
	case len(rest)%2 != 0:
		return nil, fmt.Errorf("%w: palette block has %d bytes", ErrTruncated, len(rest))
	}
	pal, err := readPalette(bytes.NewReader(rest), len(rest)/2)
	if err != nil {
		return nil, err
	}

	pix := unpack(data)
	if err := checkIndices(pix, len(pal)); err != nil {
		return nil, err
	}

	return &raster.Indexed{
		Width:   width,
		Height:  height,
		Pix:     pix,
		Palette: pal,
	}, nil
}

func expectTag(r io.Reader, tag string) error {
	var got [4]byte
	if _, err := io.ReadFull(r, got[:]); err != nil {
		return fmt.Errorf("%w: %s tag: %w", ErrMissingBlock, tag, err)
	}
	if string(got[:]) != tag {
		return fmt.Errorf("%w: expected %q, got %q", ErrMissingBlock, tag, string(got[:]))
	}
	return nil
}

func readPalette(r io.Reader, size int) (palette.Palette, error) {
	data := make([]byte, size*2)
	if err := readFull(r, data, "palette"); err != nil {
		return nil, err
	}
	pal := make(palette.Palette, size)
	for i := range pal {
		pal[i] = UnpackRGB444(binary.BigEndian.Uint16(data[2*i:]))
	}
	return pal, nil
}

// readBlock reads exactly n bytes. The buffer grows with the bytes that
// actually arrive, so a header cannot force a large allocation up front.
func readBlock(r io.Reader, n int, what string) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(io.LimitReader(r, int64(n))); err != nil {
		return nil, fmt.Errorf("could not read %s: %w", what, err)
	}
	if buf.Len() < n {
		return nil, fmt.Errorf("%w: %s: got %d of %d bytes", ErrTruncated, what, buf.Len(), n)
	}
	return buf.Bytes(), nil
}

func readFull(r io.Reader, buf []byte, what string) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: %s: %w", ErrTruncated, what, err)
		}
		return fmt.Errorf("could not read %s: %w", what, err)
	}
	return nil
}
