package safb

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"picpal/palette"
	"picpal/raster"
)

// Encode writes img as a SAFB stream.
func Encode(w io.Writer, img *raster.Indexed) error {
	if err := validate(img); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	var header [headerSize]byte
	copy(header[:4], Magic)
	binary.BigEndian.PutUint16(header[4:6], uint16(img.Width))
	binary.BigEndian.PutUint16(header[6:8], uint16(img.Height))
	binary.BigEndian.PutUint16(header[8:10], uint16(len(img.Palette)))
	if _, err := bw.Write(header[:]); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	if _, err := bw.WriteString(TagData); err != nil {
		return fmt.Errorf("could not write data tag: %w", err)
	}
	if _, err := bw.Write(pack(img.Pix)); err != nil {
		return fmt.Errorf("could not write pixel data: %w", err)
	}

	if _, err := bw.WriteString(TagPalette); err != nil {
		return fmt.Errorf("could not write palette tag: %w", err)
	}
	if _, err := bw.Write(packPalette(img.Palette)); err != nil {
		return fmt.Errorf("could not write palette: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("could not flush: %w", err)
	}
	return nil
}

// Marshal returns the SAFB encoding of img.
func Marshal(img *raster.Indexed) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeLegacy writes the headerless layout: the nibble stream directly
// followed by the RGB444 palette. Readers must know the dimensions.
func EncodeLegacy(w io.Writer, img *raster.Indexed) error {
	if err := validate(img); err != nil {
		return err
	}

	data := append(pack(img.Pix), packPalette(img.Palette)...)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("could not write legacy bitmap: %w", err)
	}
	return nil
}

func packPalette(pal palette.Palette) []byte {
	res := make([]byte, 0, len(pal)*2)
	for _, c := range pal {
		res = binary.BigEndian.AppendUint16(res, PackRGB444(c))
	}
	return res
}
