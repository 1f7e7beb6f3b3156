package safb

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"picpal/raster"
)

// zstdMagic opens every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// IsCompressed reports whether data starts with a zstd frame.
func IsCompressed(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// EncodeCompressed writes img as a zstd-compressed SAFB stream.
func EncodeCompressed(w io.Writer, img *raster.Indexed) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("could not create zstd writer: %w", err)
	}
	if err := Encode(enc, img); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finish zstd stream: %w", err)
	}
	return nil
}

// DecodeCompressed reads a zstd-compressed SAFB stream.
func DecodeCompressed(r io.Reader) (*raster.Indexed, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer dec.Close()

	return Decode(dec)
}

// Load decodes data as a SAFB document, compressed or not.
func Load(data []byte) (*raster.Indexed, error) {
	if IsCompressed(data) {
		return DecodeCompressed(bytes.NewReader(data))
	}
	return Unmarshal(data)
}
