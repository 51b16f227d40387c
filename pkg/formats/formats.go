// Package formats provides codecs for the BMP, TGA and DDS image containers.
//
// Every codec parses its file layout into a canonical pixel.Buffer and
// serializes a buffer back into that layout. Headers are decoded field by
// field in little-endian order; no in-memory struct layout is assumed to match
// the file.
package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/Faultbox/texconv/pkg/pixel"
)

// Codec errors.
var (
	ErrInvalidHeader      = errors.New("invalid header")
	ErrUnsupportedVariant = errors.New("unsupported variant")
	ErrMalformedStream    = errors.New("malformed pixel stream")
)

// Info describes an image file without decoding its pixels.
type Info struct {
	Format     string
	Width      int32
	Height     int32
	Depth      int // bits per stored pixel
	Order      pixel.ScanlineOrder
	Compressed bool
	Variant    string
}

// Extension returns the part of path after the last '.', or "" if there is none.
// The comparison against codec tags is case-sensitive, so nothing is folded.
func Extension(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

// readLE decodes a fixed-size header struct from the start of data.
func readLE(data []byte, v any) error {
	size := binary.Size(v)
	if len(data) < size {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidHeader, size, len(data))
	}
	return binary.Read(bytes.NewReader(data[:size]), binary.LittleEndian, v)
}

// writeLE appends the little-endian encoding of fixed-size header structs to buf.
func writeLE(buf *bytes.Buffer, vs ...any) error {
	for _, v := range vs {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

// unpack runs pixel.Unpack and translates its errors into codec errors.
func unpack(src []byte, w, h int, l pixel.Layout, flip pixel.FlipAxis) (*pixel.Buffer, error) {
	pix, err := pixel.Unpack(src, w, h, l, flip)
	switch {
	case errors.Is(err, pixel.ErrShortSource):
		return nil, fmt.Errorf("%w: %v", ErrMalformedStream, err)
	case errors.Is(err, pixel.ErrInvalidDimensions):
		return nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	case errors.Is(err, pixel.ErrUnsupportedDepth):
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedVariant, err)
	case err != nil:
		return nil, err
	}
	return &pixel.Buffer{Width: int32(w), Height: int32(h), Pix: pix}, nil
}

// checkLimits validates buf before serialization and ensures its dimensions
// fit in a format whose size fields hold at most limit.
func checkLimits(format string, buf *pixel.Buffer, limit int64) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("%s: %w", format, err)
	}
	if int64(buf.Width) > limit || int64(buf.Height) > limit {
		return fmt.Errorf("%w: %s cannot store %dx%d", ErrUnsupportedVariant, format, buf.Width, buf.Height)
	}
	return nil
}
