package pixel

import (
	"errors"
	"fmt"
)

// Remap errors.
var (
	ErrShortSource      = errors.New("pixel data truncated")
	ErrShortDestination = errors.New("destination too small")
	ErrUnsupportedDepth = errors.New("unsupported pixel depth")
)

// ChannelOrder is the byte order of the color channels of a stored pixel.
type ChannelOrder uint8

// Channel orders.
const (
	BGRA ChannelOrder = iota // blue, green, red[, alpha]
	RGBA                     // red, green, blue[, alpha]
)

// Layout describes how a file packs its pixels.
type Layout struct {
	Channels ChannelOrder
	Depth    int  // bytes per stored pixel, 3 or 4
	Padded   bool // each row is padded to a 4-byte boundary
}

func (l Layout) validate() error {
	if l.Depth != 3 && l.Depth != 4 {
		return fmt.Errorf("%w: %d bytes per pixel", ErrUnsupportedDepth, l.Depth)
	}
	return nil
}

// RowPadding returns the number of filler bytes after each stored row.
func (l Layout) RowPadding(w int) int {
	if !l.Padded {
		return 0
	}
	return (4 - (w*l.Depth)%4) % 4
}

// Stride returns the byte length of one stored row, padding included.
func (l Layout) Stride(w int) int {
	return w*l.Depth + l.RowPadding(w)
}

// Size returns the byte length of a stored w x h image.
func (l Layout) Size(w, h int) int {
	return l.Stride(w) * h
}

// minSize is Size without the padding of the last row, which some writers omit.
func (l Layout) minSize(w, h int) int {
	return l.Stride(w)*(h-1) + w*l.Depth
}

// Unpack converts pixels stored with layout l into a canonical RGBA buffer of
// w x h pixels. flip is the axis that maps the stored order to the canonical
// one (see FlipToBottomLeft). Channel reordering, alpha defaulting and row
// padding are all handled in the same pass.
func Unpack(src []byte, w, h int, l Layout, flip FlipAxis) ([]byte, error) {
	if err := l.validate(); err != nil {
		return nil, err
	}
	size, err := Size(int64(w), int64(h))
	if err != nil {
		return nil, err
	}
	if len(src) < l.minSize(w, h) {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrShortSource, l.minSize(w, h), len(src))
	}

	dst := make([]byte, size)
	pad := l.RowPadding(w)
	s := 0
	for i := 0; i < size; i += BytesPerPixel {
		d := flip.Index(i, w, h)
		l.Channels.toRGBA(dst[d:d+BytesPerPixel], src[s:s+l.Depth])
		s += l.Depth

		if (i/BytesPerPixel)%w == w-1 {
			s += pad
		}
	}
	return dst, nil
}

// Pack writes canonical RGBA pixels into dst using layout l. flip maps the
// canonical order to the stored one; since every axis is self-inverse this is
// the same value used to Unpack that layout. dst must hold l.Size(w, h) bytes.
func Pack(dst, pix []byte, w, h int, l Layout, flip FlipAxis) error {
	if err := l.validate(); err != nil {
		return err
	}
	size, err := Size(int64(w), int64(h))
	if err != nil {
		return err
	}
	if len(pix) != size {
		return fmt.Errorf("%w: expected %d, got %d", ErrPixelSizeMismatch, size, len(pix))
	}
	if len(dst) < l.Size(w, h) {
		return fmt.Errorf("%w: holds %d bytes, need %d", ErrShortDestination, len(dst), l.Size(w, h))
	}

	stride := l.Stride(w)
	for i := 0; i < size; i += BytesPerPixel {
		t := flip.Index(i, w, h) / BytesPerPixel
		off := (t/w)*stride + (t%w)*l.Depth
		l.Channels.fromRGBA(dst[off:off+l.Depth], pix[i:i+BytesPerPixel])
	}
	return nil
}

// toRGBA copies one stored pixel into a canonical one.
// Three-byte pixels get an opaque alpha.
func (c ChannelOrder) toRGBA(dst, src []byte) {
	if c == BGRA {
		dst[0], dst[1], dst[2] = src[2], src[1], src[0]
	} else {
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
	}
	if len(src) == 4 {
		dst[3] = src[3]
	} else {
		dst[3] = 0xFF
	}
}

// fromRGBA copies one canonical pixel into a stored one, dropping alpha for
// three-byte layouts.
func (c ChannelOrder) fromRGBA(dst, src []byte) {
	if c == BGRA {
		dst[0], dst[1], dst[2] = src[2], src[1], src[0]
	} else {
		dst[0], dst[1], dst[2] = src[0], src[1], src[2]
	}
	if len(dst) == 4 {
		dst[3] = src[3]
	}
}
