// Package pixel defines the canonical in-memory image representation shared by
// every codec, plus the orientation remapping used to move pixels between file
// layouts and that representation.
package pixel

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/image/draw"
)

// BytesPerPixel is the size of one canonical pixel (R, G, B, A).
const BytesPerPixel = 4

// Buffer errors.
var (
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrPixelSizeMismatch = errors.New("pixel data size mismatch")
)

// Buffer is a canonical pixel buffer.
//
// Pixels are stored row by row starting at the bottom-left corner of the image,
// four bytes per pixel in R, G, B, A order. Pixel (x, y) lives at
// (y*Width+x)*4 where y = 0 is the bottom row.
type Buffer struct {
	Width  int32
	Height int32
	Pix    []byte
}

// New allocates a zeroed buffer of the given size.
func New(width, height int32) (*Buffer, error) {
	size, err := Size(int64(width), int64(height))
	if err != nil {
		return nil, err
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Pix:    make([]byte, size),
	}, nil
}

// Size returns the canonical byte length for a width x height image.
// It fails if either dimension is not positive or the size overflows an int.
func Size(width, height int64) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	const maxInt = int64(^uint(0) >> 1)
	if width > maxInt/height/BytesPerPixel {
		return 0, fmt.Errorf("%w: %dx%d overflows", ErrInvalidDimensions, width, height)
	}
	return int(width * height * BytesPerPixel), nil
}

// Validate checks that the dimensions are positive and match the pixel slice.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidDimensions)
	}
	size, err := Size(int64(b.Width), int64(b.Height))
	if err != nil {
		return err
	}
	if len(b.Pix) != size {
		return fmt.Errorf("%w: expected %d, got %d", ErrPixelSizeMismatch, size, len(b.Pix))
	}
	return nil
}

// Offset returns the index of pixel (x, y) in Pix, with y counted from the bottom.
func (b *Buffer) Offset(x, y int) int {
	return (y*int(b.Width) + x) * BytesPerPixel
}

// RGBAAt returns the pixel at (x, y), with y counted from the bottom.
func (b *Buffer) RGBAAt(x, y int) color.NRGBA {
	i := b.Offset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// SetRGBA sets the pixel at (x, y), with y counted from the bottom.
func (b *Buffer) SetRGBA(x, y int, c color.NRGBA) {
	i := b.Offset(x, y)
	b.Pix[i] = c.R
	b.Pix[i+1] = c.G
	b.Pix[i+2] = c.B
	b.Pix[i+3] = c.A
}

// Equal reports whether two buffers have identical dimensions and pixels.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.Width == other.Width && b.Height == other.Height && bytes.Equal(b.Pix, other.Pix)
}

// Digest returns a 64-bit hash over the dimensions and pixels.
// Two buffers with the same digest are, for practical purposes, identical.
func (b *Buffer) Digest() uint64 {
	var dims [8]byte
	binary.LittleEndian.PutUint32(dims[0:4], uint32(b.Width))
	binary.LittleEndian.PutUint32(dims[4:8], uint32(b.Height))

	h := xxhash.New()
	_, _ = h.Write(dims[:])
	_, _ = h.Write(b.Pix)
	return h.Sum64()
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, int(b.Width), int(b.Height))
}

// At implements image.Image. Unlike the canonical layout, image coordinates
// put y = 0 at the top, so the row is flipped here.
func (b *Buffer) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}.In(b.Bounds())) {
		return color.NRGBA{}
	}
	return b.RGBAAt(x, int(b.Height)-1-y)
}

// ToImage copies the buffer into a top-left origin *image.NRGBA.
func (b *Buffer) ToImage() *image.NRGBA {
	w, h := int(b.Width), int(b.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	rowSize := w * BytesPerPixel
	for y := 0; y < h; y++ {
		src := (h - 1 - y) * rowSize
		dst := y * img.Stride
		copy(img.Pix[dst:dst+rowSize], b.Pix[src:src+rowSize])
	}
	return img
}

// FromImage converts any image.Image into a canonical buffer.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	buf, err := New(int32(bounds.Dx()), int32(bounds.Dy()))
	if err != nil {
		return nil, err
	}

	nrgba, ok := img.(*image.NRGBA)
	if !ok || nrgba.Rect.Min != (image.Point{}) {
		nrgba = image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)
	}

	w, h := bounds.Dx(), bounds.Dy()
	rowSize := w * BytesPerPixel
	for y := 0; y < h; y++ {
		src := y * nrgba.Stride
		dst := (h - 1 - y) * rowSize
		copy(buf.Pix[dst:dst+rowSize], nrgba.Pix[src:src+rowSize])
	}
	return buf, nil
}
