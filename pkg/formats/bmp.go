package formats

import (
	"bytes"
	"fmt"

	"github.com/Faultbox/texconv/pkg/pixel"
)

// BMP layout constants.
const (
	bmpSignature      = 0x4D42 // "BM"
	bmpFileHeaderSize = 14
	bmpInfoHeaderSize = 40
	bmpHeadersSize    = bmpFileHeaderSize + bmpInfoHeaderSize

	BMPCompressionRGB       = 0
	BMPCompressionBitFields = 3
)

// BMPFileHeader is the 14-byte BITMAPFILEHEADER.
type BMPFileHeader struct {
	Type      uint16
	Size      uint32
	Reserved1 uint16
	Reserved2 uint16
	OffBits   uint32
}

// BMPInfoHeader is the 40-byte BITMAPINFOHEADER. Larger V4/V5 headers share
// the same leading fields and are read through this struct.
type BMPInfoHeader struct {
	Size          uint32
	Width         int32
	Height        int32 // negative for top-down images
	Planes        uint16
	BitCount      uint16
	Compression   uint32
	SizeImage     uint32
	XPelsPerMeter int32
	YPelsPerMeter int32
	ClrUsed       uint32
	ClrImportant  uint32
}

// Order returns the scanline order encoded by the sign of Height.
func (h BMPInfoHeader) Order() pixel.ScanlineOrder {
	if h.Height < 0 {
		return pixel.TopLeftToBottomRight
	}
	return pixel.BottomLeftToTopRight
}

// AbsHeight returns the row count regardless of orientation.
func (h BMPInfoHeader) AbsHeight() int64 {
	if h.Height < 0 {
		return -int64(h.Height)
	}
	return int64(h.Height)
}

// BMP is the codec for uncompressed 24/32-bit Windows bitmaps.
type BMP struct {
	// PixelsPerMeter is written to both resolution fields. Zero leaves them unset.
	PixelsPerMeter int32
}

// Extension returns the codec's file extension tag.
func (BMP) Extension() string { return "bmp" }

// Matches reports whether ext selects this codec.
func (c BMP) Matches(ext string) bool { return ext == c.Extension() }

type bmpImage struct {
	file BMPFileHeader
	info BMPInfoHeader
}

func parseBMP(data []byte) (*bmpImage, error) {
	if len(data) < bmpHeadersSize {
		return nil, fmt.Errorf("%w: BMP data too short (%d bytes)", ErrInvalidHeader, len(data))
	}

	img := &bmpImage{}
	if err := readLE(data, &img.file); err != nil {
		return nil, fmt.Errorf("reading BMP file header: %w", err)
	}
	if img.file.Type != bmpSignature {
		return nil, fmt.Errorf("%w: bad BMP signature 0x%04X", ErrInvalidHeader, img.file.Type)
	}
	if err := readLE(data[bmpFileHeaderSize:], &img.info); err != nil {
		return nil, fmt.Errorf("reading BMP info header: %w", err)
	}
	if img.info.Size < bmpInfoHeaderSize {
		return nil, fmt.Errorf("%w: BMP info header size %d", ErrInvalidHeader, img.info.Size)
	}
	if img.info.Width <= 0 || img.info.Height == 0 {
		return nil, fmt.Errorf("%w: BMP dimensions %dx%d", ErrInvalidHeader, img.info.Width, img.info.Height)
	}

	if c := img.info.Compression; c != BMPCompressionRGB && c != BMPCompressionBitFields {
		return nil, fmt.Errorf("%w: BMP compression %d", ErrUnsupportedVariant, c)
	}
	if b := img.info.BitCount; b != 24 && b != 32 {
		return nil, fmt.Errorf("%w: BMP bit depth %d (only 24/32 supported)", ErrUnsupportedVariant, b)
	}
	return img, nil
}

// Inspect reads the BMP headers.
func (BMP) Inspect(data []byte) (Info, error) {
	img, err := parseBMP(data)
	if err != nil {
		return Info{}, err
	}
	variant := "rgb"
	if img.info.Compression == BMPCompressionBitFields {
		variant = "bitfields"
	}
	return Info{
		Format:  "bmp",
		Width:   img.info.Width,
		Height:  int32(img.info.AbsHeight()),
		Depth:   int(img.info.BitCount),
		Order:   img.info.Order(),
		Variant: variant,
	}, nil
}

// Analyze decodes a BMP file into a canonical buffer.
func (BMP) Analyze(data []byte) (*pixel.Buffer, error) {
	img, err := parseBMP(data)
	if err != nil {
		return nil, err
	}

	off := int64(img.file.OffBits)
	if off < bmpHeadersSize || off > int64(len(data)) {
		return nil, fmt.Errorf("%w: BMP pixel offset %d outside file of %d bytes", ErrMalformedStream, off, len(data))
	}

	layout := pixel.Layout{
		Channels: pixel.BGRA,
		Depth:    int(img.info.BitCount / 8),
		Padded:   true,
	}
	flip := pixel.FlipToBottomLeft(img.info.Order())
	return unpack(data[off:], int(img.info.Width), int(img.info.AbsHeight()), layout, flip)
}

// Convert encodes buf as a bottom-up, uncompressed 32-bit BMP.
func (c BMP) Convert(buf *pixel.Buffer) ([]byte, error) {
	if err := checkLimits("BMP", buf, 1<<31-1); err != nil {
		return nil, err
	}
	imageSize := int64(len(buf.Pix))
	if bmpHeadersSize+imageSize > 1<<32-1 {
		return nil, fmt.Errorf("%w: BMP image of %d bytes exceeds 4 GiB", ErrUnsupportedVariant, imageSize)
	}

	file := BMPFileHeader{
		Type:    bmpSignature,
		Size:    uint32(bmpHeadersSize + imageSize),
		OffBits: bmpHeadersSize,
	}
	info := BMPInfoHeader{
		Size:          bmpInfoHeaderSize,
		Width:         buf.Width,
		Height:        buf.Height,
		Planes:        1,
		BitCount:      32,
		Compression:   BMPCompressionRGB,
		SizeImage:     uint32(imageSize),
		XPelsPerMeter: c.PixelsPerMeter,
		YPelsPerMeter: c.PixelsPerMeter,
	}

	out := bytes.NewBuffer(make([]byte, 0, bmpHeadersSize+imageSize))
	if err := writeLE(out, &file, &info); err != nil {
		return nil, fmt.Errorf("writing BMP headers: %w", err)
	}

	data := out.Bytes()[:bmpHeadersSize+imageSize]
	layout := pixel.Layout{Channels: pixel.BGRA, Depth: 4, Padded: true}
	if err := pixel.Pack(data[bmpHeadersSize:], buf.Pix, int(buf.Width), int(buf.Height), layout, pixel.FlipNone); err != nil {
		return nil, fmt.Errorf("packing BMP pixels: %w", err)
	}
	return data, nil
}
