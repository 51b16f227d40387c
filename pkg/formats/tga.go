package formats

import (
	"bytes"
	"fmt"

	"github.com/Faultbox/texconv/pkg/pixel"
)

// TGA image type constants.
const (
	TGATypeUncompressed = 2  // Uncompressed true-color
	TGATypeRLE          = 10 // RLE compressed true-color
)

const tgaHeaderSize = 18

// TGAHeader is the fixed 18-byte TGA file header.
type TGAHeader struct {
	IDLength       uint8
	ColorMapType   uint8
	ImageType      uint8
	ColorMapIndex  uint16
	ColorMapLength uint16
	ColorMapDepth  uint8
	XOrigin        uint16
	YOrigin        uint16
	Width          uint16
	Height         uint16
	PixelDepth     uint8
	Descriptor     uint8
}

// Order decodes the scanline order from descriptor bits 5 and 4.
func (h TGAHeader) Order() pixel.ScanlineOrder {
	bit4 := h.Descriptor&0x10 != 0
	bit5 := h.Descriptor&0x20 != 0

	switch {
	case !bit5 && !bit4:
		return pixel.BottomLeftToTopRight
	case !bit5 && bit4:
		return pixel.TopLeftToBottomRight
	case bit5 && !bit4:
		return pixel.BottomRightToTopLeft
	default:
		return pixel.TopRightToBottomLeft
	}
}

// TGA is the codec for uncompressed and RLE true-color Targa images.
type TGA struct {
	// RLE selects image type 10 when writing. Reading accepts both types.
	RLE bool
}

// Extension returns the codec's file extension tag.
func (TGA) Extension() string { return "tga" }

// Matches reports whether ext selects this codec.
func (c TGA) Matches(ext string) bool { return ext == c.Extension() }

func parseTGA(data []byte) (TGAHeader, error) {
	var h TGAHeader
	if len(data) < tgaHeaderSize {
		return h, fmt.Errorf("%w: TGA data too short (%d bytes)", ErrInvalidHeader, len(data))
	}
	if err := readLE(data, &h); err != nil {
		return h, fmt.Errorf("reading TGA header: %w", err)
	}

	if h.ColorMapType != 0 {
		return h, fmt.Errorf("%w: color-mapped TGA", ErrUnsupportedVariant)
	}
	if h.ImageType != TGATypeUncompressed && h.ImageType != TGATypeRLE {
		return h, fmt.Errorf("%w: TGA type %d (only uncompressed/RLE true-color supported)", ErrUnsupportedVariant, h.ImageType)
	}
	if h.PixelDepth != 24 && h.PixelDepth != 32 {
		return h, fmt.Errorf("%w: TGA bit depth %d (only 24/32 supported)", ErrUnsupportedVariant, h.PixelDepth)
	}
	if h.Width == 0 || h.Height == 0 {
		return h, fmt.Errorf("%w: TGA dimensions %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if tgaHeaderSize+int(h.IDLength) > len(data) {
		return h, fmt.Errorf("%w: TGA id field of %d bytes truncated", ErrInvalidHeader, h.IDLength)
	}
	return h, nil
}

// Inspect reads the TGA header.
func (TGA) Inspect(data []byte) (Info, error) {
	h, err := parseTGA(data)
	if err != nil {
		return Info{}, err
	}
	variant := "uncompressed"
	if h.ImageType == TGATypeRLE {
		variant = "rle"
	}
	return Info{
		Format:     "tga",
		Width:      int32(h.Width),
		Height:     int32(h.Height),
		Depth:      int(h.PixelDepth),
		Order:      h.Order(),
		Compressed: h.ImageType == TGATypeRLE,
		Variant:    variant,
	}, nil
}

// Analyze decodes a TGA file into a canonical buffer.
func (TGA) Analyze(data []byte) (*pixel.Buffer, error) {
	h, err := parseTGA(data)
	if err != nil {
		return nil, err
	}

	w, ht := int(h.Width), int(h.Height)
	src := data[tgaHeaderSize+int(h.IDLength):]
	flip := pixel.FlipToBottomLeft(h.Order())
	layout := pixel.Layout{Channels: pixel.BGRA, Depth: int(h.PixelDepth / 8)}

	if h.ImageType == TGATypeRLE {
		// The decoder widens every pixel to four bytes.
		src, err = DecompressRLE(src, w*ht, layout.Depth)
		if err != nil {
			return nil, err
		}
		layout.Depth = 4
	}
	return unpack(src, w, ht, layout, flip)
}

// Convert encodes buf as a bottom-up 32-bit TGA, RLE compressed if c.RLE is set.
func (c TGA) Convert(buf *pixel.Buffer) ([]byte, error) {
	if err := checkLimits("TGA", buf, 0xFFFF); err != nil {
		return nil, err
	}
	w, h := int(buf.Width), int(buf.Height)

	header := TGAHeader{
		ImageType:  TGATypeUncompressed,
		Width:      uint16(w),
		Height:     uint16(h),
		PixelDepth: 32,
		Descriptor: 0, // bottom-left origin
	}
	if c.RLE {
		header.ImageType = TGATypeRLE
	}

	layout := pixel.Layout{Channels: pixel.BGRA, Depth: 4}
	body := make([]byte, layout.Size(w, h))
	if err := pixel.Pack(body, buf.Pix, w, h, layout, pixel.FlipNone); err != nil {
		return nil, fmt.Errorf("packing TGA pixels: %w", err)
	}
	if c.RLE {
		var err error
		if body, err = CompressRLE(body, w, h); err != nil {
			return nil, err
		}
	}

	out := bytes.NewBuffer(make([]byte, 0, tgaHeaderSize+len(body)))
	if err := writeLE(out, &header); err != nil {
		return nil, fmt.Errorf("writing TGA header: %w", err)
	}
	out.Write(body)
	return out.Bytes(), nil
}
