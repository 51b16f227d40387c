package formats

import (
	"bytes"
	"fmt"

	"github.com/Faultbox/texconv/pkg/pixel"
)

// DDS layout constants.
const (
	ddsMagic           = "DDS "
	ddsHeaderSize      = 124
	ddsPixelFormatSize = 32
	ddsDX10HeaderSize  = 20
	ddsDataOffset      = len(ddsMagic) + ddsHeaderSize + ddsDX10HeaderSize

	FourCCDX10 = 0x30315844 // "DX10"

	DXGIFormatR8G8B8A8UnormSRGB = 29
	ResourceDimensionTexture2D  = 3
)

// DDS header flags.
const (
	ddsdCaps        = 0x1
	ddsdHeight      = 0x2
	ddsdWidth       = 0x4
	ddsdPitch       = 0x8
	ddsdPixelFormat = 0x1000

	ddpfFourCC     = 0x4
	ddsCapsTexture = 0x1000
)

// DDSPixelFormat is the 32-byte DDS_PIXELFORMAT record.
type DDSPixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

// DDSHeader is the 124-byte DDS_HEADER that follows the magic.
type DDSHeader struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       DDSPixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

// DDSHeaderDX10 is the 20-byte extended header present when the pixel format
// tag is "DX10".
type DDSHeaderDX10 struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// DDS is the codec for DX10 DirectDraw Surface textures holding a single
// R8G8B8A8_UNORM_SRGB surface.
type DDS struct{}

// Extension returns the codec's file extension tag.
func (DDS) Extension() string { return "dds" }

// Matches reports whether ext selects this codec.
func (c DDS) Matches(ext string) bool { return ext == c.Extension() }

type ddsImage struct {
	header DDSHeader
	dx10   DDSHeaderDX10
}

func parseDDS(data []byte) (*ddsImage, error) {
	if len(data) < len(ddsMagic)+ddsHeaderSize {
		return nil, fmt.Errorf("%w: DDS data too short (%d bytes)", ErrInvalidHeader, len(data))
	}
	if string(data[:len(ddsMagic)]) != ddsMagic {
		return nil, fmt.Errorf("%w: bad DDS magic %q", ErrInvalidHeader, data[:len(ddsMagic)])
	}

	img := &ddsImage{}
	if err := readLE(data[len(ddsMagic):], &img.header); err != nil {
		return nil, fmt.Errorf("reading DDS header: %w", err)
	}
	if img.header.Size != ddsHeaderSize {
		return nil, fmt.Errorf("%w: DDS header size %d", ErrInvalidHeader, img.header.Size)
	}
	if img.header.PixelFormat.Size != ddsPixelFormatSize {
		return nil, fmt.Errorf("%w: DDS pixel format size %d", ErrInvalidHeader, img.header.PixelFormat.Size)
	}

	if img.header.PixelFormat.FourCC != FourCCDX10 {
		return nil, fmt.Errorf("%w: DDS without DX10 header (format tag 0x%08X)", ErrUnsupportedVariant, img.header.PixelFormat.FourCC)
	}
	if err := readLE(data[len(ddsMagic)+ddsHeaderSize:], &img.dx10); err != nil {
		return nil, fmt.Errorf("reading DDS DX10 header: %w", err)
	}
	if img.dx10.DXGIFormat != DXGIFormatR8G8B8A8UnormSRGB {
		return nil, fmt.Errorf("%w: DXGI format %d (only R8G8B8A8_UNORM_SRGB supported)", ErrUnsupportedVariant, img.dx10.DXGIFormat)
	}
	if img.dx10.ResourceDimension != ResourceDimensionTexture2D {
		return nil, fmt.Errorf("%w: DDS resource dimension %d", ErrUnsupportedVariant, img.dx10.ResourceDimension)
	}
	if img.dx10.ArraySize > 1 {
		return nil, fmt.Errorf("%w: DDS texture array of %d", ErrUnsupportedVariant, img.dx10.ArraySize)
	}

	if img.header.Width == 0 || img.header.Height == 0 ||
		img.header.Width > 1<<31-1 || img.header.Height > 1<<31-1 {
		return nil, fmt.Errorf("%w: DDS dimensions %dx%d", ErrInvalidHeader, img.header.Width, img.header.Height)
	}
	return img, nil
}

// Inspect reads the DDS headers.
func (DDS) Inspect(data []byte) (Info, error) {
	img, err := parseDDS(data)
	if err != nil {
		return Info{}, err
	}
	return Info{
		Format:  "dds",
		Width:   int32(img.header.Width),
		Height:  int32(img.header.Height),
		Depth:   32,
		Order:   pixel.TopLeftToBottomRight,
		Variant: "dx10/r8g8b8a8_unorm_srgb",
	}, nil
}

// Analyze decodes the top-level surface of a DDS file. Additional mip levels
// are ignored.
func (DDS) Analyze(data []byte) (*pixel.Buffer, error) {
	img, err := parseDDS(data)
	if err != nil {
		return nil, err
	}

	layout := pixel.Layout{Channels: pixel.RGBA, Depth: 4}
	flip := pixel.FlipToBottomLeft(pixel.TopLeftToBottomRight)
	return unpack(data[ddsDataOffset:], int(img.header.Width), int(img.header.Height), layout, flip)
}

// Convert encodes buf as a DX10 DDS with one R8G8B8A8_UNORM_SRGB surface.
func (DDS) Convert(buf *pixel.Buffer) ([]byte, error) {
	if err := checkLimits("DDS", buf, 1<<30-1); err != nil {
		return nil, err
	}
	w, h := int(buf.Width), int(buf.Height)

	header := DDSHeader{
		Size:              ddsHeaderSize,
		Flags:             ddsdCaps | ddsdHeight | ddsdWidth | ddsdPitch | ddsdPixelFormat,
		Height:            uint32(h),
		Width:             uint32(w),
		PitchOrLinearSize: uint32(w * 4),
		PixelFormat: DDSPixelFormat{
			Size:   ddsPixelFormatSize,
			Flags:  ddpfFourCC,
			FourCC: FourCCDX10,
		},
		Caps: ddsCapsTexture,
	}
	dx10 := DDSHeaderDX10{
		DXGIFormat:        DXGIFormatR8G8B8A8UnormSRGB,
		ResourceDimension: ResourceDimensionTexture2D,
		ArraySize:         1,
	}

	out := bytes.NewBuffer(make([]byte, 0, ddsDataOffset+len(buf.Pix)))
	out.WriteString(ddsMagic)
	if err := writeLE(out, &header, &dx10); err != nil {
		return nil, fmt.Errorf("writing DDS headers: %w", err)
	}

	data := out.Bytes()[:ddsDataOffset+len(buf.Pix)]
	layout := pixel.Layout{Channels: pixel.RGBA, Depth: 4}
	flip := pixel.FlipToTopLeft(pixel.BottomLeftToTopRight)
	if err := pixel.Pack(data[ddsDataOffset:], buf.Pix, w, h, layout, flip); err != nil {
		return nil, fmt.Errorf("packing DDS pixels: %w", err)
	}
	return data, nil
}
