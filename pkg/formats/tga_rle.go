package formats

import (
	"bytes"
	"fmt"

	"github.com/Faultbox/texconv/pkg/pixel"
)

// MaxRunLength is the largest pixel count a single TGA RLE packet can carry.
const MaxRunLength = 128

const rlePacketRepeat = 0x80

// DecompressRLE decodes a TGA RLE stream of pixels pixels, each depth bytes
// (3 or 4, stored blue-green-red[-alpha]). The result always holds four bytes
// per pixel in BGRA order; three-byte pixels get an opaque alpha.
//
// Packets may cross row boundaries but must not run past the last pixel.
func DecompressRLE(src []byte, pixels, depth int) ([]byte, error) {
	if depth != 3 && depth != 4 {
		return nil, fmt.Errorf("%w: RLE pixel depth %d bytes", ErrUnsupportedVariant, depth)
	}
	if pixels <= 0 {
		return nil, fmt.Errorf("%w: RLE pixel count %d", ErrInvalidHeader, pixels)
	}
	// Each packet covers at most MaxRunLength pixels, so a stream shorter than
	// this cannot describe the image. Checked before allocating the output.
	minLen := (pixels + MaxRunLength - 1) / MaxRunLength * (1 + depth)
	if len(src) < minLen {
		return nil, fmt.Errorf("%w: RLE stream of %d bytes cannot hold %d pixels", ErrMalformedStream, len(src), pixels)
	}

	out := make([]byte, pixels*4)
	n, s := 0, 0
	for n < pixels {
		if s >= len(src) {
			return nil, fmt.Errorf("%w: RLE stream ends after %d of %d pixels", ErrMalformedStream, n, pixels)
		}
		packet := src[s]
		s++
		count := int(packet&0x7F) + 1

		if n+count > pixels {
			return nil, fmt.Errorf("%w: RLE packet of %d pixels at pixel %d runs past image end (%d)",
				ErrMalformedStream, count, n, pixels)
		}

		if packet&rlePacketRepeat != 0 {
			if s+depth > len(src) {
				return nil, fmt.Errorf("%w: RLE repeat packet truncated at pixel %d", ErrMalformedStream, n)
			}
			px := src[s : s+depth]
			s += depth
			for i := 0; i < count; i++ {
				putBGRA(out[n*4:], px)
				n++
			}
		} else {
			if s+count*depth > len(src) {
				return nil, fmt.Errorf("%w: RLE literal packet truncated at pixel %d", ErrMalformedStream, n)
			}
			for i := 0; i < count; i++ {
				putBGRA(out[n*4:], src[s:s+depth])
				s += depth
				n++
			}
		}
	}
	return out, nil
}

func putBGRA(dst, px []byte) {
	dst[0], dst[1], dst[2] = px[0], px[1], px[2]
	if len(px) == 4 {
		dst[3] = px[3]
	} else {
		dst[3] = 0xFF
	}
}

// CompressRLE encodes width x height four-byte pixels as a TGA RLE stream.
//
// Rows are encoded independently, so no packet crosses a row boundary. Two or
// more identical neighbours become a repeat packet; everything else is
// gathered into literal packets, which end as soon as the next two pixels
// match so that the repeat can start there.
func CompressRLE(pix []byte, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 || len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: %d bytes for %dx%d pixels", pixel.ErrPixelSizeMismatch, len(pix), width, height)
	}

	out := make([]byte, 0, len(pix)/2)
	rowSize := width * 4
	for y := 0; y < height; y++ {
		row := pix[y*rowSize : (y+1)*rowSize]
		for x := 0; x < width; {
			run := repeatLength(row, x, width)
			if run >= 2 {
				out = append(out, rlePacketRepeat|byte(run-1))
				out = append(out, row[x*4:x*4+4]...)
				x += run
				continue
			}

			n := literalLength(row, x, width)
			out = append(out, byte(n-1))
			out = append(out, row[x*4:(x+n)*4]...)
			x += n
		}
	}
	return out, nil
}

// repeatLength counts identical pixels starting at x, up to MaxRunLength.
func repeatLength(row []byte, x, width int) int {
	run := 1
	for run < MaxRunLength && x+run < width && samePixel(row, x, x+run) {
		run++
	}
	return run
}

// literalLength counts pixels from x that do not start a repeat, up to
// MaxRunLength. The pixel at x is always included.
func literalLength(row []byte, x, width int) int {
	n := 1
	for n < MaxRunLength && x+n < width {
		if x+n+1 < width && samePixel(row, x+n, x+n+1) {
			break
		}
		n++
	}
	return n
}

func samePixel(row []byte, a, b int) bool {
	return bytes.Equal(row[a*4:a*4+4], row[b*4:b*4+4])
}
