package pixel

import "fmt"

// ScanlineOrder describes which corner of the image the first stored pixel of a
// file corresponds to, and in which direction rows advance.
type ScanlineOrder uint8

// Scanline storage orders.
const (
	BottomLeftToTopRight ScanlineOrder = iota
	TopLeftToBottomRight
	BottomRightToTopLeft
	TopRightToBottomLeft
)

// String returns a short name for the order.
func (o ScanlineOrder) String() string {
	switch o {
	case BottomLeftToTopRight:
		return "bottom-left"
	case TopLeftToBottomRight:
		return "top-left"
	case BottomRightToTopLeft:
		return "bottom-right"
	case TopRightToBottomLeft:
		return "top-right"
	default:
		return fmt.Sprintf("ScanlineOrder(%d)", uint8(o))
	}
}

// FlipAxis is the index remapping needed to reconcile a scanline order with a
// canonical orientation.
type FlipAxis uint8

// Flip axes.
const (
	FlipNone FlipAxis = iota
	FlipX
	FlipY
	FlipBoth
)

// String returns a short name for the axis.
func (f FlipAxis) String() string {
	switch f {
	case FlipNone:
		return "none"
	case FlipX:
		return "x"
	case FlipY:
		return "y"
	case FlipBoth:
		return "xy"
	default:
		return fmt.Sprintf("FlipAxis(%d)", uint8(f))
	}
}

// FlipToBottomLeft returns the flip that brings pixels stored in order o into
// the bottom-left origin used by Buffer.
func FlipToBottomLeft(o ScanlineOrder) FlipAxis {
	switch o {
	case BottomRightToTopLeft:
		return FlipX
	case TopLeftToBottomRight:
		return FlipY
	case TopRightToBottomLeft:
		return FlipBoth
	default:
		return FlipNone
	}
}

// FlipToTopLeft returns the flip that brings pixels stored in order o into a
// top-left origin, the native order of formats such as DDS.
func FlipToTopLeft(o ScanlineOrder) FlipAxis {
	switch o {
	case BottomLeftToTopRight:
		return FlipY
	case TopRightToBottomLeft:
		return FlipX
	case BottomRightToTopLeft:
		return FlipBoth
	default:
		return FlipNone
	}
}

// Index maps the byte index i of a 4-byte pixel in a w x h row-major image to
// its flipped position. Applying the same axis twice returns i.
func (f FlipAxis) Index(i, w, h int) int {
	x := (i / BytesPerPixel) % w
	y := (i / BytesPerPixel) / w

	switch f {
	case FlipX:
		return y*w*BytesPerPixel + (w-1-x)*BytesPerPixel
	case FlipY:
		return (h-1-y)*w*BytesPerPixel + x*BytesPerPixel
	case FlipBoth:
		return (h-1-y)*w*BytesPerPixel + (w-1-x)*BytesPerPixel
	default:
		return i
	}
}

// Apply returns a copy of b with the flip applied.
func (f FlipAxis) Apply(b *Buffer) *Buffer {
	out := &Buffer{Width: b.Width, Height: b.Height, Pix: make([]byte, len(b.Pix))}
	w, h := int(b.Width), int(b.Height)
	for i := 0; i < len(b.Pix); i += BytesPerPixel {
		j := f.Index(i, w, h)
		copy(out.Pix[j:j+BytesPerPixel], b.Pix[i:i+BytesPerPixel])
	}
	return out
}
