package pixel

import (
	"bytes"
	"errors"
	"testing"
)

func TestLayoutStride(t *testing.T) {
	tests := []struct {
		layout Layout
		w      int
		want   int
	}{
		{Layout{Depth: 3, Padded: true}, 1, 4},
		{Layout{Depth: 3, Padded: true}, 2, 8},
		{Layout{Depth: 3, Padded: true}, 3, 12},
		{Layout{Depth: 3, Padded: true}, 5, 16},
		{Layout{Depth: 3}, 5, 15},
		{Layout{Depth: 4, Padded: true}, 5, 20},
	}

	for _, tt := range tests {
		if got := tt.layout.Stride(tt.w); got != tt.want {
			t.Errorf("Stride(%d) with depth %d padded=%v = %d, want %d",
				tt.w, tt.layout.Depth, tt.layout.Padded, got, tt.want)
		}
	}
}

func TestUnpackBGR24Padded(t *testing.T) {
	// 2x2 BGR, rows padded from 6 to 8 bytes, bottom row first.
	src := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0xEE, 0xEE,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0xEE, 0xEE,
	}
	layout := Layout{Channels: BGRA, Depth: 3, Padded: true}

	got, err := Unpack(src, 2, 2, layout, FlipNone)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	want := []byte{
		0x03, 0x02, 0x01, 0xFF, 0x06, 0x05, 0x04, 0xFF,
		0x13, 0x12, 0x11, 0xFF, 0x16, 0x15, 0x14, 0xFF,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Unpack =\n %v\nwant\n %v", got, want)
	}
}

func TestUnpackMissingLastRowPadding(t *testing.T) {
	// The last row's padding may be omitted.
	src := []byte{
		0x01, 0x02, 0x03, 0xEE,
		0x04, 0x05, 0x06,
	}
	layout := Layout{Channels: BGRA, Depth: 3, Padded: true}

	got, err := Unpack(src, 1, 2, layout, FlipNone)
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	want := []byte{0x03, 0x02, 0x01, 0xFF, 0x06, 0x05, 0x04, 0xFF}
	if !bytes.Equal(got, want) {
		t.Errorf("Unpack = %v, want %v", got, want)
	}
}

func TestUnpackRGBATopDown(t *testing.T) {
	// 1x2 RGBA stored top row first.
	src := []byte{
		0xAA, 0xBB, 0xCC, 0xDD, // top
		0x11, 0x22, 0x33, 0x44, // bottom
	}
	layout := Layout{Channels: RGBA, Depth: 4}

	got, err := Unpack(src, 1, 2, layout, FlipToBottomLeft(TopLeftToBottomRight))
	if err != nil {
		t.Fatalf("Unpack failed: %v", err)
	}
	want := []byte{0x11, 0x22, 0x33, 0x44, 0xAA, 0xBB, 0xCC, 0xDD}
	if !bytes.Equal(got, want) {
		t.Errorf("Unpack = %v, want %v", got, want)
	}
}

func TestUnpackErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		w, h   int
		layout Layout
		want   error
	}{
		{"short source", make([]byte, 7), 2, 1, Layout{Depth: 4}, ErrShortSource},
		{"bad depth", make([]byte, 16), 2, 2, Layout{Depth: 2}, ErrUnsupportedDepth},
		{"zero width", nil, 0, 2, Layout{Depth: 4}, ErrInvalidDimensions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unpack(tt.src, tt.w, tt.h, tt.layout, FlipNone)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPackBGR24Padded(t *testing.T) {
	pix := []byte{
		0x03, 0x02, 0x01, 0x99, 0x06, 0x05, 0x04, 0x99,
		0x13, 0x12, 0x11, 0x99, 0x16, 0x15, 0x14, 0x99,
	}
	layout := Layout{Channels: BGRA, Depth: 3, Padded: true}

	dst := make([]byte, layout.Size(2, 2))
	if err := Pack(dst, pix, 2, 2, layout, FlipNone); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	want := []byte{
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x00, 0x00,
		0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x00, 0x00,
	}
	if !bytes.Equal(dst, want) {
		t.Errorf("Pack =\n %v\nwant\n %v", dst, want)
	}
}

func TestPackErrors(t *testing.T) {
	layout := Layout{Channels: RGBA, Depth: 4}

	if err := Pack(make([]byte, 16), make([]byte, 12), 2, 2, layout, FlipNone); !errors.Is(err, ErrPixelSizeMismatch) {
		t.Errorf("expected ErrPixelSizeMismatch, got %v", err)
	}
	if err := Pack(make([]byte, 15), make([]byte, 16), 2, 2, layout, FlipNone); !errors.Is(err, ErrShortDestination) {
		t.Errorf("expected ErrShortDestination, got %v", err)
	}
	if err := Pack(make([]byte, 16), make([]byte, 16), 2, 2, Layout{Depth: 5}, FlipNone); !errors.Is(err, ErrUnsupportedDepth) {
		t.Errorf("expected ErrUnsupportedDepth, got %v", err)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	b := gradient(5, 3)
	layouts := []Layout{
		{Channels: BGRA, Depth: 4},
		{Channels: RGBA, Depth: 4},
		{Channels: BGRA, Depth: 4, Padded: true},
	}

	for _, l := range layouts {
		for _, o := range allOrders {
			flip := FlipToBottomLeft(o)
			stored := make([]byte, l.Size(5, 3))
			if err := Pack(stored, b.Pix, 5, 3, l, flip); err != nil {
				t.Fatalf("Pack(%+v, %s) failed: %v", l, o, err)
			}
			got, err := Unpack(stored, 5, 3, l, flip)
			if err != nil {
				t.Fatalf("Unpack(%+v, %s) failed: %v", l, o, err)
			}
			if !bytes.Equal(got, b.Pix) {
				t.Errorf("round trip through %+v in order %s changed pixels", l, o)
			}
		}
	}
}

func TestPackHonorsOrder(t *testing.T) {
	// 2x1 canonical image; a bottom-right order stores the right pixel first.
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	layout := Layout{Channels: RGBA, Depth: 4}

	dst := make([]byte, 8)
	if err := Pack(dst, pix, 2, 1, layout, FlipToBottomLeft(BottomRightToTopLeft)); err != nil {
		t.Fatalf("Pack failed: %v", err)
	}
	want := []byte{5, 6, 7, 8, 1, 2, 3, 4}
	if !bytes.Equal(dst, want) {
		t.Errorf("Pack = %v, want %v", dst, want)
	}
}
