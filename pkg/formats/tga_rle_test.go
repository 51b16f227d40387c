package formats

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Faultbox/texconv/pkg/pixel"
)

var (
	pxA = []byte{0x0A, 0x0A, 0x0A, 0xFF}
	pxB = []byte{0x0B, 0x0B, 0x0B, 0xFF}
	pxC = []byte{0x0C, 0x0C, 0x0C, 0xFF}
)

// row concatenates four-byte pixels.
func row(pixels ...[]byte) []byte {
	return bytes.Join(pixels, nil)
}

// repeated returns n copies of px.
func repeated(px []byte, n int) []byte {
	return bytes.Repeat(px, n)
}

func TestCompressRLERepeatRuns(t *testing.T) {
	for n := 2; n <= MaxRunLength; n++ {
		got, err := CompressRLE(repeated(pxA, n), n, 1)
		if err != nil {
			t.Fatalf("n=%d: CompressRLE failed: %v", n, err)
		}
		want := append([]byte{0x80 | byte(n-1)}, pxA...)
		if !bytes.Equal(got, want) {
			t.Fatalf("n=%d: got %v, want single packet %v", n, got, want)
		}
	}
}

func TestCompressRLELongRunSplits(t *testing.T) {
	got, err := CompressRLE(repeated(pxA, 200), 200, 1)
	if err != nil {
		t.Fatalf("CompressRLE failed: %v", err)
	}
	want := row([]byte{0xFF}, pxA, []byte{0xC7}, pxA) // 128 then 72
	if !bytes.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCompressRLEPackets(t *testing.T) {
	tests := []struct {
		name   string
		pixels []byte
		width  int
		height int
		want   []byte
	}{
		{
			name:   "single pixel",
			pixels: pxA,
			width:  1, height: 1,
			want: row([]byte{0x00}, pxA),
		},
		{
			name:   "all distinct",
			pixels: row(pxA, pxB, pxC),
			width:  3, height: 1,
			want: row([]byte{0x02}, pxA, pxB, pxC),
		},
		{
			name:   "literal stops before a run",
			pixels: row(pxA, pxB, pxB),
			width:  3, height: 1,
			want: row([]byte{0x00}, pxA, []byte{0x81}, pxB),
		},
		{
			name:   "run then literal",
			pixels: row(pxA, pxA, pxB, pxC),
			width:  4, height: 1,
			want: row([]byte{0x81}, pxA, []byte{0x01}, pxB, pxC),
		},
		{
			name:   "packets do not cross rows",
			pixels: repeated(pxA, 4),
			width:  2, height: 2,
			want: row([]byte{0x81}, pxA, []byte{0x81}, pxA),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CompressRLE(tt.pixels, tt.width, tt.height)
			if err != nil {
				t.Fatalf("CompressRLE failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompressRLELongLiteralSplits(t *testing.T) {
	// 130 distinct pixels: one literal of 128, one of 2.
	pix := make([]byte, 130*4)
	for i := 0; i < 130; i++ {
		pix[i*4] = byte(i)
		pix[i*4+3] = 0xFF
	}

	got, err := CompressRLE(pix, 130, 1)
	if err != nil {
		t.Fatalf("CompressRLE failed: %v", err)
	}
	if got[0] != 0x7F {
		t.Errorf("first packet header 0x%02X, want 0x7F", got[0])
	}
	if second := got[1+128*4]; second != 0x01 {
		t.Errorf("second packet header 0x%02X, want 0x01", second)
	}
	if len(got) != 2+130*4 {
		t.Errorf("expected %d bytes, got %d", 2+130*4, len(got))
	}
}

func TestCompressRLEInvalidInput(t *testing.T) {
	if _, err := CompressRLE(make([]byte, 12), 2, 2); !errors.Is(err, pixel.ErrPixelSizeMismatch) {
		t.Errorf("expected ErrPixelSizeMismatch, got %v", err)
	}
	if _, err := CompressRLE(nil, 0, 0); !errors.Is(err, pixel.ErrPixelSizeMismatch) {
		t.Errorf("expected ErrPixelSizeMismatch for empty image, got %v", err)
	}
}

func TestDecompressRLE(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		pixels int
		depth  int
		want   []byte
	}{
		{
			name:   "repeat",
			src:    []byte{0x84, 1, 2, 3, 4},
			pixels: 5, depth: 4,
			want: repeated([]byte{1, 2, 3, 4}, 5),
		},
		{
			name:   "literal 24-bit",
			src:    []byte{0x01, 1, 2, 3, 4, 5, 6},
			pixels: 2, depth: 3,
			want: []byte{1, 2, 3, 0xFF, 4, 5, 6, 0xFF},
		},
		{
			name:   "mixed",
			src:    row([]byte{0x00}, pxA, []byte{0x81}, pxB),
			pixels: 3, depth: 4,
			want: row(pxA, pxB, pxB),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecompressRLE(tt.src, tt.pixels, tt.depth)
			if err != nil {
				t.Fatalf("DecompressRLE failed: %v", err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecompressRLEErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    []byte
		pixels int
		depth  int
		want   error
	}{
		{"bad depth", []byte{0x80, 0, 0}, 1, 2, ErrUnsupportedVariant},
		{"no pixels", []byte{0x80, 0, 0, 0}, 0, 3, ErrInvalidHeader},
		{"overrun", []byte{0x81, 0, 0, 0, 0}, 1, 4, ErrMalformedStream},
		{"ends early", []byte{0x80, 0, 0, 0, 0, 0x80, 0, 0}, 3, 4, ErrMalformedStream},
		{"truncated repeat", []byte{0x00, 0, 0, 0, 0x80, 0}, 2, 3, ErrMalformedStream},
		{"stream too short", []byte{0x80, 0, 0, 0, 0}, 200, 4, ErrMalformedStream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecompressRLE(tt.src, tt.pixels, tt.depth)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRLERoundTrip(t *testing.T) {
	b := randomBuffer(37, 5, 5)
	// Quantize so that runs of equal pixels occur.
	for i := range b.Pix {
		b.Pix[i] &= 0x80
	}

	packed, err := CompressRLE(b.Pix, 37, 5)
	if err != nil {
		t.Fatalf("CompressRLE failed: %v", err)
	}
	got, err := DecompressRLE(packed, 37*5, 4)
	if err != nil {
		t.Fatalf("DecompressRLE failed: %v", err)
	}
	if !bytes.Equal(got, b.Pix) {
		t.Error("RLE round trip changed pixels")
	}
}
