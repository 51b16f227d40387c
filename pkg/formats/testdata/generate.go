//go:build ignore

// This program generates hand-assembled sample images for unit tests.
// Every file holds the same 3x2 picture stored a different way.
// Run with: go run generate.go
package main

import (
	"bytes"
	"encoding/binary"
	"os"
)

// Picture as seen on screen, top row first, RGB.
var (
	red    = [3]byte{0xFF, 0x00, 0x00}
	green  = [3]byte{0x00, 0xFF, 0x00}
	blue   = [3]byte{0x00, 0x00, 0xFF}
	white  = [3]byte{0xFF, 0xFF, 0xFF}
	yellow = [3]byte{0xFF, 0xFF, 0x00}

	top    = [][3]byte{red, green, blue}
	bottom = [][3]byte{white, white, yellow}
)

func main() {
	write("sample_topdown24.bmp", bmpTopDown24())
	write("sample_topright24_rle.tga", tgaTopRightRLE())
	write("sample_dx10.dds", ddsDX10())
}

func write(name string, data []byte) {
	if err := os.WriteFile(name, data, 0644); err != nil {
		panic(err)
	}
	println("Generated", name+":", len(data), "bytes")
}

// bmpTopDown24 writes a 24-bit BMP with negative height and padded rows.
func bmpTopDown24() []byte {
	var buf bytes.Buffer

	const stride = 12 // 9 bytes of pixels + 3 padding
	buf.WriteString("BM")
	binary.Write(&buf, binary.LittleEndian, uint32(54+2*stride)) // file size
	binary.Write(&buf, binary.LittleEndian, uint32(0))           // reserved
	binary.Write(&buf, binary.LittleEndian, uint32(54))          // pixel offset

	binary.Write(&buf, binary.LittleEndian, uint32(40)) // info header size
	binary.Write(&buf, binary.LittleEndian, int32(3))   // width
	binary.Write(&buf, binary.LittleEndian, int32(-2))  // height (top-down)
	binary.Write(&buf, binary.LittleEndian, uint16(1))  // planes
	binary.Write(&buf, binary.LittleEndian, uint16(24)) // bit count
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // BI_RGB
	binary.Write(&buf, binary.LittleEndian, uint32(2*stride))
	buf.Write(make([]byte, 16)) // resolution, palette counts

	for _, row := range [][][3]byte{top, bottom} {
		for _, px := range row {
			buf.Write([]byte{px[2], px[1], px[0]})
		}
		buf.Write([]byte{0, 0, 0})
	}
	return buf.Bytes()
}

// tgaTopRightRLE writes a 24-bit RLE TGA whose descriptor selects the
// top-right origin, so each row is stored right to left.
func tgaTopRightRLE() []byte {
	var buf bytes.Buffer

	buf.WriteByte(4)                                   // id length
	buf.WriteByte(0)                                   // no color map
	buf.WriteByte(10)                                  // RLE true-color
	buf.Write(make([]byte, 5))                         // color map spec
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // x origin
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // y origin
	binary.Write(&buf, binary.LittleEndian, uint16(3)) // width
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // height
	buf.WriteByte(24)                                  // bits per pixel
	buf.WriteByte(0x30)                                // descriptor bits 5 and 4
	buf.WriteString("test")                            // id field

	bgr := func(px [3]byte) []byte { return []byte{px[2], px[1], px[0]} }

	// Top row reversed: blue, green, red as one literal packet.
	buf.WriteByte(0x02)
	buf.Write(bgr(blue))
	buf.Write(bgr(green))
	buf.Write(bgr(red))

	// Bottom row reversed: yellow as a literal, then white twice as a repeat.
	buf.WriteByte(0x00)
	buf.Write(bgr(yellow))
	buf.WriteByte(0x81)
	buf.Write(bgr(white))
	return buf.Bytes()
}

// ddsDX10 writes a DX10 DDS with one R8G8B8A8_UNORM_SRGB surface, top row first.
func ddsDX10() []byte {
	var buf bytes.Buffer

	buf.WriteString("DDS ")
	binary.Write(&buf, binary.LittleEndian, uint32(124))    // header size
	binary.Write(&buf, binary.LittleEndian, uint32(0x100F)) // caps|height|width|pitch|pixelformat
	binary.Write(&buf, binary.LittleEndian, uint32(2))      // height
	binary.Write(&buf, binary.LittleEndian, uint32(3))      // width
	binary.Write(&buf, binary.LittleEndian, uint32(12))     // pitch
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // depth
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // mip count
	buf.Write(make([]byte, 44))                             // reserved

	binary.Write(&buf, binary.LittleEndian, uint32(32))  // pixel format size
	binary.Write(&buf, binary.LittleEndian, uint32(0x4)) // DDPF_FOURCC
	buf.WriteString("DX10")
	buf.Write(make([]byte, 20)) // bit count and masks

	binary.Write(&buf, binary.LittleEndian, uint32(0x1000)) // DDSCAPS_TEXTURE
	buf.Write(make([]byte, 16))                             // caps2-4, reserved

	binary.Write(&buf, binary.LittleEndian, uint32(29)) // DXGI_FORMAT_R8G8B8A8_UNORM_SRGB
	binary.Write(&buf, binary.LittleEndian, uint32(3))  // texture 2D
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // misc flags
	binary.Write(&buf, binary.LittleEndian, uint32(1))  // array size
	binary.Write(&buf, binary.LittleEndian, uint32(0))  // misc flags 2

	for _, row := range [][][3]byte{top, bottom} {
		for _, px := range row {
			buf.Write([]byte{px[0], px[1], px[2], 0xFF})
		}
	}
	return buf.Bytes()
}
