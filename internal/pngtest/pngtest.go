// Package pngtest builds raw PNG streams for tests.
//
// The standard encoder never emits GRAY+ALPHA images, tRNS chunks or
// sub-byte gray depths, so decoder tests assemble those streams chunk by
// chunk here. Helpers call tb.Fatalf on failure rather than returning errors.
package pngtest

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/zlib"
)

// Image describes a PNG stream to assemble.
type Image struct {
	Width     int
	Height    int
	BitDepth  uint8
	ColorType uint8

	// Palette holds RGB triples for color type 3.
	Palette []byte

	// Transparency is the tRNS payload. Nil omits the chunk.
	Transparency []byte

	// Rows are packed, unfiltered scanlines without the filter byte.
	Rows [][]byte
}

// Encode assembles img into a PNG byte stream.
func Encode(tb testing.TB, img Image) []byte {
	tb.Helper()

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], uint32(img.Width))  //nolint:gosec // test input
	binary.BigEndian.PutUint32(ihdr[4:8], uint32(img.Height)) //nolint:gosec // test input
	ihdr[8] = img.BitDepth
	ihdr[9] = img.ColorType
	Chunk(&out, "IHDR", ihdr)

	if img.Palette != nil {
		Chunk(&out, "PLTE", img.Palette)
	}
	if img.Transparency != nil {
		Chunk(&out, "tRNS", img.Transparency)
	}

	var raw bytes.Buffer
	zw := zlib.NewWriter(&raw)
	for _, row := range img.Rows {
		if _, err := zw.Write(append([]byte{0}, row...)); err != nil {
			tb.Fatalf("pngtest: compress row: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		tb.Fatalf("pngtest: close zlib: %v", err)
	}
	Chunk(&out, "IDAT", raw.Bytes())
	Chunk(&out, "IEND", nil)
	return out.Bytes()
}

// Chunk appends one chunk with a valid CRC to buf.
func Chunk(buf *bytes.Buffer, typ string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data))) //nolint:gosec // test input
	buf.Write(n[:])
	start := buf.Len()
	buf.WriteString(typ)
	buf.Write(data)
	binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(buf.Bytes()[start:]))
	buf.Write(n[:])
}
