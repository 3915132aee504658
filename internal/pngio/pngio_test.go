package pngio

import (
	"bytes"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/klauspost/compress/zlib"

	"github.com/gogpu/graymix/internal/pngtest"
	"github.com/gogpu/graymix/internal/reduce"
)

func TestReadHeader_Layouts(t *testing.T) {
	tests := []struct {
		name   string
		img    pngtest.Image
		layout reduce.Layout
	}{
		{
			name:   "gray8",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 0, Rows: [][]byte{{7}}},
			layout: reduce.Gray,
		},
		{
			name:   "gray1 with tRNS",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 1, ColorType: 0, Transparency: []byte{0, 1}, Rows: [][]byte{{0x80}}},
			layout: reduce.GrayAlpha,
		},
		{
			name:   "rgb8",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 2, Rows: [][]byte{{1, 2, 3}}},
			layout: reduce.RGB,
		},
		{
			name:   "palette",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 3, Palette: []byte{9, 9, 9}, Rows: [][]byte{{0}}},
			layout: reduce.RGB,
		},
		{
			name:   "palette with tRNS",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 3, Palette: []byte{9, 9, 9}, Transparency: []byte{0}, Rows: [][]byte{{0}}},
			layout: reduce.RGBA,
		},
		{
			name:   "gray alpha",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 4, Rows: [][]byte{{1, 2}}},
			layout: reduce.GrayAlpha,
		},
		{
			name:   "rgba16",
			img:    pngtest.Image{Width: 1, Height: 1, BitDepth: 16, ColorType: 6, Rows: [][]byte{make([]byte, 8)}},
			layout: reduce.RGBA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ReadHeader(pngtest.Encode(t, tt.img))
			if err != nil {
				t.Fatalf("ReadHeader() error = %v", err)
			}
			if h.Width != tt.img.Width || h.Height != tt.img.Height {
				t.Errorf("size = %dx%d, want %dx%d", h.Width, h.Height, tt.img.Width, tt.img.Height)
			}
			if h.BitDepth != tt.img.BitDepth {
				t.Errorf("BitDepth = %d, want %d", h.BitDepth, tt.img.BitDepth)
			}
			if got := h.Layout(); got != tt.layout {
				t.Errorf("Layout() = %s, want %s", got, tt.layout)
			}
		})
	}
}

func TestReadHeader_Errors(t *testing.T) {
	valid := pngtest.Encode(t, pngtest.Image{Width: 2, Height: 1, BitDepth: 8, ColorType: 0, Rows: [][]byte{{1, 2}}})

	badCRC := bytes.Clone(valid)
	badCRC[len(Signature)+8+13] ^= 0xff // first byte of the IHDR CRC

	var noIHDR bytes.Buffer
	noIHDR.WriteString(Signature)
	pngtest.Chunk(&noIHDR, "IDAT", []byte{0})

	var noIDAT bytes.Buffer
	noIDAT.WriteString(Signature)
	pngtest.Chunk(&noIDAT, "IHDR", valid[len(Signature)+8:len(Signature)+8+13])
	pngtest.Chunk(&noIDAT, "IEND", nil)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrSignature},
		{"not png", []byte("GIF89a........."), ErrSignature},
		{"truncated", valid[:len(Signature)+10], ErrTruncated},
		{"bad crc", badCRC, ErrChecksum},
		{"no IHDR", noIHDR.Bytes(), ErrMissingIHDR},
		{"no IDAT", noIDAT.Bytes(), ErrNoImageData},
		{"bad depth", pngtest.Encode(t, pngtest.Image{Width: 1, Height: 1, BitDepth: 4, ColorType: 2, Rows: [][]byte{{0}}}), ErrBadHeader},
		{"bad color type", pngtest.Encode(t, pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 5, Rows: [][]byte{{0}}}), ErrBadHeader},
		{"zero width", pngtest.Encode(t, pngtest.Image{Width: 0, Height: 1, BitDepth: 8, ColorType: 0}), ErrBadHeader},
		{"tRNS with alpha", pngtest.Encode(t, pngtest.Image{Width: 1, Height: 1, BitDepth: 8, ColorType: 6, Transparency: []byte{0, 0}, Rows: [][]byte{{0, 0, 0, 0}}}), ErrBadHeader},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(tt.data)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadHeader() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGray8Writer_RoundTrip(t *testing.T) {
	const w, h = 37, 11
	var out bytes.Buffer
	gw, err := NewGray8Writer(&out, w, h, zlib.DefaultCompression)
	if err != nil {
		t.Fatalf("NewGray8Writer() error = %v", err)
	}
	row := make([]uint8, w)
	for y := range h {
		for x := range row {
			row[x] = uint8(x*7 + y*3) //nolint:gosec // wraps on purpose
		}
		if err := gw.WriteRow(row); err != nil {
			t.Fatalf("WriteRow(%d) error = %v", y, err)
		}
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	hdr, err := ReadHeader(out.Bytes())
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if hdr.ColorType != ColorGray || hdr.BitDepth != 8 || hdr.Interlaced {
		t.Errorf("header = %+v, want 8-bit non-interlaced gray", hdr)
	}

	img, err := png.Decode(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	gray, ok := img.(*image.Gray)
	if !ok {
		t.Fatalf("png.Decode() returned %T, want *image.Gray", img)
	}
	for y := range h {
		for x := range w {
			want := uint8(x*7 + y*3) //nolint:gosec // wraps on purpose
			if got := gray.GrayAt(x, y).Y; got != want {
				t.Fatalf("pixel (%d, %d) = %d, want %d", x, y, got, want)
			}
		}
	}
}

func TestGray8Writer_LargeImageSplitsIDAT(t *testing.T) {
	const w, h = 512, 512
	var out bytes.Buffer
	gw, err := NewGray8Writer(&out, w, h, zlib.NoCompression)
	if err != nil {
		t.Fatalf("NewGray8Writer() error = %v", err)
	}
	row := make([]uint8, w)
	for range h {
		if err := gw.WriteRow(row); err != nil {
			t.Fatal(err)
		}
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}

	s, err := newChunkScanner(out.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	idats := 0
	for {
		c, err := s.next()
		if err != nil {
			break
		}
		if c.typ == chunkIDAT {
			idats++
		}
	}
	if idats < 2 {
		t.Errorf("IDAT chunks = %d, want several for %d bytes of stored data", idats, w*h)
	}
	if _, err := png.Decode(bytes.NewReader(out.Bytes())); err != nil {
		t.Errorf("png.Decode() error = %v", err)
	}
}

func TestGray8Writer_Errors(t *testing.T) {
	if _, err := NewGray8Writer(&bytes.Buffer{}, 0, 1, zlib.DefaultCompression); !errors.Is(err, ErrBadHeader) {
		t.Errorf("zero width: error = %v, want ErrBadHeader", err)
	}
	if _, err := NewGray8Writer(&bytes.Buffer{}, 1, 1, 42); err == nil {
		t.Error("invalid level: error = nil")
	}

	gw, err := NewGray8Writer(&bytes.Buffer{}, 2, 2, zlib.BestSpeed)
	if err != nil {
		t.Fatal(err)
	}
	if err := gw.WriteRow([]uint8{1}); !errors.Is(err, ErrRowLength) {
		t.Errorf("short row: error = %v, want ErrRowLength", err)
	}
	if err := gw.WriteRow([]uint8{1, 2}); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); !errors.Is(err, ErrRowCount) {
		t.Errorf("Close() after 1 of 2 rows: error = %v, want ErrRowCount", err)
	}
	if err := gw.WriteRow([]uint8{1, 2}); !errors.Is(err, ErrClosed) {
		t.Errorf("WriteRow() after Close: error = %v, want ErrClosed", err)
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestGray8Writer_SinkFailure(t *testing.T) {
	if _, err := NewGray8Writer(failWriter{}, 1, 1, zlib.DefaultCompression); err == nil {
		t.Error("NewGray8Writer() on failing sink returned nil error")
	}
}
