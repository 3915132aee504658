package pngio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gogpu/graymix/internal/reduce"
)

// ColorType is the PNG IHDR color type.
type ColorType uint8

// PNG color types.
const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorPalette   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

// String returns a string representation of the color type.
func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "gray"
	case ColorRGB:
		return "rgb"
	case ColorPalette:
		return "palette"
	case ColorGrayAlpha:
		return "gray+alpha"
	case ColorRGBA:
		return "rgba"
	default:
		return fmt.Sprintf("ColorType(%d)", uint8(c))
	}
}

// Header errors.
var (
	// ErrMissingIHDR is returned when IHDR is not the first chunk.
	ErrMissingIHDR = errors.New("pngio: IHDR is not the first chunk")

	// ErrBadHeader is returned for an IHDR with invalid field values.
	ErrBadHeader = errors.New("pngio: invalid IHDR")

	// ErrNoImageData is returned when the stream ends before any IDAT chunk.
	ErrNoImageData = errors.New("pngio: no image data")
)

// Header describes the source image as declared by the chunks preceding
// the image data.
type Header struct {
	Width       int
	Height      int
	BitDepth    uint8
	ColorType   ColorType
	Interlaced  bool
	Transparent bool // a tRNS chunk is present
}

// allowedDepths lists the legal bit depths per color type.
var allowedDepths = map[ColorType][]uint8{
	ColorGray:      {1, 2, 4, 8, 16},
	ColorRGB:       {8, 16},
	ColorPalette:   {1, 2, 4, 8},
	ColorGrayAlpha: {8, 16},
	ColorRGBA:      {8, 16},
}

// Layout returns the normalized channel layout of the source image:
// palette images expand to RGB, and a tRNS chunk adds an alpha channel.
func (h Header) Layout() reduce.Layout {
	var l reduce.Layout
	switch h.ColorType {
	case ColorGray:
		l = reduce.Gray
	case ColorRGB, ColorPalette:
		l = reduce.RGB
	case ColorGrayAlpha:
		l = reduce.GrayAlpha
	case ColorRGBA:
		l = reduce.RGBA
	default:
		return reduce.Layout(255)
	}
	if h.Transparent {
		l = l.WithAlpha()
	}
	return l
}

// ReadHeader parses the chunks of data up to the first IDAT chunk.
// Every chunk visited has its CRC verified.
func ReadHeader(data []byte) (Header, error) {
	s, err := newChunkScanner(data)
	if err != nil {
		return Header{}, err
	}

	c, err := s.next()
	if err == io.EOF {
		return Header{}, ErrMissingIHDR
	}
	if err != nil {
		return Header{}, err
	}
	if c.typ != chunkIHDR {
		return Header{}, ErrMissingIHDR
	}
	h, err := parseIHDR(c.data)
	if err != nil {
		return Header{}, err
	}

	for {
		c, err := s.next()
		if err == io.EOF {
			return Header{}, ErrNoImageData
		}
		if err != nil {
			return Header{}, err
		}
		switch c.typ {
		case chunkTRNS:
			if h.ColorType == ColorGrayAlpha || h.ColorType == ColorRGBA {
				return Header{}, fmt.Errorf("%w: tRNS with %s color type", ErrBadHeader, h.ColorType)
			}
			h.Transparent = true
		case chunkIDAT:
			return h, nil
		case chunkIEND:
			return Header{}, ErrNoImageData
		}
	}
}

func parseIHDR(b []byte) (Header, error) {
	if len(b) != 13 {
		return Header{}, fmt.Errorf("%w: length %d", ErrBadHeader, len(b))
	}
	w := binary.BigEndian.Uint32(b[0:4])
	h := binary.BigEndian.Uint32(b[4:8])
	if w == 0 || h == 0 || w > maxChunkLength || h > maxChunkLength {
		return Header{}, fmt.Errorf("%w: dimensions %dx%d", ErrBadHeader, w, h)
	}
	hdr := Header{
		Width:     int(w),
		Height:    int(h),
		BitDepth:  b[8],
		ColorType: ColorType(b[9]),
	}

	depths, ok := allowedDepths[hdr.ColorType]
	if !ok {
		return Header{}, fmt.Errorf("%w: color type %d", ErrBadHeader, b[9])
	}
	valid := false
	for _, d := range depths {
		if d == hdr.BitDepth {
			valid = true
			break
		}
	}
	if !valid {
		return Header{}, fmt.Errorf("%w: bit depth %d for %s", ErrBadHeader, hdr.BitDepth, hdr.ColorType)
	}
	if b[10] != 0 || b[11] != 0 {
		return Header{}, fmt.Errorf("%w: compression method %d, filter method %d", ErrBadHeader, b[10], b[11])
	}
	switch b[12] {
	case 0:
	case 1:
		hdr.Interlaced = true
	default:
		return Header{}, fmt.Errorf("%w: interlace method %d", ErrBadHeader, b[12])
	}
	return hdr, nil
}
