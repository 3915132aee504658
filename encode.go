package graymix

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/gogpu/graymix/internal/pngio"
)

// CompressionLevel selects the zlib effort of the Encoder.
// Output is lossless at every level.
type CompressionLevel int

// Compression levels. The zero value is DefaultCompression.
const (
	DefaultCompression CompressionLevel = 0
	NoCompression      CompressionLevel = -1
	BestSpeed          CompressionLevel = -2
	BestCompression    CompressionLevel = -3
)

func (l CompressionLevel) zlibLevel() (int, error) {
	switch l {
	case DefaultCompression:
		return zlib.DefaultCompression, nil
	case NoCompression:
		return zlib.NoCompression, nil
	case BestSpeed:
		return zlib.BestSpeed, nil
	case BestCompression:
		return zlib.BestCompression, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression level %d", ErrEncode, int(l))
	}
}

// Encoder writes buffers as 8-bit grayscale, non-interlaced PNG streams.
// The zero Encoder uses DefaultCompression.
type Encoder struct {
	CompressionLevel CompressionLevel
}

// Encode writes b to w as PNG.
func (e *Encoder) Encode(w io.Writer, b *Buffer) error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrEncode)
	}
	return e.EncodeSamples(w, b.pix, b.width, b.height)
}

// EncodeSamples writes a raw row-major sample slice to w as PNG.
//
// It fails with ErrEncode when width or height is non-positive or when
// len(samples) != width*height. The stream is assembled in memory first,
// so nothing reaches w unless encoding succeeds; a failing w yields ErrIO.
func (e *Encoder) EncodeSamples(w io.Writer, samples []uint8, width, height int) error {
	data, err := e.encode(samples, width, height)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: write png: %w", ErrIO, err)
	}
	return nil
}

func (e *Encoder) encode(samples []uint8, width, height int) ([]byte, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrEncode, width, height)
	}
	if len(samples) != width*height {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrEncode, len(samples), width, height)
	}
	level, err := e.CompressionLevel.zlibLevel()
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(samples)/2 + 64)
	gw, err := pngio.NewGray8Writer(&out, width, height, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	for y := range height {
		if err := gw.WriteRow(samples[y*width : (y+1)*width]); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrEncode, y, err)
		}
	}
	if err := gw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	Logger().Debug("graymix: encoded png",
		"width", width,
		"height", height,
		"bytes", out.Len())
	return out.Bytes(), nil
}

// Encode writes b to w as an 8-bit grayscale PNG with default compression.
func Encode(w io.Writer, b *Buffer) error {
	var e Encoder
	return e.Encode(w, b)
}

// EncodeBytes returns b encoded as an 8-bit grayscale PNG.
func EncodeBytes(b *Buffer) ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil buffer", ErrEncode)
	}
	var e Encoder
	return e.encode(b.pix, b.width, b.height)
}

// EncodeSamples writes raw samples to w as an 8-bit grayscale PNG with
// default compression. See Encoder.EncodeSamples.
func EncodeSamples(w io.Writer, samples []uint8, width, height int) error {
	var e Encoder
	return e.EncodeSamples(w, samples, width, height)
}
