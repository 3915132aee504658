package graymix

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
)

// Buffer is an immutable 8-bit grayscale image.
//
// Samples are stored row by row, top to bottom, with no padding, so
// len(samples) == width*height always holds. Every operation that
// transforms a Buffer returns a new one; no exported method mutates it.
// A Buffer is therefore safe for concurrent use.
//
// A Buffer also serves as an alpha mask, where each sample is a blend
// weight in [0, 255].
type Buffer struct {
	width  int
	height int
	pix    []uint8
}

// NewBuffer creates a black buffer with the given dimensions.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{
		width:  width,
		height: height,
		pix:    make([]uint8, width*height),
	}, nil
}

// FromSamples creates a buffer holding a copy of samples.
// len(samples) must equal width*height.
func FromSamples(width, height int, samples []uint8) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if len(samples) != len(b.pix) {
		return nil, fmt.Errorf("%w: %d samples for %dx%d", ErrInvalidDimensions, len(samples), width, height)
	}
	copy(b.pix, samples)
	return b, nil
}

// Filled creates a buffer with every sample set to value.
func Filled(width, height int, value uint8) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if value != 0 {
		for i := range b.pix {
			b.pix[i] = value
		}
	}
	return b, nil
}

// FromImage converts img to grayscale with the standard color.GrayModel.
// Decoded PNG input should go through Decode instead, which applies the
// package's reduction policy.
func FromImage(img image.Image) (*Buffer, error) {
	bounds := img.Bounds()
	b, err := NewBuffer(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if g, ok := img.(*image.Gray); ok {
		for y := range b.height {
			off := g.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(b.row(y), g.Pix[off:off+b.width])
		}
		return b, nil
	}
	for y := range b.height {
		row := b.row(y)
		for x := range row {
			row[x] = color.GrayModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray).Y
		}
	}
	return b, nil
}

// Width returns the width of the buffer.
func (b *Buffer) Width() int { return b.width }

// Height returns the height of the buffer.
func (b *Buffer) Height() int { return b.height }

// Size returns the dimensions as an image.Point.
func (b *Buffer) Size() image.Point { return image.Pt(b.width, b.height) }

// Len returns the number of samples.
func (b *Buffer) Len() int { return len(b.pix) }

// Sample returns the sample at (x, y).
// Returns 0 for coordinates outside the buffer.
func (b *Buffer) Sample(x, y int) uint8 {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return 0
	}
	return b.pix[y*b.width+x]
}

// Samples returns a copy of the samples in row-major order.
func (b *Buffer) Samples() []uint8 {
	return bytes.Clone(b.pix)
}

// Equal reports whether both buffers have the same size and samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	return b.width == other.width && b.height == other.height && bytes.Equal(b.pix, other.pix)
}

// ToImage returns a copy of the buffer as an *image.Gray.
func (b *Buffer) ToImage() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	copy(img.Pix, b.pix)
	return img
}

// At implements the image.Image interface.
func (b *Buffer) At(x, y int) color.Color {
	return color.Gray{Y: b.Sample(x, y)}
}

// Bounds implements the image.Image interface.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements the image.Image interface.
func (b *Buffer) ColorModel() color.Model {
	return color.GrayModel
}

// String returns a short description such as "Buffer(512x512)".
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%dx%d)", b.width, b.height)
}

// row returns the writable samples of row y. Only constructors use it,
// before the buffer escapes.
func (b *Buffer) row(y int) []uint8 {
	return b.pix[y*b.width : (y+1)*b.width]
}

// valid reports whether the buffer satisfies its shape invariant.
// The zero Buffer and nil are not valid.
func (b *Buffer) valid() bool {
	return b != nil && b.width > 0 && b.height > 0 && len(b.pix) == b.width*b.height
}
