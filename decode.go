package graymix

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/gogpu/graymix/internal/pngio"
	"github.com/gogpu/graymix/internal/reduce"
)

// Decode reads a complete PNG stream from r and reduces it to grayscale.
//
// Any color type and bit depth is accepted. Samples are first normalized to
// 8 bits per channel (palettes expanded to RGB, tRNS expanded to an alpha
// channel, 16-bit samples truncated to their high byte) and then reduced:
//
//   - GRAY: the sample itself.
//   - GRAY+ALPHA: 0 if alpha is 0, otherwise the gray sample.
//   - RGB: (77*R + 150*G + 29*B + 128) >> 8.
//   - RGBA: 0 if alpha is 0, otherwise the RGB luma.
//
// Alpha is a binary gate: partially transparent pixels keep their full
// value instead of being premultiplied toward black.
//
// A failing reader yields ErrIO; a malformed stream yields ErrDecode.
// No partial buffer is returned.
func Decode(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read png: %w", ErrIO, err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an in-memory stream.
func DecodeBytes(data []byte) (*Buffer, error) {
	hdr, err := pngio.ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != hdr.Width || bounds.Dy() != hdr.Height {
		return nil, fmt.Errorf("%w: decoded %dx%d image for %dx%d header",
			ErrDecode, bounds.Dx(), bounds.Dy(), hdr.Width, hdr.Height)
	}

	layout := hdr.Layout()
	if !layout.IsValid() {
		return nil, fmt.Errorf("%w: %w", ErrDecode, reduce.ErrUnsupportedLayout)
	}

	out, err := NewBuffer(hdr.Width, hdr.Height)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	scan := make([]uint8, layout.RowBytes(hdr.Width))
	norm := newNormalizer(img, layout)
	for y := range hdr.Height {
		norm.row(scan, y)
		if err := reduce.Row(layout, out.row(y), scan); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}

	Logger().Debug("graymix: decoded png",
		"width", hdr.Width,
		"height", hdr.Height,
		"color_type", hdr.ColorType.String(),
		"bit_depth", hdr.BitDepth,
		"transparent", hdr.Transparent,
		"layout", layout.String())
	return out, nil
}

// normalizer writes 8-bit scanlines of a decoded image in a fixed layout.
type normalizer struct {
	img     image.Image
	layout  reduce.Layout
	palette [][4]uint8 // non-premultiplied palette entries, for *image.Paletted
}

func newNormalizer(img image.Image, layout reduce.Layout) *normalizer {
	n := &normalizer{img: img, layout: layout}
	if p, ok := img.(*image.Paletted); ok {
		n.palette = make([][4]uint8, len(p.Palette))
		for i, c := range p.Palette {
			n.palette[i] = nrgba8(c)
		}
	}
	return n
}

// row fills dst with row y of the image. Pixel formats produced by
// image/png are read directly so that non-premultiplied color survives
// partial transparency; anything else goes through color.NRGBA64Model.
func (n *normalizer) row(dst []uint8, y int) {
	b := n.img.Bounds()
	w := b.Dx()
	py := b.Min.Y + y

	switch img := n.img.(type) {
	case *image.Gray:
		off := img.PixOffset(b.Min.X, py)
		for x, v := range img.Pix[off : off+w] {
			n.put(dst, x, v, v, v, 0xff)
		}
	case *image.Gray16:
		off := img.PixOffset(b.Min.X, py)
		for x := range w {
			v := img.Pix[off+2*x]
			n.put(dst, x, v, v, v, 0xff)
		}
	case *image.NRGBA:
		off := img.PixOffset(b.Min.X, py)
		for x := range w {
			p := img.Pix[off+4*x : off+4*x+4]
			n.put(dst, x, p[0], p[1], p[2], p[3])
		}
	case *image.NRGBA64:
		off := img.PixOffset(b.Min.X, py)
		for x := range w {
			p := img.Pix[off+8*x : off+8*x+8]
			n.put(dst, x, p[0], p[2], p[4], p[6])
		}
	case *image.RGBA:
		// image/png only produces opaque RGBA images.
		off := img.PixOffset(b.Min.X, py)
		for x := range w {
			p := img.Pix[off+4*x : off+4*x+4]
			n.put(dst, x, p[0], p[1], p[2], p[3])
		}
	case *image.RGBA64:
		off := img.PixOffset(b.Min.X, py)
		for x := range w {
			p := img.Pix[off+8*x : off+8*x+8]
			n.put(dst, x, p[0], p[2], p[4], p[6])
		}
	case *image.Paletted:
		off := img.PixOffset(b.Min.X, py)
		for x, idx := range img.Pix[off : off+w] {
			c := [4]uint8{0, 0, 0, 0xff}
			if int(idx) < len(n.palette) {
				c = n.palette[idx]
			}
			n.put(dst, x, c[0], c[1], c[2], c[3])
		}
	default:
		for x := range w {
			c := nrgba8(img.At(b.Min.X+x, py))
			n.put(dst, x, c[0], c[1], c[2], c[3])
		}
	}
}

// put stores one pixel at index x of a scanline in the normalizer's layout.
// Gray layouts take the red channel, which image/png replicates from gray.
func (n *normalizer) put(dst []uint8, x int, r, g, b, a uint8) {
	switch n.layout {
	case reduce.Gray:
		dst[x] = r
	case reduce.GrayAlpha:
		dst[2*x] = r
		dst[2*x+1] = a
	case reduce.RGB:
		p := dst[3*x : 3*x+3]
		p[0], p[1], p[2] = r, g, b
	case reduce.RGBA:
		p := dst[4*x : 4*x+4]
		p[0], p[1], p[2], p[3] = r, g, b, a
	}
}

// nrgba8 converts c to non-premultiplied 8-bit channels, keeping the high
// byte of 16-bit values.
func nrgba8(c color.Color) [4]uint8 {
	switch c := c.(type) {
	case color.NRGBA:
		return [4]uint8{c.R, c.G, c.B, c.A}
	case color.RGBA:
		if c.A == 0xff {
			return [4]uint8{c.R, c.G, c.B, c.A}
		}
	}
	n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
	return [4]uint8{uint8(n.R >> 8), uint8(n.G >> 8), uint8(n.B >> 8), uint8(n.A >> 8)}
}
