package reduce

import "fmt"

// Integer luma weights. They sum to 256 so a gray RGB triple maps to itself.
const (
	lumaR = 77
	lumaG = 150
	lumaB = 29
)

// Luma returns the integer luma of an RGB triple:
// (77*R + 150*G + 29*B + 128) >> 8.
func Luma(r, g, b uint8) uint8 {
	y := (lumaR*uint32(r) + lumaG*uint32(g) + lumaB*uint32(b) + 128) >> 8
	return uint8(y) //nolint:gosec // max is (256*255+128)>>8 = 255
}

// Gate returns 0 when alpha is exactly zero and v otherwise.
//
// Alpha acts as a binary gate, not as a weight: a pixel with alpha 1 keeps
// its full value. This deviates from premultiplication on purpose and is
// relied on for output compatibility.
func Gate(v, alpha uint8) uint8 {
	if alpha == 0 {
		return 0
	}
	return v
}

// Row reduces one normalized scanline into dst.
//
// src must hold layout.RowBytes(len(dst)) bytes. dst and src must not overlap.
func Row(layout Layout, dst, src []uint8) error {
	if !layout.IsValid() {
		return fmt.Errorf("%w: %d", ErrUnsupportedLayout, layout)
	}
	if need := layout.RowBytes(len(dst)); len(src) < need {
		return fmt.Errorf("reduce: %s scanline has %d bytes, need %d", layout, len(src), need)
	}

	switch layout {
	case Gray:
		copy(dst, src)
	case GrayAlpha:
		for x := range dst {
			p := src[x*2 : x*2+2]
			dst[x] = Gate(p[0], p[1])
		}
	case RGB:
		for x := range dst {
			p := src[x*3 : x*3+3]
			dst[x] = Luma(p[0], p[1], p[2])
		}
	case RGBA:
		for x := range dst {
			p := src[x*4 : x*4+4]
			dst[x] = Gate(Luma(p[0], p[1], p[2]), p[3])
		}
	}
	return nil
}
