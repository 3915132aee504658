package graymix

import (
	"fmt"

	"github.com/gogpu/graymix/internal/blend"
)

// Blend composites a and b using alpha as a per-pixel weight:
//
//	out = ((255 - alpha) * a + alpha * b + 127) / 255
//
// Alpha 0 yields a exactly and alpha 255 yields b exactly. All three
// buffers must have the same dimensions; otherwise Blend returns the
// *SizeMismatch from CheckOperands and no output.
func Blend(a, b, alpha *Buffer) (*Buffer, error) {
	if err := CheckOperands(
		Operand{Name: "image A", Buffer: a},
		Operand{Name: "image B", Buffer: b},
		Operand{Name: "alpha", Buffer: alpha},
	); err != nil {
		return nil, err
	}
	if !a.valid() || !b.valid() || !alpha.valid() {
		return nil, fmt.Errorf("%w: blend operand", ErrInvalidDimensions)
	}

	out, err := NewBuffer(a.width, a.height)
	if err != nil {
		return nil, err
	}
	blend.MixRow(out.pix, a.pix, b.pix, alpha.pix)
	return out, nil
}

// Multiply scales img by mask with truncating division:
//
//	out = img * mask / 255
//
// Mask 255 keeps a pixel exactly and mask 0 makes it black. Size
// mismatches are reported as in Blend.
func Multiply(img, mask *Buffer) (*Buffer, error) {
	if err := CheckOperands(
		Operand{Name: "image", Buffer: img},
		Operand{Name: "mask", Buffer: mask},
	); err != nil {
		return nil, err
	}
	if !img.valid() || !mask.valid() {
		return nil, fmt.Errorf("%w: multiply operand", ErrInvalidDimensions)
	}

	out, err := NewBuffer(img.width, img.height)
	if err != nil {
		return nil, err
	}
	blend.MulRow(out.pix, img.pix, mask.pix)
	return out, nil
}

// CircularMask returns a binary mask: 255 inside the closed disk centered
// on the grid with radius 0.45*min(width, height), 0 outside.
func CircularMask(width, height int) (*Buffer, error) {
	r := circleRadius(width, height)
	return generate(width, height, func(x, y int) float64 {
		if centerDistance(width, height, x, y) <= r {
			return 1
		}
		return 0
	})
}

// ApplyCircularMask blacks out every pixel outside the disk of
// CircularMask and keeps the pixels inside unchanged. It is idempotent.
func ApplyCircularMask(img *Buffer) (*Buffer, error) {
	if !img.valid() {
		return nil, fmt.Errorf("%w: nil or empty image", ErrInvalidDimensions)
	}
	mask, err := CircularMask(img.width, img.height)
	if err != nil {
		return nil, err
	}
	return Multiply(img, mask)
}
