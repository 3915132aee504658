// Package graymix normalizes PNG images to 8-bit grayscale and composites
// grayscale images with per-pixel alpha masks.
//
// # Overview
//
// The central type is [Buffer], an immutable width x height grid of 8-bit
// samples. Buffers come from three places:
//
//   - [Decode] and [LoadPNG] reduce any PNG (every color type, bit depths
//     1 to 16, with or without transparency) to grayscale.
//   - Pattern generators such as [Circle], [RadialGradient] and
//     [RadialAlpha] render synthetic test images.
//   - Compositing operations ([Blend], [Multiply], [ApplyCircularMask])
//     return new buffers computed from existing ones.
//
// [Encode] and [SavePNG] write a buffer as an 8-bit grayscale,
// non-interlaced PNG.
//
// # Quick Start
//
//	a, _ := graymix.LoadPNG("a.png")
//	b, _ := graymix.LoadPNG("b.png")
//	alpha, _ := graymix.UniformAlpha(a.Width(), a.Height(), graymix.DefaultAlpha)
//
//	out, err := graymix.Blend(a, b, alpha)
//	if err != nil {
//	    var mismatch *graymix.SizeMismatch
//	    if errors.As(err, &mismatch) {
//	        // images have different sizes
//	    }
//	    return err
//	}
//	_ = graymix.SavePNG("out.png", out)
//
// # Arithmetic
//
// All compositing is integer arithmetic with fixed rounding so output is
// reproducible bit for bit:
//
//	blend:    ((255 - alpha) * a + alpha * b + 127) / 255
//	multiply: image * mask / 255
//	luma:     (77*R + 150*G + 29*B + 128) >> 8
//
// Generators evaluate in float64 and round half away from zero.
//
// # Transparency
//
// Decoding treats alpha as a binary gate. A fully transparent pixel becomes
// black; any other alpha value, however small, keeps the pixel's full gray
// or luma value. This is a known deviation from conventional alpha
// premultiplication and is kept for output compatibility.
//
// # Errors
//
// Failures match one of [ErrIO], [ErrDecode], [ErrEncode] or
// [ErrInvalidDimensions] with errors.Is. Size mismatches between operands
// are reported as [*SizeMismatch], which callers may treat as non-fatal.
package graymix
