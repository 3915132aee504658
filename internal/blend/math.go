// Package blend provides the integer arithmetic for grayscale compositing.
//
// All results are bit-exact and divide by 255, so alpha 0 yields the first
// operand and alpha 255 the second.
package blend

// Mix blends a toward b by alpha:
//
//	((255 - alpha) * a + alpha * b + 127) / 255
//
// The +127 bias turns the truncating division into round-to-nearest.
func Mix(a, b, alpha uint8) uint8 {
	return uint8(div255Round(uint32(inv255(alpha))*uint32(a) + uint32(alpha)*uint32(b))) //nolint:gosec // result <= 255
}

// MulDiv255 multiplies v by m and divides by 255, truncating.
//
// m == 255 preserves v exactly and m == 0 yields 0.
func MulDiv255(v, m uint8) uint8 {
	return uint8(uint32(v) * uint32(m) / 255) //nolint:gosec // result <= 255
}

// div255Round divides x by 255 rounding to nearest.
// x must not exceed 255*255.
func div255Round(x uint32) uint32 {
	return (x + 127) / 255
}

// inv255 computes 255 - x (inverse alpha).
func inv255(x uint8) uint8 {
	return 255 - x
}
