package blend

// MixRow blends a and b by alpha into dst.
// All slices must have the same length; dst may alias none of the inputs.
func MixRow(dst, a, b, alpha []uint8) {
	if len(dst) == 0 {
		return
	}
	_ = a[len(dst)-1]
	_ = b[len(dst)-1]
	_ = alpha[len(dst)-1]
	for i := range dst {
		dst[i] = Mix(a[i], b[i], alpha[i])
	}
}

// MulRow multiplies src by mask into dst with truncating division by 255.
func MulRow(dst, src, mask []uint8) {
	if len(dst) == 0 {
		return
	}
	_ = src[len(dst)-1]
	_ = mask[len(dst)-1]
	for i := range dst {
		dst[i] = MulDiv255(src[i], mask[i])
	}
}
