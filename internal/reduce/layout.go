// Package reduce converts normalized 8-bit scanlines into grayscale samples.
//
// A scanline is normalized before it reaches this package: palette indices
// are already expanded to RGB, transparency chunks are already expanded into
// an explicit alpha channel, and every sample is 8 bits wide. What remains is
// one of four channel layouts, each with a fixed reduction rule.
package reduce

import "errors"

// ErrUnsupportedLayout is returned for a layout outside the four known ones.
var ErrUnsupportedLayout = errors.New("reduce: unsupported channel layout")

// Layout is the channel arrangement of a normalized scanline.
type Layout uint8

const (
	// Gray is one gray sample per pixel.
	Gray Layout = iota

	// GrayAlpha is a gray sample followed by an alpha sample.
	GrayAlpha

	// RGB is red, green and blue samples.
	RGB

	// RGBA is red, green, blue and alpha samples.
	RGBA

	// layoutCount is the number of layouts (for internal use).
	layoutCount
)

// LayoutInfo contains metadata about a layout.
type LayoutInfo struct {
	// Channels is the number of samples per pixel.
	Channels int

	// HasAlpha indicates the last channel is alpha.
	HasAlpha bool

	// IsGrayscale indicates the color channel is a single gray sample.
	IsGrayscale bool
}

var layoutInfoTable = [layoutCount]LayoutInfo{
	Gray:      {Channels: 1, IsGrayscale: true},
	GrayAlpha: {Channels: 2, HasAlpha: true, IsGrayscale: true},
	RGB:       {Channels: 3},
	RGBA:      {Channels: 4, HasAlpha: true},
}

// Info returns the LayoutInfo for this layout.
// Unknown layouts report zero channels.
func (l Layout) Info() LayoutInfo {
	if l >= layoutCount {
		return LayoutInfo{}
	}
	return layoutInfoTable[l]
}

// Channels returns the number of samples per pixel.
func (l Layout) Channels() int {
	return l.Info().Channels
}

// HasAlpha returns true if the layout carries an alpha channel.
func (l Layout) HasAlpha() bool {
	return l.Info().HasAlpha
}

// IsValid returns true for the four known layouts.
func (l Layout) IsValid() bool {
	return l < layoutCount
}

// WithAlpha returns the layout extended by an alpha channel.
// Layouts that already have alpha are returned unchanged.
func (l Layout) WithAlpha() Layout {
	switch l {
	case Gray:
		return GrayAlpha
	case RGB:
		return RGBA
	default:
		return l
	}
}

// RowBytes returns the length of a normalized scanline of the given width.
func (l Layout) RowBytes(width int) int {
	return width * l.Channels()
}

// String returns a string representation of the layout.
func (l Layout) String() string {
	switch l {
	case Gray:
		return "GRAY"
	case GrayAlpha:
		return "GRAY+ALPHA"
	case RGB:
		return "RGB"
	case RGBA:
		return "RGBA"
	default:
		return "Unknown"
	}
}
