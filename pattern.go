package graymix

import (
	"fmt"
	"math"
)

// DefaultAlpha is the uniform blend weight used when none is given (50%).
const DefaultAlpha uint8 = 128

// circleRadiusFactor scales min(width, height) to the circle radius.
const circleRadiusFactor = 0.45

// Pattern names a synthetic generator.
type Pattern string

// Known patterns.
const (
	PatternCircle      Pattern = "circle"
	PatternDiagonal    Pattern = "diagonal"
	PatternHorizontal  Pattern = "horizontal"
	PatternRadial      Pattern = "radial"
	PatternAlphaRadial Pattern = "alpha-radial"
	PatternUniform     Pattern = "uniform"
)

// Patterns lists every known pattern.
var Patterns = []Pattern{
	PatternCircle,
	PatternDiagonal,
	PatternHorizontal,
	PatternRadial,
	PatternAlphaRadial,
	PatternUniform,
}

// Valid reports whether p names a known pattern.
func (p Pattern) Valid() bool {
	for _, known := range Patterns {
		if p == known {
			return true
		}
	}
	return false
}

// Generate renders pattern p at the given size.
// PatternUniform uses DefaultAlpha.
func Generate(p Pattern, width, height int) (*Buffer, error) {
	switch p {
	case PatternCircle:
		return Circle(width, height)
	case PatternDiagonal:
		return DiagonalGradient(width, height)
	case PatternHorizontal:
		return HorizontalGradient(width, height)
	case PatternRadial:
		return RadialGradient(width, height)
	case PatternAlphaRadial:
		return RadialAlpha(width, height)
	case PatternUniform:
		return UniformAlpha(width, height, DefaultAlpha)
	default:
		return nil, fmt.Errorf("graymix: unknown pattern %q", p)
	}
}

// Circle renders a halftone disk: brightest at the center with a cosine
// falloff to black at radius 0.45*min(width, height), and black outside.
func Circle(width, height int) (*Buffer, error) {
	r := circleRadius(width, height)
	return generate(width, height, func(x, y int) float64 {
		t := centerDistance(width, height, x, y) / r
		if t > 1 {
			return 0
		}
		return math.Max(0, math.Cos(t*math.Pi/2))
	})
}

// DiagonalGradient ramps from black at the top-left corner to white at the
// bottom-right corner. A 1x1 buffer is black.
func DiagonalGradient(width, height int) (*Buffer, error) {
	span := float64((width - 1) + (height - 1))
	return generate(width, height, func(x, y int) float64 {
		if span == 0 {
			return 0
		}
		return float64(x+y) / span
	})
}

// HorizontalGradient ramps from black in the left column to white in the
// right column. A buffer one pixel wide is black.
func HorizontalGradient(width, height int) (*Buffer, error) {
	span := float64(width - 1)
	return generate(width, height, func(x, _ int) float64 {
		if span == 0 {
			return 0
		}
		return float64(x) / span
	})
}

// RadialGradient is white at the center and fades to black at the corners.
func RadialGradient(width, height int) (*Buffer, error) {
	return generate(width, height, func(x, y int) float64 {
		return 1 - cornerFraction(width, height, x, y)
	})
}

// RadialAlpha is the inverse of RadialGradient: 0 at the center, so a blend
// shows the first image there, and 255 at the corners, showing the second.
func RadialAlpha(width, height int) (*Buffer, error) {
	return generate(width, height, func(x, y int) float64 {
		return cornerFraction(width, height, x, y)
	})
}

// UniformAlpha returns a mask with every sample set to value.
func UniformAlpha(width, height int, value uint8) (*Buffer, error) {
	return Filled(width, height, value)
}

// generate fills a new buffer with round(255*f(x, y)), clamped to [0, 255].
func generate(width, height int, f func(x, y int) float64) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	for y := range height {
		row := b.row(y)
		for x := range row {
			row[x] = toSample(255 * f(x, y))
		}
	}
	return b, nil
}

// toSample rounds half away from zero and clamps to the 8-bit range.
func toSample(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// center returns the pixel-space center of a width x height grid.
func center(width, height int) (cx, cy float64) {
	return float64(width-1) * 0.5, float64(height-1) * 0.5
}

func centerDistance(width, height, x, y int) float64 {
	cx, cy := center(width, height)
	return math.Hypot(float64(x)-cx, float64(y)-cy)
}

func circleRadius(width, height int) float64 {
	return float64(min(width, height)) * circleRadiusFactor
}

// cornerFraction is the distance to the center divided by the
// center-to-corner distance, clamped to [0, 1]. It is 0 for a 1x1 grid.
func cornerFraction(width, height, x, y int) float64 {
	cx, cy := center(width, height)
	maxDist := math.Hypot(cx, cy)
	if maxDist == 0 {
		return 0
	}
	t := centerDistance(width, height, x, y) / maxDist
	if t > 1 {
		return 1
	}
	return t
}
