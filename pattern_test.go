package graymix

import (
	"errors"
	"math"
	"testing"
)

func TestCircle_CenterAndOutside(t *testing.T) {
	// Odd size puts a pixel exactly on the center.
	b, err := Circle(101, 101)
	if err != nil {
		t.Fatalf("Circle() error = %v", err)
	}
	if got := b.Sample(50, 50); got != 255 {
		t.Errorf("center sample = %d, want 255", got)
	}

	r := circleRadius(101, 101)
	for y := range 101 {
		for x := range 101 {
			if centerDistance(101, 101, x, y) >= r && b.Sample(x, y) != 0 {
				t.Fatalf("sample (%d, %d) outside the radius = %d, want 0", x, y, b.Sample(x, y))
			}
		}
	}
	if got := b.Sample(0, 0); got != 0 {
		t.Errorf("corner sample = %d, want 0", got)
	}
}

func TestCircle_Falloff(t *testing.T) {
	b, _ := Circle(101, 101)
	// Samples decrease monotonically along a ray from the center.
	prev := b.Sample(50, 50)
	for x := 51; x < 101; x++ {
		v := b.Sample(x, 50)
		if v > prev {
			t.Fatalf("sample (%d, 50) = %d exceeds sample nearer the center (%d)", x, v, prev)
		}
		prev = v
	}
	// 23 pixels from the center, about half the radius.
	r := circleRadius(101, 101)
	want := toSample(255 * math.Cos((23/r)*math.Pi/2))
	if got := b.Sample(50+23, 50); got != want {
		t.Errorf("sample 23 px from center = %d, want %d", got, want)
	}
	if want < 150 || want > 200 {
		t.Errorf("sample near half radius = %d, want roughly 255*cos(pi/4)", want)
	}
}

func TestCircle_BoundaryRoundsToZero(t *testing.T) {
	// cos(pi/2) is not exactly zero in floating point; it must still round to 0.
	if got := toSample(255 * math.Cos(1*math.Pi/2)); got != 0 {
		t.Errorf("boundary sample = %d, want 0", got)
	}
}

func TestDiagonalGradient(t *testing.T) {
	b, err := DiagonalGradient(4, 3)
	if err != nil {
		t.Fatalf("DiagonalGradient() error = %v", err)
	}
	// (x+y)/5 scaled to 255.
	want := []uint8{
		0, 51, 102, 153,
		51, 102, 153, 204,
		102, 153, 204, 255,
	}
	for i, v := range b.Samples() {
		if v != want[i] {
			t.Errorf("sample %d = %d, want %d", i, v, want[i])
		}
	}
}

func TestHorizontalGradient(t *testing.T) {
	b, err := HorizontalGradient(3, 2)
	if err != nil {
		t.Fatalf("HorizontalGradient() error = %v", err)
	}
	want := []uint8{0, 128, 255, 0, 128, 255} // 127.5 rounds away from zero
	for i, v := range b.Samples() {
		if v != want[i] {
			t.Errorf("sample %d = %d, want %d", i, v, want[i])
		}
	}
}

func TestGradients_DegenerateSizes(t *testing.T) {
	h, err := HorizontalGradient(1, 5)
	if err != nil {
		t.Fatalf("HorizontalGradient(1, 5) error = %v", err)
	}
	for i, v := range h.Samples() {
		if v != 0 {
			t.Errorf("HorizontalGradient(1, 5) sample %d = %d, want 0", i, v)
		}
	}

	d, err := DiagonalGradient(1, 1)
	if err != nil {
		t.Fatalf("DiagonalGradient(1, 1) error = %v", err)
	}
	if d.Sample(0, 0) != 0 {
		t.Errorf("DiagonalGradient(1, 1) = %d, want 0", d.Sample(0, 0))
	}

	// A single column still has a vertical span.
	d, _ = DiagonalGradient(1, 3)
	if d.Sample(0, 0) != 0 || d.Sample(0, 1) != 128 || d.Sample(0, 2) != 255 {
		t.Errorf("DiagonalGradient(1, 3) = %v, want [0 128 255]", d.Samples())
	}

	r, err := RadialGradient(1, 1)
	if err != nil {
		t.Fatalf("RadialGradient(1, 1) error = %v", err)
	}
	if r.Sample(0, 0) != 255 {
		t.Errorf("RadialGradient(1, 1) = %d, want 255", r.Sample(0, 0))
	}
}

func TestRadialGradientAndAlpha(t *testing.T) {
	const w, h = 65, 33
	g, err := RadialGradient(w, h)
	if err != nil {
		t.Fatal(err)
	}
	a, err := RadialAlpha(w, h)
	if err != nil {
		t.Fatal(err)
	}

	if g.Sample(32, 16) != 255 || a.Sample(32, 16) != 0 {
		t.Errorf("center: gradient %d alpha %d, want 255 and 0", g.Sample(32, 16), a.Sample(32, 16))
	}
	for _, c := range [][2]int{{0, 0}, {w - 1, 0}, {0, h - 1}, {w - 1, h - 1}} {
		if g.Sample(c[0], c[1]) != 0 || a.Sample(c[0], c[1]) != 255 {
			t.Errorf("corner %v: gradient %d alpha %d, want 0 and 255",
				c, g.Sample(c[0], c[1]), a.Sample(c[0], c[1]))
		}
	}

	// The two patterns are complements up to rounding of the same t.
	gs, as := g.Samples(), a.Samples()
	for i := range gs {
		if sum := int(gs[i]) + int(as[i]); sum < 254 || sum > 256 {
			t.Fatalf("sample %d: gradient %d + alpha %d = %d, want 255 +/- 1", i, gs[i], as[i], sum)
		}
	}
}

func TestUniformAlpha(t *testing.T) {
	b, err := UniformAlpha(3, 3, DefaultAlpha)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range b.Samples() {
		if v != 128 {
			t.Errorf("sample %d = %d, want 128", i, v)
		}
	}
}

func TestGenerate(t *testing.T) {
	for _, p := range Patterns {
		t.Run(string(p), func(t *testing.T) {
			if !p.Valid() {
				t.Errorf("%q.Valid() = false", p)
			}
			b, err := Generate(p, 16, 8)
			if err != nil {
				t.Fatalf("Generate(%q) error = %v", p, err)
			}
			if b.Width() != 16 || b.Height() != 8 {
				t.Errorf("Generate(%q) size = %v", p, b.Size())
			}
		})
	}

	if _, err := Generate("checker", 4, 4); err == nil {
		t.Error("Generate(unknown) error = nil")
	}
	if Pattern("checker").Valid() {
		t.Error(`Pattern("checker").Valid() = true`)
	}
}

func TestGenerators_InvalidDimensions(t *testing.T) {
	gens := map[string]func(w, h int) (*Buffer, error){
		"circle":     Circle,
		"diagonal":   DiagonalGradient,
		"horizontal": HorizontalGradient,
		"radial":     RadialGradient,
		"alpha":      RadialAlpha,
		"mask":       CircularMask,
	}
	for name, gen := range gens {
		if _, err := gen(0, 10); !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("%s(0, 10) error = %v, want ErrInvalidDimensions", name, err)
		}
	}
	if _, err := UniformAlpha(5, -1, 1); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("UniformAlpha(5, -1) error = %v, want ErrInvalidDimensions", err)
	}
}

func TestToSample(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-3, 0},
		{0.49, 0},
		{0.5, 1},
		{127.5, 128},
		{254.6, 255},
		{300, 255},
	}
	for _, tt := range tests {
		if got := toSample(tt.in); got != tt.want {
			t.Errorf("toSample(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
