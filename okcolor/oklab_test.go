package okcolor

import (
	"math"
	"testing"
)

func TestLightnessExtremes(t *testing.T) {
	if l := Lightness(0, 0, 0); math.Abs(l) > 1e-6 {
		t.Errorf("black L=%f, expected 0", l)
	}
	if l := Lightness(255, 255, 255); math.Abs(l-1) > 1e-3 {
		t.Errorf("white L=%f, expected 1", l)
	}
	// yellow is perceived lighter than blue
	if Lightness(255, 255, 0) <= Lightness(0, 0, 255) {
		t.Error("expected yellow lighter than blue")
	}
}

func TestGrayRoundTrip(t *testing.T) {
	for _, v := range []uint8{0, 1, 17, 64, 128, 200, 254, 255} {
		if got := Gray(Lightness(v, v, v)); got != v {
			t.Errorf("gray %d came back as %d", v, got)
		}
	}
}

func TestLightnessOfGray(t *testing.T) {
	// for a gray l, m and s are all the cube root of the linear value
	for _, v := range []uint8{0, 30, 128, 255} {
		want := math.Cbrt(srgbToLinear[v])
		if got := Lightness(v, v, v); math.Abs(got-want) > 1e-6 {
			t.Errorf("gray %d: L=%f, want %f", v, got, want)
		}
	}
}
