// based on:
// https://bottosson.github.io/posts/oklab/
// https://bottosson.github.io/posts/colorwrong/#what-can-we-do%3F

package okcolor

import "math"

type LinearRGB struct {
	R float64
	G float64
	B float64
}

// srgbToLinear maps every 8 bit sRGB channel value to linear light.
var srgbToLinear [256]float64

func init() {
	for i := range srgbToLinear {
		srgbToLinear[i] = toLinear(float64(i) / 255)
	}
}

// LinearFromSRGB converts 8 bit sRGB channels to linear light.
func LinearFromSRGB(r, g, b uint8) LinearRGB {
	return LinearRGB{
		R: srgbToLinear[r],
		G: srgbToLinear[g],
		B: srgbToLinear[b],
	}
}

// L returns the OkLab perceived lightness of a linear sRGB color. The a and b
// axes are not computed.
func (c LinearRGB) L() float64 {
	l := math.Cbrt(0.4122214708*c.R + 0.5363325363*c.G + 0.0514459929*c.B)
	m := math.Cbrt(0.2119034982*c.R + 0.6806995451*c.G + 0.1073969566*c.B)
	s := math.Cbrt(0.0883024619*c.R + 0.2817188376*c.G + 0.6299787005*c.B)
	return 0.2104542553*l + 0.7936177850*m - 0.0040720468*s
}

// Lightness returns the OkLab L of an 8 bit sRGB color, in [0, 1].
func Lightness(r, g, b uint8) float64 {
	return LinearFromSRGB(r, g, b).L()
}

// Gray returns the 8 bit sRGB gray level of an achromatic OkLab color with
// lightness L. With a and b zero, l, m and s all equal L, so every linear
// channel is L cubed.
func Gray(L float64) uint8 {
	L = clamp(L, 0, 1)
	v := fromLinear(L * L * L)
	return uint8(math.Round(clamp(v, 0, 1) * 255))
}

func toLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	} else {
		return x / 12.92
	}
}

const pow float64 = 1.0 / 2.4

func fromLinear(x float64) float64 {
	if x >= 0.0031308 {
		return math.Pow(x, pow)*1.055 - 0.055
	} else {
		return x * 12.92
	}
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	} else if x > max {
		return max
	} else {
		return x
	}
}
