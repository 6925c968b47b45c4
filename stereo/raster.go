// Package stereo composes the two views of a stereo pair: anaglyph merging
// with channel masks, cross-eyed and wiggle view selection, and the panel
// geometry the views are laid out in.
package stereo

import (
	"image"
	"image/color"
)

// Raster is a decoded image with pixels packed as 0xAARRGGBB, row-major.
// Opaque rasters store 0xFF in the alpha byte.
type Raster struct {
	Pix    []uint32
	Width  int
	Height int
	Alpha  bool // the pixel alpha is meaningful
}

var _ image.Image = &Raster{}

func NewRaster(w, h int, alpha bool) *Raster {
	return &Raster{
		Pix:    make([]uint32, w*h),
		Width:  w,
		Height: h,
		Alpha:  alpha,
	}
}

// FromImage copies img into a new Raster. The raster carries alpha unless
// img reports itself opaque.
func FromImage(img image.Image) *Raster {
	b := img.Bounds()
	alpha := true
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		alpha = false
	}
	r := NewRaster(b.Dx(), b.Dy(), alpha)

	i := 0
	switch src := img.(type) {
	case *image.YCbCr:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				yi, ci := src.YOffset(x, y), src.COffset(x, y)
				cr, cg, cb := color.YCbCrToRGB(src.Y[yi], src.Cb[ci], src.Cr[ci])
				r.Pix[i] = 0xFF000000 | uint32(cr)<<16 | uint32(cg)<<8 | uint32(cb)
				i++
			}
		}
	case *Raster:
		copy(r.Pix, src.Pix)
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				a := c.A
				if !alpha {
					a = 0xFF
				}
				r.Pix[i] = pack(c.R, c.G, c.B, a)
				i++
			}
		}
	}
	return r
}

func pack(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

// Size returns the width and height of the raster.
func (r *Raster) Size() image.Point {
	return image.Pt(r.Width, r.Height)
}

func (r *Raster) ColorModel() color.Model {
	return color.NRGBAModel
}

func (r *Raster) Bounds() image.Rectangle {
	return image.Rect(0, 0, r.Width, r.Height)
}

func (r *Raster) At(x, y int) color.Color {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return color.NRGBA{}
	}
	p := r.Pix[y*r.Width+x]
	a := uint8(p >> 24)
	if !r.Alpha {
		a = 0xFF
	}
	return color.NRGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: a}
}

// Opaque reports whether the raster ignores its alpha byte.
func (r *Raster) Opaque() bool {
	return !r.Alpha
}
