package stereo

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Eyes returns the left and right eye views, exchanged when swap is set.
func Eyes(p *Pair, swap bool) (left, right *Raster) {
	if swap {
		return p.Right, p.Left
	}
	return p.Left, p.Right
}

// CrossOrder returns the views placed at the left and right screen positions
// for cross-eyed viewing: the right eye view goes to the left of the screen.
// With swap set the order is that of wall-eyed viewing.
func CrossOrder(p *Pair, swap bool) (screenLeft, screenRight *Raster) {
	left, right := Eyes(p, swap)
	return right, left
}

// WiggleFrame returns the view shown for the current turn of a wiggle
// alternation.
func WiggleFrame(p *Pair, swap, turn bool) *Raster {
	left, right := Eyes(p, swap)
	if turn {
		return right
	}
	return left
}

// Layout is the spacing of the display panel.
type Layout struct {
	HGap    int // between the two views in cross mode
	HBorder int
	VBorder int
}

// Size returns the panel size for views of size img.
func (l Layout) Size(mode Mode, img image.Point) image.Point {
	if mode == Cross {
		return image.Pt(img.X*2+l.HGap+2*l.HBorder, img.Y+2*l.VBorder)
	}
	return image.Pt(img.X+2*l.HBorder, img.Y+2*l.VBorder)
}

// Origins returns the top-left corners of the views: two in cross mode,
// screen left first, one otherwise.
func (l Layout) Origins(mode Mode, img image.Point) []image.Point {
	first := image.Pt(l.HBorder, l.VBorder)
	if mode == Cross {
		return []image.Point{first, first.Add(image.Pt(img.X+l.HGap, 0))}
	}
	return []image.Point{first}
}

// HelpPoints returns the bounding boxes of the alignment dots drawn in the
// top border above each cross mode view. There are none when the border is
// too small to hold them.
func (l Layout) HelpPoints(img image.Point) []image.Rectangle {
	d := l.VBorder - 4
	if d <= 0 {
		return nil
	}
	var dots []image.Rectangle
	for _, o := range l.Origins(Cross, img) {
		x := o.X + (img.X-d)/2
		y := (l.VBorder - d) / 2
		dots = append(dots, image.Rect(x, y, x+d, y+d))
	}
	return dots
}

// Compose draws views onto a new panel of the layout's size. views are
// given in the order of Origins.
func (l Layout) Compose(mode Mode, views []image.Image, helpPoints bool, background, foreground color.Color) *image.NRGBA {
	img := views[0].Bounds().Size()
	canvas := image.NewNRGBA(image.Rectangle{Max: l.Size(mode, img)})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for i, o := range l.Origins(mode, img) {
		if i >= len(views) {
			break
		}
		v := views[i]
		draw.Draw(canvas, image.Rectangle{Min: o, Max: o.Add(img)}, v, v.Bounds().Min, draw.Src)
	}

	if helpPoints && mode == Cross {
		fg := image.NewUniform(foreground)
		for _, dot := range l.HelpPoints(img) {
			draw.DrawMask(canvas, dot, fg, image.Point{}, &disc{r: dot}, dot.Min, draw.Over)
		}
	}
	return canvas
}

// disc is an alpha mask that is opaque inside the circle inscribed in r.
type disc struct {
	r image.Rectangle
}

func (d *disc) ColorModel() color.Model {
	return color.AlphaModel
}

func (d *disc) Bounds() image.Rectangle {
	return d.r
}

func (d *disc) At(x, y int) color.Color {
	// doubled coordinates keep the center exact for even diameters
	cx, cy := d.r.Min.X+d.r.Max.X, d.r.Min.Y+d.r.Max.Y
	dx, dy := 2*x+1-cx, 2*y+1-cy
	rad := d.r.Dx()
	if dx*dx+dy*dy <= rad*rad {
		return color.Alpha{A: 0xFF}
	}
	return color.Alpha{}
}
