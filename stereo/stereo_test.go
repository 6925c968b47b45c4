package stereo

import (
	"image"
	"image/color"
	"slices"
	"testing"
)

// 2x2 rasters with distinct values in every channel.
func testPair() (*Raster, *Raster) {
	left := &Raster{Width: 2, Height: 2, Pix: []uint32{
		0xFF112233, 0xFF445566,
		0xFF778899, 0xFFAABBCC,
	}}
	right := &Raster{Width: 2, Height: 2, Pix: []uint32{
		0xFFDDEEF0, 0xFF0A0B0C,
		0xFF1A1B1C, 0xFF2A2B2C,
	}}
	return left, right
}

func TestMergeRedCyan(t *testing.T) {
	left, right := testPair()
	out, err := Merge(left, right, RedCyan, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	for y := range 2 {
		for x := range 2 {
			l := left.At(x, y).(color.NRGBA)
			r := right.At(x, y).(color.NRGBA)
			o := out.At(x, y).(color.NRGBA)
			if o.R != l.R || o.G != r.G || o.B != r.B || o.A != 0xFF {
				t.Errorf("(%d,%d): got %v from left %v and right %v", x, y, o, l, r)
			}
		}
	}
	if out.Pix[0] != 0xFF11EEF0 {
		t.Errorf("expected 0xFF11EEF0, got 0x%08X", out.Pix[0])
	}
}

func TestMergeGreenAndBlue(t *testing.T) {
	left, right := testPair()
	out, err := Merge(left, right, GreenMagenta, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if out.Pix[3] != 0xFF2ABB2C {
		t.Errorf("green/magenta: got 0x%08X", out.Pix[3])
	}
	out, err = Merge(left, right, BlueYellow, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if out.Pix[3] != 0xFF2A2BCC {
		t.Errorf("blue/yellow: got 0x%08X", out.Pix[3])
	}
}

func TestMergeComplementSymmetry(t *testing.T) {
	left, right := testPair()
	for _, m := range append(slices.Clone(Masks), 0xF0F00F, 0) {
		a, err := Merge(left, right, m, nil)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		b, err := Merge(right, left, m.Complement(), nil)
		if err != nil {
			t.Fatalf("Merge: %v", err)
		}
		if !slices.Equal(a.Pix, b.Pix) {
			t.Errorf("mask %s: %08X != %08X", m, a.Pix, b.Pix)
		}
	}
}

func TestMergePreservesSizeAndReusesDestination(t *testing.T) {
	left := NewRaster(7, 3, false)
	right := NewRaster(7, 3, false)
	out, err := Merge(left, right, RedCyan, nil)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if out.Size() != image.Pt(7, 3) || len(out.Pix) != 21 {
		t.Fatalf("unexpected size %v with %d pixels", out.Size(), len(out.Pix))
	}

	again, _ := Merge(left, right, BlueYellow, out)
	if again != out {
		t.Error("expected matching destination to be reused")
	}
	alpha, _ := Merge(&Raster{Width: 7, Height: 3, Pix: make([]uint32, 21), Alpha: true}, right, RedCyan, out)
	if alpha == out || !alpha.Alpha {
		t.Error("expected a new destination with alpha")
	}
	other, _ := Merge(NewRaster(3, 7, false), NewRaster(3, 7, false), RedCyan, out)
	if other == out {
		t.Error("expected a new destination for a different size")
	}

	if _, err := Merge(left, NewRaster(3, 7, false), RedCyan, nil); err == nil {
		t.Error("expected an error for differing sizes")
	}
}

func TestMergeKeepsLeftAlpha(t *testing.T) {
	left := &Raster{Width: 1, Height: 1, Pix: []uint32{0x80FF0000}, Alpha: true}
	right := &Raster{Width: 1, Height: 1, Pix: []uint32{0x1000FFFF}, Alpha: true}
	out, _ := Merge(left, right, RedCyan, nil)
	if out.Pix[0] != 0x80FFFFFF {
		t.Errorf("got 0x%08X", out.Pix[0])
	}
}

func TestAnaglyphCache(t *testing.T) {
	left, right := testPair()
	var cache AnaglyphCache

	first, err := cache.Get(left, right, RedCyan)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	snapshot := slices.Clone(first.Pix)

	// identical inputs are not recomputed, even if pixels changed behind
	// the cache's back
	left.Pix[0] = 0xFF000000
	cached, _ := cache.Get(left, right, RedCyan)
	if cached != first || !slices.Equal(cached.Pix, snapshot) {
		t.Error("expected the cached merge")
	}

	recomputed, _ := cache.Get(left, right, GreenMagenta)
	if recomputed.Pix[0] != 0xFFDD00F0 {
		t.Errorf("mask change: got 0x%08X", recomputed.Pix[0])
	}
	if recomputed == first || !slices.Equal(first.Pix, snapshot) {
		t.Error("a recompute must not write into a merge handed out before")
	}

	swapped, _ := cache.Get(right, left, GreenMagenta)
	if swapped.Pix[1] != 0xFF440B66 {
		t.Errorf("input change: got 0x%08X", swapped.Pix[1])
	}

	cache.Reset()
	if cache.out != nil {
		t.Error("expected Reset to drop the merge")
	}
}

func TestViewSelection(t *testing.T) {
	left, right := testPair()
	p := &Pair{Left: left, Right: right}

	if l, r := CrossOrder(p, false); l != right || r != left {
		t.Error("cross: expected right view on the left of the screen")
	}
	if l, r := CrossOrder(p, true); l != left || r != right {
		t.Error("swapped cross: expected left view on the left of the screen")
	}
	if WiggleFrame(p, false, false) != left || WiggleFrame(p, false, true) != right {
		t.Error("wiggle: unexpected frame")
	}
	if WiggleFrame(p, true, false) != right || WiggleFrame(p, true, true) != left {
		t.Error("swapped wiggle: unexpected frame")
	}
}

func TestNewPair(t *testing.T) {
	if _, err := NewPair(image.NewGray(image.Rect(0, 0, 4, 4)), image.NewGray(image.Rect(0, 0, 4, 5))); err == nil {
		t.Error("expected an error for differing sizes")
	}
	p, err := NewPair(image.NewGray(image.Rect(0, 0, 4, 4)), image.NewRGBA(image.Rect(2, 2, 6, 6)))
	if err != nil {
		t.Fatalf("NewPair: %v", err)
	}
	if p.Size() != image.Pt(4, 4) {
		t.Errorf("unexpected size %v", p.Size())
	}
	if p.Left.Alpha {
		t.Error("gray image should give an opaque raster")
	}
	if !p.Right.Alpha {
		t.Error("transparent RGBA image should give a raster with alpha")
	}
}

func TestFromImageYCbCr(t *testing.T) {
	src := image.NewYCbCr(image.Rect(0, 0, 4, 2), image.YCbCrSubsampleRatio420)
	for i := range src.Y {
		src.Y[i] = uint8(i * 30)
	}
	for i := range src.Cb {
		src.Cb[i] = 90
		src.Cr[i] = 200
	}

	r := FromImage(src)
	if r.Alpha {
		t.Error("YCbCr is opaque")
	}
	for y := range 2 {
		for x := range 4 {
			c := src.YCbCrAt(x, y)
			cr, cg, cb := color.YCbCrToRGB(c.Y, c.Cb, c.Cr)
			want := color.NRGBA{R: cr, G: cg, B: cb, A: 0xFF}
			if got := r.At(x, y); got != want {
				t.Errorf("(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}
}

func TestGrayscale(t *testing.T) {
	r := &Raster{Width: 2, Height: 1, Pix: []uint32{0xFF808080, 0x40FF0000}, Alpha: true}
	g := Grayscale(r)
	if g.Pix[0] != 0xFF808080 {
		t.Errorf("gray stays gray: got 0x%08X", g.Pix[0])
	}
	p := g.Pix[1]
	if uint8(p>>16) != uint8(p>>8) || uint8(p>>8) != uint8(p) {
		t.Errorf("expected a gray pixel, got 0x%08X", p)
	}
	if p>>24 != 0x40 {
		t.Errorf("expected alpha to be kept, got 0x%08X", p)
	}
}

func TestParseMode(t *testing.T) {
	for s, want := range map[string]Mode{
		"cross":    Cross,
		"ANAGLYPH": Anaglyph,
		"Wiggle":   Wiggle,
		"":         Cross,
		"bogus":    Cross,
	} {
		if got := ParseMode(s); got != want {
			t.Errorf("ParseMode(%q) = %s, want %s", s, got, want)
		}
	}
	if MaskByIndex(2) != BlueYellow || MaskByIndex(7) != RedCyan || MaskByIndex(-1) != RedCyan {
		t.Error("unexpected mask by index")
	}
}

func TestLayout(t *testing.T) {
	l := Layout{HGap: 10, HBorder: 10, VBorder: 12}
	img := image.Pt(100, 50)

	if got := l.Size(Cross, img); got != image.Pt(230, 74) {
		t.Errorf("cross size %v", got)
	}
	if got := l.Size(Anaglyph, img); got != image.Pt(120, 74) {
		t.Errorf("anaglyph size %v", got)
	}
	if got := l.Size(Wiggle, img); got != image.Pt(120, 74) {
		t.Errorf("wiggle size %v", got)
	}

	origins := l.Origins(Cross, img)
	if len(origins) != 2 || origins[0] != image.Pt(10, 12) || origins[1] != image.Pt(120, 12) {
		t.Errorf("cross origins %v", origins)
	}

	dots := l.HelpPoints(img)
	if len(dots) != 2 {
		t.Fatalf("expected 2 help points, got %d", len(dots))
	}
	if dots[0] != image.Rect(56, 2, 64, 10) || dots[1] != image.Rect(166, 2, 174, 10) {
		t.Errorf("help points %v", dots)
	}
	if got := (Layout{VBorder: 4}).HelpPoints(img); got != nil {
		t.Errorf("expected no help points in a thin border, got %v", got)
	}
}

func TestCompose(t *testing.T) {
	left, right := testPair()
	l := Layout{HGap: 2, HBorder: 1, VBorder: 9}
	bg := color.NRGBA{A: 0xFF}
	fg := color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	canvas := l.Compose(Cross, []image.Image{right, left}, true, bg, fg)
	if canvas.Bounds().Size() != l.Size(Cross, image.Pt(2, 2)) {
		t.Fatalf("unexpected canvas %v", canvas.Bounds())
	}
	if got := canvas.NRGBAAt(1, 9); got != right.At(0, 0) {
		t.Errorf("screen left view: got %v", got)
	}
	if got := canvas.NRGBAAt(5, 10); got != left.At(0, 1) {
		t.Errorf("screen right view: got %v", got)
	}
	if got := canvas.NRGBAAt(0, 0); got != bg {
		t.Errorf("border: got %v", got)
	}
	dot := l.HelpPoints(image.Pt(2, 2))[0]
	center := image.Pt((dot.Min.X+dot.Max.X)/2, (dot.Min.Y+dot.Max.Y)/2)
	if got := canvas.NRGBAAt(center.X, center.Y); got != fg {
		t.Errorf("help point center %v: got %v", center, got)
	}

	plain := l.Compose(Cross, []image.Image{right, left}, false, bg, fg)
	if got := plain.NRGBAAt(center.X, center.Y); got != bg {
		t.Errorf("help points disabled: got %v", got)
	}
}
