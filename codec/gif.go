package codec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"image/gif"
	"io"
	"time"

	"golang.org/x/image/draw"
)

// WiggleDelay converts a frame delay to GIF centiseconds.
func WiggleDelay(delay time.Duration) int {
	return int((delay + 5*time.Millisecond) / (10 * time.Millisecond))
}

// EncodeWiggle writes frames as an endlessly looping animated GIF showing
// each frame for delay. Frames are dithered to pal, or to the Plan 9
// palette when pal is empty.
func EncodeWiggle(w io.Writer, frames []image.Image, delay time.Duration, pal color.Palette) error {
	if len(frames) == 0 {
		return errors.New("no frames to encode")
	}

	anim := &gif.GIF{LoopCount: 0}
	cs := WiggleDelay(delay)
	for _, frame := range frames {
		anim.Image = append(anim.Image, paletted(frame, pal))
		anim.Delay = append(anim.Delay, cs)
	}

	if err := gif.EncodeAll(w, anim); err != nil {
		return fmt.Errorf("could not encode GIF animation: %w", err)
	}
	return nil
}

func paletted(img image.Image, pal color.Palette) *image.Paletted {
	if len(pal) == 0 {
		pal = palette.Plan9
		if p, ok := img.(*image.Paletted); ok {
			return p
		}
	}
	sr := img.Bounds()
	dr := image.Rect(0, 0, sr.Dx(), sr.Dy())
	dest := image.NewPaletted(dr, pal)
	draw.FloydSteinberg.Draw(dest, dr, img, sr.Min)
	return dest
}
