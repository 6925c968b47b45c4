package render

import (
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"
)

// fit scales img down so it fits within maxWidth x maxHeight, keeping its
// aspect ratio. A zero bound leaves that dimension free. Images that
// already fit are returned as they are.
func fit(logger *slog.Logger, img image.Image, maxWidth, maxHeight int) image.Image {
	srcBounds := img.Bounds()
	srcWidth := float64(srcBounds.Dx())
	srcHeight := float64(srcBounds.Dy())

	scale := 1.0
	if maxWidth > 0 && srcWidth > float64(maxWidth) {
		scale = float64(maxWidth) / srcWidth
	}
	if maxHeight > 0 && srcHeight*scale > float64(maxHeight) {
		scale = float64(maxHeight) / srcHeight
	}
	if scale == 1 {
		return img
	}

	destBounds := image.Rect(0, 0,
		max(1, int(math.Round(srcWidth*scale))),
		max(1, int(math.Round(srcHeight*scale))))

	logger.Info("resizing", "width", destBounds.Dx(), "height", destBounds.Dy())
	dest := image.NewNRGBA(destBounds)
	draw.CatmullRom.Scale(dest, destBounds, img, srcBounds, draw.Src, nil)
	return dest
}
