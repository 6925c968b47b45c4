package codec

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"

	"ssmv/jpegseg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// JPEG decodes baseline and progressive JPEG streams embedded in a larger
// buffer. It implements mpo.Decoder.
type JPEG struct{}

// Decode decodes the stream starting at data[offset]. The returned count is
// the exact length of the stream up to and including its EOI marker.
func (JPEG) Decode(data []byte, offset int) (image.Image, int, error) {
	if offset < 0 || offset >= len(data) {
		return nil, 0, fmt.Errorf("offset %d out of range", offset)
	}
	stream := data[offset:]
	n, err := jpegseg.StreamLength(stream)
	if err != nil {
		return nil, 0, err
	}
	img, err := jpeg.Decode(bytes.NewReader(stream[:n]))
	if err != nil {
		return nil, 0, err
	}
	return img, n, nil
}

// Load decodes a standalone image in any registered format.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, format, nil
}
