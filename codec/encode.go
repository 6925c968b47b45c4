package codec

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrNoExtension       = errors.New("a file extension (jpg, png, bmp) is needed to select the format")
)

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 95

// Options tune the encoders. The zero value is usable.
type Options struct {
	Quality int // JPEG quality, 1-100
}

func (o Options) quality() int {
	if o.Quality < 1 || o.Quality > 100 {
		return DefaultQuality
	}
	return o.Quality
}

// Ext returns the lower-cased extension of path without the dot.
func Ext(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Supported reports whether ext, case-insensitive and without a dot, has an
// encoder.
func Supported(ext string) bool {
	switch strings.ToLower(ext) {
	case "jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff":
		return true
	}
	return false
}

// Encode writes img to w in the format selected by ext.
func Encode(w io.Writer, img image.Image, ext string, opts Options) error {
	switch strings.ToLower(ext) {
	case "":
		return ErrNoExtension
	case "jpg", "jpeg":
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: opts.quality()}); err != nil {
			return fmt.Errorf("could not encode JPEG: %w", err)
		}
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("could not encode PNG: %w", err)
		}
	case "gif":
		if err := gif.Encode(w, img, nil); err != nil {
			return fmt.Errorf("could not encode GIF: %w", err)
		}
	case "bmp":
		if err := bmp.Encode(w, img); err != nil {
			return fmt.Errorf("could not encode BMP: %w", err)
		}
	case "tif", "tiff":
		if err := tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
			return fmt.Errorf("could not encode TIFF: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return nil
}

// Encoder encodes with fixed options. It implements viewer.Encoder.
type Encoder struct {
	Options Options
}

func (e Encoder) Encode(w io.Writer, img image.Image, ext string) error {
	return Encode(w, img, ext, e.Options)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
