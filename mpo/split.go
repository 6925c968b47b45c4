// Package mpo splits Multi-Picture Object files, two concatenated JPEG
// streams written by stereo cameras, into their left and right images.
package mpo

import (
	"image"

	"ssmv/jpegseg"
)

// Decoder decodes the image starting at data[offset] and reports how many
// bytes of data it consumed from offset on.
type Decoder interface {
	Decode(data []byte, offset int) (image.Image, int, error)
}

// Range is a half-open byte range [Start, End) of the split buffer.
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Container is the result of splitting an MPO buffer.
type Container struct {
	Data   []byte
	First  Range
	Second Range
	Left   image.Image
	Right  image.Image
}

// Splitter locates the two JPEG streams of an MPO buffer.
type Splitter struct {
	Decoder Decoder
	Policy  jpegseg.HeaderPolicy
}

// Split decodes data as an MPO file with the default header policy.
func Split(data []byte, dec Decoder) (*Container, error) {
	return Splitter{Decoder: dec, Policy: jpegseg.DefaultHeaderPolicy}.Split(data)
}

// Split decodes the first image at offset 0, then searches for the header of
// the second image. The decoder's consumed byte count is only an estimate of
// where the first stream ends, so the search goes backward from it to
// offset 1 and, when nothing is found there, forward to the end of data.
func (s Splitter) Split(data []byte) (*Container, error) {
	if !s.Policy.IsJPEGHeader(data, 0) {
		return nil, &FormatError{Kind: ErrNotJPEG, Offset: 0}
	}

	left, firstSize, err := s.Decoder.Decode(data, 0)
	if err != nil || left == nil {
		return nil, &FormatError{Kind: ErrNoFirstImage, Offset: 0, Err: err}
	}

	second := s.findSecond(data, firstSize)
	if second >= len(data) {
		return nil, &FormatError{Kind: ErrNoSecondImage, Offset: firstSize}
	}

	right, secondSize, err := s.Decoder.Decode(data, second)
	if err != nil || right == nil {
		return nil, &FormatError{Kind: ErrNoSecondImage, Offset: second, Err: err}
	}

	ls, rs := left.Bounds().Size(), right.Bounds().Size()
	if ls != rs {
		return nil, &FormatError{Kind: ErrSizeMismatch, Offset: second, LeftSize: ls, RightSize: rs}
	}

	return &Container{
		Data:   data,
		First:  Range{Start: 0, End: max(1, min(firstSize, second))},
		Second: Range{Start: second, End: min(len(data), second+max(1, secondSize))},
		Left:   left,
		Right:  right,
	}, nil
}

func (s Splitter) findSecond(data []byte, firstSize int) int {
	pos := min(firstSize, len(data))
	for pos > 0 && !s.Policy.IsJPEGHeader(data, pos) {
		pos--
	}
	if pos > 0 {
		return pos
	}

	pos = max(firstSize+1, 1)
	for pos < len(data) && !s.Policy.IsJPEGHeader(data, pos) {
		pos++
	}
	return pos
}
