package mpo

import (
	"errors"
	"fmt"
	"image"
)

var (
	ErrNotJPEG       = errors.New("file does not contain JPEG data")
	ErrNoFirstImage  = errors.New("no image found")
	ErrNoSecondImage = errors.New("no second image found")
	ErrSizeMismatch  = errors.New("the two images differ in size")
)

// FormatError describes why a buffer could not be split into a stereo pair.
// Kind is one of the Err* values above and matches with errors.Is.
type FormatError struct {
	Kind   error
	Offset int // offset the failing step looked at

	// Sizes of the decoded images, set for ErrSizeMismatch.
	LeftSize  image.Point
	RightSize image.Point

	Err error // decoder error, if any
}

func (e *FormatError) Error() string {
	switch {
	case e.Kind == ErrSizeMismatch:
		return fmt.Sprintf("%s: %dx%d vs %dx%d", e.Kind, e.LeftSize.X, e.LeftSize.Y, e.RightSize.X, e.RightSize.Y)
	case e.Err != nil:
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Offset, e.Err)
	default:
		return fmt.Sprintf("%s at offset %d", e.Kind, e.Offset)
	}
}

func (e *FormatError) Is(target error) bool {
	return target == e.Kind
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
