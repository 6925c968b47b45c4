package codec

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"ssmv/jpegseg"
)

// Assemble encodes left and right as JPEG and concatenates them into an MPO
// stream. The first image carries an APP2 MPF index pointing at both.
func Assemble(left, right image.Image, opts Options) ([]byte, error) {
	if ls, rs := left.Bounds().Size(), right.Bounds().Size(); ls != rs {
		return nil, fmt.Errorf("the two images differ in size: %dx%d vs %dx%d", ls.X, ls.Y, rs.X, rs.Y)
	}

	var l, r bytes.Buffer
	if err := jpeg.Encode(&l, left, &jpeg.Options{Quality: opts.quality()}); err != nil {
		return nil, fmt.Errorf("could not encode left image: %w", err)
	}
	if err := jpeg.Encode(&r, right, &jpeg.Options{Quality: opts.quality()}); err != nil {
		return nil, fmt.Errorf("could not encode right image: %w", err)
	}

	// The payload size does not depend on the values written into it.
	payloadSize := len(jpegseg.AppendMPF(nil, []uint32{0, 0}, []uint32{0, 0}))
	segSize := 2 + 2 + payloadSize
	firstSize := l.Len() + segSize
	base := jpegseg.HeaderSize + 4 + jpegseg.MPFHeaderSize

	payload := jpegseg.AppendMPF(nil,
		[]uint32{uint32(firstSize), uint32(r.Len())},
		[]uint32{0, uint32(firstSize - base)})

	out := make([]byte, 0, firstSize+r.Len())
	out = append(out, l.Bytes()[:jpegseg.HeaderSize]...)
	out = append(out, 0xFF, jpegseg.APP2, byte((payloadSize+2)>>8), byte(payloadSize+2))
	out = append(out, payload...)
	out = append(out, l.Bytes()[jpegseg.HeaderSize:]...)
	out = append(out, r.Bytes()...)
	return out, nil
}
