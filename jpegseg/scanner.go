package jpegseg

import (
	"errors"
	"fmt"
)

var (
	ErrNoSOI     = errors.New("SOI marker not found")
	ErrTruncated = errors.New("truncated JPEG stream")
)

// Segment is a marker and its payload, located in the scanned buffer.
// Entropy-coded data following a SOS segment is reported as a Segment with
// Marker 0. Data aliases the scanned buffer.
type Segment struct {
	Marker Marker
	Offset int // position of the 0xFF of the marker, or of the first data byte
	Data   []byte
}

// Scanner walks the markers and segments of one JPEG stream held in memory,
// from SOI up to and including EOI. Bytes following EOI are never touched.
type Scanner struct {
	buf     []byte
	pos     int
	scan    bool // entropy-coded data follows
	done    bool
	started bool
}

// NewScanner checks the JPEG header at the start of buf.
func NewScanner(buf []byte) (*Scanner, error) {
	if !IsJPEGHeader(buf) {
		return nil, ErrNoSOI
	}
	return &Scanner{buf: buf}, nil
}

// Pos returns the offset of the first byte not consumed yet. After EOI has
// been returned this is the length of the stream.
func (s *Scanner) Pos() int {
	return s.pos
}

// Done reports whether EOI has been reached.
func (s *Scanner) Done() bool {
	return s.done
}

// Scan returns the next segment. After EOI it returns ok == false.
func (s *Scanner) Scan() (seg Segment, ok bool, err error) {
	if s.done {
		return Segment{}, false, nil
	}
	if !s.started {
		s.started = true
		s.pos = HeaderSize
		return Segment{Marker: SOI, Offset: 0}, true, nil
	}
	if s.scan {
		s.scan = false
		start := s.pos
		end, err := s.skipEntropyData(start)
		if err != nil {
			return Segment{}, false, err
		}
		s.pos = end
		if end > start {
			return Segment{Marker: 0, Offset: start, Data: s.buf[start:end]}, true, nil
		}
	}

	start, marker, err := s.readMarker()
	if err != nil {
		return Segment{}, false, err
	}
	if marker.Standalone() {
		if marker == EOI {
			s.done = true
		}
		if marker >= RST0 && marker <= RST0+7 {
			s.scan = true
		}
		return Segment{Marker: marker, Offset: start}, true, nil
	}

	if s.pos+2 > len(s.buf) {
		return Segment{}, false, fmt.Errorf("%s at %d: %w", marker.Name(), start, ErrTruncated)
	}
	length := int(s.buf[s.pos])<<8 | int(s.buf[s.pos+1])
	if length < 2 {
		return Segment{}, false, fmt.Errorf("%s at %d: invalid segment length %d", marker.Name(), start, length)
	}
	if s.pos+length > len(s.buf) {
		return Segment{}, false, fmt.Errorf("%s at %d: %w", marker.Name(), start, ErrTruncated)
	}
	data := s.buf[s.pos+2 : s.pos+length]
	s.pos += length
	if marker == SOS {
		s.scan = true
	}
	return Segment{Marker: marker, Offset: start, Data: data}, true, nil
}

// readMarker reads a marker at the current position. 0xFF fill bytes
// before the marker code are skipped.
func (s *Scanner) readMarker() (int, Marker, error) {
	start := s.pos
	if s.pos >= len(s.buf) {
		return start, 0, fmt.Errorf("marker at %d: %w", start, ErrTruncated)
	}
	if s.buf[s.pos] != 0xFF {
		return start, 0, fmt.Errorf("0xFF expected in marker at %d, found 0x%.2X", start, s.buf[s.pos])
	}
	s.pos++
	for s.pos < len(s.buf) && s.buf[s.pos] == 0xFF {
		s.pos++
	}
	if s.pos >= len(s.buf) {
		return start, 0, fmt.Errorf("marker at %d: %w", start, ErrTruncated)
	}
	marker := Marker(s.buf[s.pos])
	s.pos++
	if marker == 0 {
		return start, 0, fmt.Errorf("invalid marker 0 at %d", start)
	}
	return start, marker, nil
}

// skipEntropyData returns the position of the marker that ends the
// entropy-coded data starting at pos. Stuffed 0xFF00 pairs are part of the
// data; restart markers end it.
func (s *Scanner) skipEntropyData(pos int) (int, error) {
	for pos < len(s.buf) {
		if s.buf[pos] != 0xFF {
			pos++
			continue
		}
		if pos+1 >= len(s.buf) {
			break
		}
		if s.buf[pos+1] == 0 {
			pos += 2
			continue
		}
		return pos, nil
	}
	return pos, fmt.Errorf("scan data at %d: %w", pos, ErrTruncated)
}

// StreamLength returns the number of bytes of the JPEG stream starting at
// buf[0], up to and including its EOI marker.
func StreamLength(buf []byte) (int, error) {
	scanner, err := NewScanner(buf)
	if err != nil {
		return 0, err
	}
	for {
		_, ok, err := scanner.Scan()
		if err != nil {
			return 0, err
		}
		if !ok {
			return scanner.Pos(), nil
		}
	}
}

// ReadSegments returns every segment of the JPEG stream starting at buf[0].
func ReadSegments(buf []byte) ([]Segment, error) {
	segments := make([]Segment, 0, 20)
	scanner, err := NewScanner(buf)
	if err != nil {
		return nil, err
	}
	for {
		seg, ok, err := scanner.Scan()
		if err != nil {
			return segments, err
		}
		if !ok {
			return segments, nil
		}
		segments = append(segments, seg)
	}
}
