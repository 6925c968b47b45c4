package jpegseg

// HeaderPolicy decides which byte pattern counts as the start of an embedded
// JPEG stream.
//
// The two policies disagree on MPO files whose images carry EXIF thumbnails:
// a thumbnail starts with a bare SOI and matches SOIOnly, but it is rarely
// followed by an APP1 marker and so does not match SOIAPP1. Files written by
// cameras without an EXIF block in the second image only match SOIOnly.
type HeaderPolicy int

const (
	// SOIOnly matches the two byte SOI marker FF D8.
	SOIOnly HeaderPolicy = iota
	// SOIAPP1 matches SOI immediately followed by an APP1 (EXIF) marker,
	// FF D8 FF E1.
	SOIAPP1
)

// DefaultHeaderPolicy is the policy used by the splitter unless configured
// otherwise.
const DefaultHeaderPolicy = SOIOnly

// HeaderSize is the size of a JPEG header, the SOI marker.
const HeaderSize = 2

// Len returns the number of bytes the policy inspects.
func (p HeaderPolicy) Len() int {
	if p == SOIAPP1 {
		return 4
	}
	return HeaderSize
}

func (p HeaderPolicy) String() string {
	switch p {
	case SOIOnly:
		return "soi"
	case SOIAPP1:
		return "soi+app1"
	}
	return "unknown"
}

// IsJPEGHeader reports whether buf[pos:] starts with a JPEG header under the
// policy. Positions whose pattern would run past the end of buf never match.
func (p HeaderPolicy) IsJPEGHeader(buf []byte, pos int) bool {
	if pos < 0 || pos+p.Len() > len(buf) {
		return false
	}
	if buf[pos] != 0xFF || buf[pos+1] != SOI {
		return false
	}
	if p == SOIAPP1 {
		return buf[pos+2] == 0xFF && buf[pos+3] == APP1
	}
	return true
}

// IsJPEGHeader reports whether buf starts with a SOI marker.
func IsJPEGHeader(buf []byte) bool {
	return SOIOnly.IsJPEGHeader(buf, 0)
}
