package jpegseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// MPF header, as found at the start of a JPEG APP2 segment.
var mpfHeader = []byte("MPF\000")

// Size of a MPF header.
const MPFHeaderSize = 4

// Tags in the MPF index IFD.
const (
	MPFVersion        = 0xB000
	MPFNumberOfImages = 0xB001
	MPFEntry          = 0xB002
	MPFImageUIDList   = 0xB003
	MPFTotalFrames    = 0xB004
)

const mpfEntrySize = 16

var ErrNotMPF = errors.New("not a MPF segment")

// IsMPF reports whether the segment is an APP2 segment with a Multi-Picture
// Format header.
func IsMPF(seg Segment) bool {
	return seg.Marker == APP2 && len(seg.Data) >= MPFHeaderSize && bytes.Equal(seg.Data[:MPFHeaderSize], mpfHeader)
}

// MPFImage is one entry of the MP index.
type MPFImage struct {
	Attribute uint32
	Size      uint32
	Offset    uint32 // relative to the MPF TIFF header, 0 for the first image
	Dependent [2]uint16
}

// MPFIndex is the decoded MP index IFD of a MPF segment.
type MPFIndex struct {
	Version string
	Images  []MPFImage
	// Base is the absolute position of the TIFF header that image offsets
	// are relative to.
	Base int
}

// Position returns the absolute position of image i in the scanned file.
func (idx *MPFIndex) Position(i int) int {
	if idx.Images[i].Offset == 0 {
		return 0
	}
	return idx.Base + int(idx.Images[i].Offset)
}

// ParseMPF decodes the MP index of an APP2 segment found by a Scanner.
func ParseMPF(seg Segment) (*MPFIndex, error) {
	if !IsMPF(seg) {
		return nil, ErrNotMPF
	}
	buf := seg.Data[MPFHeaderSize:]
	if len(buf) < 8 {
		return nil, errors.New("MPF: short TIFF header")
	}

	var order binary.ByteOrder
	switch string(buf[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("MPF: invalid byte order %q", buf[:2])
	}
	if order.Uint16(buf[2:]) != 42 {
		return nil, errors.New("MPF: invalid TIFF magic")
	}

	// offsets are checked as uint64 so they cannot wrap on 32 bit ints
	size := uint64(len(buf))
	ifdOffset := order.Uint32(buf[4:])
	if uint64(ifdOffset)+2 > size {
		return nil, fmt.Errorf("MPF: IFD offset %d out of range", ifdOffset)
	}
	ifd := int(ifdOffset)
	count := int(order.Uint16(buf[ifd:]))
	if uint64(ifd)+2+uint64(count)*12 > size {
		return nil, fmt.Errorf("MPF: IFD with %d fields out of range", count)
	}

	// marker (2) + length (2) + MPF header
	idx := &MPFIndex{Base: seg.Offset + 4 + MPFHeaderSize}
	var entryCount, entryOffset uint32
	var numImages uint32
	for i := range count {
		field := buf[ifd+2+i*12 : ifd+2+(i+1)*12]
		tag := order.Uint16(field)
		switch tag {
		case MPFVersion:
			idx.Version = string(field[8:12])
		case MPFNumberOfImages:
			numImages = order.Uint32(field[8:])
		case MPFEntry:
			entryCount = order.Uint32(field[4:])
			entryOffset = order.Uint32(field[8:])
		}
	}

	if entryCount%mpfEntrySize != 0 {
		return nil, fmt.Errorf("MPF: entry field size %d is not a multiple of %d", entryCount, mpfEntrySize)
	}
	if uint64(entryOffset)+uint64(entryCount) > size {
		return nil, fmt.Errorf("MPF: entries at %d out of range", entryOffset)
	}
	n := entryCount / mpfEntrySize
	if numImages != 0 && numImages != n {
		return nil, fmt.Errorf("MPF: %d images declared, %d entries found", numImages, n)
	}
	for i := range n {
		e := buf[entryOffset+i*mpfEntrySize:]
		idx.Images = append(idx.Images, MPFImage{
			Attribute: order.Uint32(e),
			Size:      order.Uint32(e[4:]),
			Offset:    order.Uint32(e[8:]),
			Dependent: [2]uint16{order.Uint16(e[12:]), order.Uint16(e[14:])},
		})
	}
	return idx, nil
}

// AppendMPF appends a little endian MPF APP2 payload describing images of the
// given sizes. offsets are relative to the TIFF header, the first must be 0.
func AppendMPF(dst []byte, sizes, offsets []uint32) []byte {
	order := binary.LittleEndian
	n := len(sizes)
	const fields = 3
	ifdSize := 2 + fields*12 + 4
	entriesAt := 8 + ifdSize

	dst = append(dst, mpfHeader...)
	dst = append(dst, 'I', 'I')
	dst = order.AppendUint16(dst, 42)
	dst = order.AppendUint32(dst, 8)

	dst = order.AppendUint16(dst, fields)
	dst = order.AppendUint16(dst, MPFVersion)
	dst = order.AppendUint16(dst, 7) // UNDEFINED
	dst = order.AppendUint32(dst, 4)
	dst = append(dst, "0100"...)
	dst = order.AppendUint16(dst, MPFNumberOfImages)
	dst = order.AppendUint16(dst, 4) // LONG
	dst = order.AppendUint32(dst, 1)
	dst = order.AppendUint32(dst, uint32(n))
	dst = order.AppendUint16(dst, MPFEntry)
	dst = order.AppendUint16(dst, 7)
	dst = order.AppendUint32(dst, uint32(n*mpfEntrySize))
	dst = order.AppendUint32(dst, uint32(entriesAt))
	dst = order.AppendUint32(dst, 0) // no next IFD

	for i := range n {
		var attr uint32 = 0x020002 // multi-frame image, disparity
		if i == 0 {
			attr |= 0x20000000 // representative image
		}
		dst = order.AppendUint32(dst, attr)
		dst = order.AppendUint32(dst, sizes[i])
		dst = order.AppendUint32(dst, offsets[i])
		dst = order.AppendUint16(dst, 0)
		dst = order.AppendUint16(dst, 0)
	}
	return dst
}
