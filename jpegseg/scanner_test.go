package jpegseg

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"slices"
	"testing"
)

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 0x80, A: 0xFF})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("jpeg.Encode: %v", err)
	}
	return buf.Bytes()
}

func TestStreamLength(t *testing.T) {
	data := encodeJPEG(t, 16, 8)

	n, err := StreamLength(data)
	if err != nil {
		t.Fatalf("StreamLength: %v", err)
	}
	if n != len(data) {
		t.Errorf("expected length %d, got %d", len(data), n)
	}

	padded := append(append([]byte{}, data...), 0, 0, 0xFF, 0xD8, 0xFF, 0xE1)
	n, err = StreamLength(padded)
	if err != nil {
		t.Fatalf("StreamLength with trailing data: %v", err)
	}
	if n != len(data) {
		t.Errorf("trailing data: expected length %d, got %d", len(data), n)
	}
}

func TestStreamLengthErrors(t *testing.T) {
	data := encodeJPEG(t, 8, 8)

	if _, err := StreamLength(data[:len(data)-2]); !errors.Is(err, ErrTruncated) {
		t.Errorf("missing EOI: expected ErrTruncated, got %v", err)
	}
	if _, err := StreamLength(data[:10]); !errors.Is(err, ErrTruncated) {
		t.Errorf("cut header: expected ErrTruncated, got %v", err)
	}
	if _, err := StreamLength([]byte{0x89, 'P', 'N', 'G'}); !errors.Is(err, ErrNoSOI) {
		t.Errorf("not a JPEG: expected ErrNoSOI, got %v", err)
	}
}

func TestReadSegments(t *testing.T) {
	data := encodeJPEG(t, 8, 8)

	segments, err := ReadSegments(data)
	if err != nil {
		t.Fatalf("ReadSegments: %v", err)
	}
	if len(segments) < 4 {
		t.Fatalf("expected at least 4 segments, got %d", len(segments))
	}
	if segments[0].Marker != SOI || segments[0].Offset != 0 {
		t.Errorf("first segment: %s at %d", segments[0].Marker.Name(), segments[0].Offset)
	}
	last := segments[len(segments)-1]
	if last.Marker != EOI || last.Offset != len(data)-2 {
		t.Errorf("last segment: %s at %d", last.Marker.Name(), last.Offset)
	}

	var sawSOS, sawData bool
	for i, seg := range segments {
		switch seg.Marker {
		case SOS:
			sawSOS = true
		case 0:
			sawData = true
			if i == 0 || segments[i-1].Marker != SOS {
				t.Errorf("scan data at %d does not follow SOS", seg.Offset)
			}
		}
	}
	if !sawSOS || !sawData {
		t.Errorf("expected SOS and scan data, got SOS=%v data=%v", sawSOS, sawData)
	}
}

func TestHeaderPolicy(t *testing.T) {
	tests := []struct {
		name   string
		buf    []byte
		pos    int
		policy HeaderPolicy
		want   bool
	}{
		{"soi", []byte{0xFF, 0xD8}, 0, SOIOnly, true},
		{"soi at end", []byte{0x00, 0xFF, 0xD8}, 1, SOIOnly, true},
		{"soi cut", []byte{0x00, 0xFF}, 1, SOIOnly, false},
		{"not soi", []byte{0xFF, 0xD9}, 0, SOIOnly, false},
		{"negative", []byte{0xFF, 0xD8}, -1, SOIOnly, false},
		{"app1", []byte{0xFF, 0xD8, 0xFF, 0xE1}, 0, SOIAPP1, true},
		{"app0 strict", []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0, SOIAPP1, false},
		{"app0 loose", []byte{0xFF, 0xD8, 0xFF, 0xE0}, 0, SOIOnly, true},
		{"app1 cut", []byte{0xFF, 0xD8, 0xFF}, 0, SOIAPP1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.IsJPEGHeader(tt.buf, tt.pos); got != tt.want {
				t.Errorf("%s.IsJPEGHeader(% X, %d) = %v, want %v", tt.policy, tt.buf, tt.pos, got, tt.want)
			}
		})
	}
}

func TestMarkerNames(t *testing.T) {
	for m, want := range map[Marker]string{
		SOI:       "SOI",
		SOF0 + 2:  "SOF2",
		RST0 + 7:  "RST7",
		APP1:      "APP1",
		APP0 + 15: "APP15",
		0x02:      "RES02",
		COM:       "COM",
	} {
		if got := m.Name(); got != want {
			t.Errorf("Marker(0x%.2X).Name() = %q, want %q", uint8(m), got, want)
		}
	}
}

func TestMPFRoundTrip(t *testing.T) {
	payload := AppendMPF(nil, []uint32{1000, 900}, []uint32{0, 990})
	seg := Segment{Marker: APP2, Offset: 2, Data: payload}
	if !IsMPF(seg) {
		t.Fatal("expected MPF segment")
	}

	idx, err := ParseMPF(seg)
	if err != nil {
		t.Fatalf("ParseMPF: %v", err)
	}
	if idx.Version != "0100" {
		t.Errorf("version %q", idx.Version)
	}
	if len(idx.Images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(idx.Images))
	}
	if idx.Images[0].Size != 1000 || idx.Images[1].Size != 900 {
		t.Errorf("sizes %d, %d", idx.Images[0].Size, idx.Images[1].Size)
	}
	if idx.Base != 10 {
		t.Errorf("expected base 10, got %d", idx.Base)
	}
	if idx.Position(0) != 0 || idx.Position(1) != 1000 {
		t.Errorf("positions %d, %d", idx.Position(0), idx.Position(1))
	}

	if _, err := ParseMPF(Segment{Marker: APP1, Data: payload}); !errors.Is(err, ErrNotMPF) {
		t.Errorf("APP1: expected ErrNotMPF, got %v", err)
	}
}

func TestParseMPFOffsetsOutOfRange(t *testing.T) {
	payload := AppendMPF(nil, []uint32{1000, 900}, []uint32{0, 990})
	// TIFF header at 4, IFD at 8 from it, MPFEntry is the third 12 byte field
	const ifdAt, entriesAt = 4 + 4, 4 + 8 + 2 + 2*12 + 8

	for _, tc := range []struct {
		name string
		at   int
	}{
		{"IFD", ifdAt},
		{"entries", entriesAt},
	} {
		for _, off := range []uint32{0x7FFFFFFF, 0x80000000, 0xFFFFFFF0} {
			data := slices.Clone(payload)
			binary.LittleEndian.PutUint32(data[tc.at:], off)
			if _, err := ParseMPF(Segment{Marker: APP2, Data: data}); err == nil {
				t.Errorf("%s offset 0x%08X: expected an error", tc.name, off)
			}
		}
	}
}
