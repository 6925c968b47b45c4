package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"

	"golang.org/x/image/riff"
)

/*
A RIFF palette data chunk holds a LOGPALETTE:

typedef struct tagLOGPALETTE {
  WORD         palVersion;
  WORD         palNumEntries;
  PALETTEENTRY palPalEntry[1];
} LOGPALETTE;

typedef struct tagPALETTEENTRY {
  BYTE peRed;
  BYTE peGreen;
  BYTE peBlue;
  BYTE peFlags;
} PALETTEENTRY;
*/

var (
	riffType = riff.FourCC{'R', 'I', 'F', 'F'}
	palType  = riff.FourCC{'P', 'A', 'L', ' '}
	dataType = riff.FourCC{'d', 'a', 't', 'a'}
)

const palVersion = 0x0300

var ErrNoPalette = errors.New("no palette in RIFF stream")

// LoadPalette reads the first palette of a RIFF PAL file.
func LoadPalette(path string) (color.Palette, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open palette %q: %w", path, err)
	}
	defer f.Close()

	pal, err := ReadPalette(f)
	if err != nil {
		return nil, fmt.Errorf("could not read palette %q: %w", path, err)
	}
	return pal, nil
}

// ReadPalette reads the first palette of a RIFF PAL stream. GIF frames take
// at most 256 colors, longer palettes are refused.
func ReadPalette(r io.Reader) (color.Palette, error) {
	formType, rd, err := riff.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("could not open RIFF stream: %w", err)
	} else if formType != palType {
		return nil, fmt.Errorf("unsupported RIFF content type: %s", string(formType[:]))
	}

	for {
		id, _, data, err := rd.Next()
		if err == io.EOF {
			return nil, ErrNoPalette
		} else if err != nil {
			return nil, fmt.Errorf("could not read chunk: %w", err)
		}
		if id == dataType {
			return readPalette(data)
		}
	}
}

func readPalette(r io.Reader) (color.Palette, error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, fmt.Errorf("could not read palette header: %w", err)
	}
	if ver := binary.LittleEndian.Uint16(head[:]); ver != palVersion {
		return nil, fmt.Errorf("unsupported palette version: 0x%04X", ver)
	}

	count := int(binary.LittleEndian.Uint16(head[2:]))
	if count == 0 || count > 256 {
		return nil, fmt.Errorf("unsupported number of palette entries: %d", count)
	}

	entries := make([]byte, count*4)
	if _, err := io.ReadFull(r, entries); err != nil {
		return nil, fmt.Errorf("could not read %d palette entries: %w", count, err)
	}
	pal := make(color.Palette, count)
	for i := range pal {
		e := entries[i*4:]
		pal[i] = color.RGBA{R: e[0], G: e[1], B: e[2], A: 0xFF}
	}
	return pal, nil
}

// WritePalette writes pal as a RIFF PAL stream with a single data chunk.
func WritePalette(w io.Writer, pal color.Palette) error {
	chunkSize := 4 + len(pal)*4
	buf := make([]byte, 0, 20+chunkSize)
	buf = append(buf, riffType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(4+8+chunkSize))
	buf = append(buf, palType[:]...)
	buf = append(buf, dataType[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(chunkSize))
	buf = binary.LittleEndian.AppendUint16(buf, palVersion)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(pal)))
	for _, col := range pal {
		c := color.NRGBAModel.Convert(col).(color.NRGBA)
		buf = append(buf, c.R, c.G, c.B, 0)
	}

	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("could not write palette: %w", err)
	}
	return nil
}
