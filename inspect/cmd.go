// Package inspect reports how MPO files split into their two images.
package inspect

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"ssmv/codec"
	"ssmv/jpegseg"
	"ssmv/mpo"
	"ssmv/prefs"
	"ssmv/viewer"
)

type CLICmd struct {
	Files        []string `arg:"" help:"MPO files to inspect"`
	Segments     bool     `help:"List the JPEG segments of both images" default:"false"`
	StrictHeader bool     `help:"Only accept a second image starting with SOI followed by APP1" default:"false"`

	Out io.Writer `kong:"-"`
}

func (c *CLICmd) Run() error {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	policy := jpegseg.DefaultHeaderPolicy
	if c.StrictHeader {
		policy = jpegseg.SOIAPP1
	}

	var errCount int
	for _, name := range c.Files {
		logger := slog.Default().With("file", name)
		data, err := os.ReadFile(name)
		if err != nil {
			errCount++
			logger.Error("could not read file", "error", err)
			continue
		}
		if err = Describe(out, name, data, policy, c.Segments); err != nil {
			errCount++
			logger.Error("could not split file", "error", err)
		}
	}

	if errCount > 0 {
		return fmt.Errorf("error inspecting %d files", errCount)
	}
	return nil
}

// Describe splits data and writes a report of both images to w.
func Describe(w io.Writer, name string, data []byte, policy jpegseg.HeaderPolicy, segments bool) error {
	cfg := prefs.Defaults()
	cfg.Header = policy
	session := viewer.New(codec.JPEG{}, cfg)
	defer session.Close()
	if err := session.Load(data); err != nil {
		return err
	}
	c, err := session.Container()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%d bytes\theader %s\n", name, len(data), policy)
	for i, img := range []struct {
		label string
		r     mpo.Range
		size  [2]int
	}{
		{"left", c.First, [2]int{c.Left.Bounds().Dx(), c.Left.Bounds().Dy()}},
		{"right", c.Second, [2]int{c.Right.Bounds().Dx(), c.Right.Bounds().Dy()}},
	} {
		fmt.Fprintf(tw, "  image %d (%s)\t[%d, %d)\t%d bytes\t%dx%d\n",
			i+1, img.label, img.r.Start, img.r.End, img.r.Len(), img.size[0], img.size[1])
	}
	if trailing := len(data) - c.Second.End; trailing > 0 {
		fmt.Fprintf(tw, "  trailing data\t[%d, %d)\t%d bytes\t\n", c.Second.End, len(data), trailing)
	}

	for i, r := range []mpo.Range{c.First, c.Second} {
		segs, err := jpegseg.ReadSegments(data[r.Start:r.End])
		if err != nil {
			fmt.Fprintf(tw, "  image %d\tsegments unreadable: %v\t\t\n", i+1, err)
			continue
		}
		for _, seg := range segs {
			if jpegseg.IsMPF(seg) {
				describeMPF(tw, i+1, r.Start, seg)
			}
		}
		if !segments {
			continue
		}
		for _, seg := range segs {
			fmt.Fprintf(tw, "    %d\t%s\tat %d\t%d bytes\n", i+1, seg.Marker.Name(), r.Start+seg.Offset, len(seg.Data))
		}
	}
	return tw.Flush()
}

func describeMPF(w io.Writer, image, start int, seg jpegseg.Segment) {
	idx, err := jpegseg.ParseMPF(seg)
	if err != nil {
		fmt.Fprintf(w, "  image %d MPF\tunreadable: %v\t\t\n", image, err)
		return
	}
	fmt.Fprintf(w, "  image %d MPF\tversion %s\t%d entries\t\n", image, idx.Version, len(idx.Images))
	for i, e := range idx.Images {
		fmt.Fprintf(w, "    entry %d\tat %d\t%d bytes\tattribute 0x%08X\n", i+1, start+idx.Position(i), e.Size, e.Attribute)
	}
}
