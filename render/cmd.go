// Package render draws stereo pairs into panel images, one file at a time
// or for a whole folder.
package render

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"ssmv/codec"
	"ssmv/prefs"
	"ssmv/stereo"
	"ssmv/viewer"

	"github.com/alecthomas/kong"
)

// Output holds the flags shared by the commands that write rendered panels.
type Output struct {
	Force     bool `help:"Overwrite existing files" default:"false"`
	Quality   int  `help:"JPEG quality" default:"95"`
	MaxWidth  int  `help:"Scale the panel down to at most this width" group:"resize"`
	MaxHeight int  `help:"Scale the panel down to at most this height" group:"resize"`

	GIFPalette string        `name:"gif-palette" help:"RIFF PAL file the wiggle animation is dithered to, Plan 9 colors if not given"`
	Palette    color.Palette `kong:"-"`
}

func (o *Output) Validate() error {
	switch {
	case o.Quality < 1 || o.Quality > 100:
		return fmt.Errorf("invalid JPEG quality: %d", o.Quality)
	case o.MaxWidth < 0:
		return fmt.Errorf("invalid max width: %d", o.MaxWidth)
	case o.MaxHeight < 0:
		return fmt.Errorf("invalid max height: %d", o.MaxHeight)
	}

	if o.GIFPalette != "" {
		var err error
		if o.Palette, err = codec.LoadPalette(o.GIFPalette); err != nil {
			return err
		}
	}
	return nil
}

type CLICmd struct {
	File string `arg:"" help:"MPO file to render" type:"existingfile"`
	Out  string `arg:"" help:"Destination image, the extension selects the format. Wiggle mode needs a .gif"`

	Output
	prefs.Flags
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := c.Flags.Validate(kctx); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}

	out, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Out, err)
	}
	c.Out = out

	return checkFormat(codec.Ext(c.Out), stereo.ParseMode(c.Mode))
}

func checkFormat(ext string, mode stereo.Mode) error {
	switch {
	case ext == "":
		return codec.ErrNoExtension
	case mode == stereo.Wiggle && ext != "gif":
		return fmt.Errorf("wiggle mode renders an animation and needs a gif destination, not %q", ext)
	case !codec.Supported(ext):
		return fmt.Errorf("%w: %q", codec.ErrUnsupportedFormat, ext)
	}
	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.File)
	if err := renderFile(logger, c.Flags.Config(), &c.Output, c.File, c.Out); err != nil {
		return err
	}
	logger.Info("rendered", "to", c.Out)
	return nil
}

// renderFile loads one MPO file and writes its panel to dest. In wiggle mode
// the panel is written as a two frame animation.
func renderFile(logger *slog.Logger, cfg prefs.Config, out *Output, src, dest string) error {
	if cfg.Mode == stereo.Wiggle {
		frames, err := wiggleFrames(logger, cfg, src)
		if err != nil {
			return err
		}
		for i, frame := range frames {
			frames[i] = fit(logger, frame, out.MaxWidth, out.MaxHeight)
		}
		return codec.WriteFile(dest, out.Force, func(w io.Writer) error {
			return codec.EncodeWiggle(w, frames, cfg.Delay(), out.Palette)
		})
	}

	session := viewer.New(codec.JPEG{}, cfg, viewer.WithLogger(logger))
	defer session.Close()

	if err := session.LoadFile(src); err != nil {
		return err
	}

	img, err := session.Render()
	if err != nil {
		return fmt.Errorf("could not render %q: %w", src, err)
	}
	return codec.Save(dest, fit(logger, img, out.MaxWidth, out.MaxHeight), out.Force, codec.Options{Quality: out.Quality})
}

type wiggleShot struct {
	turn bool
	img  *image.NRGBA
	err  error
}

// wiggleFrames loads src into a session running the wiggle timer and
// collects the panels redrawn for both turns, left view first.
func wiggleFrames(logger *slog.Logger, cfg prefs.Config, src string) ([]image.Image, error) {
	shots := make(chan wiggleShot, 4)
	var session *viewer.Session
	// redraw only runs once a pair is loaded, after session is set
	session = viewer.New(codec.JPEG{}, cfg,
		viewer.WithLogger(logger),
		viewer.WithRedraw(func(turn bool) {
			img, err := session.RenderTurn(turn)
			select {
			case shots <- wiggleShot{turn: turn, img: img, err: err}:
			default:
			}
		}))
	defer session.Close()

	if err := session.LoadFile(src); err != nil {
		return nil, err
	}

	timeout := time.NewTimer(4*cfg.Delay() + 10*time.Second)
	defer timeout.Stop()

	frames := make([]image.Image, 2)
	for frames[0] == nil || frames[1] == nil {
		select {
		case shot := <-shots:
			if shot.err != nil {
				return nil, fmt.Errorf("could not render %q: %w", src, shot.err)
			}
			i := 0
			if shot.turn {
				i = 1
			}
			frames[i] = shot.img
			logger.Debug("wiggle frame", "turn", shot.turn)
		case <-timeout.C:
			return nil, fmt.Errorf("could not render %q: wiggle timer produced no frames", src)
		}
	}
	return frames, nil
}
