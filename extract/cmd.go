// Package extract saves the views of a stereo pair, or their anaglyph, as
// separate images.
package extract

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"ssmv/codec"
	"ssmv/prefs"
	"ssmv/viewer"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	File     string `arg:"" help:"MPO file to extract from" type:"existingfile"`
	Left     string `help:"Destination of the image shown on the left in cross mode (the right eye view unless swapped)" group:"output"`
	Right    string `help:"Destination of the image shown on the right in cross mode" group:"output"`
	Anaglyph string `help:"Destination of the anaglyph" group:"output"`
	Force    bool   `help:"Overwrite existing files" default:"false"`
	Quality  int    `help:"JPEG quality" default:"95"`

	prefs.Flags
}

func (c *CLICmd) targets() map[viewer.Target]*string {
	return map[viewer.Target]*string{
		viewer.ScreenLeft:  &c.Left,
		viewer.ScreenRight: &c.Right,
		viewer.Anaglyph:    &c.Anaglyph,
	}
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if err := c.Flags.Validate(kctx); err != nil {
		return err
	}
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid JPEG quality: %d", c.Quality)
	}

	var count int
	for target, path := range c.targets() {
		if *path == "" {
			continue
		}
		count++

		ext := codec.Ext(*path)
		if ext == "" {
			return fmt.Errorf("invalid %s destination %q: %w", target, *path, codec.ErrNoExtension)
		}
		if !codec.Supported(ext) {
			return fmt.Errorf("invalid %s destination %q: %w: %q", target, *path, codec.ErrUnsupportedFormat, ext)
		}
		abs, err := filepath.Abs(*path)
		if err != nil {
			return fmt.Errorf("invalid %s destination %q: %w", target, *path, err)
		}
		*path = abs
	}
	if count == 0 {
		return fmt.Errorf("nothing to extract, give at least one of --left, --right or --anaglyph")
	}
	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.File)
	session := viewer.New(codec.JPEG{}, c.Flags.Config(),
		viewer.WithLogger(logger),
		viewer.WithEncoder(codec.Encoder{Options: codec.Options{Quality: c.Quality}}))
	defer session.Close()

	if err := session.LoadFile(c.File); err != nil {
		return err
	}

	var errCount int
	for _, target := range []viewer.Target{viewer.ScreenLeft, viewer.ScreenRight, viewer.Anaglyph} {
		path := *c.targets()[target]
		if path == "" {
			continue
		}
		if err := session.Save(target, path, c.Force); err != nil {
			errCount++
			logger.Error("could not save image", "image", string(target), "error", err)
		}
	}

	if errCount > 0 {
		return fmt.Errorf("error saving %d images", errCount)
	}
	return nil
}
