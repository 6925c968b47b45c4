// Package join builds an MPO file from a left and a right image.
package join

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"ssmv/codec"
	"ssmv/mpo"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Left    string `arg:"" help:"Left eye image" type:"existingfile"`
	Right   string `arg:"" help:"Right eye image" type:"existingfile"`
	Out     string `arg:"" help:"Destination MPO file"`
	Quality int    `help:"JPEG quality" default:"95"`
	Force   bool   `help:"Overwrite an existing file" default:"false"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("invalid JPEG quality: %d", c.Quality)
	}
	out, err := filepath.Abs(c.Out)
	if err != nil {
		return fmt.Errorf("invalid destination path %q: %w", c.Out, err)
	}
	c.Out = out
	return nil
}

func (c *CLICmd) Run() error {
	logger := slog.Default().With("file", c.Out)

	left, leftType, err := codec.Load(c.Left)
	if err != nil {
		return err
	}
	right, rightType, err := codec.Load(c.Right)
	if err != nil {
		return err
	}
	logger.Debug("loaded", "left", leftType, "right", rightType)

	data, err := codec.Assemble(left, right, codec.Options{Quality: c.Quality})
	if err != nil {
		return fmt.Errorf("could not join %q and %q: %w", c.Left, c.Right, err)
	}

	// the result has to split back into the same pair
	container, err := mpo.Split(data, codec.JPEG{})
	if err != nil {
		return fmt.Errorf("could not verify joined stream: %w", err)
	}

	if err = codec.WriteFile(c.Out, c.Force, func(w io.Writer) error {
		_, err := io.Copy(w, bytes.NewReader(data))
		return err
	}); err != nil {
		return err
	}
	logger.Info("joined", "bytes", len(data), "first", container.First.Len(), "second", container.Second.Len())
	return nil
}
