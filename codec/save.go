package codec

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
)

var ErrExists = errors.New("destination file already exists")

// Save encodes img into path, choosing the format from the path extension.
// Existing files are only replaced when force is set.
func Save(path string, img image.Image, force bool, opts Options) error {
	ext := Ext(path)
	if ext == "" {
		return fmt.Errorf("could not save %q: %w", path, ErrNoExtension)
	}
	if !Supported(ext) {
		return fmt.Errorf("could not save %q: %w: %q", path, ErrUnsupportedFormat, ext)
	}
	return WriteFile(path, force, func(w io.Writer) error {
		return Encode(w, img, ext, opts)
	})
}

// WriteFile writes to a temporary file next to path and renames it into
// place once write succeeded, so path never holds a partial file.
func WriteFile(path string, force bool, write func(io.Writer) error) (err error) {
	if err := checkDest(path, force); err != nil {
		return err
	}

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	outFile, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary destination for %q: %w", path, err)
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = fmt.Errorf("could not flush temporary destination for %q: %w", path, defErr)
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = fmt.Errorf("could not close temporary destination for %q: %w", path, defErr)
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = fmt.Errorf("could not rename destination file %q: %w", path, defErr)
			}
		}
		if err != nil {
			if rmErr := os.Remove(outFile.Name()); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", rmErr)
			}
		}
	}()

	if err = write(outFile); err != nil {
		return fmt.Errorf("could not write %q: %w", path, err)
	}

	canRename = true
	return nil
}

func checkDest(dest string, force bool) error {
	destFileInfo, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("cannot stat destination file %q: %w", dest, err)
		}
		return nil
	}
	if !destFileInfo.Mode().IsRegular() {
		return fmt.Errorf("cannot overwrite non-regular file %q: %s", dest, destFileInfo.Mode().String())
	}
	if !force {
		return fmt.Errorf("%w: %q", ErrExists, dest)
	}
	return nil
}
