package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"ssmv/parallel"
	"ssmv/prefs"
	"ssmv/stereo"

	"github.com/alecthomas/kong"
)

type BatchCmd struct {
	Scan   string `help:"Source folder to scan for .mpo files" default:"."`
	Dest   string `help:"Destination folder for rendered panels. Relative to scan dir if not absolute." default:"rendered"`
	Format string `help:"Output format of rendered panels. Wiggle mode always writes gif" enum:"png,jpeg,jpg,gif,bmp,tiff" default:"png"`

	Output
	prefs.Flags
}

func (c *BatchCmd) Validate(kctx *kong.Context) error {
	if err := c.Flags.Validate(kctx); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}

	scanDir, err := filepath.Abs(c.Scan)
	var info os.FileInfo
	if err == nil {
		if info, err = os.Stat(scanDir); err == nil && !info.IsDir() {
			err = fmt.Errorf("not a directory")
		}
	}
	if err != nil {
		return fmt.Errorf("invalid scan path %q: %w", c.Scan, err)
	}
	c.Scan = scanDir

	if !filepath.IsAbs(c.Dest) {
		c.Dest = filepath.Join(scanDir, c.Dest)
	}

	if stereo.ParseMode(c.Mode) == stereo.Wiggle {
		c.Format = "gif"
	}
	return checkFormat(c.Format, stereo.ParseMode(c.Mode))
}

// IsMPO reports whether name has the conventional MPO extension.
func IsMPO(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".mpo")
}

func (c *BatchCmd) Run(worker parallel.WorkerFunc, wait parallel.WaitFunc) error {
	if err := os.MkdirAll(c.Dest, 0o755); err != nil {
		return fmt.Errorf("unable to create destination folder %q: %w", c.Dest, err)
	}

	files, err := os.ReadDir(c.Scan)
	if err != nil {
		return fmt.Errorf("unable to read folder %q: %w", c.Scan, err)
	}

	cfg := c.Flags.Config()
	for _, file := range files {
		if file.IsDir() || !IsMPO(file.Name()) {
			continue
		}

		worker(func(fileName string) parallel.Task {
			return func() error {
				filePath := filepath.Join(c.Scan, fileName)
				logger := slog.Default().With("file", filePath)

				base := strings.TrimSuffix(fileName, filepath.Ext(fileName))
				dest := filepath.Join(c.Dest, base+"."+c.Format)
				if err := renderFile(logger, cfg, &c.Output, filePath, dest); err != nil {
					logger.Error("could not render image", "dir", c.Dest, "error", err)
					return err
				}
				logger.Info("rendered", "to", dest)
				return nil
			}
		}(file.Name()))
	}

	stats := wait(true)
	slog.Info("stats", "processed", stats.Processed, "errors", stats.Failed,
		"total", stats.Total())

	if stats.Failed > 0 {
		return fmt.Errorf("error processing %d files", stats.Failed)
	}
	return nil
}
