package main

import (
	"log/slog"
	"os"

	"ssmv/extract"
	"ssmv/inspect"
	"ssmv/join"
	"ssmv/parallel"
	"ssmv/render"

	"github.com/alecthomas/kong"
)

var cli struct {
	LogLevel string `help:"Log level" enum:"debug,info,warn,error" default:"info"`
	Workers  int    `help:"Number of parallel workers, one per CPU if 0" default:"0"`

	Info    inspect.CLICmd  `cmd:"" help:"Show how MPO files split into their two images"`
	Extract extract.CLICmd  `cmd:"" help:"Save the views or the anaglyph of an MPO file"`
	Render  render.CLICmd   `cmd:"" help:"Render an MPO file as a cross-eyed, anaglyph or wiggle panel"`
	Batch   render.BatchCmd `cmd:"" help:"Render every MPO file of a folder"`
	Join    join.CLICmd     `cmd:"" help:"Build an MPO file from a left and a right image"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("ssmv"),
		kong.Description("Stereo MPO viewer: split, render and build stereo pairs."),
		kong.UsageOnError(),
		kong.Configuration(kong.JSON, "~/.config/ssmv/config.json", ".ssmv.json"),
	)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cli.LogLevel)); err != nil {
		kctx.FatalIfErrorf(err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	pool := parallel.Start(cli.Workers)
	defer pool.Cancel()

	err := kctx.Run(pool.Do, pool.Wait)
	kctx.FatalIfErrorf(err)
}
