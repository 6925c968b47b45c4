package prefs

import (
	"fmt"
	"image/color"

	"ssmv/jpegseg"
	"ssmv/stereo"

	"github.com/alecthomas/kong"
)

// Flags are the display preferences as command line flags. Embedded in
// commands that render a stereo pair; flag names double as keys of the
// JSON configuration files.
type Flags struct {
	HGap         int    `name:"hgap" help:"Gap between the two views in cross mode" default:"10" group:"display"`
	HBorder      int    `name:"hborder" help:"Left and right border" default:"10" group:"display"`
	VBorder      int    `name:"vborder" help:"Top and bottom border, also holds the help points" default:"10" group:"display"`
	Swap         bool   `help:"Swap left and right views (wall-eyed viewing)" default:"false" group:"display"`
	HelpPoints   bool   `help:"Draw alignment dots above the views in cross mode" default:"true" negatable:"" group:"display"`
	Mode         string `help:"Display mode" enum:"cross,anaglyph,wiggle" default:"cross" group:"display"`
	WiggleDelay  int    `help:"Wiggle interval in milliseconds" default:"80" group:"display"`
	Mask         int    `help:"Anaglyph mask: 0 red/cyan, 1 green/magenta, 2 blue/yellow" default:"0" group:"display"`
	Gray         bool   `help:"Merge perceptual lightness instead of color in anaglyph mode" default:"false" group:"display"`
	StrictHeader bool   `help:"Only accept a second image starting with SOI followed by APP1" default:"false" group:"display"`
	Background   string `help:"Panel background as #RGB, #RGBA, #RRGGBB or #RRGGBBAA" default:"#000" group:"display"`
	Foreground   string `help:"Help point color" default:"#FFF" group:"display"`

	BackgroundColor color.Color `kong:"-"`
	ForegroundColor color.Color `kong:"-"`
}

func (f *Flags) Validate(kctx *kong.Context) error {
	var err error
	if f.HGap < 0 || f.HBorder < 0 || f.VBorder < 0 {
		return fmt.Errorf("invalid spacing: gap %d, borders %d/%d", f.HGap, f.HBorder, f.VBorder)
	}
	if f.WiggleDelay < 0 {
		return fmt.Errorf("invalid wiggle delay: %d", f.WiggleDelay)
	}
	if f.Mask < 0 || f.Mask >= len(stereo.Masks) {
		return fmt.Errorf("invalid anaglyph mask: %d", f.Mask)
	}
	if f.BackgroundColor, err = ParseHexColor(f.Background); err != nil {
		return fmt.Errorf("invalid background: %w", err)
	}
	if f.ForegroundColor, err = ParseHexColor(f.Foreground); err != nil {
		return fmt.Errorf("invalid foreground: %w", err)
	}
	return nil
}

// Config returns the normalized preferences the flags describe.
func (f *Flags) Config() Config {
	c := Config{
		HGap:        f.HGap,
		HBorder:     f.HBorder,
		VBorder:     f.VBorder,
		Swap:        f.Swap,
		HelpPoints:  f.HelpPoints,
		Mode:        stereo.ParseMode(f.Mode),
		WiggleDelay: f.WiggleDelay,
		MaskIndex:   f.Mask,
		Gray:        f.Gray,
		Header:      jpegseg.SOIOnly,
		Background:  f.BackgroundColor,
		Foreground:  f.ForegroundColor,
	}
	if f.StrictHeader {
		c.Header = jpegseg.SOIAPP1
	}
	return c.Normalize()
}

// ParseHexColor parses #RGB, #RGBA, #RRGGBB and #RRGGBBAA colors.
func ParseHexColor(s string) (color.Color, error) {
	var c color.NRGBA
	switch len(s) {
	case 4:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A = 0xFF
	case 5:
		n, err := fmt.Sscanf(s, "#%1x%1x%1x%1x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.R |= c.R << 4
		c.G |= c.G << 4
		c.B |= c.B << 4
		c.A |= c.A << 4
	case 7:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x", &c.R, &c.G, &c.B)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 3 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}

		c.A = 0xFF
	case 9:
		n, err := fmt.Sscanf(s, "#%2x%2x%2x%2x", &c.R, &c.G, &c.B, &c.A)
		if err != nil {
			return nil, fmt.Errorf("could not read color: %w", err)
		} else if n < 4 {
			return nil, fmt.Errorf("insufficient color fields: %d", n)
		}
	default:
		return nil, fmt.Errorf("invalid color %q, should be #RGB, #RGBA, #RRGGBB or #RRGGBBAA", s)
	}

	return c, nil
}
