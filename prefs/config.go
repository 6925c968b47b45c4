// Package prefs holds the display preferences of a viewing session.
package prefs

import (
	"image/color"
	"time"

	"ssmv/jpegseg"
	"ssmv/stereo"
)

const (
	DefaultHGap        = 10
	DefaultHBorder     = 10
	DefaultVBorder     = 10
	DefaultWiggleDelay = 80 // milliseconds
)

// Config is an immutable snapshot of the display preferences. Changing a
// preference means building a new Config and handing it to the session.
type Config struct {
	HGap        int
	HBorder     int
	VBorder     int
	Swap        bool
	HelpPoints  bool
	Mode        stereo.Mode
	WiggleDelay int // milliseconds
	MaskIndex   int
	Gray        bool
	Header      jpegseg.HeaderPolicy
	Background  color.Color
	Foreground  color.Color
}

func Defaults() Config {
	return Config{
		HGap:        DefaultHGap,
		HBorder:     DefaultHBorder,
		VBorder:     DefaultVBorder,
		HelpPoints:  true,
		Mode:        stereo.Cross,
		WiggleDelay: DefaultWiggleDelay,
		Header:      jpegseg.DefaultHeaderPolicy,
		Background:  color.Black,
		Foreground:  color.White,
	}
}

// Normalize returns c with every value brought into its valid range:
// negative sizes and delays become 0, an unknown mask index selects the
// first mask and missing colors take their defaults.
func (c Config) Normalize() Config {
	c.HGap = max(c.HGap, 0)
	c.HBorder = max(c.HBorder, 0)
	c.VBorder = max(c.VBorder, 0)
	c.WiggleDelay = max(c.WiggleDelay, 0)
	if c.MaskIndex < 0 || c.MaskIndex >= len(stereo.Masks) {
		c.MaskIndex = 0
	}
	switch c.Mode {
	case stereo.Cross, stereo.Anaglyph, stereo.Wiggle:
	default:
		c.Mode = stereo.Cross
	}
	switch c.Header {
	case jpegseg.SOIOnly, jpegseg.SOIAPP1:
	default:
		c.Header = jpegseg.DefaultHeaderPolicy
	}
	if c.Background == nil {
		c.Background = color.Black
	}
	if c.Foreground == nil {
		c.Foreground = color.White
	}
	return c
}

func (c Config) Mask() stereo.ChannelMask {
	return stereo.MaskByIndex(c.MaskIndex)
}

func (c Config) Layout() stereo.Layout {
	return stereo.Layout{HGap: c.HGap, HBorder: c.HBorder, VBorder: c.VBorder}
}

// Delay returns the wiggle interval. A zero delay is raised to a millisecond
// so the alternation never spins.
func (c Config) Delay() time.Duration {
	return max(time.Duration(c.WiggleDelay)*time.Millisecond, time.Millisecond)
}
