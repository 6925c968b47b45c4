package stereo

import (
	"fmt"
	"strings"
)

// ChannelMask selects, per RGB channel, which eye a channel is taken from:
// set bits come from the left view, cleared bits from the right view.
type ChannelMask uint32

const (
	RedCyan      ChannelMask = 0xFF0000
	GreenMagenta ChannelMask = 0x00FF00
	BlueYellow   ChannelMask = 0x0000FF
)

// Masks lists the supported masks by configuration index.
var Masks = []ChannelMask{RedCyan, GreenMagenta, BlueYellow}

// MaskByIndex returns the mask for a configuration index. Indexes out of
// range select RedCyan.
func MaskByIndex(i int) ChannelMask {
	if i < 0 || i >= len(Masks) {
		return Masks[0]
	}
	return Masks[i]
}

// Complement returns the mask selecting the other eye's channels.
func (m ChannelMask) Complement() ChannelMask {
	return ^m & 0xFFFFFF
}

func (m ChannelMask) String() string {
	switch m {
	case RedCyan:
		return "red/cyan"
	case GreenMagenta:
		return "green/magenta"
	case BlueYellow:
		return "blue/yellow"
	}
	return fmt.Sprintf("0x%06X", uint32(m))
}

// Mode is the way the two views are presented.
type Mode int

const (
	Cross Mode = iota
	Anaglyph
	Wiggle
)

func (m Mode) String() string {
	switch m {
	case Anaglyph:
		return "Anaglyph"
	case Wiggle:
		return "Wiggle"
	default:
		return "Cross"
	}
}

// ParseMode parses a mode name, ignoring case. Unknown names select Cross.
func ParseMode(s string) Mode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "anaglyph":
		return Anaglyph
	case "wiggle":
		return Wiggle
	default:
		return Cross
	}
}
