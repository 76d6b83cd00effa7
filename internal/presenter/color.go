package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/newthinker/cryptosignals/internal/core"
)

// Color is an ARGB display color.
type Color struct {
	A, R, G, B uint8
}

// DefaultScoreColor tints the score when the feed color is unusable.
var DefaultScoreColor = Color{A: 0xFF, R: 0x00, G: 0xC8, B: 0x53}

// Hex returns the color as #RRGGBB, or #AARRGGBB when not opaque.
func (c Color) Hex() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// CSS returns an rgba() expression usable in a style attribute.
func (c Color) CSS() string {
	return fmt.Sprintf("rgba(%d,%d,%d,%.3f)", c.R, c.G, c.B, float64(c.A)/255)
}

// ANSI returns the 24-bit terminal foreground escape for the color.
func (c Color) ANSI() string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

var namedColors = map[string]Color{
	"black":     {0xFF, 0x00, 0x00, 0x00},
	"darkgray":  {0xFF, 0x44, 0x44, 0x44},
	"darkgrey":  {0xFF, 0x44, 0x44, 0x44},
	"gray":      {0xFF, 0x88, 0x88, 0x88},
	"grey":      {0xFF, 0x88, 0x88, 0x88},
	"lightgray": {0xFF, 0xCC, 0xCC, 0xCC},
	"lightgrey": {0xFF, 0xCC, 0xCC, 0xCC},
	"white":     {0xFF, 0xFF, 0xFF, 0xFF},
	"red":       {0xFF, 0xFF, 0x00, 0x00},
	"green":     {0xFF, 0x00, 0xFF, 0x00},
	"blue":      {0xFF, 0x00, 0x00, 0xFF},
	"yellow":    {0xFF, 0xFF, 0xFF, 0x00},
	"cyan":      {0xFF, 0x00, 0xFF, 0xFF},
	"magenta":   {0xFF, 0xFF, 0x00, 0xFF},
	"aqua":      {0xFF, 0x00, 0xFF, 0xFF},
	"fuchsia":   {0xFF, 0xFF, 0x00, 0xFF},
	"darkgreen": {0xFF, 0x00, 0x64, 0x00},
	"lime":      {0xFF, 0x00, 0xFF, 0x00},
	"maroon":    {0xFF, 0x80, 0x00, 0x00},
	"navy":      {0xFF, 0x00, 0x00, 0x80},
	"olive":     {0xFF, 0x80, 0x80, 0x00},
	"purple":    {0xFF, 0x80, 0x00, 0x80},
	"silver":    {0xFF, 0xC0, 0xC0, 0xC0},
	"teal":      {0xFF, 0x00, 0x80, 0x80},
}

// ParseColor parses #RGB, #RRGGBB, #AARRGGBB or a basic color name.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Color{}, core.WrapError(core.ErrColorInvalid, fmt.Errorf("empty color"))
	}

	if !strings.HasPrefix(s, "#") {
		if c, ok := namedColors[strings.ToLower(s)]; ok {
			return c, nil
		}
		return Color{}, core.WrapError(core.ErrColorInvalid, fmt.Errorf("unknown color %q", s))
	}

	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		fallthrough
	case 6:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, core.WrapError(core.ErrColorInvalid, fmt.Errorf("parsing %q: %w", s, err))
		}
		return Color{A: 0xFF, R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	case 8:
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return Color{}, core.WrapError(core.ErrColorInvalid, fmt.Errorf("parsing %q: %w", s, err))
		}
		return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
	default:
		return Color{}, core.WrapError(core.ErrColorInvalid, fmt.Errorf("unexpected length in %q", s))
	}
}
