package config

import (
	"encoding/hex"
	"image/color"
	"strings"
)

var namedColors = map[string]color.NRGBA{
	"transparent": {},
	"black":       {A: 255},
	"white":       {R: 255, G: 255, B: 255, A: 255},
	"red":         {R: 255, A: 255},
	"green":       {G: 128, A: 255},
	"lime":        {G: 255, A: 255},
	"blue":        {B: 255, A: 255},
	"yellow":      {R: 255, G: 255, A: 255},
	"gray":        {R: 128, G: 128, B: 128, A: 255},
	"grey":        {R: 128, G: 128, B: 128, A: 255},
}

// ParseColor reads #RRGGBB, RRGGBB, #AARRGGBB or a color name. Anything else yields fallback.
func ParseColor(value string, fallback color.NRGBA) color.NRGBA {
	value = strings.TrimSpace(value)
	if named, found := namedColors[strings.ToLower(value)]; found {
		return named
	}
	digits := strings.TrimPrefix(value, "#")
	if len(digits) == 8 && !strings.HasPrefix(value, "#") {
		return fallback
	}
	raw, err := hex.DecodeString(digits)
	if err != nil {
		return fallback
	}
	switch len(raw) {
	case 3:
		return color.NRGBA{R: raw[0], G: raw[1], B: raw[2], A: 255}
	case 4:
		return color.NRGBA{A: raw[0], R: raw[1], G: raw[2], B: raw[3]}
	default:
		return fallback
	}
}
