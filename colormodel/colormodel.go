// Package colormodel converts subtitle palette entries to RGB and resolves the
// final color of a palette indexed pixel.
package colormodel

import (
	"image/color"
	"math"
)

// BT.601 studio swing coefficients
const (
	lumaScale = 1.164383562
	crToR     = 1.792741071
	crToG     = 0.532909329
	cbToG     = 0.213248614
	cbToB     = 2.112401786
)

// YCbCrToRGB converts a studio swing YCbCr triplet (as stored in PGS palettes) to RGB.
func YCbCrToRGB(y, cb, cr uint8) (r, g, b uint8) {
	yf := float64(int(y)-16) * lumaScale
	cbf := float64(int(cb) - 128)
	crf := float64(int(cr) - 128)
	r = clamp(yf + crf*crToR)
	g = clamp(yf - crf*crToG - cbf*cbToG)
	b = clamp(yf + cbf*cbToB)
	return
}

func clamp(v float64) uint8 {
	v = math.Floor(v + 0.5)
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v)
	}
}

// Slot is one of the four colors a DVD sub-picture bitmap indexes into.
type Slot int

const (
	Background Slot = iota
	Pattern
	Emphasis1
	Emphasis2
)

func (s Slot) String() string {
	switch s {
	case Background:
		return "background"
	case Pattern:
		return "pattern"
	case Emphasis1:
		return "emphasis1"
	case Emphasis2:
		return "emphasis2"
	default:
		return "<invalid slot>"
	}
}

// FourColors holds one color per Slot.
type FourColors [4]color.NRGBA

// Contrast is a 4 bits opacity level (0 transparent, 15 opaque). NoContrast means
// no contrast command was seen for the slot.
type Contrast int8

const NoContrast Contrast = -1

// Valid reports whether c carries an opacity level.
func (c Contrast) Valid() bool {
	return c >= 0 && c <= 15
}

// Resolve returns the color of a pixel. With useCustom set the custom color always
// wins. Otherwise the palette entry at paletteIndex is used, its alpha scaled by the
// contrast level when one is present. An index outside the palette falls back to custom.
func Resolve(paletteIndex int, contrast Contrast, custom color.NRGBA, useCustom bool, palette []color.NRGBA) color.NRGBA {
	if useCustom || paletteIndex < 0 || paletteIndex >= len(palette) {
		return custom
	}
	c := palette[paletteIndex]
	if contrast.Valid() {
		c.A = uint8(int(c.A) * int(contrast) * 17 / 255)
	}
	return c
}
