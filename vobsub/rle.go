package vobsub

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/colormodel"
	"github.com/hekmon/go-subpic/cursor"
)

// ErrNoDisplayArea is returned when rendering a command that never set its display area.
var ErrNoDisplayArea = errors.New("display area not set")

const (
	// code lengths are selected by the leading value of the code
	rleMin8bits  = 0x4
	rleMin12bits = 0x40
)

// CommandColors resolves the four colors of a display command.
func CommandColors(dc DisplayCommand, custom colormodel.FourColors, useCustom bool, palette []color.NRGBA) (colors colormodel.FourColors) {
	for slot := range colors {
		colors[slot] = colormodel.Resolve(dc.Colors[slot], dc.Contrast[slot], custom[slot], useCustom, palette)
	}
	return
}

// DecodeCommand renders the interlaced bitmap of a display command. data is the SPU payload the
// field offsets point into. The canvas covers the inclusive display area: top field on even rows,
// bottom field on odd rows. A field cut short leaves its remaining rows transparent.
func DecodeCommand(data []byte, dc DisplayCommand, colors colormodel.FourColors, logger *slog.Logger) (img *canvas.Canvas, err error) {
	if !dc.HasArea {
		err = ErrNoDisplayArea
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	size := dc.Area.Get().CanvasSize()
	if size.X <= 0 || size.Y <= 0 {
		err = fmt.Errorf("invalid display area size %s", size)
		return
	}
	top, bottom := dc.TopField, dc.BottomField
	if top < 0 || top > len(data) || bottom < 0 || bottom > len(data) {
		err = fmt.Errorf("field offsets %d and %d out of the %d bytes payload", top, bottom, len(data))
		return
	}
	topEnd := len(data)
	if bottom > top {
		topEnd = bottom
	}
	img = canvas.New(size.X, size.Y)
	decodeField(img, data[top:topEnd], 0, colors, logger)
	decodeField(img, data[bottom:], 1, colors, logger)
	return
}

func decodeField(img *canvas.Canvas, field []byte, firstLine int, colors colormodel.FourColors, logger *slog.Logger) {
	var (
		c     = cursor.New(field)
		width = img.Width()
		x     int
	)
	for y := firstLine; y < img.Height(); {
		run, slot, ok := readCode(c)
		if !ok {
			logger.Debug("field data exhausted", "line", y, "column", x)
			return
		}
		if run == 0 {
			run = width - x
		}
		// the part of a run going beyond the line is lost
		for end := min(x+run, width); x < end; x++ {
			img.SetPixel(x, y, colors[slot])
		}
		if x >= width {
			x = 0
			y += 2
			if c.ResetNibble() {
				logger.Debug("dropping non zero padding nibble at end of line", "line", y-2)
			}
		}
	}
}

// readCode reads one run from the nibble stream. Codes are 4, 8, 12 or 16 bits long,
// the last 2 bits holding the color slot and the others the run length:
//
//	         rrcc
//	    00rr rrcc
//	0000 rrrr rrcc
//	0000 00rr rrrr rrcc
func readCode(c *cursor.Cursor) (run int, slot colormodel.Slot, ok bool) {
	nibble, err := c.ReadNibble()
	if err != nil {
		return
	}
	value := int(nibble)
	switch {
	case nibble >= rleMin8bits:
	case nibble != 0:
		if nibble, err = c.ReadNibble(); err != nil {
			return
		}
		value = value<<4 | int(nibble)
	default:
		var b byte
		if b, err = c.ReadMergedByte(); err != nil {
			return
		}
		value = int(b)
		if b < rleMin12bits {
			if nibble, err = c.ReadNibble(); err != nil {
				return
			}
			value = value<<4 | int(nibble)
		}
	}
	return value >> 2, colormodel.Slot(value & 0b11), true
}
