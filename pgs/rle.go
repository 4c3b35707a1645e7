package pgs

import (
	"image/color"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/colormodel"
	"github.com/hekmon/go-subpic/cursor"
)

const (
	backgroundIndex = 0xFF
	runFlagsMask    = 0xC0
	runLengthMask   = 0x3F
	runLong         = 0x40 // 14 bits length
	runColored      = 0x80 // explicit color byte
)

// PaletteColors builds the lookup table of a palette. Index 0xFF, entries missing from
// the palette and entries that are not fully opaque resolve to background.
func PaletteColors(pds *PaletteDefinition, background color.NRGBA) (colors [256]color.NRGBA) {
	for index := range colors {
		colors[index] = background
	}
	if pds == nil {
		return
	}
	for _, entry := range pds.Entries {
		if entry.ID == backgroundIndex || entry.Alpha != 255 {
			continue
		}
		r, g, b := colormodel.YCbCrToRGB(entry.Y, entry.Cb, entry.Cr)
		colors[entry.ID] = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return
}

// DecodeObject renders the run length encoded pixels of an object into a width x height canvas.
// Pixels are laid out as one flat stream, rows being implied by width. End of line codes are
// skipped and pixels beyond the canvas are dropped. A code cut short by the end of data stops decoding.
func DecodeObject(data []byte, width, height int, pds *PaletteDefinition, background color.NRGBA) (img *canvas.Canvas) {
	img = canvas.New(width, height)
	if img.Width() == 0 || img.Height() == 0 {
		return
	}
	colors := PaletteColors(pds, background)
	var (
		c     = cursor.New(data)
		pixel int
		total = img.Width() * img.Height()
	)
	for !c.AtEnd() && pixel < total {
		length, index, ok := readRun(c)
		if !ok {
			break
		}
		col := colors[index]
		for end := min(pixel+length, total); pixel < end; pixel++ {
			img.SetPixel(pixel%img.Width(), pixel/img.Width(), col)
		}
	}
	return
}

// readRun decodes one code. An end of line code yields a zero length run.
func readRun(c *cursor.Cursor) (length int, index uint8, ok bool) {
	var b0, b1, b2, b3 byte
	var err error
	if b0, err = c.ReadByte(); err != nil {
		return
	}
	if b0 != 0 {
		// CCCCCCCC
		return 1, b0, true
	}
	if b1, err = c.ReadByte(); err != nil {
		return
	}
	if b1 == 0 {
		// 00000000 00000000: end of line
		return 0, 0, true
	}
	if b1&runFlagsMask == 0 {
		// 00000000 00LLLLLL
		return int(b1 & runLengthMask), 0, true
	}
	if b2, err = c.ReadByte(); err != nil {
		return
	}
	switch b1 & runFlagsMask {
	case runLong:
		// 00000000 01LLLLLL LLLLLLLL
		return int(b1&runLengthMask)<<8 | int(b2), 0, true
	case runColored:
		// 00000000 10LLLLLL CCCCCCCC
		return int(b1 & runLengthMask), b2, true
	default:
		// 00000000 11LLLLLL LLLLLLLL CCCCCCCC
		if b3, err = c.ReadByte(); err != nil {
			return
		}
		return int(b1&runLengthMask)<<8 | int(b2), b3, true
	}
}
