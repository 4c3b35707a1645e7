package vobsub

import (
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/hekmon/go-subpic/colormodel"
)

// Sub-picture display control commands, see http://www.mpucoder.com/DVD/spu.html
const (
	spuHeaderLength               = 4
	spuCtrlBlockHeaderLength      = 4
	spuCmdForcedStartDisplay      = 0x00
	spuCmdStartDisplay            = 0x01
	spuCmdStopDisplay             = 0x02
	spuCmdSetColor                = 0x03
	spuCmdSetColorArgsLen         = 2
	spuCmdSetContrast             = 0x04
	spuCmdSetContrastArgsLen      = 2
	spuCmdSetDisplayArea          = 0x05
	spuCmdSetDisplayAreaArgsLen   = 6
	spuCmdSetPixelDataAddress     = 0x06
	spuCmdSetPixelDataAddrArgsLen = 4
	spuCmdChangeColorAndContrast  = 0x07
	spuCmdEnd                     = 0xFF
	spuMaxCtrlBlocks              = 256
	spuDelayTicksPerMillisecond   = 90.0
	spuDelayShift                 = 10
	minWidth, minHeight           = 3, 2
	flashMaxWidth, flashMaxHeight = 10, 10
	flashMaxDuration              = 100 * time.Millisecond
)

// SPU is one sub-picture unit: the merged payload of a PES packet and its display commands.
type SPU struct {
	Stream   int
	PTS      uint64
	Data     []byte
	Commands []DisplayCommand
}

// DisplayCommand is one show/hide cycle of an SPU with everything needed to render its bitmap.
type DisplayCommand struct {
	// Start and Stop are relative to the packet PTS
	Start, Stop time.Duration
	Forced      bool
	// Area holds the inclusive coordinates of the displayed rectangle
	Area        ControlSequenceCoordinates
	HasArea     bool
	TopField    int
	BottomField int
	// Colors holds one palette index per slot, -1 when no color command was seen
	Colors   [4]int
	Contrast [4]colormodel.Contrast
}

func newDisplayCommand() DisplayCommand {
	return DisplayCommand{
		Colors:   [4]int{-1, -1, -1, -1},
		Contrast: [4]colormodel.Contrast{colormodel.NoContrast, colormodel.NoContrast, colormodel.NoContrast, colormodel.NoContrast},
	}
}

// Size returns the image size as the difference between end and start coordinates.
func (dc DisplayCommand) Size() image.Point {
	return dc.Area.Get().Size()
}

// Duration returns how long the command is displayed.
func (dc DisplayCommand) Duration() time.Duration {
	return dc.Stop - dc.Start
}

func (dc DisplayCommand) String() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("Start: %s | Stop: %s", dc.Start, dc.Stop))
	if dc.Forced {
		builder.WriteString(" | Forced")
	}
	if dc.HasArea {
		coord := dc.Area.Get()
		builder.WriteString(fmt.Sprintf(" | Area: x1(%d) x2(%d) y1(%d) y2(%d) size(%s)",
			coord.Point1.X, coord.Point2.X, coord.Point1.Y, coord.Point2.Y, coord.Size()))
	}
	builder.WriteString(fmt.Sprintf(" | Colors: %v | Contrast: %v | Fields: top(%d) bottom(%d)",
		dc.Colors, dc.Contrast, dc.TopField, dc.BottomField))
	return builder.String()
}

// spuDelay converts a control block delay to a duration: one unit is 1024 ticks of the 90 kHz clock.
func spuDelay(delay uint16) time.Duration {
	ms := float64(int(delay)<<spuDelayShift) / spuDelayTicksPerMillisecond
	return time.Duration(ms * float64(time.Millisecond))
}

// ControlSequencePalette is the argument of the set color command.
type ControlSequencePalette [spuCmdSetColorArgsLen]byte

// GetIDs returns the palette index of each slot (background, pattern, emphasis1, emphasis2).
func (csp ControlSequencePalette) GetIDs() (colorsIdx [4]uint8) {
	colorsIdx[colormodel.Emphasis2] = csp[0] & 0b11110000 >> 4
	colorsIdx[colormodel.Emphasis1] = csp[0] & 0b00001111
	colorsIdx[colormodel.Pattern] = csp[1] & 0b11110000 >> 4
	colorsIdx[colormodel.Background] = csp[1] & 0b00001111
	return
}

// ControlSequenceContrast is the argument of the set contrast command, laid out as the palette one.
type ControlSequenceContrast [spuCmdSetContrastArgsLen]byte

// GetLevels returns the contrast of each slot, 0 (transparent) to 15 (opaque).
func (csc ControlSequenceContrast) GetLevels() (levels [4]colormodel.Contrast) {
	ids := ControlSequencePalette(csc).GetIDs()
	for slot, level := range ids {
		levels[slot] = colormodel.Contrast(level)
	}
	return
}

// ControlSequenceCoordinates is the argument of the set display area command: four 12 bits values.
type ControlSequenceCoordinates [spuCmdSetDisplayAreaArgsLen]byte

// Get returns the start and end points of the display area, both inclusive.
func (csc ControlSequenceCoordinates) Get() (coord SubtitleCoordinates) {
	coord.Point1.X = int(csc[0])<<4 | int(csc[1]&0b11110000)>>4
	coord.Point2.X = int(csc[1]&0b00001111)<<8 | int(csc[2])
	coord.Point1.Y = int(csc[3])<<4 | int(csc[4]&0b11110000)>>4
	coord.Point2.Y = int(csc[4]&0b00001111)<<8 | int(csc[5])
	return
}

// SubtitleCoordinates is a display area with inclusive end point.
type SubtitleCoordinates struct {
	Point1, Point2 image.Point
}

// Size returns (endX-startX, endY-startY).
func (coord SubtitleCoordinates) Size() image.Point {
	return coord.Point2.Sub(coord.Point1)
}

// CanvasSize returns the number of pixels covered by the area on each axis.
func (coord SubtitleCoordinates) CanvasSize() image.Point {
	return coord.Size().Add(image.Pt(1, 1))
}
