package pgs

import (
	"fmt"
	"strings"
)

const (
	magicP       = 0x50
	magicG       = 0x47
	headerLength = 2 + 4 + 4 + 1 + 2 // magic + PTS + DTS + type + size
)

// SegmentType is the type tag carried by every segment header.
type SegmentType uint8

const (
	SegmentPDS SegmentType = 0x14
	SegmentODS SegmentType = 0x15
	SegmentPCS SegmentType = 0x16
	SegmentWDS SegmentType = 0x17
	SegmentEND SegmentType = 0x80
)

func (st SegmentType) String() string {
	switch st {
	case SegmentPDS:
		return "PDS"
	case SegmentODS:
		return "ODS"
	case SegmentPCS:
		return "PCS"
	case SegmentWDS:
		return "WDS"
	case SegmentEND:
		return "END"
	default:
		return fmt.Sprintf("<unknown 0x%02X>", uint8(st))
	}
}

// Header is the common part of every segment.
type Header struct {
	// PTS and DTS are raw 90 kHz ticks
	PTS, DTS uint32
	Type     SegmentType
	Size     uint16
}

func (h Header) String() string {
	return fmt.Sprintf("Header{Type: %s, PTS: %d, DTS: %d, Size: %d}", h.Type, h.PTS, h.DTS, h.Size)
}

// Segment is one parsed record. Payload is nil for unrecognized segment types.
type Segment struct {
	Header
	Payload Payload
}

// Payload is implemented by the segment variants: *PresentationComposition,
// *WindowDefinition, *PaletteDefinition, *ObjectDefinition and *End.
type Payload interface {
	SegmentType() SegmentType
}

/*
	Presentation Composition Segment
*/

// CompositionState tells how a display set relates to the previous ones.
type CompositionState uint8

const (
	CompositionNormal           CompositionState = 0x00
	CompositionAcquisitionPoint CompositionState = 0x40
	CompositionEpochStart       CompositionState = 0x80
)

func (cs CompositionState) String() string {
	switch cs {
	case CompositionNormal:
		return "Normal"
	case CompositionAcquisitionPoint:
		return "AcquisitionPoint"
	case CompositionEpochStart:
		return "EpochStart"
	default:
		return fmt.Sprintf("<unknown 0x%02X>", uint8(cs))
	}
}

const compositionObjectCropped = 0x40

// PresentationComposition (PCS) describes the video frame and the objects shown by a display set.
type PresentationComposition struct {
	Width, Height uint16
	FrameRate     uint8
	Number        uint16
	State         CompositionState
	PaletteUpdate bool
	PaletteID     uint8
	Objects       []CompositionObject
}

func (*PresentationComposition) SegmentType() SegmentType { return SegmentPCS }

func (pcs PresentationComposition) String() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("PCS{Size: %dx%d, FrameRate: 0x%02X, Number: %d, State: %s, PaletteUpdate: %t, PaletteID: %d, Objects: [",
		pcs.Width, pcs.Height, pcs.FrameRate, pcs.Number, pcs.State, pcs.PaletteUpdate, pcs.PaletteID))
	for index, obj := range pcs.Objects {
		if index > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(obj.String())
	}
	builder.WriteString("]}")
	return builder.String()
}

// CompositionObject places an object in a window, optionally cropped.
type CompositionObject struct {
	ObjectID              uint16
	WindowID              uint8
	Cropped               bool
	X, Y                  uint16
	CropX, CropY          uint16
	CropWidth, CropHeight uint16
}

func (co CompositionObject) String() string {
	if co.Cropped {
		return fmt.Sprintf("{Object: %d, Window: %d, Origin: %d,%d, Crop: %d,%d %dx%d}",
			co.ObjectID, co.WindowID, co.X, co.Y, co.CropX, co.CropY, co.CropWidth, co.CropHeight)
	}
	return fmt.Sprintf("{Object: %d, Window: %d, Origin: %d,%d}", co.ObjectID, co.WindowID, co.X, co.Y)
}

/*
	Window Definition Segment
*/

// WindowDefinition (WDS) declares the screen areas objects are drawn into.
type WindowDefinition struct {
	Windows []Window
}

func (*WindowDefinition) SegmentType() SegmentType { return SegmentWDS }

// Window is one rectangle of a WindowDefinition.
type Window struct {
	ID            uint8
	X, Y          uint16
	Width, Height uint16
}

/*
	Palette Definition Segment
*/

const paletteEntryLength = 5

// PaletteDefinition (PDS) carries up to 256 YCrCb colors.
type PaletteDefinition struct {
	ID      uint8
	Version uint8
	Entries []PaletteEntry
}

func (*PaletteDefinition) SegmentType() SegmentType { return SegmentPDS }

func (pds PaletteDefinition) String() string {
	return fmt.Sprintf("PDS{ID: %d, Version: %d, Entries: %d}", pds.ID, pds.Version, len(pds.Entries))
}

// PaletteEntry is stored as Y, Cr, Cb, alpha on the wire.
type PaletteEntry struct {
	ID    uint8
	Y     uint8
	Cr    uint8
	Cb    uint8
	Alpha uint8
}

/*
	Object Definition Segment
*/

// SequenceFlag tells if an object definition is the first and/or last fragment of an object.
type SequenceFlag uint8

const (
	SequenceLast  SequenceFlag = 0x40
	SequenceFirst SequenceFlag = 0x80
)

// First reports if the fragment starts an object.
func (sf SequenceFlag) First() bool {
	return sf&SequenceFirst != 0
}

// Last reports if the fragment ends an object.
func (sf SequenceFlag) Last() bool {
	return sf&SequenceLast != 0
}

// ObjectDefinition (ODS) holds the run length encoded pixels of an object, or a fragment of them.
type ObjectDefinition struct {
	ID       uint16
	Version  uint8
	Sequence SequenceFlag
	// DataLength, Width and Height are only present on the first fragment
	DataLength    uint32
	Width, Height uint16
	Data          []byte
}

func (*ObjectDefinition) SegmentType() SegmentType { return SegmentODS }

func (ods ObjectDefinition) String() string {
	return fmt.Sprintf("ODS{ID: %d, Version: %d, Sequence: 0x%02X, DataLength: %d, Size: %dx%d, Data: %d bytes}",
		ods.ID, ods.Version, uint8(ods.Sequence), ods.DataLength, ods.Width, ods.Height, len(ods.Data))
}

/*
	End Segment
*/

// End closes a display set.
type End struct{}

func (*End) SegmentType() SegmentType { return SegmentEND }
