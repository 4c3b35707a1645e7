package vobsub

import (
	"encoding/binary"
	"fmt"
)

const (
	// StartCodeMarker is the 3 bytes prefix of every pack and PES header.
	StartCodeMarker = 0x000001

	// StreamIDPackHeader is the ID of a Pack header
	StreamIDPackHeader StreamID = 0xBA
	// StreamIDPrivateStream1 carries the sub-pictures, the first payload byte being the sub stream number
	StreamIDPrivateStream1 StreamID = 0xBD
	// StreamIDPaddingStream is the ID of a Padding Stream
	StreamIDPaddingStream StreamID = 0xBE
	// StreamIDPrivateStream2 is the ID of a Private Stream 2
	StreamIDPrivateStream2 StreamID = 0xBF
	// StreamIDProgramEnd is the ID marking the end of a stream
	StreamIDProgramEnd StreamID = 0xB9
)

// MPEGHeader is the start code found at the beginning of packs and PES packets.
// See https://dvd.sourceforge.net/dvdinfo/mpeghdrs.html for more informations.
type MPEGHeader [4]byte

// Validate verifies the start code marker.
func (mph MPEGHeader) Validate() error {
	if binary.BigEndian.Uint32(mph[:])>>8 != StartCodeMarker {
		return fmt.Errorf("invalid start code marker: %x (expected %06x)", mph[:3], StartCodeMarker)
	}
	return nil
}

// IsPackHeader reports whether the header opens an MPEG-2 pack.
func (mph MPEGHeader) IsPackHeader() bool {
	return mph.Validate() == nil && mph.StreamID() == StreamIDPackHeader
}

// StreamID returns the Stream ID contained within the header
func (mph MPEGHeader) StreamID() StreamID {
	return StreamID(mph[3])
}

// String implements the fmt.Stringer interface.
func (mph MPEGHeader) String() string {
	return fmt.Sprintf("StartCodeHeader{Marker: %06x, StreamID: %s}", binary.BigEndian.Uint32(mph[:])>>8, mph.StreamID())
}

// GoString implements the fmt.GoStringer interface.
func (mph MPEGHeader) GoString() string {
	return fmt.Sprintf("StartCodeHeader{Marker:%024b StreamID: 0x%02X}", binary.BigEndian.Uint32(mph[:])>>8, byte(mph.StreamID()))
}

// StreamID identifies the elementary stream a PES packet belongs to.
type StreamID byte

// String implements the fmt.Stringer interface.
func (sid StreamID) String() string {
	switch {
	case sid == StreamIDProgramEnd:
		return "Program end"
	case sid == StreamIDPackHeader: // https://dvd.sourceforge.net/dvdinfo/packhdr.html
		return "Pack header"
	case sid == 0xBB:
		return "System Header"
	case sid == 0xBC:
		return "Program Stream Map"
	case sid == StreamIDPrivateStream1: // https://dvd.sourceforge.net/dvdinfo/pes-hdr.html
		return "Private stream 1"
	case sid == StreamIDPaddingStream:
		return "Padding stream"
	case sid == StreamIDPrivateStream2:
		return "Private stream 2"
	case sid >= 0xC0 && sid <= 0xDF:
		return "MPEG-1 or MPEG-2 audio stream"
	case sid >= 0xE0 && sid <= 0xEF:
		return "MPEG-1 or MPEG-2 video stream"
	case sid < 0xB9:
		return "video elementary stream code"
	default:
		return "<unknown stream ID>"
	}
}

// GoString implements the fmt.GoStringer interface.
func (sid StreamID) GoString() string {
	return fmt.Sprintf("%s (%02X)", sid, byte(sid))
}
