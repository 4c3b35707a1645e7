package vobsub

import (
	"fmt"
)

const (
	// BlockSize is the size of the physical blocks a .sub file is made of
	BlockSize = 0x800
	// pesStartCodeLength is the start code prefix preceding the stream ID
	pesStartCodeLength = 3
	// pesExtensionLength counts the two flag bytes and the header data length byte
	pesExtensionLength = 3
	// ptsLength is the size of an encoded timestamp
	ptsLength = 5

	// SubStreamIDBaseValue is the sub stream number of the first subtitle stream
	SubStreamIDBaseValue = 0x20
	// SubStreamIDMaxValue is the last accepted sub stream number
	SubStreamIDMaxValue = 0x40
	// NoSubStream marks a packet without a (valid) sub stream number
	NoSubStream = -1
)

// PTSDTSPresence is the value of the 2 high bits of the second PES extension flag byte.
type PTSDTSPresence byte

const (
	NoPTSorDTSPresent PTSDTSPresence = 0b00
	JustDTS           PTSDTSPresence = 0b01 // Forbidden
	JustPTS           PTSDTSPresence = 0b10
	BothPTSandDTS     PTSDTSPresence = 0b11
)

// HasPTS reports whether a timestamp follows the extension header.
func (ptd PTSDTSPresence) HasPTS() bool {
	return ptd == JustPTS || ptd == BothPTSandDTS
}

func (ptd PTSDTSPresence) String() string {
	switch ptd {
	case NoPTSorDTSPresent:
		return "No PTS or DTS present"
	case JustDTS:
		return "Just DTS (forbidden)"
	case JustPTS:
		return "Just PTS"
	case BothPTSandDTS:
		return "Both PTS and DTS"
	default:
		return "Unknown"
	}
}

// PESPacket is the payload of one block, or of several blocks once merged.
type PESPacket struct {
	// Offset of the block the packet was read from
	Offset   int
	StreamID StreamID
	// PTS in 90 kHz ticks, only meaningful when HasPTS is set
	PTS    uint64
	HasPTS bool
	// SubStream is the raw sub stream number (0x20-0x40) or NoSubStream
	SubStream int
	Payload   []byte
}

// Stream returns the subtitle stream index (0 for sub stream 0x20) or NoSubStream.
func (pkt PESPacket) Stream() int {
	if pkt.SubStream == NoSubStream {
		return NoSubStream
	}
	return pkt.SubStream - SubStreamIDBaseValue
}

func (pkt PESPacket) String() string {
	pts := "none"
	if pkt.HasPTS {
		pts = fmt.Sprintf("%d", pkt.PTS)
	}
	return fmt.Sprintf("PESPacket{Offset: 0x%X, StreamID: %s, SubStream: %d, PTS: %s, Payload: %d bytes}",
		pkt.Offset, pkt.StreamID, pkt.SubStream, pts, len(pkt.Payload))
}

// decodePTS extracts the 33 bits timestamp scattered among 5 bytes with marker bits.
func decodePTS(raw []byte) (pts uint64) {
	pts = uint64(raw[0]&0b00001110) << 29
	pts |= uint64(raw[1]) << 22
	pts |= uint64(raw[2]&0b11111110) << 14
	pts |= uint64(raw[3]) << 7
	pts |= uint64(raw[4]) >> 1
	return
}
