package vobsub

import (
	"fmt"
	"time"
)

const (
	// SCRFrequency is the System Clock Reference base frequency
	SCRFrequency = 27_000_000 // 27 MHz
	// PTSDTSClockFrequency is the Presentation TimeStamp and Decoding TimeStamp clock base frequency
	PTSDTSClockFrequency = 90_000 // 90 kHz
	// PackHeaderLength is the size of an MPEG-2 pack header, stuffing excluded
	PackHeaderLength = 14
)

// PackHeader is an MPEG-2 pack header. Blocks of a .sub file usually start with one.
// More informations at https://dvd.sourceforge.net/dvdinfo/packhdr.html
type PackHeader struct {
	MPH       MPEGHeader
	Remaining [PackHeaderLength - 4]byte
}

// NewPackHeader builds a pack header from its raw bytes.
func NewPackHeader(raw []byte) (ph PackHeader, err error) {
	if len(raw) < PackHeaderLength {
		err = fmt.Errorf("pack header needs %d bytes, got %d", PackHeaderLength, len(raw))
		return
	}
	copy(ph.MPH[:], raw[:4])
	copy(ph.Remaining[:], raw[4:PackHeaderLength])
	return
}

// Validate checks the marker bits of the pack header. Decoding does not depend on them:
// only diagnostics do.
func (ph PackHeader) Validate() error {
	if err := ph.MPH.Validate(); err != nil {
		return err
	}
	if ph.MPH.StreamID() != StreamIDPackHeader {
		return fmt.Errorf("invalid PACK identifier: 0x%02X (expected 0x%02X)", byte(ph.MPH.StreamID()), byte(StreamIDPackHeader))
	}
	// SCR fixed bits
	if ph.Remaining[0]>>6 != 0b01 {
		return fmt.Errorf("invalid SCR leading bits: %02b (expected 01)", ph.Remaining[0]>>6)
	}
	for _, marker := range []struct {
		index int
		mask  byte
	}{{0, 0b100}, {2, 0b100}, {4, 0b100}, {5, 0b1}} {
		if ph.Remaining[marker.index]&marker.mask == 0 {
			return fmt.Errorf("invalid SCR marker bit in byte #%d", marker.index)
		}
	}
	if ph.Remaining[8]&0b11 != 0b11 {
		return fmt.Errorf("invalid mux rate marker bits: %02b (expected 11)", ph.Remaining[8]&0b11)
	}
	if ph.ProgramMuxRate() == 0 {
		return fmt.Errorf("program mux rate cannot be 0")
	}
	return nil
}

// SCRRaw yields the base (90 kHz) and extension (27 MHz) parts of the System Clock Reference.
func (ph PackHeader) SCRRaw() (base uint64, extension uint64) {
	base = uint64(ph.Remaining[0]&0b00111000)<<(30-3) | uint64(ph.Remaining[0]&0b00000011)<<28
	base |= uint64(ph.Remaining[1]) << 20
	base |= uint64(ph.Remaining[2]&0b11111000)<<(15-3) | uint64(ph.Remaining[2]&0b00000011)<<13
	base |= uint64(ph.Remaining[3]) << 5
	base |= uint64(ph.Remaining[4]) >> 3
	extension = uint64(ph.Remaining[4]&0b00000011) << 7
	extension |= uint64(ph.Remaining[5]) >> 1
	return
}

// SCR returns the System Clock Reference as a duration.
func (ph PackHeader) SCR() time.Duration {
	base, extension := ph.SCRRaw()
	ticks := base*(SCRFrequency/PTSDTSClockFrequency) + extension
	return time.Duration(ticks * uint64(time.Second) / SCRFrequency)
}

// ProgramMuxRate is the 22 bits stream rate, in units of 50 bytes/second.
func (ph PackHeader) ProgramMuxRate() uint64 {
	return uint64(ph.Remaining[6])<<(16-2) | uint64(ph.Remaining[7])<<(8-2) | uint64(ph.Remaining[8])>>2
}

// StuffingBytesLength returns the number of 0xFF bytes following the header.
func (ph PackHeader) StuffingBytesLength() int {
	return int(ph.Remaining[9] & 0b00000111)
}

// String implements the fmt.Stringer interface.
func (ph PackHeader) String() string {
	return fmt.Sprintf("PackHeader{%s, SCR: %s, ProgramMuxRate: %d, StuffingBytesLength: %d}",
		ph.MPH, ph.SCR(), ph.ProgramMuxRate(), ph.StuffingBytesLength(),
	)
}
