package vobsub

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/hekmon/go-subpic/cursor"
)

// ErrBadPacket is returned for a block whose packet can not be extracted. Scanning goes on with the next block.
var ErrBadPacket = errors.New("bad PES packet")

// ReadPESPacket reads the packet of the block starting at the cursor position. Whatever the
// outcome, the cursor is left at the start of the next block.
func ReadPESPacket(c *cursor.Cursor, logger *slog.Logger) (pkt PESPacket, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	start := c.Pos()
	defer c.Goto(start + BlockSize)
	pkt.Offset = start
	pkt.SubStream = NoSubStream
	// Optional pack header
	raw, _ := c.ReadBytes(PackHeaderLength)
	var mph MPEGHeader
	copy(mph[:], raw)
	if mph.IsPackHeader() {
		if logger.Enabled(context.Background(), slog.LevelDebug) {
			if ph, phErr := NewPackHeader(raw); phErr == nil {
				if phErr = ph.Validate(); phErr != nil {
					logger.Debug("invalid pack header", "offset", start, "error", phErr)
				} else {
					logger.Debug("pack header", "offset", start, "scr", ph.SCR(), "mux_rate", ph.ProgramMuxRate())
				}
			}
		}
	} else {
		c.Goto(start)
	}
	// PES header
	fr := cursor.NewFields(c)
	fr.Skip(pesStartCodeLength)
	pkt.StreamID = StreamID(fr.U8())
	pesLength := int(fr.U16())
	fr.Skip(1)
	presence := PTSDTSPresence(fr.U8() >> 6)
	headerDataLength := int(fr.U8())
	headerStart := c.Pos()
	if presence.HasPTS() {
		pkt.PTS = decodePTS(fr.Bytes(ptsLength))
		pkt.HasPTS = true
	}
	if fr.Err() != nil {
		err = fmt.Errorf("block at offset 0x%X: truncated PES header: %w: %w", start, ErrBadPacket, fr.Err())
		return
	}
	c.Goto(headerStart + headerDataLength)
	payloadSize := pesLength - (pesExtensionLength + headerDataLength)
	if pkt.StreamID == StreamIDPrivateStream1 {
		subStream := int(fr.U8())
		if subStream >= SubStreamIDBaseValue && subStream <= SubStreamIDMaxValue {
			pkt.SubStream = subStream
		}
		payloadSize--
	}
	// Never read past the block
	if overflow := c.Pos() + payloadSize - (start + BlockSize); overflow > 0 {
		payloadSize -= overflow
	}
	if payloadSize < 0 || fr.Err() != nil {
		err = fmt.Errorf("block at offset 0x%X: invalid payload size %d: %w", start, payloadSize, ErrBadPacket)
		return
	}
	// a short last block keeps what it holds
	payload, _ := c.ReadBytes(payloadSize)
	// full slice expression: merging must never write into the input buffer
	pkt.Payload = payload[:len(payload):len(payload)]
	return
}

// ReadPESPackets splits a whole .sub file into its subtitle packets: private stream 1 with a
// sub stream number in the subtitle range. Bad blocks are logged and skipped.
func ReadPESPackets(data []byte, logger *slog.Logger) (packets []PESPacket) {
	if logger == nil {
		logger = slog.Default()
	}
	c := cursor.New(data)
	packets = make([]PESPacket, 0, len(data)/BlockSize+1)
	for !c.AtEnd() {
		pkt, err := ReadPESPacket(c, logger)
		if err != nil {
			logger.Warn("dropping PES packet", "error", err)
			continue
		}
		if pkt.StreamID != StreamIDPrivateStream1 {
			logger.Debug("skipping non subtitle packet", "offset", pkt.Offset, "stream_id", pkt.StreamID)
			continue
		}
		if pkt.SubStream == NoSubStream {
			logger.Debug("skipping packet outside the subtitle sub streams", "offset", pkt.Offset)
			continue
		}
		packets = append(packets, pkt)
	}
	return
}

// MergePESPackets reassembles packets split across blocks: walking backward, every packet
// without a timestamp is appended to the closest preceding packet of the same sub stream,
// then removed. A packet with no such predecessor is kept as is. The input is left untouched
// and merging an already merged list changes nothing.
func MergePESPackets(packets []PESPacket) (merged []PESPacket) {
	merged = slices.Clone(packets)
	for index := len(merged) - 1; index > 0; index-- {
		pkt := merged[index]
		if pkt.HasPTS {
			continue
		}
		for target := index - 1; target >= 0; target-- {
			if merged[target].SubStream == pkt.SubStream {
				merged[target].Payload = slices.Concat(merged[target].Payload, pkt.Payload)
				merged = slices.Delete(merged, index, index+1)
				break
			}
		}
	}
	return
}
