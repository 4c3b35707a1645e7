package vobsub

import (
	"bytes"
	"encoding/binary"
	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var packHeader = []byte{0x00, 0x00, 0x01, 0xBA, 0x44, 0x00, 0x04, 0x00, 0x04, 0x01, 0x01, 0x89, 0xC3, 0xF8}

func encodePTS(pts uint64) []byte {
	return []byte{
		0x21 | byte(pts>>29)&0x0E,
		byte(pts >> 22),
		byte(pts>>14)&0xFE | 1,
		byte(pts >> 7),
		byte(pts<<1) | 1,
	}
}

// buildBlock returns one 2048 bytes block holding a private stream 1 packet.
// A negative pts means no timestamp.
func buildBlock(subStream byte, pts int64, payload []byte) []byte {
	return buildRawBlock(true, byte(StreamIDPrivateStream1), subStream, pts, payload)
}

func buildRawBlock(withPack bool, streamID, subStream byte, pts int64, payload []byte) []byte {
	var block []byte
	if withPack {
		block = append(block, packHeader...)
	}
	block = append(block, 0x00, 0x00, 0x01, streamID)
	headerData := []byte{}
	flags := byte(0)
	if pts >= 0 {
		flags = byte(JustPTS) << 6
		headerData = encodePTS(uint64(pts))
	}
	body := []byte{0x81, flags, byte(len(headerData))}
	body = append(body, headerData...)
	if streamID == byte(StreamIDPrivateStream1) {
		body = append(body, subStream)
	}
	body = append(body, payload...)
	block = binary.BigEndian.AppendUint16(block, uint16(len(body)))
	block = append(block, body...)
	return append(block, bytes.Repeat([]byte{0xFF}, BlockSize-len(block))...)
}

type ctrlBlock struct {
	delay    uint16
	commands []byte
}

// buildSPU lays out the header, the pixel data then the control blocks, the last one
// pointing to itself.
func buildSPU(pixels []byte, blocks ...ctrlBlock) []byte {
	ctrlOffset := spuHeaderLength + len(pixels)
	spu := binary.BigEndian.AppendUint16(nil, 0)
	spu = binary.BigEndian.AppendUint16(spu, uint16(ctrlOffset))
	spu = append(spu, pixels...)
	for index, block := range blocks {
		start := len(spu)
		next := start
		if index+1 < len(blocks) {
			next = start + spuCtrlBlockHeaderLength + len(block.commands) + 1
		}
		spu = binary.BigEndian.AppendUint16(spu, block.delay)
		spu = binary.BigEndian.AppendUint16(spu, uint16(next))
		spu = append(spu, block.commands...)
		spu = append(spu, spuCmdEnd)
	}
	binary.BigEndian.PutUint16(spu, uint16(len(spu)))
	return spu
}

func cmdArea(x1, x2, y1, y2 int) []byte {
	return []byte{
		spuCmdSetDisplayArea,
		byte(x1 >> 4), byte(x1&0xF)<<4 | byte(x2>>8), byte(x2),
		byte(y1 >> 4), byte(y1&0xF)<<4 | byte(y2>>8), byte(y2),
	}
}

func cmdFields(top, bottom int) []byte {
	cmd := []byte{spuCmdSetPixelDataAddress}
	cmd = binary.BigEndian.AppendUint16(cmd, uint16(top))
	return binary.BigEndian.AppendUint16(cmd, uint16(bottom))
}

func concat(parts ...[]byte) []byte {
	return bytes.Join(parts, nil)
}
