package pgs

import (
	"encoding/binary"
	"log/slog"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func buildSegment(typ SegmentType, pts uint32, payload []byte) []byte {
	seg := []byte{magicP, magicG}
	seg = binary.BigEndian.AppendUint32(seg, pts)
	seg = binary.BigEndian.AppendUint32(seg, 0)
	seg = append(seg, byte(typ))
	seg = binary.BigEndian.AppendUint16(seg, uint16(len(payload)))
	return append(seg, payload...)
}

func buildPCS(pts uint32, state CompositionState, paletteID uint8, objectIDs ...uint16) []byte {
	p := binary.BigEndian.AppendUint16(nil, 1920)
	p = binary.BigEndian.AppendUint16(p, 1080)
	// frame rate, composition number
	p = append(p, 0x10, 0, 1)
	p = append(p, byte(state), 0, paletteID, byte(len(objectIDs)))
	for _, id := range objectIDs {
		p = binary.BigEndian.AppendUint16(p, id)
		p = append(p, 0, 0) // window, not cropped
		p = binary.BigEndian.AppendUint16(p, 100)
		p = binary.BigEndian.AppendUint16(p, 200)
	}
	return buildSegment(SegmentPCS, pts, p)
}

func buildWDS(pts uint32) []byte {
	p := []byte{1, 0}
	for _, v := range []uint16{100, 200, 2, 2} {
		p = binary.BigEndian.AppendUint16(p, v)
	}
	return buildSegment(SegmentWDS, pts, p)
}

func buildPDS(pts uint32, id uint8, entries ...PaletteEntry) []byte {
	p := []byte{id, 0}
	for _, e := range entries {
		p = append(p, e.ID, e.Y, e.Cr, e.Cb, e.Alpha)
	}
	return buildSegment(SegmentPDS, pts, p)
}

func buildODS(pts uint32, id uint16, width, height uint16, rle []byte) []byte {
	p := binary.BigEndian.AppendUint16(nil, id)
	p = append(p, 0, byte(SequenceFirst|SequenceLast))
	length := uint32(len(rle) + 4)
	p = append(p, byte(length>>16), byte(length>>8), byte(length))
	p = binary.BigEndian.AppendUint16(p, width)
	p = binary.BigEndian.AppendUint16(p, height)
	return buildSegment(SegmentODS, pts, append(p, rle...))
}

func buildEND(pts uint32) []byte {
	return buildSegment(SegmentEND, pts, nil)
}

func concat(parts ...[]byte) (out []byte) {
	for _, part := range parts {
		out = append(out, part...)
	}
	return
}

// encodeRun produces the shortest code sequence for a run, splitting runs longer than 14 bits.
func encodeRun(length int, index uint8) (out []byte) {
	for length > 0 {
		chunk := min(length, 0x3FFF)
		length -= chunk
		switch {
		case index != 0 && chunk == 1:
			out = append(out, index)
		case index == 0 && chunk < 64:
			out = append(out, 0, byte(chunk))
		case index == 0:
			out = append(out, 0, 0x40|byte(chunk>>8), byte(chunk))
		case chunk < 64:
			out = append(out, 0, 0x80|byte(chunk), index)
		default:
			out = append(out, 0, 0xC0|byte(chunk>>8), byte(chunk), index)
		}
	}
	return
}
