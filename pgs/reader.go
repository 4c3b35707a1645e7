package pgs

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hekmon/go-subpic/cursor"
	"github.com/hekmon/go-subpic/timeline"
)

var (
	// ErrMissingMagic is returned when a segment does not start with "PG".
	ErrMissingMagic = errors.New("missing PG magic")
	// ErrTruncated is returned when a segment is cut short by the end of the data.
	ErrTruncated = errors.New("truncated segment")
	// ErrDuplicatePCS is returned when a display set holds more than one composition segment.
	ErrDuplicatePCS = errors.New("duplicate presentation composition segment in display set")
)

// TicksToDuration converts a raw segment timestamp.
func TicksToDuration(ticks uint32, pal bool) time.Duration {
	return timeline.Clock{PAL: pal}.Duration(uint64(ticks))
}

// SegmentReader reads segments one by one from an in-memory PGS stream.
type SegmentReader struct {
	cursor *cursor.Cursor
}

// NewSegmentReader starts reading at the beginning of data.
func NewSegmentReader(data []byte) *SegmentReader {
	return &SegmentReader{cursor: cursor.New(data)}
}

// Offset returns the position of the next segment.
func (sr *SegmentReader) Offset() int {
	return sr.cursor.Pos()
}

// Next returns the next segment. io.EOF is returned once the data is exhausted,
// ErrMissingMagic or ErrTruncated when the stream can not be followed anymore.
// The reader always resumes after the declared payload size.
func (sr *SegmentReader) Next() (seg Segment, err error) {
	if sr.cursor.AtEnd() {
		err = io.EOF
		return
	}
	start := sr.cursor.Pos()
	// Header
	raw, err := sr.cursor.ReadBytes(headerLength)
	if err != nil {
		if len(raw) >= 2 && (raw[0] != magicP || raw[1] != magicG) {
			err = fmt.Errorf("segment at offset %d: %w", start, ErrMissingMagic)
			return
		}
		err = fmt.Errorf("segment header at offset %d: %w", start, ErrTruncated)
		return
	}
	if raw[0] != magicP || raw[1] != magicG {
		err = fmt.Errorf("segment at offset %d: got 0x%02X%02X: %w", start, raw[0], raw[1], ErrMissingMagic)
		return
	}
	hc := cursor.New(raw[2:])
	fr := cursor.NewFields(hc)
	seg.PTS = fr.U32()
	seg.DTS = fr.U32()
	seg.Type = SegmentType(fr.U8())
	seg.Size = fr.U16()
	// Payload
	payload, err := sr.cursor.ReadBytes(int(seg.Size))
	if err != nil {
		err = fmt.Errorf("%s payload at offset %d (%d/%d bytes): %w", seg.Type, start, len(payload), seg.Size, ErrTruncated)
		return
	}
	parse, known := payloadParsers[seg.Type]
	if !known {
		return
	}
	if seg.Payload, err = parse(cursor.New(payload), seg.Header); err != nil {
		err = fmt.Errorf("failed to parse %s at offset %d: %w: %w", seg.Type, start, ErrTruncated, err)
		return
	}
	return
}

/*
	Payload parsers
*/

var payloadParsers = map[SegmentType]func(c *cursor.Cursor, h Header) (Payload, error){
	SegmentPCS: parsePresentationComposition,
	SegmentWDS: parseWindowDefinition,
	SegmentPDS: parsePaletteDefinition,
	SegmentODS: parseObjectDefinition,
	SegmentEND: func(*cursor.Cursor, Header) (Payload, error) { return &End{}, nil },
}

func parsePresentationComposition(c *cursor.Cursor, _ Header) (Payload, error) {
	fr := cursor.NewFields(c)
	pcs := &PresentationComposition{
		Width:         fr.U16(),
		Height:        fr.U16(),
		FrameRate:     fr.U8(),
		Number:        fr.U16(),
		State:         CompositionState(fr.U8()),
		PaletteUpdate: fr.U8() != 0,
		PaletteID:     fr.U8(),
	}
	count := int(fr.U8())
	for range count {
		obj := CompositionObject{
			ObjectID: fr.U16(),
			WindowID: fr.U8(),
			Cropped:  fr.U8() == compositionObjectCropped,
			X:        fr.U16(),
			Y:        fr.U16(),
		}
		if obj.Cropped {
			obj.CropX, obj.CropY = fr.U16(), fr.U16()
			obj.CropWidth, obj.CropHeight = fr.U16(), fr.U16()
		}
		if fr.Err() != nil {
			break
		}
		pcs.Objects = append(pcs.Objects, obj)
	}
	return pcs, fr.Err()
}

func parseWindowDefinition(c *cursor.Cursor, _ Header) (Payload, error) {
	fr := cursor.NewFields(c)
	wds := &WindowDefinition{}
	count := int(fr.U8())
	for range count {
		win := Window{
			ID:     fr.U8(),
			X:      fr.U16(),
			Y:      fr.U16(),
			Width:  fr.U16(),
			Height: fr.U16(),
		}
		if fr.Err() != nil {
			break
		}
		wds.Windows = append(wds.Windows, win)
	}
	return wds, fr.Err()
}

func parsePaletteDefinition(c *cursor.Cursor, h Header) (Payload, error) {
	fr := cursor.NewFields(c)
	pds := &PaletteDefinition{
		ID:      fr.U8(),
		Version: fr.U8(),
	}
	count := (int(h.Size) - 2) / paletteEntryLength
	if count > 0 {
		pds.Entries = make([]PaletteEntry, 0, count)
	}
	for range count {
		pds.Entries = append(pds.Entries, PaletteEntry{
			ID:    fr.U8(),
			Y:     fr.U8(),
			Cr:    fr.U8(),
			Cb:    fr.U8(),
			Alpha: fr.U8(),
		})
	}
	return pds, fr.Err()
}

func parseObjectDefinition(c *cursor.Cursor, _ Header) (Payload, error) {
	fr := cursor.NewFields(c)
	ods := &ObjectDefinition{
		ID:       fr.U16(),
		Version:  fr.U8(),
		Sequence: SequenceFlag(fr.U8()),
	}
	if ods.Sequence.First() {
		ods.DataLength = fr.U24()
		ods.Width = fr.U16()
		ods.Height = fr.U16()
	}
	if fr.Err() != nil {
		return ods, fr.Err()
	}
	// The declared length covers the object size and every fragment: only keep what this segment holds
	size := c.Remaining()
	if ods.Sequence.First() && ods.DataLength >= 4 {
		size = min(size, int(ods.DataLength)-4)
	}
	ods.Data = fr.Bytes(size)
	return ods, fr.Err()
}
