package pgs

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// DisplaySet groups the segments found between two END segments.
type DisplaySet struct {
	// PTS of the composition segment, in raw ticks
	PTS         uint32
	Composition *PresentationComposition
	Windows     []WindowDefinition
	Palettes    []PaletteDefinition
	Objects     []ObjectDefinition
}

// Palette returns the palette matching the composition palette id, the first one
// when none matches, nil when the set carries no palette at all.
func (ds DisplaySet) Palette() *PaletteDefinition {
	if len(ds.Palettes) == 0 {
		return nil
	}
	if ds.Composition != nil {
		for index := range ds.Palettes {
			if ds.Palettes[index].ID == ds.Composition.PaletteID {
				return &ds.Palettes[index]
			}
		}
	}
	return &ds.Palettes[0]
}

// Object returns the first object definition with the given id, nil if missing.
func (ds DisplaySet) Object(id uint16) *ObjectDefinition {
	for index := range ds.Objects {
		if ds.Objects[index].ID == id {
			return &ds.Objects[index]
		}
	}
	return nil
}

func (ds *DisplaySet) addObject(ods *ObjectDefinition) {
	if !ods.Sequence.First() {
		// continuation fragment: append to the object being defined
		for index := len(ds.Objects) - 1; index >= 0; index-- {
			if ds.Objects[index].ID == ods.ID {
				// copy: the fragment data aliases the input buffer
				data := make([]byte, 0, len(ds.Objects[index].Data)+len(ods.Data))
				data = append(data, ds.Objects[index].Data...)
				ds.Objects[index].Data = append(data, ods.Data...)
				ds.Objects[index].Sequence |= ods.Sequence & SequenceLast
				return
			}
		}
	}
	ds.Objects = append(ds.Objects, *ods)
}

// ReadDisplaySets splits a whole PGS stream into display sets. A set is only kept once its
// END segment is read; a segment of unknown type drops the set being assembled.
// A missing magic or a truncated segment ends the stream, keeping the sets read so far.
// A second composition segment within a set fails the whole stream with ErrDuplicatePCS.
func ReadDisplaySets(data []byte, logger *slog.Logger) (sets []DisplaySet, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		reader  = NewSegmentReader(data)
		current DisplaySet
		seg     Segment
	)
	for {
		offset := reader.Offset()
		if seg, err = reader.Next(); err != nil {
			if errors.Is(err, io.EOF) {
				err = nil
				return
			}
			if errors.Is(err, ErrMissingMagic) || errors.Is(err, ErrTruncated) {
				logger.Warn("end of PGS stream", "offset", offset, "error", err)
				err = nil
				return
			}
			err = fmt.Errorf("failed to read segment: %w", err)
			return
		}
		switch payload := seg.Payload.(type) {
		case *PresentationComposition:
			if current.Composition != nil {
				err = fmt.Errorf("display set #%d at offset %d: %w", len(sets)+1, offset, ErrDuplicatePCS)
				sets = nil
				return
			}
			current.Composition = payload
			current.PTS = seg.PTS
		case *WindowDefinition:
			current.Windows = append(current.Windows, *payload)
		case *PaletteDefinition:
			current.Palettes = append(current.Palettes, *payload)
		case *ObjectDefinition:
			current.addObject(payload)
		case *End:
			sets = append(sets, current)
			current = DisplaySet{}
		default:
			logger.Warn("unknown segment type, dropping display set", "offset", offset, "type", seg.Type)
			current = DisplaySet{}
		}
	}
}
