package vobsub

import (
	"errors"
	"fmt"
	"time"

	"github.com/hekmon/go-subpic/cursor"
)

// ErrBadSPU is returned when a sub-picture unit control sequence can not be parsed.
var ErrBadSPU = errors.New("bad sub-picture unit")

// ParseSPU decodes the display control sequence of a merged packet. A record is emitted on
// every stop command. A record started but never stopped is emitted with its stop equal to
// its start, leaving the duration fix to the caller.
func ParseSPU(pkt PESPacket) (spu SPU, err error) {
	spu = SPU{
		Stream: pkt.Stream(),
		PTS:    pkt.PTS,
		Data:   pkt.Payload,
	}
	c := cursor.New(pkt.Payload)
	fr := cursor.NewFields(c)
	fr.U16() // total size, the payload length is authoritative
	ctrlOffset := int(fr.U16())
	if fr.Err() != nil {
		err = fmt.Errorf("failed to read SPU header: %w: %w", ErrBadSPU, fr.Err())
		return
	}
	if ctrlOffset < spuHeaderLength || ctrlOffset >= c.Len() {
		err = fmt.Errorf("control sequence offset %d out of the %d bytes payload: %w", ctrlOffset, c.Len(), ErrBadSPU)
		return
	}
	var (
		current = newDisplayCommand()
		started bool
	)
	blockStart := ctrlOffset
	for nbBlocks := 0; nbBlocks < spuMaxCtrlBlocks; nbBlocks++ {
		c.Goto(blockStart)
		delay := spuDelay(fr.U16())
		next := int(fr.U16())
		if fr.Err() != nil {
			err = fmt.Errorf("control block #%d at offset %d: %w: %w", nbBlocks+1, blockStart, ErrBadSPU, fr.Err())
			return
		}
		if err = parseCommands(fr, delay, &current, &started, &spu.Commands); err != nil {
			err = fmt.Errorf("control block #%d at offset %d: %w", nbBlocks+1, blockStart, err)
			return
		}
		// self reference marks the last block, a backward one would loop forever
		if next <= blockStart || next+spuCtrlBlockHeaderLength > c.Len() {
			break
		}
		blockStart = next
	}
	if started {
		current.Stop = current.Start
		spu.Commands = append(spu.Commands, current)
	}
	return
}

func parseCommands(fr *cursor.Fields, delay time.Duration, current *DisplayCommand, started *bool, emitted *[]DisplayCommand) (err error) {
	for {
		cmd := fr.U8()
		if fr.Err() != nil {
			return fmt.Errorf("missing end command: %w: %w", ErrBadSPU, fr.Err())
		}
		switch cmd {
		case spuCmdForcedStartDisplay:
			current.Forced = true
			current.Start = delay
			*started = true
		case spuCmdStartDisplay:
			current.Start = delay
			*started = true
		case spuCmdStopDisplay:
			current.Stop = delay
			*emitted = append(*emitted, *current)
			// the next record inherits the rendering state
			*current = DisplayCommand{
				Area:        current.Area,
				HasArea:     current.HasArea,
				TopField:    current.TopField,
				BottomField: current.BottomField,
				Colors:      current.Colors,
				Contrast:    current.Contrast,
			}
			*started = false
		case spuCmdSetColor:
			var csp ControlSequencePalette
			copy(csp[:], fr.Bytes(spuCmdSetColorArgsLen))
			for slot, index := range csp.GetIDs() {
				current.Colors[slot] = int(index)
			}
		case spuCmdSetContrast:
			var csc ControlSequenceContrast
			copy(csc[:], fr.Bytes(spuCmdSetContrastArgsLen))
			current.Contrast = csc.GetLevels()
		case spuCmdSetDisplayArea:
			copy(current.Area[:], fr.Bytes(spuCmdSetDisplayAreaArgsLen))
			current.HasArea = true
		case spuCmdSetPixelDataAddress:
			current.TopField = int(fr.U16())
			current.BottomField = int(fr.U16())
		case spuCmdChangeColorAndContrast:
			// unsupported extension: skipped as a whole
			length := int(fr.U16())
			fr.Skip(length)
		case spuCmdEnd:
			return
		default:
			return fmt.Errorf("unknown command 0x%02X: %w", cmd, ErrBadSPU)
		}
		if fr.Err() != nil {
			return fmt.Errorf("truncated command 0x%02X: %w: %w", cmd, ErrBadSPU, fr.Err())
		}
	}
}

// FilterCommands returns the commands worth displaying: images at least 4x3 pixels, and
// not a tiny (10x10 or less) flash shown for less than 100ms. The input is not modified.
func FilterCommands(commands []DisplayCommand) (kept []DisplayCommand) {
	kept = make([]DisplayCommand, 0, len(commands))
	for _, dc := range commands {
		size := dc.Size()
		if size.X <= minWidth || size.Y <= minHeight {
			continue
		}
		if dc.Duration() < flashMaxDuration && size.X <= flashMaxWidth && size.Y <= flashMaxHeight {
			continue
		}
		kept = append(kept, dc)
	}
	return
}
