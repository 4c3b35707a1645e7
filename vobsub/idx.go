package vobsub

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	idxKeySize       = "size"
	idxKeyOrigin     = "org"
	idxKeyAlpha      = "alpha"
	idxKeyTimeOffset = "time offset"
	idxKeyForcedSubs = "forced subs"
	idxKeyPalette    = "palette"
	idxPaletteLen    = 16
)

// IdxMetadata holds the .idx settings used to decode the matching .sub file.
type IdxMetadata struct {
	// FrameSize and Origin place the display areas on the video frame (full frame rendering)
	FrameSize image.Point
	Origin    image.Point
	// AlphaRatio is already applied to Palette
	AlphaRatio float64
	// TimeOffset is added to every timestamp
	TimeOffset time.Duration
	// ForcedOnly keeps only the forced display commands
	ForcedOnly bool
	// Palette is nil when the file has no palette line
	Palette []color.NRGBA
}

// ReadIdxFile parses the .idx file at path.
func ReadIdxFile(path string) (metadata *IdxMetadata, err error) {
	fd, err := os.Open(path)
	if err != nil {
		err = fmt.Errorf("failed to open file: %w", err)
		return
	}
	defer fd.Close()
	if metadata, err = ParseIdx(fd); err != nil {
		err = fmt.Errorf("failed to parse idx file: %w", err)
	}
	return
}

// ParseIdx reads the "key: value" lines of a .idx file. Keys playing no part in decoding,
// comments and the per stream timestamp lines are ignored. A missing alpha line means fully
// opaque.
func ParseIdx(reader io.Reader) (metadata *IdxMetadata, err error) {
	metadata = &IdxMetadata{
		AlphaRatio: 1,
	}
	scanner := bufio.NewScanner(reader)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found || strings.HasPrefix(key, "#") {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case idxKeySize:
			metadata.FrameSize, err = parseIdxPair(value, "x")
		case idxKeyOrigin:
			metadata.Origin, err = parseIdxPair(value, ",")
		case idxKeyAlpha:
			metadata.AlphaRatio, err = parseIdxAlpha(value)
		case idxKeyTimeOffset:
			var ms int
			if ms, err = strconv.Atoi(value); err == nil {
				metadata.TimeOffset = time.Duration(ms) * time.Millisecond
			}
		case idxKeyForcedSubs:
			metadata.ForcedOnly, err = parseIdxSwitch(value)
		case idxKeyPalette:
			metadata.Palette, err = parseIdxPalette(value)
		}
		if err != nil {
			err = fmt.Errorf("line %d: %s: %w", lineNumber, key, err)
			return
		}
	}
	if err = scanner.Err(); err != nil {
		err = fmt.Errorf("error while scanning idx content: %w", err)
		return
	}
	alpha := uint8(255 * metadata.AlphaRatio)
	for index := range metadata.Palette {
		metadata.Palette[index].A = alpha
	}
	return
}

// parseIdxPair reads two integers such as "720x576" or "10, 20".
func parseIdxPair(value, sep string) (p image.Point, err error) {
	first, second, found := strings.Cut(value, sep)
	if !found {
		err = fmt.Errorf("expecting two values separated by %q: %q", sep, value)
		return
	}
	if p.X, err = strconv.Atoi(strings.TrimSpace(first)); err != nil {
		return
	}
	p.Y, err = strconv.Atoi(strings.TrimSpace(second))
	return
}

func parseIdxAlpha(value string) (ratio float64, err error) {
	percent, found := strings.CutSuffix(value, "%")
	if !found {
		err = fmt.Errorf("should end with '%%': %q", value)
		return
	}
	intValue, err := strconv.Atoi(strings.TrimSpace(percent))
	if err != nil {
		return
	}
	if intValue <= 0 || intValue > 100 {
		err = fmt.Errorf("ratio must be within 1%% and 100%%: %d%%", intValue)
		return
	}
	ratio = float64(intValue) / 100
	return
}

func parseIdxSwitch(value string) (on bool, err error) {
	switch value {
	case "ON":
		on = true
	case "OFF":
	default:
		err = fmt.Errorf("unexpected value %q (expected ON or OFF)", value)
	}
	return
}

// parseIdxPalette reads 16 RRGGBB colors, separated by "," or ", ". Alpha is left at zero.
func parseIdxPalette(value string) (palette []color.NRGBA, err error) {
	values := strings.Split(value, ",")
	if len(values) != idxPaletteLen {
		err = fmt.Errorf("expecting %d colors, got %d", idxPaletteLen, len(values))
		return
	}
	palette = make([]color.NRGBA, idxPaletteLen)
	var rgb [3]byte
	for index, hexColor := range values {
		hexColor = strings.TrimSpace(hexColor)
		if len(hexColor) != 2*len(rgb) {
			err = fmt.Errorf("color #%d %q is not RRGGBB", index, hexColor)
			return
		}
		if _, err = hex.Decode(rgb[:], []byte(hexColor)); err != nil {
			err = fmt.Errorf("color #%d: %w", index, err)
			return
		}
		palette[index] = color.NRGBA{R: rgb[0], G: rgb[1], B: rgb[2]}
	}
	return
}
