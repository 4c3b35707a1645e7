// Package input loads subtitle files, transparently decompressing zstd archives.
package input

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Kind is the subtitle format of an input file.
type Kind int

const (
	Unknown Kind = iota
	PGS
	VobSub
)

func (k Kind) String() string {
	switch k {
	case PGS:
		return "pgs"
	case VobSub:
		return "vobsub"
	default:
		return "unknown"
	}
}

const zstdExtension = ".zst"

// zstdMagic opens every zstd frame (little endian 0xFD2FB528).
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

// ErrUnknownKind is returned for files that are neither .sup nor .sub.
var ErrUnknownKind = errors.New("unsupported subtitle file extension")

// DetectKind guesses the format from the file extension, ignoring a trailing .zst.
func DetectKind(path string) (kind Kind, err error) {
	path = strings.TrimSuffix(path, zstdExtension)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".sup":
		kind = PGS
	case ".sub":
		kind = VobSub
	default:
		err = fmt.Errorf("%q: %w (expected .sup or .sub)", filepath.Base(path), ErrUnknownKind)
	}
	return
}

// ReadFile returns the whole content of path, decompressed when it is a zstd stream.
func ReadFile(path string) (data []byte, err error) {
	if data, err = os.ReadFile(path); err != nil {
		err = fmt.Errorf("failed to read file: %w", err)
		return
	}
	if data, err = Decompress(data); err != nil {
		err = fmt.Errorf("failed to decompress %q: %w", filepath.Base(path), err)
	}
	return
}

// Decompress returns data decoded when it starts with a zstd frame, untouched otherwise.
func Decompress(data []byte) (plain []byte, err error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

// Companion returns the existing path of a file sharing the input base name with the given
// extension, with or without the .zst suffix. ok is false when none exists.
func Companion(path, extension string) (companion string, ok bool) {
	base := strings.TrimSuffix(path, zstdExtension)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	for _, candidate := range []string{base + extension, base + extension + zstdExtension} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return
}
