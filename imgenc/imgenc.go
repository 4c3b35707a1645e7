// Package imgenc encodes rendered subtitle bitmaps into standard image containers.
package imgenc

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Format is an output image container.
type Format int

const (
	JPEG Format = iota
	PNG
	BMP
	GIF
	TIFF
)

// JPEGQuality is used for every JPEG output.
const JPEGQuality = 95

// ParseFormat maps a user supplied format name to a Format. Unknown names fall back to JPEG,
// ok is false in that case.
func ParseFormat(name string) (f Format, ok bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "jpg", "jpeg":
		return JPEG, true
	case "png":
		return PNG, true
	case "bmp":
		return BMP, true
	case "gif":
		return GIF, true
	case "tif", "tiff":
		return TIFF, true
	default:
		return JPEG, false
	}
}

// Ext returns the file extension of the format, without the leading dot.
func (f Format) Ext() string {
	switch f {
	case PNG:
		return "png"
	case BMP:
		return "bmp"
	case GIF:
		return "gif"
	case TIFF:
		return "tiff"
	default:
		return "jpg"
	}
}

func (f Format) String() string {
	return f.Ext()
}

// MarshalText allows Format to be used directly in JSON documents.
func (f Format) MarshalText() ([]byte, error) {
	return []byte(f.Ext()), nil
}

// UnmarshalText allows Format to be used directly in JSON documents.
func (f *Format) UnmarshalText(text []byte) error {
	parsed, ok := ParseFormat(string(text))
	if !ok {
		return fmt.Errorf("unknown image format %q", text)
	}
	*f = parsed
	return nil
}

// Encode writes img to w using format f.
func Encode(w io.Writer, img image.Image, f Format) (err error) {
	switch f {
	case JPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case PNG:
		err = png.Encode(w, img)
	case BMP:
		err = bmp.Encode(w, img)
	case GIF:
		err = gif.Encode(w, img, nil)
	case TIFF:
		err = tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		err = fmt.Errorf("unsupported image format %d", f)
		return
	}
	if err != nil {
		err = fmt.Errorf("failed to encode %s image: %w", f, err)
	}
	return
}
