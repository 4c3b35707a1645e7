// Package canvas implements the pixel buffer subtitle bitmaps are decoded into.
//
// Pixels are stored 4 bytes each, row-major, in B, G, R, A order with straight
// (non-premultiplied) alpha. The buffer length is always width*height*4.
package canvas

import (
	"fmt"
	"image"
	"image/color"
)

const bytesPerPixel = 4

// Canvas is a mutable BGRA pixel buffer.
type Canvas struct {
	width, height int
	pix           []byte
}

// New allocates a fully transparent canvas. Negative sizes are treated as zero.
func New(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	return &Canvas{
		width:  width,
		height: height,
		pix:    make([]byte, width*height*bytesPerPixel),
	}
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int {
	return c.width
}

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int {
	return c.height
}

// Pix returns the raw BGRA buffer.
func (c *Canvas) Pix() []byte {
	return c.pix
}

// Bounds returns the canvas rectangle, anchored at (0, 0).
func (c *Canvas) Bounds() image.Rectangle {
	return image.Rect(0, 0, c.width, c.height)
}

func (c *Canvas) offset(x, y int) int {
	return bytesPerPixel * (x + y*c.width)
}

// SetPixel writes col at (x, y). Coordinates outside the canvas are ignored.
func (c *Canvas) SetPixel(x, y int, col color.NRGBA) {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	pos := c.offset(x, y)
	c.pix[pos] = col.B
	c.pix[pos+1] = col.G
	c.pix[pos+2] = col.R
	c.pix[pos+3] = col.A
}

// At returns the color at (x, y), transparent black outside the canvas.
func (c *Canvas) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return color.NRGBA{}
	}
	pos := c.offset(x, y)
	return color.NRGBA{B: c.pix[pos], G: c.pix[pos+1], R: c.pix[pos+2], A: c.pix[pos+3]}
}

// Fill paints the whole canvas with col.
func (c *Canvas) Fill(col color.NRGBA) {
	px := [bytesPerPixel]byte{col.B, col.G, col.R, col.A}
	for pos := 0; pos < len(c.pix); pos += bytesPerPixel {
		copy(c.pix[pos:], px[:])
	}
}

// Image converts the canvas to a standard library image, ready for an image encoder.
func (c *Canvas) Image() *image.NRGBA {
	img := image.NewNRGBA(c.Bounds())
	for pos := 0; pos < len(c.pix); pos += bytesPerPixel {
		img.Pix[pos] = c.pix[pos+2]
		img.Pix[pos+1] = c.pix[pos+1]
		img.Pix[pos+2] = c.pix[pos]
		img.Pix[pos+3] = c.pix[pos+3]
	}
	return img
}

func (c *Canvas) String() string {
	return fmt.Sprintf("Canvas{%dx%d}", c.width, c.height)
}
