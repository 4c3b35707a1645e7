package canvas

import (
	"image"
	"image/color"
)

// Border describes the frame drawn around a trimmed subtitle bitmap: Width pixels of
// Color on the outside, then Padding pixels of background color.
type Border struct {
	Width   int
	Padding int
	Color   color.NRGBA
}

// Trim returns the region left once uniform background rows and columns have been
// removed from each edge, keeping one pixel of margin around the content when the
// canvas allows it. A canvas holding only background yields an empty rectangle.
func (c *Canvas) Trim(background color.NRGBA) (bounds image.Rectangle) {
	top := -1
	for y := 0; y < c.height; y++ {
		if !c.rowTrimmable(y, background) {
			top = y
			break
		}
	}
	if top == -1 {
		// nothing but background
		return
	}
	bottom := top
	for y := c.height - 1; y > top; y-- {
		if !c.rowTrimmable(y, background) {
			bottom = y
			break
		}
	}
	left := 0
	for x := 0; x < c.width; x++ {
		if !c.columnTrimmable(x, top, bottom, background) {
			left = x
			break
		}
	}
	right := left
	for x := c.width - 1; x > left; x-- {
		if !c.columnTrimmable(x, top, bottom, background) {
			right = x
			break
		}
	}
	bounds.Min = image.Point{X: max(left-1, 0), Y: max(top-1, 0)}
	bounds.Max = image.Point{X: min(right+2, c.width), Y: min(bottom+2, c.height)}
	return
}

func (c *Canvas) rowTrimmable(y int, background color.NRGBA) bool {
	for x := 0; x < c.width; x++ {
		if c.blocksTrim(c.offset(x, y), background) {
			return false
		}
	}
	return true
}

// columnTrimmable only looks at rows [top, bottom], the rows outside are background already.
func (c *Canvas) columnTrimmable(x, top, bottom int, background color.NRGBA) bool {
	for y := top; y <= bottom; y++ {
		if c.blocksTrim(c.offset(x, y), background) {
			return false
		}
	}
	return true
}

// blocksTrim reports whether the pixel at pos differs from the background.
// Alpha only gates the blue and green comparison: red is compared for every pixel.
// Files with garbage in the alpha channel of transparent pixels rely on this.
func (c *Canvas) blocksTrim(pos int, background color.NRGBA) bool {
	return (c.pix[pos+3] != 0 && (c.pix[pos] != background.B || c.pix[pos+1] != background.G)) ||
		c.pix[pos+2] != background.R
}

// ApplyBorder copies the bounds region of the canvas into a new canvas framed by the
// given border. The result is (W+2(width+padding)) x (H+2(width+padding)).
func (c *Canvas) ApplyBorder(bounds image.Rectangle, background color.NRGBA, border Border) (framed *Canvas) {
	bounds = bounds.Intersect(c.Bounds())
	frame := max(border.Width, 0) + max(border.Padding, 0)
	framed = New(bounds.Dx()+2*frame, bounds.Dy()+2*frame)
	bw := max(border.Width, 0)
	for y := 0; y < framed.height; y++ {
		for x := 0; x < framed.width; x++ {
			switch {
			case x < bw || x >= framed.width-bw || y < bw || y >= framed.height-bw:
				framed.SetPixel(x, y, border.Color)
			case x < frame || x >= framed.width-frame || y < frame || y >= framed.height-frame:
				framed.SetPixel(x, y, background)
			}
		}
	}
	// interior rows
	rowLen := bounds.Dx() * bytesPerPixel
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		src := c.offset(bounds.Min.X, y)
		dst := framed.offset(frame, y-bounds.Min.Y+frame)
		copy(framed.pix[dst:dst+rowLen], c.pix[src:src+rowLen])
	}
	return
}

// AddMargin returns a new canvas with size pixels of col added on every side.
func (c *Canvas) AddMargin(size int, col color.NRGBA) (margined *Canvas) {
	if size <= 0 {
		margined = New(c.width, c.height)
		copy(margined.pix, c.pix)
		return
	}
	margined = New(c.width+2*size, c.height+2*size)
	margined.Fill(col)
	rowLen := c.width * bytesPerPixel
	for y := 0; y < c.height; y++ {
		dst := margined.offset(size, y+size)
		copy(margined.pix[dst:dst+rowLen], c.pix[c.offset(0, y):c.offset(0, y)+rowLen])
	}
	return
}

// Draw copies src onto c with its top left corner at at. Pixels falling outside c are dropped.
func (c *Canvas) Draw(src *Canvas, at image.Point) {
	area := src.Bounds().Add(at).Intersect(c.Bounds())
	if area.Empty() {
		return
	}
	rowLen := area.Dx() * bytesPerPixel
	for y := area.Min.Y; y < area.Max.Y; y++ {
		from := src.offset(area.Min.X-at.X, y-at.Y)
		to := c.offset(area.Min.X, y)
		copy(c.pix[to:to+rowLen], src.pix[from:from+rowLen])
	}
}
