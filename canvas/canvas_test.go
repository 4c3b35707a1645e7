package canvas

import (
	"image"
	"image/color"
	"testing"
)

var (
	transparent = color.NRGBA{}
	white       = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	red         = color.NRGBA{R: 255, A: 255}
)

func TestCanvas_SetPixelLayout(t *testing.T) {
	t.Parallel()
	c := New(3, 2)
	if len(c.Pix()) != 3*2*4 {
		t.Fatalf("buffer length = %d, want 24", len(c.Pix()))
	}
	c.SetPixel(1, 1, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	pos := 4 * (1 + 1*3)
	got := c.Pix()[pos : pos+4]
	want := []byte{3, 2, 1, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pixel bytes = %v, want %v (B, G, R, A)", got, want)
		}
	}
	// out of range writes are ignored
	c.SetPixel(3, 0, red)
	c.SetPixel(-1, 0, red)
	if c.At(1, 1) != (color.NRGBA{R: 1, G: 2, B: 3, A: 4}) {
		t.Errorf("At(1, 1) = %+v", c.At(1, 1))
	}
}

func TestCanvas_Image(t *testing.T) {
	t.Parallel()
	c := New(2, 1)
	c.SetPixel(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 40})
	img := c.Image()
	if img.Bounds() != image.Rect(0, 0, 2, 1) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 10, G: 20, B: 30, A: 40}) {
		t.Errorf("NRGBAAt(0, 0) = %+v", got)
	}
}

func TestCanvas_TrimAllBackground(t *testing.T) {
	t.Parallel()
	c := New(8, 6)
	c.Fill(white)
	if got := c.Trim(white); !got.Empty() {
		t.Errorf("Trim on uniform canvas = %v, want empty", got)
	}
}

func TestCanvas_TrimSinglePixel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		w, h   int
		x, y   int
		bounds image.Rectangle
	}{
		{"center", 9, 7, 4, 3, image.Rect(3, 2, 6, 5)},
		{"top left corner", 9, 7, 0, 0, image.Rect(0, 0, 2, 2)},
		{"bottom right corner", 9, 7, 8, 6, image.Rect(7, 5, 9, 7)},
		{"left edge", 9, 7, 0, 3, image.Rect(0, 2, 2, 5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := New(tt.w, tt.h)
			c.Fill(white)
			c.SetPixel(tt.x, tt.y, red)
			got := c.Trim(white)
			if got != tt.bounds {
				t.Fatalf("Trim = %v, want %v", got, tt.bounds)
			}
			if !image.Pt(tt.x, tt.y).In(got) {
				t.Errorf("trimmed region %v lost the pixel (%d, %d)", got, tt.x, tt.y)
			}
		})
	}
}

func TestCanvas_TrimIgnoresTransparentPixels(t *testing.T) {
	t.Parallel()
	c := New(5, 5)
	// transparent pixel with garbage green/blue, red matching the background
	c.SetPixel(0, 0, color.NRGBA{R: 0, G: 99, B: 99, A: 0})
	c.SetPixel(2, 2, red)
	if got, want := c.Trim(transparent), image.Rect(1, 1, 4, 4); got != want {
		t.Errorf("Trim = %v, want %v", got, want)
	}
}

func TestCanvas_ApplyBorderSize(t *testing.T) {
	t.Parallel()
	src := New(20, 10)
	tests := []struct {
		name   string
		bounds image.Rectangle
		border Border
	}{
		{"no border", image.Rect(2, 2, 12, 8), Border{}},
		{"border only", image.Rect(2, 2, 12, 8), Border{Width: 2}},
		{"padding only", image.Rect(0, 0, 20, 10), Border{Padding: 3}},
		{"both", image.Rect(5, 1, 6, 2), Border{Width: 1, Padding: 4}},
		{"empty region", image.Rectangle{}, Border{Width: 1, Padding: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := src.ApplyBorder(tt.bounds, transparent, tt.border)
			frame := 2 * (tt.border.Width + tt.border.Padding)
			if out.Width() != tt.bounds.Dx()+frame || out.Height() != tt.bounds.Dy()+frame {
				t.Errorf("size = %dx%d, want %dx%d", out.Width(), out.Height(),
					tt.bounds.Dx()+frame, tt.bounds.Dy()+frame)
			}
			if len(out.Pix()) != out.Width()*out.Height()*4 {
				t.Errorf("buffer length = %d, want %d", len(out.Pix()), out.Width()*out.Height()*4)
			}
		})
	}
}

func TestCanvas_ApplyBorderLayout(t *testing.T) {
	t.Parallel()
	src := New(4, 4)
	src.Fill(white)
	src.SetPixel(1, 1, red)
	src.SetPixel(2, 2, red)
	borderColor := color.NRGBA{B: 255, A: 255}
	out := src.ApplyBorder(image.Rect(1, 1, 3, 3), white, Border{Width: 1, Padding: 1, Color: borderColor})
	// 2x2 interior + 2*(1+1)
	if out.Width() != 6 || out.Height() != 6 {
		t.Fatalf("size = %dx%d, want 6x6", out.Width(), out.Height())
	}
	checks := []struct {
		x, y int
		want color.NRGBA
	}{
		{0, 0, borderColor},
		{5, 3, borderColor},
		{3, 5, borderColor},
		{1, 1, white}, // padding corner
		{1, 3, white}, // left padding
		{2, 2, red},   // interior (1, 1)
		{3, 3, red},   // interior (2, 2)
		{3, 2, white}, // interior (2, 1)
		{4, 4, white}, // bottom right padding
		{0, 3, borderColor},
	}
	for _, ck := range checks {
		if got := out.At(ck.x, ck.y); got != ck.want {
			t.Errorf("At(%d, %d) = %+v, want %+v", ck.x, ck.y, got, ck.want)
		}
	}
}

func TestCanvas_AddMargin(t *testing.T) {
	t.Parallel()
	c := New(2, 3)
	c.Fill(red)
	out := c.AddMargin(2, white)
	if out.Width() != 6 || out.Height() != 7 {
		t.Fatalf("size = %dx%d, want 6x7", out.Width(), out.Height())
	}
	if out.At(0, 0) != white || out.At(5, 6) != white || out.At(1, 3) != white {
		t.Error("margin not painted with margin color")
	}
	if out.At(2, 2) != red || out.At(3, 4) != red {
		t.Error("content not copied at the margin offset")
	}
	if same := c.AddMargin(0, white); same.Width() != 2 || same.At(1, 2) != red {
		t.Error("zero margin should copy the canvas")
	}
}

func TestCanvas_Draw(t *testing.T) {
	t.Parallel()
	src := New(2, 2)
	src.Fill(red)
	dst := New(4, 3)
	dst.Fill(white)
	dst.Draw(src, image.Pt(3, 2))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			want := white
			if x == 3 && y == 2 {
				want = red
			}
			if got := dst.At(x, y); got != want {
				t.Errorf("At(%d, %d) = %v, want %v", x, y, got, want)
			}
		}
	}
	// fully outside: nothing drawn
	dst.Draw(src, image.Pt(-2, 0))
	if dst.At(0, 0) != white {
		t.Error("pixels drawn outside of the source area")
	}
	dst.Draw(src, image.Pt(-1, -1))
	if dst.At(0, 0) != red || dst.At(1, 0) != white || dst.At(0, 1) != white {
		t.Error("negative offset not clipped")
	}
}
