package vobsub

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/config"
)

var red = color.NRGBA{R: 255, A: 255}

// testSPU shows a 5x4 bitmap for 512ms: rows 0 and 2 pattern, rows 1 and 3 background.
func testSPU() []byte {
	return buildTestSPU(spuCmdStartDisplay)
}

func buildTestSPU(start byte) []byte {
	top := []byte{0x00, 0x01, 0x00, 0x01}
	bottom := []byte{0x00, 0x00, 0x00, 0x00}
	first := concat(
		[]byte{start},
		cmdArea(0, 4, 0, 3),
		cmdFields(spuHeaderLength, spuHeaderLength+len(top)),
	)
	return buildSPU(concat(top, bottom), ctrlBlock{0, first}, ctrlBlock{45, []byte{spuCmdStopDisplay}})
}

func TestDecode_EndToEnd(t *testing.T) {
	t.Parallel()
	spu := testSPU()
	half := len(spu) / 2
	badSPU := []byte{0x00, 0x09, 0x00, 0x04, 0x00, 0x00, 0x00, 0x04, 0x42}
	data := concat(
		// orphan continuation block
		buildBlock(0x20, -1, []byte{1, 2}),
		buildBlock(0x20, 90_000, spu[:half]),
		buildBlock(0x21, 0, badSPU),
		buildBlock(0x20, -1, spu[half:]),
	)
	cfg := config.Default()
	cfg.Border = canvas.Border{Width: 1, Color: red}
	subs, skipped, err := Decode(context.Background(), data, nil, cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 2 {
		t.Errorf("got %d skipped packets, want 2: %v", len(skipped), skipped)
	} else if !errors.Is(skipped[1], ErrBadSPU) {
		t.Errorf("skipped[1] = %v, want ErrBadSPU", skipped[1])
	}
	if len(subs) != 1 || len(subs[0]) != 1 {
		t.Fatalf("got %v, want one subtitle in stream 0", subs)
	}
	sub := subs[0][0]
	if sub.Start != time.Second || sub.Stop != time.Second+512*time.Millisecond {
		t.Errorf("timing %s --> %s", sub.Start, sub.Stop)
	}
	img := sub.Image
	if img.Width() != 7 || img.Height() != 6 {
		t.Fatalf("image is %dx%d, want 7x6", img.Width(), img.Height())
	}
	pattern := cfg.CustomColors[1]
	if got := img.At(1, 1); got != pattern {
		t.Errorf("pixel (1,1) = %v, want %v", got, pattern)
	}
	if got := img.At(1, 2); got != cfg.CustomColors[0] {
		t.Errorf("pixel (1,2) = %v, want background", got)
	}
	if got := img.At(0, 0); got != red {
		t.Errorf("pixel (0,0) = %v, want border", got)
	}
}

func TestDecode_TimeOffsetAndPalette(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.UseCustomColors = false
	metadata := &IdxMetadata{
		TimeOffset: 250 * time.Millisecond,
		Palette:    make([]color.NRGBA, 16),
	}
	// no color command: every slot falls back to custom colors
	subs, skipped, err := Decode(context.Background(), buildBlock(0x20, 0, testSPU()), metadata, cfg, discardLogger())
	if err != nil {
		t.Fatal(err)
	}
	if len(skipped) != 0 || len(subs[0]) != 1 {
		t.Fatalf("got %v (skipped %v)", subs, skipped)
	}
	if sub := subs[0][0]; sub.Start != 250*time.Millisecond || sub.Stop != 762*time.Millisecond {
		t.Errorf("timing %s --> %s", sub.Start, sub.Stop)
	}
}

func TestDecode_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	subs, _, err := Decode(ctx, buildBlock(0x20, 0, testSPU()), nil, config.Default(), discardLogger())
	if !errors.Is(err, context.Canceled) || subs != nil {
		t.Errorf("got %v, %v; want context.Canceled and no subtitles", subs, err)
	}
}

func TestFixZeroDurations(t *testing.T) {
	t.Parallel()
	subs := []Subtitle{
		{Start: time.Second, Stop: time.Second},
		{Start: 3 * time.Second, Stop: 3 * time.Second},
		{Start: 3050 * time.Millisecond, Stop: 4 * time.Second},
		{Start: 5 * time.Second, Stop: 5 * time.Second},
	}
	fixZeroDurations(subs)
	want := []time.Duration{
		2900 * time.Millisecond,
		// the next one starts too early
		3 * time.Second,
		4 * time.Second,
		// last one has no follower
		5 * time.Second,
	}
	for index, sub := range subs {
		if sub.Stop != want[index] {
			t.Errorf("subtitle #%d stops at %s, want %s", index, sub.Stop, want[index])
		}
	}
}

func TestIdxPath(t *testing.T) {
	t.Parallel()
	if got := IdxPath("/movies/film.fr.sub"); got != "/movies/film.fr.idx" {
		t.Errorf("IdxPath = %q", got)
	}
}

func TestDecode_ForcedOnly(t *testing.T) {
	t.Parallel()
	data := concat(
		buildBlock(0x20, 0, testSPU()),
		buildBlock(0x20, 180_000, buildTestSPU(spuCmdForcedStartDisplay)),
	)
	metadata := &IdxMetadata{ForcedOnly: true}
	subs, skipped, err := Decode(context.Background(), data, metadata, config.Default(), discardLogger())
	if err != nil || len(skipped) != 0 {
		t.Fatalf("Decode: %v (skipped %v)", err, skipped)
	}
	if len(subs[0]) != 1 || !subs[0][0].Forced || subs[0][0].Start != 2*time.Second {
		t.Errorf("got %+v, want the forced subtitle only", subs[0])
	}
	// every command is kept by default
	subs, _, err = Decode(context.Background(), data, nil, config.Default(), discardLogger())
	if err != nil || len(subs[0]) != 2 {
		t.Errorf("got %d subtitles (%v), want 2", len(subs[0]), err)
	}
}

func TestDecode_FullFrame(t *testing.T) {
	t.Parallel()
	cfg := config.Default()
	cfg.FullFrame = true
	metadata := &IdxMetadata{FrameSize: image.Pt(10, 8), Origin: image.Pt(2, 1)}
	subs, skipped, err := Decode(context.Background(), buildBlock(0x20, 0, testSPU()), metadata, cfg, discardLogger())
	if err != nil || len(skipped) != 0 || len(subs[0]) != 1 {
		t.Fatalf("got %v, %v (skipped %v)", subs, err, skipped)
	}
	img := subs[0][0].Image
	if img.Width() != 10 || img.Height() != 8 {
		t.Fatalf("image is %dx%d, want the 10x8 frame", img.Width(), img.Height())
	}
	pattern, background := cfg.CustomColors[1], cfg.CustomColors[0]
	if got := img.At(2, 1); got != pattern {
		t.Errorf("pixel (2,1) = %v, want the area top left corner", got)
	}
	if got := img.At(0, 0); got != background {
		t.Errorf("pixel (0,0) = %v, want background", got)
	}
	// without a frame size the image is trimmed as usual
	subs, _, err = Decode(context.Background(), buildBlock(0x20, 0, testSPU()), nil, cfg, discardLogger())
	if err != nil || subs[0][0].Image.Width() == 10 {
		t.Errorf("expected a trimmed image, got %v (%v)", subs[0][0].Image, err)
	}
}

func TestDecode_UnknownSubStreamDropped(t *testing.T) {
	t.Parallel()
	data := concat(
		buildBlock(0x20, 0, testSPU()),
		buildBlock(0x80, 0, testSPU()),
	)
	subs, skipped, err := Decode(context.Background(), data, nil, config.Default(), discardLogger())
	if err != nil || len(skipped) != 0 {
		t.Fatalf("Decode: %v (skipped %v)", err, skipped)
	}
	if _, found := subs[NoSubStream]; found || len(subs) != 1 {
		t.Errorf("streams = %v, want stream 0 only", subs)
	}
}
