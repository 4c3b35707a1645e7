package vobsub

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/hekmon/go-subpic/colormodel"
)

func TestSpuDelay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		delay uint16
		want  time.Duration
	}{
		{0, 0},
		{45, 512 * time.Millisecond},
		{90, 1024 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := spuDelay(tt.delay); got != tt.want {
			t.Errorf("spuDelay(%d) = %s, want %s", tt.delay, got, tt.want)
		}
	}
}

func TestControlSequenceCoordinates(t *testing.T) {
	t.Parallel()
	var csc ControlSequenceCoordinates
	copy(csc[:], cmdArea(100, 619, 400, 459)[1:])
	coord := csc.Get()
	if coord.Point1 != image.Pt(100, 400) || coord.Point2 != image.Pt(619, 459) {
		t.Errorf("got %+v", coord)
	}
	if coord.Size() != image.Pt(519, 59) || coord.CanvasSize() != image.Pt(520, 60) {
		t.Errorf("size %s, canvas size %s", coord.Size(), coord.CanvasSize())
	}
}

func TestParseSPU(t *testing.T) {
	t.Parallel()
	pixels := []byte{0x00, 0x01, 0x00, 0x02}
	first := concat(
		[]byte{spuCmdStartDisplay},
		[]byte{spuCmdSetColor, 0x12, 0x34},
		[]byte{spuCmdSetContrast, 0xFF, 0xF0},
		cmdArea(10, 20, 30, 40),
		cmdFields(4, 6),
	)
	payload := buildSPU(pixels, ctrlBlock{0, first}, ctrlBlock{45, []byte{spuCmdStopDisplay}})
	spu, err := ParseSPU(PESPacket{SubStream: 0x21, HasPTS: true, PTS: 1234, Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	if spu.Stream != 1 || spu.PTS != 1234 {
		t.Errorf("stream %d pts %d", spu.Stream, spu.PTS)
	}
	if len(spu.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(spu.Commands))
	}
	dc := spu.Commands[0]
	if dc.Start != 0 || dc.Stop != 512*time.Millisecond || dc.Forced {
		t.Errorf("timing: %s", dc)
	}
	if want := [4]int{4, 3, 2, 1}; dc.Colors != want {
		t.Errorf("colors = %v, want %v", dc.Colors, want)
	}
	if want := [4]colormodel.Contrast{0, 15, 15, 15}; dc.Contrast != want {
		t.Errorf("contrast = %v, want %v", dc.Contrast, want)
	}
	if !dc.HasArea || dc.Size() != image.Pt(10, 10) {
		t.Errorf("area: %s", dc)
	}
	if dc.TopField != 4 || dc.BottomField != 6 {
		t.Errorf("fields: top %d bottom %d", dc.TopField, dc.BottomField)
	}
}

func TestParseSPU_StartWithoutStop(t *testing.T) {
	t.Parallel()
	payload := buildSPU(nil, ctrlBlock{90, concat([]byte{spuCmdForcedStartDisplay}, cmdArea(0, 50, 0, 20))})
	spu, err := ParseSPU(PESPacket{SubStream: 0x20, HasPTS: true, Payload: payload})
	if err != nil {
		t.Fatal(err)
	}
	if len(spu.Commands) != 1 {
		t.Fatalf("got %d commands, want 1", len(spu.Commands))
	}
	dc := spu.Commands[0]
	if !dc.Forced || dc.Start != 1024*time.Millisecond || dc.Duration() != 0 {
		t.Errorf("got %s", dc)
	}
	if dc.Colors != [4]int{-1, -1, -1, -1} {
		t.Errorf("colors = %v, want unset", dc.Colors)
	}
}

func TestParseSPU_SkipsColorContrastChange(t *testing.T) {
	t.Parallel()
	commands := concat(
		[]byte{spuCmdChangeColorAndContrast, 0x00, 0x03, 0xAA, 0xBB, 0xCC},
		[]byte{spuCmdStartDisplay},
		cmdArea(0, 50, 0, 20),
		[]byte{spuCmdStopDisplay},
	)
	spu, err := ParseSPU(PESPacket{HasPTS: true, Payload: buildSPU(nil, ctrlBlock{0, commands})})
	if err != nil {
		t.Fatal(err)
	}
	if len(spu.Commands) != 1 || !spu.Commands[0].HasArea {
		t.Errorf("got %v", spu.Commands)
	}
}

func TestParseSPU_Errors(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		payload []byte
	}{
		{"empty", nil},
		{"control offset out of payload", []byte{0x00, 0x04, 0x10, 0x00}},
		{"unknown command", buildSPU(nil, ctrlBlock{0, []byte{0x42}})},
		{"truncated arguments", buildSPU(nil, ctrlBlock{0, []byte{spuCmdSetDisplayArea, 0x01}})[:10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ParseSPU(PESPacket{HasPTS: true, Payload: tt.payload}); !errors.Is(err, ErrBadSPU) {
				t.Errorf("err = %v, want ErrBadSPU", err)
			}
		})
	}
}

func TestFilterCommands(t *testing.T) {
	t.Parallel()
	command := func(width, height int, duration time.Duration) DisplayCommand {
		dc := newDisplayCommand()
		copy(dc.Area[:], cmdArea(0, width, 0, height)[1:])
		dc.HasArea = true
		dc.Stop = duration
		return dc
	}
	commands := []DisplayCommand{
		command(3, 50, time.Second),
		command(50, 2, time.Second),
		command(10, 10, 99*time.Millisecond),
		command(10, 10, 100*time.Millisecond),
		command(11, 10, 0),
		command(4, 3, time.Second),
	}
	kept := FilterCommands(commands)
	want := []image.Point{{10, 10}, {11, 10}, {4, 3}}
	if len(kept) != len(want) {
		t.Fatalf("kept %d commands, want %d", len(kept), len(want))
	}
	for index, dc := range kept {
		if dc.Size() != want[index] {
			t.Errorf("kept #%d has size %s, want %s", index, dc.Size(), want[index])
		}
	}
	if len(commands) != 6 {
		t.Errorf("input modified")
	}
}
