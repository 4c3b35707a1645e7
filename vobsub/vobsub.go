// Package vobsub decodes DVD sub-pictures (.sub files and their .idx companion) into timed
// subtitle bitmaps.
//
// A .sub file is an MPEG-2 program stream cut in 2048 bytes blocks. Sub-pictures travel in
// private stream 1 packets, split over several blocks when bigger than one.
package vobsub

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/colormodel"
	"github.com/hekmon/go-subpic/config"

	"golang.org/x/sync/errgroup"
)

const (
	// zeroDurationGap is kept between a subtitle without stop date and the next one
	zeroDurationGap = 100 * time.Millisecond
)

// ErrNoPalette is reported when no .idx palette is available. Decoding goes on with the custom colors.
var ErrNoPalette = errors.New("no idx palette")

type renderJob struct {
	stream, index int
	spu           *SPU
	command       DisplayCommand
}

// IdxPath returns the .idx companion path of a .sub file.
func IdxPath(subFile string) string {
	extension := filepath.Ext(subFile)
	return subFile[:len(subFile)-len(extension)] + ".idx"
}

// Decode demuxes a whole .sub file and renders every display command. As .sub files can
// contain multiple streams, the returned map holds all streams with their index as key.
// Most files only contain one stream (index 0).
// Packets that can not be decoded are reported in skipped and never fail the whole run.
// metadata may be nil.
func Decode(ctx context.Context, data []byte, metadata *IdxMetadata, cfg config.Config, logger *slog.Logger) (subtitles map[int][]Subtitle, skipped []error, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "vobsub")
	var (
		palette    []color.NRGBA
		timeOffset time.Duration
		forcedOnly bool
		frame      placement
	)
	if metadata != nil {
		palette = metadata.Palette
		timeOffset = metadata.TimeOffset
		forcedOnly = metadata.ForcedOnly
		if cfg.FullFrame {
			frame = placement{size: metadata.FrameSize, origin: metadata.Origin}
		}
	}
	if cfg.FullFrame && (frame.size.X <= 0 || frame.size.Y <= 0) {
		logger.Warn("no frame size in the idx file, images are trimmed instead")
		frame = placement{}
	}
	if palette == nil && !cfg.UseCustomColors {
		logger.Warn("falling back to custom colors", "error", ErrNoPalette)
	}
	// Demux
	packets := MergePESPackets(ReadPESPackets(data, logger))
	logger.Debug("packets merged", "count", len(packets))
	spus := make([]SPU, 0, len(packets))
	for index, pkt := range packets {
		if !pkt.HasPTS {
			skipped = append(skipped, fmt.Errorf("packet #%d at offset 0x%X: no presentation timestamp", index+1, pkt.Offset))
			continue
		}
		spu, parseErr := ParseSPU(pkt)
		if parseErr != nil {
			// bad packets are found in the wild, other tools skip them too
			skipped = append(skipped, fmt.Errorf("packet #%d at offset 0x%X: %w", index+1, pkt.Offset, parseErr))
			continue
		}
		kept := FilterCommands(spu.Commands)
		if forcedOnly {
			kept = keepForced(kept)
		}
		if len(kept) != len(spu.Commands) {
			logger.Debug("display commands filtered out", "offset", pkt.Offset, "stream", spu.Stream,
				"before", len(spu.Commands), "after", len(kept))
		}
		if len(kept) == 0 {
			continue
		}
		spu.Commands = kept
		spus = append(spus, spu)
	}
	// Timing
	clock := cfg.Clock()
	subtitles = make(map[int][]Subtitle, 1)
	jobs := make([]renderJob, 0, len(spus))
	for index := range spus {
		spu := &spus[index]
		base := timeOffset + clock.Duration(spu.PTS)
		for _, dc := range spu.Commands {
			streamSubs := subtitles[spu.Stream]
			jobs = append(jobs, renderJob{
				stream:  spu.Stream,
				index:   len(streamSubs),
				spu:     spu,
				command: dc,
			})
			subtitles[spu.Stream] = append(streamSubs, Subtitle{
				Start:  base + dc.Start,
				Stop:   base + dc.Stop,
				Forced: dc.Forced,
			})
		}
	}
	// Render
	renderErrs := make([]error, len(jobs))
	workers, ctx := errgroup.WithContext(ctx)
	workers.SetLimit(runtime.GOMAXPROCS(0))
	for jobIndex, job := range jobs {
		workers.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := renderCommand(job.spu.Data, job.command, cfg, palette, frame, logger)
			if err != nil {
				renderErrs[jobIndex] = fmt.Errorf("stream %d subtitle #%d: %w", job.stream, job.index+1, err)
				return nil
			}
			subtitles[job.stream][job.index].Image = img
			return nil
		})
	}
	if err = workers.Wait(); err != nil {
		subtitles = nil
		err = fmt.Errorf("failed to render subtitles: %w", err)
		return
	}
	for _, renderErr := range renderErrs {
		if renderErr != nil {
			skipped = append(skipped, renderErr)
		}
	}
	for stream, streamSubs := range subtitles {
		subtitles[stream] = fixZeroDurations(dropUnrendered(streamSubs))
	}
	return
}

// placement positions the display areas on the video frame. The zero value trims images instead.
type placement struct {
	size, origin image.Point
}

func renderCommand(data []byte, dc DisplayCommand, cfg config.Config, palette []color.NRGBA, frame placement, logger *slog.Logger) (img *canvas.Canvas, err error) {
	colors := CommandColors(dc, cfg.CustomColors, cfg.UseCustomColors, palette)
	raw, err := DecodeCommand(data, dc, colors, logger)
	if err != nil {
		err = fmt.Errorf("failed to decode bitmap: %w", err)
		return
	}
	background := colors[colormodel.Background]
	if frame.size != (image.Point{}) {
		full := canvas.New(frame.size.X, frame.size.Y)
		full.Fill(background)
		full.Draw(raw, dc.Area.Get().Point1.Add(frame.origin))
		img = full.ApplyBorder(full.Bounds(), background, cfg.Border)
		return
	}
	bounds := raw.Trim(background)
	if bounds.Empty() {
		bounds = raw.Bounds()
	}
	img = raw.ApplyBorder(bounds, background, cfg.Border)
	return
}

// keepForced returns the forced commands only.
func keepForced(commands []DisplayCommand) (forced []DisplayCommand) {
	for _, dc := range commands {
		if dc.Forced {
			forced = append(forced, dc)
		}
	}
	return
}

func dropUnrendered(subs []Subtitle) (rendered []Subtitle) {
	rendered = subs[:0]
	for _, sub := range subs {
		if sub.Image != nil {
			rendered = append(rendered, sub)
		}
	}
	return
}

// fixZeroDurations gives subtitles without a stop date the next subtitle start minus a
// small gap, when that leaves a positive duration.
func fixZeroDurations(subs []Subtitle) []Subtitle {
	for index := range subs {
		if subs[index].Start != subs[index].Stop || index+1 >= len(subs) {
			continue
		}
		if potentialStop := subs[index+1].Start - zeroDurationGap; potentialStop > subs[index].Start {
			subs[index].Stop = potentialStop
		}
	}
	return subs
}
