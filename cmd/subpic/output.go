package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/imgenc"
	"github.com/hekmon/go-subpic/pgs"
	"github.com/hekmon/go-subpic/timeline"
	"github.com/hekmon/go-subpic/vobsub"

	"golang.org/x/sync/errgroup"
)

const (
	defaultOutputName = "subtitle"
	imagesFolder      = "img"
)

// ErrOutputNotEmpty is returned when the requested output folder already holds files.
var ErrOutputNotEmpty = errors.New("output folder is not empty")

// track is everything written for one subtitle stream: a timeline and its images.
type track struct {
	stream  int
	entries []timeline.Entry
	images  []pendingImage
}

type pendingImage struct {
	name string
	img  *canvas.Canvas
}

func pgsTrack(subs []pgs.Subtitle, format imgenc.Format) (t track) {
	t.entries = make([]timeline.Entry, 0, len(subs))
	for subIndex, sub := range subs {
		entry := timeline.Entry{Start: sub.Start, Stop: sub.Stop}
		for objIndex, img := range sub.Images {
			name := fmt.Sprintf("%d_%d.%s", subIndex+1, objIndex+1, format.Ext())
			entry.Images = append(entry.Images, name)
			t.images = append(t.images, pendingImage{name: name, img: img})
		}
		t.entries = append(t.entries, entry)
	}
	return
}

func vobsubTracks(subs map[int][]vobsub.Subtitle, format imgenc.Format) (tracks []track) {
	for _, stream := range slices.Sorted(maps.Keys(subs)) {
		t := track{stream: stream}
		prefix := ""
		if stream != 0 {
			prefix = fmt.Sprintf("stream%d_", stream)
		}
		for index, sub := range subs[stream] {
			name := fmt.Sprintf("%s%d.%s", prefix, index+1, format.Ext())
			t.entries = append(t.entries, timeline.Entry{Start: sub.Start, Stop: sub.Stop, Images: []string{name}})
			t.images = append(t.images, pendingImage{name: name, img: sub.Image})
		}
		tracks = append(tracks, t)
	}
	return
}

func timelineName(stream int) string {
	if stream == 0 {
		return "timeline.srt"
	}
	return fmt.Sprintf("timeline_%d.srt", stream)
}

// prepareOutputDir returns the folder to write into, creating it when needed. Without an
// explicit folder, a "subtitle" folder next to the input is used, or a timestamped one when
// it already exists. An explicit folder must be empty.
func prepareOutputDir(dir, inputPath string, now time.Time) (outputDir string, err error) {
	if dir == "" {
		outputDir = filepath.Join(filepath.Dir(inputPath), defaultOutputName)
		if _, statErr := os.Stat(outputDir); statErr == nil {
			outputDir = filepath.Join(filepath.Dir(inputPath), defaultOutputName+"_"+now.Format("0102150405"))
		}
	} else {
		outputDir = dir
		var entries []os.DirEntry
		if entries, err = os.ReadDir(outputDir); err == nil && len(entries) > 0 {
			err = fmt.Errorf("%q: %w", outputDir, ErrOutputNotEmpty)
			return
		}
	}
	if err = os.MkdirAll(filepath.Join(outputDir, imagesFolder), 0o755); err != nil {
		err = fmt.Errorf("failed to create output folder: %w", err)
	}
	return
}

// writeTrack encodes the images of a track in parallel, then writes its timeline.
func writeTrack(ctx context.Context, outputDir string, t track, format imgenc.Format, logger *slog.Logger) (err error) {
	workers, ctx := errgroup.WithContext(ctx)
	workers.SetLimit(runtime.GOMAXPROCS(0))
	for _, pending := range t.images {
		workers.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return writeImage(filepath.Join(outputDir, imagesFolder, pending.name), pending.img, format)
		})
	}
	if err = workers.Wait(); err != nil {
		err = fmt.Errorf("failed to write images: %w", err)
		return
	}
	timelinePath := filepath.Join(outputDir, timelineName(t.stream))
	fd, err := os.Create(timelinePath)
	if err != nil {
		err = fmt.Errorf("failed to create timeline: %w", err)
		return
	}
	if err = timeline.Write(fd, t.entries); err != nil {
		fd.Close()
		return
	}
	if err = fd.Close(); err != nil {
		err = fmt.Errorf("failed to close timeline: %w", err)
		return
	}
	logger.Info("stream written", "stream", t.stream, "subtitles", len(t.entries), "images", len(t.images), "timeline", timelinePath)
	return
}

func writeImage(path string, img *canvas.Canvas, format imgenc.Format) (err error) {
	fd, err := os.Create(path)
	if err != nil {
		return
	}
	if err = imgenc.Encode(fd, img.Image(), format); err != nil {
		fd.Close()
		err = fmt.Errorf("%s: %w", filepath.Base(path), err)
		return
	}
	return fd.Close()
}
