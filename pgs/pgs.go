// Package pgs decodes Blu-ray presentation graphics streams (.sup files) into timed
// subtitle bitmaps.
//
// A stream is a sequence of segments grouped into display sets. A display set with an
// epoch start or acquisition point composition shows its objects, the next normal
// display set clears the screen.
package pgs

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/hekmon/go-subpic/canvas"
	"github.com/hekmon/go-subpic/config"

	"golang.org/x/sync/errgroup"
)

// Subtitle is one on-screen interval with every composed object rendered.
type Subtitle struct {
	Start, Stop time.Duration
	// Images follow the order of the composition objects
	Images []*canvas.Canvas
}

// maxObjectSide bounds the size of a decoded object when the composition declares no video size.
const maxObjectSide = 4096

type renderJob struct {
	subtitle, image int
	object          *ObjectDefinition
	palette         *PaletteDefinition
}

// Decode parses a complete PGS stream and renders its subtitles.
// A structural error (see ErrDuplicatePCS) fails the whole stream without partial output.
func Decode(ctx context.Context, data []byte, cfg config.Config, logger *slog.Logger) (subtitles []Subtitle, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "pgs")
	sets, err := ReadDisplaySets(data, logger)
	if err != nil {
		err = fmt.Errorf("failed to read display sets: %w", err)
		return
	}
	logger.Debug("display sets read", "count", len(sets))
	subtitles, jobs := plan(sets, cfg, logger)
	// Render
	workers, ctx := errgroup.WithContext(ctx)
	workers.SetLimit(runtime.GOMAXPROCS(0))
	for _, job := range jobs {
		workers.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img := DecodeObject(job.object.Data, int(job.object.Width), int(job.object.Height), job.palette, cfg.SupBackground)
			img = img.AddMargin(cfg.Border.Padding, cfg.SupBackground)
			img = img.AddMargin(cfg.Border.Width, cfg.Border.Color)
			subtitles[job.subtitle].Images[job.image] = img
			return nil
		})
	}
	if err = workers.Wait(); err != nil {
		subtitles = nil
		err = fmt.Errorf("failed to render subtitles: %w", err)
	}
	return
}

// plan pairs display sets into subtitles and lists the objects to render, without decoding any pixel.
func plan(sets []DisplaySet, cfg config.Config, logger *slog.Logger) (subtitles []Subtitle, jobs []renderJob) {
	clock := cfg.Clock()
	var (
		open     *Subtitle
		openJobs []renderJob
	)
	closeOpen := func(stop uint32) {
		if open == nil {
			return
		}
		open.Stop = clock.Duration(uint64(stop))
		if len(open.Images) > 0 {
			subIndex := len(subtitles)
			for _, job := range openJobs {
				job.subtitle = subIndex
				jobs = append(jobs, job)
			}
			subtitles = append(subtitles, *open)
		}
		open, openJobs = nil, nil
	}
	for index, ds := range sets {
		if ds.Composition == nil {
			logger.Debug("display set without composition", "index", index)
			continue
		}
		if ds.Composition.State == CompositionNormal {
			closeOpen(ds.PTS)
			continue
		}
		// epoch start or acquisition point: a new subtitle begins
		closeOpen(ds.PTS)
		open = &Subtitle{Start: clock.Duration(uint64(ds.PTS))}
		palette := ds.Palette()
		if palette == nil {
			logger.Warn("display set without palette, skipping its objects", "index", index)
			continue
		}
		for _, co := range ds.Composition.Objects {
			object := ds.Object(co.ObjectID)
			if object == nil {
				logger.Warn("composition references a missing object", "index", index, "object", co.ObjectID)
				continue
			}
			if object.Width == 0 || object.Height == 0 {
				logger.Debug("skipping empty object", "index", index, "object", co.ObjectID)
				continue
			}
			if !fitsVideo(object, ds.Composition) {
				logger.Warn("object larger than the video, skipping it", "index", index, "object", co.ObjectID,
					"width", object.Width, "height", object.Height)
				continue
			}
			openJobs = append(openJobs, renderJob{
				image:   len(open.Images),
				object:  object,
				palette: palette,
			})
			open.Images = append(open.Images, nil)
		}
	}
	if open != nil {
		logger.Warn("last subtitle is never cleared, dropping it", "start", open.Start)
	}
	return
}

// fitsVideo reports if an object is no larger than the video size of its composition.
func fitsVideo(object *ObjectDefinition, pcs *PresentationComposition) bool {
	maxWidth, maxHeight := maxObjectSide, maxObjectSide
	if pcs.Width > 0 && pcs.Height > 0 {
		maxWidth, maxHeight = int(pcs.Width), int(pcs.Height)
	}
	return int(object.Width) <= maxWidth && int(object.Height) <= maxHeight
}
