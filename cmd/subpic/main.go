// Command subpic extracts the images of PGS (.sup) and VobSub (.sub/.idx) subtitles,
// along with a timeline of when each image is shown.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hekmon/go-subpic/config"
	"github.com/hekmon/go-subpic/imgenc"
	"github.com/hekmon/go-subpic/internal/input"
	"github.com/hekmon/go-subpic/pgs"
	"github.com/hekmon/go-subpic/vobsub"
)

var version = "dev"

type options struct {
	input, output string
	format, fps   string
	configPath    string
	fullFrame     bool
}

func main() {
	var (
		opts        options
		debug       bool
		showVersion bool
	)
	flag.StringVar(&opts.input, "i", "", "subtitle file to extract: *.sup or *.sub, optionally zstd compressed (*.zst)")
	flag.StringVar(&opts.output, "o", "", "folder for the timeline and images (default: a \"subtitle\" folder next to the input)")
	flag.StringVar(&opts.format, "f", "", "image format: bmp, jpeg, gif, tiff or png (default jpeg)")
	flag.StringVar(&opts.fps, "fps", "", "timestamp clock of both .sup and .sub inputs: pal or ntsc (default pal)")
	flag.StringVar(&opts.configPath, "config", "", "JSON settings file")
	flag.BoolVar(&opts.fullFrame, "full-frame", false, "render VobSub images at the video frame size given by the .idx file")
	flag.BoolVar(&debug, "debug", false, "enable debug logs (also enabled by the DEBUG environment variable)")
	flag.BoolVar(&showVersion, "v", false, "print the version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("subpic", version)
		return
	}
	level := slog.LevelInfo
	if debug || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if opts.input == "" {
		flag.Usage()
		os.Exit(2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, opts, logger); err != nil {
		logger.Error("extraction failed", "input", opts.input, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, logger *slog.Logger) (err error) {
	kind, err := input.DetectKind(opts.input)
	if err != nil {
		return
	}
	cfg, err := loadConfig(opts, logger)
	if err != nil {
		return
	}
	start := time.Now()
	data, err := input.ReadFile(opts.input)
	if err != nil {
		return
	}
	logger.Info("decoding", "input", opts.input, "format", kind, "size", len(data), "pal", cfg.PAL)
	// Decode everything before touching the output folder: a failure leaves nothing behind
	var tracks []track
	switch kind {
	case input.PGS:
		var subs []pgs.Subtitle
		if subs, err = pgs.Decode(ctx, data, cfg, logger); err != nil {
			return
		}
		tracks = []track{pgsTrack(subs, cfg.ImageFormat)}
	case input.VobSub:
		var (
			metadata *vobsub.IdxMetadata
			subs     map[int][]vobsub.Subtitle
			skipped  []error
		)
		if metadata, err = readIdx(opts.input, logger); err != nil {
			return
		}
		if subs, skipped, err = vobsub.Decode(ctx, data, metadata, cfg, logger); err != nil {
			return
		}
		for _, skippedErr := range skipped {
			logger.Debug("skipped subtitle", "error", skippedErr)
		}
		if len(skipped) > 0 {
			logger.Warn("some subtitles could not be decoded", "count", len(skipped))
		}
		tracks = vobsubTracks(subs, cfg.ImageFormat)
	}
	logger.Info("decoded", "streams", len(tracks), "elapsed", time.Since(start))
	// Output
	outputDir, err := prepareOutputDir(opts.output, opts.input, time.Now())
	if err != nil {
		return
	}
	for _, t := range tracks {
		if err = writeTrack(ctx, outputDir, t, cfg.ImageFormat, logger); err != nil {
			err = fmt.Errorf("stream %d: %w", t.stream, err)
			return
		}
	}
	logger.Info("done", "output", outputDir, "elapsed", time.Since(start))
	return
}

// loadConfig layers the settings file then the command line flags over the defaults.
func loadConfig(opts options, logger *slog.Logger) (cfg config.Config, err error) {
	cfg = config.Default()
	if opts.configPath != "" {
		var fileOverride config.Override
		if fileOverride, err = config.LoadFile(opts.configPath); err != nil {
			return
		}
		cfg = cfg.Merge(fileOverride)
	}
	var flagOverride config.Override
	if opts.fps != "" {
		if flagOverride.PAL, err = config.ParseFPS(opts.fps); err != nil {
			return
		}
	}
	if opts.fullFrame {
		flagOverride.FullFrame = &opts.fullFrame
	}
	if opts.format != "" {
		format, ok := imgenc.ParseFormat(opts.format)
		if !ok {
			logger.Warn("unknown image format, using the default", "format", opts.format, "default", format)
		}
		flagOverride.ImageFormat = &format
	}
	cfg = cfg.Merge(flagOverride)
	return
}

// readIdx loads the .idx companion of a .sub file. A missing companion is not an error:
// the custom colors are used instead.
func readIdx(subPath string, logger *slog.Logger) (metadata *vobsub.IdxMetadata, err error) {
	idxPath, found := input.Companion(subPath, ".idx")
	if !found {
		logger.Warn("no idx file found", "expected", vobsub.IdxPath(strings.TrimSuffix(subPath, ".zst")), "error", vobsub.ErrNoPalette)
		return
	}
	data, err := input.ReadFile(idxPath)
	if err != nil {
		err = fmt.Errorf("failed to read idx file: %w", err)
		return
	}
	if metadata, err = vobsub.ParseIdx(bytes.NewReader(data)); err != nil {
		err = fmt.Errorf("failed to parse %q: %w", idxPath, err)
		return
	}
	if metadata.Palette == nil {
		logger.Warn("idx file holds no palette", "idx", idxPath, "error", vobsub.ErrNoPalette)
	}
	return
}
