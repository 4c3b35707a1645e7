package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hekmon/go-subpic/config"
	"github.com/hekmon/go-subpic/imgenc"
	"github.com/hekmon/go-subpic/vobsub"
)

const (
	// you must pass the .sub file, the .idx file is used when present
	subFile = "/path/to/you/subtitle.sub"
)

func main() {
	data, err := os.ReadFile(subFile)
	if err != nil {
		panic(err)
	}
	metadata, err := vobsub.ReadIdxFile(vobsub.IdxPath(subFile))
	if err != nil {
		fmt.Printf("No usable idx file, using custom colors: %v\n", err)
		metadata = nil
	}
	cfg := config.Default()
	// use the idx palette instead of the fixed custom colors
	cfg.UseCustomColors = metadata == nil
	subs, skipped, err := vobsub.Decode(context.Background(), data, metadata, cfg, nil)
	if err != nil {
		panic(err)
	}
	if len(skipped) > 0 {
		// this can happen and should normally be discarded, printing for information/debug
		fmt.Printf("Skipped %d bad subtitles:\n", len(skipped))
		for _, err = range skipped {
			fmt.Printf(" \t%v\n", err)
		}
	}
	for streamID, streamSubs := range subs {
		for index, sub := range streamSubs {
			filename := fmt.Sprintf("stream-%d_sub-%04d.png",
				streamID, index+1)
			fmt.Printf("Stream #%d - Subtitle #%d: %s --> %s\n",
				streamID, index+1, sub.Start, sub.Stop)
			if err = writePNG(filename, sub); err != nil {
				panic(err)
			}
		}
	}
}

func writePNG(filename string, sub vobsub.Subtitle) (err error) {
	file, err := os.Create(filename)
	if err != nil {
		return
	}
	defer file.Close()
	return imgenc.Encode(file, sub.Image.Image(), imgenc.PNG)
}
