// Package timeline writes the plain text listing that accompanies extracted
// subtitle images: one block per subtitle holding a 1-based index, a
// "start --> stop" line and the image file names shown during that interval.
package timeline

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// Entry is one subtitle of the timeline.
type Entry struct {
	Start, Stop time.Duration
	Images      []string
}

// FormatTimestamp renders d as HH:MM:SS,mmm. Negative durations are clamped to zero.
func FormatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d.Milliseconds()
	return fmt.Sprintf("%02d:%02d:%02d,%03d",
		ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000,
	)
}

// Write emits entries in order, numbering them from 1.
func Write(w io.Writer, entries []Entry) (err error) {
	bw := bufio.NewWriter(w)
	for index, entry := range entries {
		if _, err = fmt.Fprintf(bw, "%d\n%s --> %s\n", index+1, FormatTimestamp(entry.Start), FormatTimestamp(entry.Stop)); err != nil {
			err = fmt.Errorf("failed to write timeline entry #%d: %w", index+1, err)
			return
		}
		for _, image := range entry.Images {
			if _, err = fmt.Fprintln(bw, image); err != nil {
				err = fmt.Errorf("failed to write timeline entry #%d: %w", index+1, err)
				return
			}
		}
		if _, err = fmt.Fprintln(bw); err != nil {
			err = fmt.Errorf("failed to write timeline entry #%d: %w", index+1, err)
			return
		}
	}
	if err = bw.Flush(); err != nil {
		err = fmt.Errorf("failed to flush timeline: %w", err)
	}
	return
}
