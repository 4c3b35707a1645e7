package vobsub

import (
	"time"

	"github.com/hekmon/go-subpic/canvas"
)

// Subtitle is one rendered display command of a stream.
type Subtitle struct {
	Start  time.Duration
	Stop   time.Duration
	Forced bool
	Image  *canvas.Canvas
}
