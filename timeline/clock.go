package timeline

import "time"

const (
	// PALTicksPerMillisecond is the 90 kHz presentation clock expressed per millisecond.
	PALTicksPerMillisecond = 90.000
	// NTSCTicksPerMillisecond is used for 23.976 fps material muxed against a 24 fps clock.
	NTSCTicksPerMillisecond = 90.090 * (23.976 / 24)
)

// Clock converts raw presentation timestamps (90 kHz ticks) to durations.
type Clock struct {
	PAL bool
}

// TicksPerMillisecond returns the conversion constant of the clock mode.
func (c Clock) TicksPerMillisecond() float64 {
	if c.PAL {
		return PALTicksPerMillisecond
	}
	return NTSCTicksPerMillisecond
}

// Duration converts ticks to a duration, rounded to the nanosecond.
func (c Clock) Duration(ticks uint64) time.Duration {
	ms := float64(ticks) / c.TicksPerMillisecond()
	return time.Duration(ms * float64(time.Millisecond))
}
