package audio

import (
	"time"

	"speteval/internal/measure"
)

// Clip is decoded audio. Samples is channel-first: Samples[c][i] is frame i
// of channel c.
type Clip struct {
	Samples    [][]float64
	SampleRate int
	BitDepth   int
}

// Channels returns the channel count.
func (c *Clip) Channels() int {
	if c == nil {
		return 0
	}
	return len(c.Samples)
}

// Frames returns the number of samples per channel.
func (c *Clip) Frames() int {
	if c == nil || len(c.Samples) == 0 {
		return 0
	}
	return len(c.Samples[0])
}

// Duration returns the playback length.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(c.Frames()) * time.Second / time.Duration(c.SampleRate)
}

// Content exposes the samples for the dimension metrics.
func (c *Clip) Content() measure.Sequence {
	if c == nil {
		return measure.Matrix[float64](nil)
	}
	return measure.Matrix(c.Samples)
}
