package types

import (
	"math"
	"time"
)

// SessionConfig is the explicit configuration of one streaming session.
type SessionConfig struct {
	WindowSize       int           // N, samples per window
	SamplingInterval time.Duration // Ts
	Start            time.Duration // first excitation instant
	Stop             time.Duration // excitation stops before this instant
	WarmUp           time.Duration // pause before the first sample is written
	Streaming        bool          // render only the trailing StreamingWindow samples
	StreamingWindow  int           // K, samples per render
	FrameInterval    time.Duration // render period
	Threshold        float64       // significance threshold of the encoder behind a loopback link; recorded with each session
	Verbose          bool          // trace every decoded coefficient
}

// DefaultSessionConfig mirrors the reference link: 64-sample windows at 1 kHz,
// six seconds of excitation after a half second warm-up.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		WindowSize:       64,
		SamplingInterval: time.Millisecond,
		Start:            0,
		Stop:             6 * time.Second,
		WarmUp:           500 * time.Millisecond,
		Streaming:        true,
		StreamingWindow:  8 * 64,
		FrameInterval:    30 * time.Millisecond,
		Threshold:        0.1,
	}
}

// Validate checks every field; nothing is applied when it fails.
func (c SessionConfig) Validate() error {
	switch {
	case c.WindowSize <= 0:
		return InvalidConfig("window size must be positive, got %d", c.WindowSize)
	case c.WindowSize > MaxWindowSize:
		return InvalidConfig("window size %d lets bin indices reach the end-of-frame marker (max %d)", c.WindowSize, MaxWindowSize)
	case c.SamplingInterval <= 0:
		return InvalidConfig("sampling interval must be positive, got %s", c.SamplingInterval)
	case c.Stop <= c.Start:
		return InvalidConfig("stop %s must be after start %s", c.Stop, c.Start)
	case c.WarmUp < 0:
		return InvalidConfig("warm-up must not be negative, got %s", c.WarmUp)
	case c.Streaming && c.StreamingWindow <= 0:
		return InvalidConfig("streaming window must be positive, got %d", c.StreamingWindow)
	case c.FrameInterval <= 0:
		return InvalidConfig("frame interval must be positive, got %s", c.FrameInterval)
	case math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1:
		return InvalidConfig("threshold must be in [0,1], got %v", c.Threshold)
	}
	return nil
}

// SampleRate returns 1/Ts in hertz.
func (c SessionConfig) SampleRate() float64 {
	return float64(time.Second) / float64(c.SamplingInterval)
}

// SampleCount is the number of excitation instants in [Start, Stop).
func (c SessionConfig) SampleCount() int {
	span := c.Stop - c.Start
	n := int(span / c.SamplingInterval)
	if span%c.SamplingInterval != 0 {
		n++
	}
	return n
}

// SampleTime returns the time in seconds of sample i.
func (c SessionConfig) SampleTime(i int) float64 {
	return c.Start.Seconds() + float64(i)*c.SamplingInterval.Seconds()
}
