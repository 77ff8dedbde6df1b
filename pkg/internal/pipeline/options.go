package pipeline

import (
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// WithLogger attaches loggers to the session and every loop it starts.
func WithLogger(l ...types.Logger) types.Option[*Session] {
	return func(s *Session) { s.ConnectLogger(l...) }
}

// WithSignal sets the excitation waveform.
func WithSignal(fn types.SignalFunc) types.Option[*Session] {
	return func(s *Session) {
		if fn != nil {
			s.signal = fn
		}
	}
}

// WithRenderSink sets where periodic render frames go.
func WithRenderSink(sink types.RenderSink) types.Option[*Session] {
	return func(s *Session) { s.sink = sink }
}

// WithMeter sets the metrics recorder.
func WithMeter(m types.SessionMeter) types.Option[*Session] {
	return func(s *Session) {
		if m != nil {
			s.meter = m
		}
	}
}

// WithDrainTimeout bounds how long the session waits for trailing frames once
// the last sample has been written.
func WithDrainTimeout(d time.Duration) types.Option[*Session] {
	return func(s *Session) {
		if d > 0 {
			s.drain = d
		}
	}
}

// WithSessionID names the session in logs and recordings.
func WithSessionID(id string) types.Option[*Session] {
	return func(s *Session) {
		if id != "" {
			s.componentMetadata.ID = id
		}
	}
}

// WithBuffer supplies the reconstruction buffer, e.g. to share it with a recorder.
func WithBuffer(b *Buffer) types.Option[*Session] {
	return func(s *Session) {
		if b != nil {
			s.buffer = b
		}
	}
}

type noopMeter struct{}

func (noopMeter) SamplesSent(int) {}
func (noopMeter) FrameDecoded(int, int) {}
func (noopMeter) WindowsBuffered(int) {}
func (noopMeter) ReconstructionError(float64) {}
