package types

// SessionMeter receives the counters a streaming session produces.
type SessionMeter interface {
	SamplesSent(n int)
	FrameDecoded(bins int, bytes int)
	WindowsBuffered(total int)
	ReconstructionError(rmse float64)
}

// RenderFrame is what the periodic render step hands to its sink: the most
// recent reconstructed samples next to the ground truth for the same instants.
type RenderFrame struct {
	Time          []float64
	Reconstructed []float64
	GroundTruth   []float64
	FirstSample   int // sample index of Time[0] since session start
	Windows       int // windows reconstructed so far
	RMSE          float64
}

// RenderSink consumes render frames. Implementations must not retain the
// slices beyond the call.
type RenderSink interface {
	Render(frame RenderFrame) error
}

// RenderSinkFunc adapts a function to RenderSink.
type RenderSinkFunc func(frame RenderFrame) error

func (f RenderSinkFunc) Render(frame RenderFrame) error { return f(frame) }
