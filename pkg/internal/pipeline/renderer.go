package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"gonum.org/v1/gonum/floats"
)

// Renderer periodically snapshots the trailing reconstructed samples and
// pairs them with the ground truth for the same instants.
type Renderer struct {
	internallogger.Registry

	buffer *Buffer
	cfg    types.SessionConfig
	signal types.SignalFunc
	sink   types.RenderSink
	meter  types.SessionMeter

	componentMetadata types.ComponentMetadata
}

// NewRenderer builds a render step over buffer. A nil sink only records metrics.
func NewRenderer(buffer *Buffer, cfg types.SessionConfig, fn types.SignalFunc, sink types.RenderSink, meter types.SessionMeter) *Renderer {
	if meter == nil {
		meter = noopMeter{}
	}
	return &Renderer{
		buffer:            buffer,
		cfg:               cfg,
		signal:            fn,
		sink:              sink,
		meter:             meter,
		componentMetadata: types.ComponentMetadata{Type: "RENDERER"},
	}
}

// Snapshot builds a render frame from the current buffer contents. It
// reports false while nothing has been reconstructed.
func (r *Renderer) Snapshot() (types.RenderFrame, bool) {
	k := -1
	if r.cfg.Streaming {
		k = r.cfg.StreamingWindow
	}
	rec, first := r.buffer.Tail(k)
	if len(rec) == 0 {
		return types.RenderFrame{}, false
	}

	times, truth := GroundTruth(r.signal, r.cfg.Start, r.cfg.SamplingInterval, first, len(rec))
	frame := types.RenderFrame{
		Time:          times,
		Reconstructed: rec,
		GroundTruth:   truth,
		FirstSample:   first,
		Windows:       r.buffer.Len(),
	}
	frame.RMSE = floats.Distance(rec, frame.GroundTruth, 2) / math.Sqrt(float64(len(rec)))
	return frame, true
}

// GroundTruth evaluates fn at the n sample instants starting at sample index
// from of a run that began at start with interval ts.
func GroundTruth(fn types.SignalFunc, start, ts time.Duration, from, n int) (times, values []float64) {
	times = make([]float64, n)
	values = make([]float64, n)
	for i := range times {
		t := start.Seconds() + float64(from+i)*ts.Seconds()
		times[i] = t
		values[i] = fn(t)
	}
	return times, values
}

// RenderOnce snapshots and hands the frame to the sink.
func (r *Renderer) RenderOnce() error {
	frame, ok := r.Snapshot()
	if !ok {
		return nil
	}
	r.meter.ReconstructionError(frame.RMSE)
	if r.sink == nil {
		return nil
	}
	return r.sink.Render(frame)
}

// Run renders every FrameInterval until ctx is cancelled, then renders once
// more so the final state is not lost. Sink errors are logged, not fatal.
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.FrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.render()
			return nil
		case <-ticker.C:
			r.render()
		}
	}
}

func (r *Renderer) render() {
	if err := r.RenderOnce(); err != nil {
		r.NotifyLoggers(types.WarnLevel, "render sink failed", "component", r.componentMetadata, "event", "Render", "error", err)
	}
}
