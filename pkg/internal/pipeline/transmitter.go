package pipeline

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/internal/windower"
)

// Transmitter paces the excitation onto the link, one float32 sample per Ts.
type Transmitter struct {
	internallogger.Registry

	w       io.Writer
	cfg     types.SessionConfig
	samples []float64
	meter   types.SessionMeter
	sent    atomic.Int64

	componentMetadata types.ComponentMetadata
}

// NewTransmitter samples fn over [Start, Stop) and trims the result to whole
// windows so the far end never holds a partial window.
func NewTransmitter(w io.Writer, cfg types.SessionConfig, fn types.SignalFunc, meter types.SessionMeter) (*Transmitter, error) {
	win, err := windower.New(cfg.WindowSize)
	if err != nil {
		return nil, err
	}
	samples, err := signal.Sample(fn, cfg.Start, cfg.Stop, cfg.SamplingInterval)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		meter = noopMeter{}
	}
	return &Transmitter{
		w:                 w,
		cfg:               cfg,
		samples:           win.Trim(samples),
		meter:             meter,
		componentMetadata: types.ComponentMetadata{Type: "TRANSMITTER"},
	}, nil
}

// Samples returns the trimmed excitation that Run writes.
func (t *Transmitter) Samples() []float64 { return t.samples }

// Sent returns how many samples have been written.
func (t *Transmitter) Sent() int { return int(t.sent.Load()) }

// Run waits out the warm-up, then writes every sample followed by a Ts pause.
// It returns after the last sample or when ctx is cancelled.
func (t *Transmitter) Run(ctx context.Context) error {
	t.NotifyLoggers(types.InfoLevel, "transmit started", "component", t.componentMetadata, "event", "Start", "samples", len(t.samples), "warm_up", t.cfg.WarmUp)

	if err := sleep(ctx, t.cfg.WarmUp); err != nil {
		return err
	}

	var frame [types.SampleSize]byte
	pause := time.NewTimer(time.Hour)
	pause.Stop()
	defer pause.Stop()

	for i, s := range t.samples {
		binary.LittleEndian.PutUint32(frame[:], math.Float32bits(float32(s)))
		if _, err := t.w.Write(frame[:]); err != nil {
			t.NotifyLoggers(types.ErrorLevel, "sample write failed", "component", t.componentMetadata, "event", "Write", "sample", i, "error", err)
			return fmt.Errorf("write sample %d: %w", i, err)
		}
		t.sent.Add(1)
		t.meter.SamplesSent(1)

		pause.Reset(t.cfg.SamplingInterval)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pause.C:
		}
	}

	t.NotifyLoggers(types.InfoLevel, "transmit finished", "component", t.componentMetadata, "event", "Stop", "samples", t.sent.Load())
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
