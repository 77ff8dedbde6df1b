package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/joeydtaylor/sparsewave/pkg/internal/framecodec"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Receiver decodes frames off the link and appends their windows to a Buffer.
type Receiver struct {
	internallogger.Registry

	decoder *framecodec.Decoder
	buffer  *Buffer
	meter   types.SessionMeter
	frames  atomic.Int64

	componentMetadata types.ComponentMetadata
}

// NewReceiver reads N-sample frames from r into buffer.
func NewReceiver(r io.Reader, buffer *Buffer, cfg types.SessionConfig, meter types.SessionMeter, loggers ...types.Logger) (*Receiver, error) {
	dec, err := framecodec.NewDecoder(r, cfg.WindowSize,
		framecodec.DecoderWithLogger(loggers...),
		framecodec.DecoderWithVerbose(cfg.Verbose),
	)
	if err != nil {
		return nil, err
	}
	if meter == nil {
		meter = noopMeter{}
	}
	rx := &Receiver{
		decoder:           dec,
		buffer:            buffer,
		meter:             meter,
		componentMetadata: types.ComponentMetadata{Type: "RECEIVER"},
	}
	rx.ConnectLogger(loggers...)
	return rx, nil
}

// Run decodes until the stream ends, the stream breaks, or ctx is cancelled.
// Reads block, so the owner must close the link to unblock a cancelled Run.
// A clean end of stream and a cancellation both return nil.
func (r *Receiver) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		frame, err := r.decoder.NextFrame()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				r.NotifyLoggers(types.InfoLevel, "link closed by peer", "component", r.componentMetadata, "event", "EOF", "frames", r.decoder.Frames())
				return nil
			}
			r.NotifyLoggers(types.ErrorLevel, "receive failed", "component", r.componentMetadata, "event", "NextFrame", "error", err)
			return fmt.Errorf("receive: %w", err)
		}

		w, err := r.decoder.Reconstruct(frame)
		if err != nil {
			return fmt.Errorf("reconstruct frame %d: %w", r.decoder.Frames(), err)
		}
		total, err := r.buffer.Append(w)
		if err != nil {
			return err
		}
		r.frames.Add(1)
		r.meter.FrameDecoded(len(frame.Bins), framecodec.FrameBytes(len(frame.Bins)))
		r.meter.WindowsBuffered(total)
	}
}

// Frames returns the number of frames decoded so far.
func (r *Receiver) Frames() int64 { return r.frames.Load() }
