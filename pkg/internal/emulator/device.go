// Package emulator stands in for the far-end device: it collects float32
// samples off the link into windows, keeps their significant bins and writes
// each window back as one sparse frame.
package emulator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"sync/atomic"

	"github.com/joeydtaylor/sparsewave/pkg/internal/framecodec"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/spectral"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Device encodes windows of incoming samples with a fixed threshold.
type Device struct {
	internallogger.Registry

	size      int
	threshold float64
	encoder   *spectral.Encoder
	windows   atomic.Int64
	bins      atomic.Int64
	sent      atomic.Int64

	componentMetadata types.ComponentMetadata
}

// WithLogger attaches loggers.
func WithLogger(l ...types.Logger) types.Option[*Device] {
	return func(d *Device) { d.ConnectLogger(l...) }
}

// WithName names the device in log lines.
func WithName(name string) types.Option[*Device] {
	return func(d *Device) { d.componentMetadata.Name = name }
}

// New returns a device for N-sample windows. The threshold must lie in [0,1].
func New(size int, threshold float64, options ...types.Option[*Device]) (*Device, error) {
	if err := framecodec.CheckWindowSize(size); err != nil {
		return nil, err
	}
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return nil, types.InvalidConfig("device threshold must be in [0,1], got %v", threshold)
	}
	enc, err := spectral.NewEncoder(size)
	if err != nil {
		return nil, err
	}
	d := &Device{
		size:              size,
		threshold:         threshold,
		encoder:           enc,
		componentMetadata: types.ComponentMetadata{Type: "DEVICE_EMULATOR"},
	}
	for _, option := range options {
		option(d)
	}
	return d, nil
}

// Windows returns how many windows were encoded.
func (d *Device) Windows() int64 { return d.windows.Load() }

// Bins returns how many coefficients were sent.
func (d *Device) Bins() int64 { return d.bins.Load() }

// BytesSent returns how many frame bytes reached the link, sentinels included.
func (d *Device) BytesSent() int64 { return d.sent.Load() }

// Serve processes rw until the peer closes it or ctx is cancelled. The
// caller owns rw and closes it to unblock a cancelled Serve. A peer that
// disconnects mid-window is not an error; the partial window is discarded.
func (d *Device) Serve(ctx context.Context, rw io.ReadWriter) error {
	out, err := framecodec.NewEncoder(rw, d.size)
	if err != nil {
		return err
	}
	raw := make([]byte, d.size*types.SampleSize)
	window := make(types.Window, d.size)

	d.NotifyLoggers(types.InfoLevel, "device online", "component", d.componentMetadata, "event", "Serve", "window_size", d.size, "threshold", d.threshold)

	for {
		if ctx.Err() != nil {
			return nil
		}
		if _, err := io.ReadFull(rw, raw); err != nil {
			if ctx.Err() != nil || isClosed(err) {
				d.NotifyLoggers(types.InfoLevel, "device offline", "component", d.componentMetadata, "event", "Disconnect", "frames", out.Frames(), "bytes", out.BytesWritten())
				return nil
			}
			return fmt.Errorf("read samples: %w", err)
		}
		for i := range window {
			window[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*types.SampleSize:])))
		}

		frame, err := d.encoder.Encode(window, d.threshold)
		if err != nil {
			return err
		}
		before := out.BytesWritten()
		err = out.WriteFrame(frame)
		d.sent.Add(out.BytesWritten() - before)
		if err != nil {
			if ctx.Err() != nil || isClosed(err) {
				return nil
			}
			return err
		}
		d.windows.Add(1)
		d.bins.Add(int64(len(frame.Bins)))
	}
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
