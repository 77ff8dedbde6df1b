package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/joeydtaylor/sparsewave/pkg/internal/emulator"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

type serveFunc func(ctx context.Context, rw io.ReadWriter) error

type loopbackLink struct {
	net.Conn
	done chan struct{}

	mu        sync.Mutex
	deviceErr error
}

// Read surfaces a device failure in place of the end of stream it causes.
func (l *loopbackLink) Read(p []byte) (int, error) {
	n, err := l.Conn.Read(p)
	if errors.Is(err, io.EOF) {
		l.mu.Lock()
		derr := l.deviceErr
		l.mu.Unlock()
		if derr != nil {
			return n, fmt.Errorf("loopback device: %w", derr)
		}
	}
	return n, err
}

// Close closes the host end and waits for the emulator to wind down.
func (l *loopbackLink) Close() error {
	err := l.Conn.Close()
	<-l.done
	return err
}

// Loopback connects the host to dev through an in-memory pipe.
func Loopback(ctx context.Context, dev *emulator.Device, loggers ...types.Logger) types.Transport {
	return loopback(ctx, dev.Serve, loggers)
}

func loopback(ctx context.Context, serve serveFunc, loggers []types.Logger) *loopbackLink {
	host, far := net.Pipe()
	link := &loopbackLink{Conn: host, done: make(chan struct{})}
	go func() {
		defer close(link.done)
		err := serve(ctx, far)
		if err != nil {
			link.mu.Lock()
			link.deviceErr = err
			link.mu.Unlock()
			internallogger.Notify(loggers, types.ErrorLevel, "loopback device failed",
				"component", types.ComponentMetadata{Type: "TRANSPORT", Name: "loopback"}, "event", "Serve", "error", err)
		}
		_ = far.Close()
	}()
	return link
}

// openLoopback serves the link with opts.Device, or with a device built from
// the frame shape set by WithFrameShape. Without either the window size of
// the far end is unknown and the link is refused.
func openLoopback(ctx context.Context, opts Options) (types.Transport, error) {
	dev := opts.Device
	if dev == nil {
		if opts.WindowSize <= 0 {
			return nil, types.InvalidConfig("loopback:// needs a device or a frame shape")
		}
		var err error
		dev, err = emulator.New(opts.WindowSize, opts.Threshold, emulator.WithLogger(opts.Loggers...))
		if err != nil {
			return nil, err
		}
	}
	return Loopback(ctx, dev, opts.Loggers...), nil
}
