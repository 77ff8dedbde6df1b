// Package pipeline runs a streaming session: a transmitter pacing samples onto
// the link, a receiver decoding frames off it, and a periodic render step
// comparing the reconstruction against the ground truth.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/internal/windower"
	"golang.org/x/sync/errgroup"
)

// Session owns one run of the link.
type Session struct {
	internallogger.Registry

	cfg     types.SessionConfig
	open    types.TransportOpener
	signal  types.SignalFunc
	sink    types.RenderSink
	meter   types.SessionMeter
	buffer  *Buffer
	drain   time.Duration
	started int32

	componentMetadata types.ComponentMetadata
}

// NewSession validates cfg and prepares a session that opens its link with open.
func NewSession(cfg types.SessionConfig, open types.TransportOpener, options ...types.Option[*Session]) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if open == nil {
		return nil, types.InvalidConfig("no transport opener")
	}
	s := &Session{
		cfg:    cfg,
		open:   open,
		signal: signal.StreamExcitation,
		meter:  noopMeter{},
		buffer: NewBuffer(cfg.WindowSize),
		drain:  time.Second + time.Duration(cfg.WindowSize)*cfg.SamplingInterval*2,
		componentMetadata: types.ComponentMetadata{
			ID:   fmt.Sprintf("session-%d", time.Now().UnixNano()),
			Type: "SESSION",
		},
	}
	for _, option := range options {
		option(s)
	}
	if s.buffer.WindowSize() != cfg.WindowSize {
		return nil, types.InvalidConfig("buffer holds %d-sample windows, session uses %d", s.buffer.WindowSize(), cfg.WindowSize)
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.componentMetadata.ID }

// Buffer returns the reconstruction buffer.
func (s *Session) Buffer() *Buffer { return s.buffer }

// Config returns the session configuration.
func (s *Session) Config() types.SessionConfig { return s.cfg }

// ExpectedWindows is the number of windows a complete run reconstructs.
func (s *Session) ExpectedWindows() int {
	w, _ := windower.New(s.cfg.WindowSize)
	return w.Count(s.cfg.SampleCount())
}

// Run opens the link and drives the transmit, receive and render loops until
// every expected window arrived (or the drain timeout passed), the stream
// fails, or ctx is cancelled. A link that cannot be opened aborts the session
// before any loop starts. Cancellation is not an error.
func (s *Session) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&s.started, 0, 1) {
		return fmt.Errorf("session %s already started", s.ID())
	}

	link, err := s.open(ctx)
	if err != nil {
		s.NotifyLoggers(types.ErrorLevel, "transport open failed", "component", s.componentMetadata, "event", "Open", "error", err)
		return fmt.Errorf("%w: %w", types.ErrTransportOpen, err)
	}

	loggers := s.Loggers()
	tx, err := NewTransmitter(link, s.cfg, s.signal, s.meter)
	if err != nil {
		_ = link.Close()
		return err
	}
	tx.ConnectLogger(loggers...)
	rx, err := NewReceiver(link, s.buffer, s.cfg, s.meter, loggers...)
	if err != nil {
		_ = link.Close()
		return err
	}
	renderer := NewRenderer(s.buffer, s.cfg, s.signal, s.sink, s.meter)
	renderer.ConnectLogger(loggers...)

	expected := s.ExpectedWindows()
	s.NotifyLoggers(types.InfoLevel, "session started", "component", s.componentMetadata, "event", "Start",
		"window_size", s.cfg.WindowSize, "sampling_interval", s.cfg.SamplingInterval, "expected_windows", expected)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	var closeOnce sync.Once
	closeLink := func() {
		closeOnce.Do(func() {
			if err := link.Close(); err != nil {
				s.NotifyLoggers(types.DebugLevel, "transport close", "component", s.componentMetadata, "event", "Close", "error", err)
			}
		})
	}
	rxDone := make(chan struct{})

	g.Go(func() error {
		<-gctx.Done()
		closeLink()
		return nil
	})
	g.Go(func() error {
		defer close(rxDone)
		return rx.Run(gctx)
	})
	g.Go(func() error {
		if err := tx.Run(gctx); err != nil {
			if gctx.Err() != nil {
				return nil
			}
			return err
		}
		s.awaitDrain(gctx, rxDone, expected)
		cancel()
		return nil
	})
	g.Go(func() error {
		return renderer.Run(gctx)
	})

	err = g.Wait()
	closeLink()

	if err != nil {
		s.NotifyLoggers(types.ErrorLevel, "session failed", "component", s.componentMetadata, "event", "Stop", "windows", s.buffer.Len(), "error", err)
		return err
	}
	s.NotifyLoggers(types.InfoLevel, "session finished", "component", s.componentMetadata, "event", "Stop",
		"windows", s.buffer.Len(), "expected_windows", expected, "samples_sent", tx.Sent(), "cancelled", ctx.Err() != nil)
	return nil
}

func (s *Session) awaitDrain(ctx context.Context, rxDone <-chan struct{}, expected int) {
	deadline := time.NewTimer(s.drain)
	defer deadline.Stop()
	poll := time.NewTicker(5 * time.Millisecond)
	defer poll.Stop()

	for s.buffer.Len() < expected {
		select {
		case <-ctx.Done():
			return
		case <-rxDone:
			return
		case <-deadline.C:
			s.NotifyLoggers(types.WarnLevel, "drain timed out", "component", s.componentMetadata, "event", "Drain", "windows", s.buffer.Len(), "expected_windows", expected)
			return
		case <-poll.C:
		}
	}
}
