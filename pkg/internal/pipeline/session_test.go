package pipeline_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/emulator"
	"github.com/joeydtaylor/sparsewave/pkg/internal/pipeline"
	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/transport"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func testConfig() types.SessionConfig {
	cfg := types.DefaultSessionConfig()
	cfg.WindowSize = 8
	cfg.SamplingInterval = 500 * time.Microsecond
	cfg.Stop = 17 * time.Millisecond // 34 samples, 4 whole windows
	cfg.WarmUp = time.Millisecond
	cfg.StreamingWindow = 16
	cfg.FrameInterval = 2 * time.Millisecond
	cfg.Threshold = 0
	return cfg
}

func loopback(t *testing.T, threshold float64) types.TransportOpener {
	t.Helper()
	dev, err := emulator.New(8, threshold)
	if err != nil {
		t.Fatalf("emulator.New: %v", err)
	}
	return func(ctx context.Context) (types.Transport, error) {
		return transport.Loopback(ctx, dev), nil
	}
}

type frameRecorder struct {
	mu     sync.Mutex
	frames []types.RenderFrame
}

func (r *frameRecorder) Render(f types.RenderFrame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	return nil
}

func (r *frameRecorder) last() (types.RenderFrame, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return types.RenderFrame{}, 0
	}
	return r.frames[len(r.frames)-1], len(r.frames)
}

func TestSession_LosslessLoopback(t *testing.T) {
	rec := &frameRecorder{}
	s, err := pipeline.NewSession(testConfig(), loopback(t, 0),
		pipeline.WithSignal(signal.StreamExcitation),
		pipeline.WithRenderSink(rec),
		pipeline.WithDrainTimeout(2*time.Second),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if s.ExpectedWindows() != 4 {
		t.Fatalf("expected 4 windows, got %d", s.ExpectedWindows())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Buffer().Len() != 4 {
		t.Fatalf("expected 4 reconstructed windows, got %d", s.Buffer().Len())
	}

	last, n := rec.last()
	if n == 0 {
		t.Fatalf("render sink never called")
	}
	if last.Windows != 4 || len(last.Reconstructed) != 16 || last.FirstSample != 16 {
		t.Fatalf("unexpected final frame: windows=%d samples=%d first=%d", last.Windows, len(last.Reconstructed), last.FirstSample)
	}
	if last.RMSE > 1e-4 {
		t.Fatalf("lossless session RMSE %v", last.RMSE)
	}

	if err := s.Run(ctx); err == nil {
		t.Fatalf("expected a second Run to be refused")
	}
}

func TestSession_OpenFailureAbortsBeforeLoops(t *testing.T) {
	rec := &frameRecorder{}
	boom := errors.New("port busy")
	s, err := pipeline.NewSession(testConfig(), func(context.Context) (types.Transport, error) {
		return nil, boom
	}, pipeline.WithRenderSink(rec))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	err = s.Run(context.Background())
	if !errors.Is(err, types.ErrTransportOpen) || !errors.Is(err, boom) {
		t.Fatalf("expected ErrTransportOpen wrapping the cause, got %v", err)
	}
	if _, n := rec.last(); n != 0 || s.Buffer().Len() != 0 {
		t.Fatalf("no loop should have run")
	}
}

func TestSession_CancelUnblocksReceiver(t *testing.T) {
	cfg := testConfig()
	cfg.Stop = time.Minute
	s, _ := pipeline.NewSession(cfg, loopback(t, 0.1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancelled Run returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

type scriptedLink struct {
	io.Reader
	mu      sync.Mutex
	written bytes.Buffer
}

func (l *scriptedLink) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written.Write(p)
}

func (l *scriptedLink) Close() error { return nil }

func TestSession_ProtocolErrorIsFatal(t *testing.T) {
	bad := binary.LittleEndian.AppendUint32(nil, 999)
	bad = append(bad, make([]byte, 8)...)
	link := &scriptedLink{Reader: bytes.NewReader(bad)}

	cfg := testConfig()
	cfg.WarmUp = 0
	s, _ := pipeline.NewSession(cfg, func(context.Context) (types.Transport, error) { return link, nil })
	err := s.Run(context.Background())
	var perr *types.ProtocolError
	if !errors.As(err, &perr) || perr.Index != 999 {
		t.Fatalf("expected ProtocolError for index 999, got %v", err)
	}
}

func TestNewSession_ValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.WindowSize = 0
	if _, err := pipeline.NewSession(cfg, loopback(t, 0)); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
	}
	if _, err := pipeline.NewSession(testConfig(), nil); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for nil opener, got %v", err)
	}
}

func TestRenderer_WholeBufferWhenNotStreaming(t *testing.T) {
	cfg := testConfig()
	cfg.Streaming = false
	buf := pipeline.NewBuffer(8)
	r := pipeline.NewRenderer(buf, cfg, signal.Silence, nil, nil)
	if _, ok := r.Snapshot(); ok {
		t.Fatalf("empty buffer should not render")
	}
	for i := 0; i < 3; i++ {
		_, _ = buf.Append(make(types.Window, 8))
	}
	f, ok := r.Snapshot()
	if !ok || len(f.Reconstructed) != 24 || f.FirstSample != 0 || f.RMSE != 0 {
		t.Fatalf("unexpected snapshot %+v", f)
	}
	if f.Time[1] != cfg.SamplingInterval.Seconds() {
		t.Fatalf("time axis should step by Ts, got %v", f.Time[1])
	}
}

func TestGroundTruth_MatchesSampledSignal(t *testing.T) {
	cfg := testConfig()
	cfg.Start = 2 * time.Millisecond
	fn := signal.StreamExcitation

	sent, err := signal.Sample(fn, cfg.Start, cfg.Stop, cfg.SamplingInterval)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	times, truth := pipeline.GroundTruth(fn, cfg.Start, cfg.SamplingInterval, 5, 3)
	if len(times) != 3 || len(truth) != 3 {
		t.Fatalf("got %d times, %d values", len(times), len(truth))
	}
	for i := range truth {
		if times[i] != cfg.SampleTime(5+i) {
			t.Fatalf("time[%d] = %v, want %v", i, times[i], cfg.SampleTime(5+i))
		}
		if truth[i] != sent[5+i] {
			t.Fatalf("truth[%d] = %v, want %v", i, truth[i], sent[5+i])
		}
	}
}
