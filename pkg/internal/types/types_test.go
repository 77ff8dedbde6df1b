package types_test

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func TestSessionConfig_DefaultsAreValid(t *testing.T) {
	cfg := types.DefaultSessionConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.SampleRate() != 1000 {
		t.Fatalf("expected 1 kHz, got %v", cfg.SampleRate())
	}
	if cfg.SampleCount() != 6000 {
		t.Fatalf("expected 6000 samples, got %d", cfg.SampleCount())
	}
}

func TestSessionConfig_Validate(t *testing.T) {
	cases := map[string]func(*types.SessionConfig){
		"zero window":         func(c *types.SessionConfig) { c.WindowSize = 0 },
		"window past marker":  func(c *types.SessionConfig) { c.WindowSize = types.MaxWindowSize + 1 },
		"zero interval":       func(c *types.SessionConfig) { c.SamplingInterval = 0 },
		"stop before start":   func(c *types.SessionConfig) { c.Start = time.Second; c.Stop = time.Second },
		"negative warm-up":    func(c *types.SessionConfig) { c.WarmUp = -time.Millisecond },
		"empty stream window": func(c *types.SessionConfig) { c.StreamingWindow = 0 },
		"zero frame interval": func(c *types.SessionConfig) { c.FrameInterval = 0 },
		"threshold above one": func(c *types.SessionConfig) { c.Threshold = 1.5 },
		"negative threshold":  func(c *types.SessionConfig) { c.Threshold = -0.1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := types.DefaultSessionConfig()
			mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, types.ErrInvalidConfiguration) {
				t.Fatalf("expected ErrInvalidConfiguration, got %v", err)
			}
		})
	}

	cfg := types.DefaultSessionConfig()
	cfg.Streaming = false
	cfg.StreamingWindow = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("streaming window is unused when not streaming: %v", err)
	}
	cfg.WindowSize = types.MaxWindowSize
	if err := cfg.Validate(); err != nil {
		t.Fatalf("largest window size rejected: %v", err)
	}
}

func TestSessionConfig_SampleCountRoundsUp(t *testing.T) {
	cfg := types.DefaultSessionConfig()
	cfg.Start = 10 * time.Millisecond
	cfg.Stop = 15500 * time.Microsecond
	if got := cfg.SampleCount(); got != 6 {
		t.Fatalf("expected 6 instants in [10ms, 15.5ms), got %d", got)
	}
	if got := cfg.SampleTime(2); got != 0.012 {
		t.Fatalf("SampleTime(2) = %v", got)
	}
}

func TestSparseFrame_Dense(t *testing.T) {
	f := types.SparseFrame{WindowSize: 8, Bins: []types.SpectralBin{{Index: 1, Coefficient: 2i}, {Index: 4, Coefficient: 3}}}
	d := f.Dense()
	if len(d) != 5 || d[1] != 2i || d[4] != 3 || d[0] != 0 {
		t.Fatalf("unexpected dense spectrum %v", d)
	}
}

func TestProtocolError_Unwraps(t *testing.T) {
	err := &types.ProtocolError{Offset: 12, Reason: "stream ended mid-frame", Err: io.ErrUnexpectedEOF}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF in chain")
	}
	if !strings.Contains(err.Error(), "byte 12") {
		t.Fatalf("offset missing from %q", err.Error())
	}
}
