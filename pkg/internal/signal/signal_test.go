package signal_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/joeydtaylor/sparsewave/pkg/internal/signal"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func TestSawtooth(t *testing.T) {
	cases := map[float64]float64{
		0:                -1,
		math.Pi:          0,
		math.Pi / 2:      -0.5,
		-math.Pi / 2:     0.5,
		4*math.Pi + 0.25: 0.25/math.Pi - 1,
	}
	for x, want := range cases {
		if got := signal.Sawtooth(x); math.Abs(got-want) > 1e-12 {
			t.Fatalf("Sawtooth(%v) = %v, want %v", x, got, want)
		}
	}
}

func TestStreamExcitation_AtZero(t *testing.T) {
	if got := signal.StreamExcitation(0); got != 3 {
		t.Fatalf("f(0) = %v, want 3", got)
	}
}

func TestTimes(t *testing.T) {
	times, err := signal.Times(0, 6*time.Second, time.Millisecond)
	if err != nil {
		t.Fatalf("Times: %v", err)
	}
	if len(times) != 6000 {
		t.Fatalf("expected 6000 instants, got %d", len(times))
	}
	if math.Abs(times[1234]-1.234) > 1e-12 {
		t.Fatalf("times[1234] = %v", times[1234])
	}

	odd, _ := signal.Times(0, 10*time.Millisecond, 3*time.Millisecond)
	if len(odd) != 4 {
		t.Fatalf("expected ceil(10/3)=4 instants, got %d", len(odd))
	}

	if _, err := signal.Times(0, time.Second, 0); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected ErrInvalidConfiguration for zero interval, got %v", err)
	}
}

func TestTonesAndByName(t *testing.T) {
	fn := signal.Tones(1, signal.Tone{Amplitude: 2, Frequency: 1})
	if got := fn(0.25); math.Abs(got-3) > 1e-12 {
		t.Fatalf("Tones(0.25) = %v, want 3", got)
	}
	if _, err := signal.ByName("Stream"); err != nil {
		t.Fatalf("ByName(Stream): %v", err)
	}
	if _, err := signal.ByName("chirp"); !errors.Is(err, types.ErrInvalidConfiguration) {
		t.Fatalf("expected unknown signal error, got %v", err)
	}
}
