package windower_test

import (
	"errors"
	"testing"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/internal/windower"
)

func TestNew_RejectsNonPositiveSize(t *testing.T) {
	for _, n := range []int{0, -1, -64} {
		if _, err := windower.New(n); !errors.Is(err, types.ErrInvalidConfiguration) {
			t.Fatalf("New(%d): expected ErrInvalidConfiguration, got %v", n, err)
		}
	}
}

func TestWindows_DropsRemainder(t *testing.T) {
	cases := []struct {
		length, size, want int
	}{
		{length: 0, size: 4, want: 0},
		{length: 3, size: 4, want: 0},
		{length: 4, size: 4, want: 1},
		{length: 130, size: 64, want: 2},
		{length: 6000, size: 64, want: 93},
	}
	for _, tc := range cases {
		w, err := windower.New(tc.size)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		samples := make([]float64, tc.length)
		for i := range samples {
			samples[i] = float64(i)
		}

		got := w.Collect(samples)
		if len(got) != tc.want || w.Count(tc.length) != tc.want {
			t.Fatalf("L=%d N=%d: expected %d windows, got %d (Count=%d)", tc.length, tc.size, tc.want, len(got), w.Count(tc.length))
		}
		if len(w.Trim(samples)) != tc.want*tc.size {
			t.Fatalf("L=%d N=%d: trim kept %d samples", tc.length, tc.size, len(w.Trim(samples)))
		}
		for k, win := range got {
			if len(win) != tc.size {
				t.Fatalf("window %d has %d samples", k, len(win))
			}
			if win[0] != float64(k*tc.size) {
				t.Fatalf("window %d starts at %v", k, win[0])
			}
		}
	}
}

func TestWindows_StopsEarly(t *testing.T) {
	w, _ := windower.New(2)
	seen := 0
	for range w.Windows(make([]float64, 10)) {
		seen++
		if seen == 2 {
			break
		}
	}
	if seen != 2 {
		t.Fatalf("expected iteration to stop after 2 windows, got %d", seen)
	}
}

func TestWindows_AppendDoesNotClobberNeighbour(t *testing.T) {
	w, _ := windower.New(2)
	samples := []float64{1, 2, 3, 4}
	wins := w.Collect(samples)
	_ = append(wins[0], 99)
	if samples[2] != 3 {
		t.Fatalf("appending to a window overwrote the next window: %v", samples)
	}
}
