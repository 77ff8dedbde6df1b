package pipeline_test

import (
	"sync"
	"testing"

	"github.com/joeydtaylor/sparsewave/pkg/internal/pipeline"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

func TestBuffer_TailSpansWindows(t *testing.T) {
	b := pipeline.NewBuffer(4)
	for w := 0; w < 3; w++ {
		win := make(types.Window, 4)
		for i := range win {
			win[i] = float64(w*4 + i)
		}
		if _, err := b.Append(win); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	tail, first := b.Tail(6)
	if first != 6 || len(tail) != 6 || tail[0] != 6 || tail[5] != 11 {
		t.Fatalf("Tail(6) = %v from %d", tail, first)
	}
	all, first := b.Tail(-1)
	if first != 0 || len(all) != 12 {
		t.Fatalf("Tail(-1) = %d samples from %d", len(all), first)
	}
	if over, first := b.Tail(100); len(over) != 12 || first != 0 {
		t.Fatalf("Tail beyond buffer = %d samples from %d", len(over), first)
	}
	if b.SampleCount() != 12 || b.Len() != 3 {
		t.Fatalf("SampleCount=%d Len=%d", b.SampleCount(), b.Len())
	}

	w, ok := b.Window(1)
	if !ok || w[0] != 4 {
		t.Fatalf("Window(1) = %v, %v", w, ok)
	}
	w[0] = -1
	if again, _ := b.Window(1); again[0] != 4 {
		t.Fatalf("Window must return a copy")
	}
	if _, ok := b.Window(3); ok {
		t.Fatalf("Window(3) should be out of range")
	}
}

func TestBuffer_RejectsWrongSize(t *testing.T) {
	b := pipeline.NewBuffer(4)
	if _, err := b.Append(make(types.Window, 3)); err == nil {
		t.Fatalf("expected error for short window")
	}
	if tail, first := b.Tail(4); tail != nil || first != 0 {
		t.Fatalf("empty buffer tail = %v from %d", tail, first)
	}
}

func TestBuffer_ConcurrentAppendAndSnapshot(t *testing.T) {
	b := pipeline.NewBuffer(8)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			win := make(types.Window, 8)
			for k := range win {
				win[k] = float64(i)
			}
			_, _ = b.Append(win)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			tail, first := b.Tail(20)
			if len(tail)%8 != 0 && len(tail) != 20 {
				t.Errorf("torn snapshot of %d samples", len(tail))
				return
			}
			for k, v := range tail {
				if want := float64((first + k) / 8); v != want {
					t.Errorf("sample %d = %v, want %v", first+k, v, want)
					return
				}
			}
		}
	}()
	wg.Wait()
	if b.Len() != 500 {
		t.Fatalf("expected 500 windows, got %d", b.Len())
	}
}
