package pipeline

import (
	"sync"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Buffer is the append-only, concurrency-safe store of reconstructed
// windows. The receiver appends while the render step reads snapshots.
type Buffer struct {
	mu      sync.RWMutex
	size    int
	windows []types.Window
}

// NewBuffer returns an empty buffer of N-sample windows.
func NewBuffer(size int) *Buffer {
	return &Buffer{size: size}
}

// Append stores w and returns the number of buffered windows. The buffer
// takes ownership of w.
func (b *Buffer) Append(w types.Window) (int, error) {
	if len(w) != b.size {
		return 0, types.InvalidConfig("window has %d samples, buffer holds %d-sample windows", len(w), b.size)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.windows = append(b.windows, w)
	return len(b.windows), nil
}

// WindowSize returns N.
func (b *Buffer) WindowSize() int { return b.size }

// Len returns the number of buffered windows.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.windows)
}

// SampleCount returns the number of buffered samples.
func (b *Buffer) SampleCount() int {
	return b.Len() * b.size
}

// Window returns a copy of window i.
func (b *Buffer) Window(i int) (types.Window, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.windows) {
		return nil, false
	}
	return append(types.Window(nil), b.windows[i]...), true
}

// Windows returns a snapshot of the buffered windows. The windows themselves
// are shared and must not be modified.
func (b *Buffer) Windows() []types.Window {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]types.Window(nil), b.windows...)
}

// Samples returns every buffered sample in order.
func (b *Buffer) Samples() []float64 {
	out, _ := b.Tail(-1)
	return out
}

// Tail returns a copy of the most recent k samples and the index of the first
// one since the session began. k < 0 returns everything.
func (b *Buffer) Tail(k int) ([]float64, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	total := len(b.windows) * b.size
	if total == 0 {
		return nil, 0
	}
	if k < 0 || k > total {
		k = total
	}
	first := total - k
	out := make([]float64, 0, k)
	for wi := first / b.size; wi < len(b.windows); wi++ {
		w := b.windows[wi]
		from := 0
		if wi == first/b.size {
			from = first % b.size
		}
		out = append(out, w[from:]...)
	}
	return out, first
}
