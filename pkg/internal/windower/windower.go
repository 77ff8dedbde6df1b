// Package windower splits a sample sequence into fixed-size windows.
package windower

import (
	"iter"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Windower yields consecutive, non-overlapping windows of a fixed size.
type Windower struct {
	size int
}

// New returns a windower for windows of size samples.
func New(size int) (*Windower, error) {
	if size <= 0 {
		return nil, types.InvalidConfig("window size must be positive, got %d", size)
	}
	return &Windower{size: size}, nil
}

// Size returns N.
func (w *Windower) Size() int { return w.size }

// Count returns how many whole windows a sequence of length samples holds.
func (w *Windower) Count(length int) int {
	if length <= 0 {
		return 0
	}
	return length / w.size
}

// Trim returns the prefix of samples covered by whole windows.
func (w *Windower) Trim(samples []float64) []float64 {
	return samples[:w.Count(len(samples))*w.size]
}

// Windows lazily yields each whole window in order; trailing samples that do
// not fill a window are dropped. Yielded windows alias samples.
func (w *Windower) Windows(samples []float64) iter.Seq[types.Window] {
	return func(yield func(types.Window) bool) {
		for off := 0; off+w.size <= len(samples); off += w.size {
			if !yield(types.Window(samples[off : off+w.size : off+w.size])) {
				return
			}
		}
	}
}

// Collect materializes Windows.
func (w *Windower) Collect(samples []float64) []types.Window {
	out := make([]types.Window, 0, w.Count(len(samples)))
	for win := range w.Windows(samples) {
		out = append(out, win)
	}
	return out
}
