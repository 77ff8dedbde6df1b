// Package spectral computes one-sided spectra of fixed-size windows, selects
// their significant bins and synthesizes windows back from sparse spectra.
package spectral

import (
	"math"
	"math/cmplx"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Encoder turns windows of a fixed size into sparse frames. It holds no
// mutable state and may be shared between goroutines.
type Encoder struct {
	size int
}

// NewEncoder returns an encoder for windows of size samples.
func NewEncoder(size int) (*Encoder, error) {
	if size <= 0 {
		return nil, types.InvalidConfig("window size must be positive, got %d", size)
	}
	if size > types.MaxWindowSize {
		return nil, types.InvalidConfig("window size %d exceeds %d", size, types.MaxWindowSize)
	}
	return &Encoder{size: size}, nil
}

// Size returns N.
func (e *Encoder) Size() int { return e.size }

// Bins returns N/2+1, the number of bins in a one-sided spectrum.
func (e *Encoder) Bins() int { return e.size/2 + 1 }

// Transform computes bins 0..N/2 of the window's real forward transform.
func (e *Encoder) Transform(w types.Window) (types.Spectrum, error) {
	if len(w) != e.size {
		return nil, types.InvalidConfig("window has %d samples, encoder expects %d", len(w), e.size)
	}
	full := fft.FFTReal(w)
	out := make(types.Spectrum, e.Bins())
	copy(out, full)
	return out, nil
}

// Normalize returns |bin| / max|bin| for every bin. A silent spectrum
// normalizes to all zeros.
func Normalize(s types.Spectrum) []float64 {
	mags := make([]float64, len(s))
	for i, c := range s {
		mags[i] = cmplx.Abs(c)
	}
	if len(mags) == 0 {
		return mags
	}
	peak := floats.Max(mags)
	if peak == 0 {
		for i := range mags {
			mags[i] = 0
		}
		return mags
	}
	for i := range mags {
		mags[i] /= peak
	}
	return mags
}

// ValidateThreshold rejects thresholds the selector cannot interpret.
// Values above 1 are legal and select nothing.
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 {
		return types.InvalidConfig("threshold must be a non-negative number, got %v", threshold)
	}
	return nil
}

// Select keeps every bin whose normalized magnitude is >= threshold. A
// silent spectrum yields an empty frame at any threshold.
func (e *Encoder) Select(s types.Spectrum, threshold float64) (types.SparseFrame, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return types.SparseFrame{}, err
	}
	if len(s) != e.Bins() {
		return types.SparseFrame{}, types.InvalidConfig("spectrum has %d bins, encoder expects %d", len(s), e.Bins())
	}
	frame := types.SparseFrame{WindowSize: e.size}
	norm := Normalize(s)
	if floats.Max(norm) == 0 {
		return frame, nil
	}
	for k, m := range norm {
		if m >= threshold {
			frame.Bins = append(frame.Bins, types.SpectralBin{Index: uint32(k), Coefficient: s[k]})
		}
	}
	return frame, nil
}

// Encode transforms w and selects its significant bins.
func (e *Encoder) Encode(w types.Window, threshold float64) (types.SparseFrame, error) {
	s, err := e.Transform(w)
	if err != nil {
		return types.SparseFrame{}, err
	}
	return e.Select(s, threshold)
}

// Matrix returns the per-window normalized magnitudes of a batch.
func (e *Encoder) Matrix(windows []types.Window) (types.NormalizedMagnitudeMatrix, error) {
	out := make(types.NormalizedMagnitudeMatrix, 0, len(windows))
	for _, w := range windows {
		s, err := e.Transform(w)
		if err != nil {
			return nil, err
		}
		out = append(out, Normalize(s))
	}
	return out, nil
}
