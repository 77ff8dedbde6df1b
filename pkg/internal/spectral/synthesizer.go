package spectral

import (
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
)

// Synthesizer rebuilds time-domain windows from one-sided spectra.
// It reuses its transform plan and is not safe for concurrent use.
type Synthesizer struct {
	size  int
	plan  *fourier.FFT
	dense types.Spectrum
}

// NewSynthesizer returns a synthesizer for windows of size samples.
func NewSynthesizer(size int) (*Synthesizer, error) {
	if size <= 0 {
		return nil, types.InvalidConfig("window size must be positive, got %d", size)
	}
	return &Synthesizer{
		size:  size,
		plan:  fourier.NewFFT(size),
		dense: make(types.Spectrum, size/2+1),
	}, nil
}

// Size returns N.
func (s *Synthesizer) Size() int { return s.size }

// Inverse runs the inverse real transform of a full one-sided spectrum.
func (s *Synthesizer) Inverse(spectrum types.Spectrum) (types.Window, error) {
	if len(spectrum) != s.size/2+1 {
		return nil, types.InvalidConfig("spectrum has %d bins, want %d", len(spectrum), s.size/2+1)
	}
	out := s.plan.Sequence(make([]float64, s.size), spectrum)
	floats.Scale(1/float64(s.size), out)
	return types.Window(out), nil
}

// Frame reconstructs a window from a sparse frame; absent bins are zero.
func (s *Synthesizer) Frame(f types.SparseFrame) (types.Window, error) {
	for i := range s.dense {
		s.dense[i] = 0
	}
	for _, b := range f.Bins {
		if int(b.Index) >= len(s.dense) {
			return nil, types.InvalidConfig("bin index %d outside [0,%d]", b.Index, len(s.dense)-1)
		}
		s.dense[b.Index] = b.Coefficient
	}
	return s.Inverse(s.dense)
}
