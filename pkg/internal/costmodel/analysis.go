package costmodel

import (
	"math"

	"github.com/joeydtaylor/sparsewave/pkg/internal/spectral"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/joeydtaylor/sparsewave/pkg/internal/windower"
	"gonum.org/v1/gonum/floats"
)

// Analysis precomputes the spectra of a sample set so thresholds can be
// priced and previewed repeatedly. It is read-only after New and safe for
// concurrent use.
type Analysis struct {
	size    int
	sizes   types.SizeModel
	samples []float64
	spectra []types.Spectrum
	matrix  types.NormalizedMagnitudeMatrix
}

// WithSizeModel overrides the byte widths used for pricing.
func WithSizeModel(sizes types.SizeModel) types.Option[*Analysis] {
	return func(a *Analysis) { a.sizes = sizes }
}

// New windows samples (dropping the remainder) and transforms every window.
func New(samples []float64, windowSize int, options ...types.Option[*Analysis]) (*Analysis, error) {
	win, err := windower.New(windowSize)
	if err != nil {
		return nil, err
	}
	enc, err := spectral.NewEncoder(windowSize)
	if err != nil {
		return nil, err
	}
	trimmed := append([]float64(nil), win.Trim(samples)...)
	if len(trimmed) == 0 {
		return nil, types.InvalidConfig("%d samples do not fill one %d-sample window", len(samples), windowSize)
	}

	a := &Analysis{size: windowSize, sizes: types.DefaultSizeModel(), samples: trimmed}
	for _, option := range options {
		option(a)
	}
	for w := range win.Windows(trimmed) {
		s, err := enc.Transform(w)
		if err != nil {
			return nil, err
		}
		a.spectra = append(a.spectra, s)
		a.matrix = append(a.matrix, spectral.Normalize(s))
	}
	return a, nil
}

// WindowSize returns N.
func (a *Analysis) WindowSize() int { return a.size }

// Windows returns the number of whole windows analysed.
func (a *Analysis) Windows() int { return len(a.spectra) }

// Samples returns the analysed (trimmed) samples.
func (a *Analysis) Samples() []float64 { return a.samples }

// SizeModel returns the byte widths in use.
func (a *Analysis) SizeModel() types.SizeModel { return a.sizes }

// Matrix returns the per-window normalized magnitudes.
func (a *Analysis) Matrix() types.NormalizedMagnitudeMatrix { return a.matrix }

// Estimate prices one threshold.
func (a *Analysis) Estimate(threshold float64) (types.CompressionStats, error) {
	return Estimate(a.matrix, threshold, len(a.samples), a.sizes)
}

// Sweep prices every threshold in order.
func (a *Analysis) Sweep(thresholds []float64) ([]types.CompressionStats, error) {
	out := make([]types.CompressionStats, 0, len(thresholds))
	for _, th := range thresholds {
		st, err := a.Estimate(th)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Steps returns n evenly spaced thresholds covering [0,1], endpoints included.
func Steps(n int) []float64 {
	if n < 2 {
		n = 2
	}
	out := make([]float64, n)
	floats.Span(out, 0, 1)
	return out
}

// Reconstruct returns the time-domain signal the receiver would rebuild at
// threshold, concatenated over all windows.
func (a *Analysis) Reconstruct(threshold float64) ([]float64, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	synth, err := spectral.NewSynthesizer(a.size)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, len(a.samples))
	masked := make(types.Spectrum, a.size/2+1)
	for i, s := range a.spectra {
		silent := floats.Max(a.matrix[i]) == 0
		for k := range s {
			if !silent && a.matrix[i][k] >= threshold {
				masked[k] = s[k]
			} else {
				masked[k] = 0
			}
		}
		w, err := synth.Inverse(masked)
		if err != nil {
			return nil, err
		}
		out = append(out, w...)
	}
	return out, nil
}

// Error measures a reconstruction against the analysed samples.
func (a *Analysis) Error(reconstructed []float64) (types.ReconstructionError, error) {
	return Compare(a.samples, reconstructed)
}

// Compare measures got against want. An exact match reports Exact and a
// zero SNR rather than an infinite one.
func Compare(want, got []float64) (types.ReconstructionError, error) {
	if len(want) != len(got) {
		return types.ReconstructionError{}, types.InvalidConfig("length mismatch: %d vs %d", len(want), len(got))
	}
	if len(want) == 0 {
		return types.ReconstructionError{}, nil
	}
	n := float64(len(want))
	errs := make([]float64, len(want))
	floats.SubTo(errs, want, got)

	out := types.ReconstructionError{
		RMSE:   floats.Norm(errs, 2) / math.Sqrt(n),
		MaxAbs: floats.Norm(errs, math.Inf(1)),
	}
	noise := floats.Dot(errs, errs)
	power := floats.Dot(want, want)
	switch {
	case noise == 0:
		out.Exact = true
	case power > 0:
		out.SNRDecib = 10 * math.Log10(power/noise)
	}
	return out, nil
}
