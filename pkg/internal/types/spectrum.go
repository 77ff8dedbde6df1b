package types

// Spectrum holds the one-sided forward transform of a window: bins 0..N/2.
type Spectrum []complex128

// SpectralBin is a single retained frequency component.
type SpectralBin struct {
	Index       uint32
	Coefficient complex128
}

// SparseFrame is the retained subset of one window's spectrum, in increasing
// index order. Bins that are absent reconstruct as zero.
type SparseFrame struct {
	WindowSize int
	Bins       []SpectralBin
}

// Dense expands the frame back into a full one-sided spectrum.
func (f SparseFrame) Dense() Spectrum {
	out := make(Spectrum, f.WindowSize/2+1)
	for _, b := range f.Bins {
		if int(b.Index) < len(out) {
			out[b.Index] = b.Coefficient
		}
	}
	return out
}

// NormalizedMagnitudeMatrix has one row per window; each row is the bin
// magnitudes divided by that row's own maximum (all zero for a silent window).
type NormalizedMagnitudeMatrix [][]float64
