package types

// Wire layout of one sparse frame:
//
//	repeat { index uint32 LE | real float32 LE | -imag float32 LE }
//	EndOfFrame uint32 LE
//
// The imaginary part travels negated: the far-end device computes its
// transform with the conjugate twiddle, so the receiver rebuilds each bin as
// real - i*stored.
const (
	EndOfFrame uint32 = 0x0000C07F

	IndexSize       = 4
	CoefficientSize = 8
	RecordSize      = IndexSize + CoefficientSize
	SentinelSize    = 4
	SampleSize      = 4 // float32 LE samples on the host-to-device direction

	// MaxWindowSize is the largest window whose top bin index N/2 stays
	// strictly below EndOfFrame, so no coefficient index can alias the sentinel.
	MaxWindowSize = 2*int(EndOfFrame) - 1
)
