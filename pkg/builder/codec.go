package builder

import (
	"io"

	"github.com/joeydtaylor/sparsewave/pkg/internal/framecodec"
	"github.com/joeydtaylor/sparsewave/pkg/internal/spectral"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

type SparseFrame = types.SparseFrame

type SpectralBin = types.SpectralBin

type FrameEncoder = framecodec.Encoder

type FrameDecoder = framecodec.Decoder

type SpectralEncoder = spectral.Encoder

type Synthesizer = spectral.Synthesizer

// EndOfFrame is the marker closing every frame on the wire.
const EndOfFrame = types.EndOfFrame

// MaxWindowSize is the largest window whose bin indices never collide with EndOfFrame.
const MaxWindowSize = types.MaxWindowSize

func NewSpectralEncoder(windowSize int) (*SpectralEncoder, error) {
	return spectral.NewEncoder(windowSize)
}

func NewSynthesizer(windowSize int) (*Synthesizer, error) {
	return spectral.NewSynthesizer(windowSize)
}

func NewFrameEncoder(w io.Writer, windowSize int) (*FrameEncoder, error) {
	return framecodec.NewEncoder(w, windowSize)
}

func NewFrameDecoder(r io.Reader, windowSize int, options ...types.Option[*framecodec.Decoder]) (*FrameDecoder, error) {
	return framecodec.NewDecoder(r, windowSize, options...)
}

func FrameDecoderWithLogger(l ...types.Logger) types.Option[*framecodec.Decoder] {
	return framecodec.DecoderWithLogger(l...)
}

func FrameDecoderWithVerbose(verbose bool) types.Option[*framecodec.Decoder] {
	return framecodec.DecoderWithVerbose(verbose)
}
