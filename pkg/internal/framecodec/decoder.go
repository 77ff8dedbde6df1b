package framecodec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/spectral"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// Decoder reads frames from a byte stream and reconstructs their windows.
// It is not safe for concurrent use.
type Decoder struct {
	internallogger.Registry

	r       io.Reader
	size    int
	synth   *spectral.Synthesizer
	offset  int64
	frames  int64
	verbose bool
	head    [types.IndexSize]byte
	body    [types.CoefficientSize]byte

	componentMetadata types.ComponentMetadata
}

// DecoderWithLogger attaches loggers.
func DecoderWithLogger(l ...types.Logger) types.Option[*Decoder] {
	return func(d *Decoder) { d.ConnectLogger(l...) }
}

// DecoderWithVerbose traces every coefficient and end-of-frame at debug level.
func DecoderWithVerbose(verbose bool) types.Option[*Decoder] {
	return func(d *Decoder) { d.verbose = verbose }
}

// DecoderWithComponentMetadata names the decoder in log lines.
func DecoderWithComponentMetadata(name, id string) types.Option[*Decoder] {
	return func(d *Decoder) {
		d.componentMetadata.Name = name
		d.componentMetadata.ID = id
	}
}

// NewDecoder returns a decoder for N-sample frames read from r.
func NewDecoder(r io.Reader, size int, options ...types.Option[*Decoder]) (*Decoder, error) {
	if err := CheckWindowSize(size); err != nil {
		return nil, err
	}
	synth, err := spectral.NewSynthesizer(size)
	if err != nil {
		return nil, err
	}
	d := &Decoder{
		r:                 r,
		size:              size,
		synth:             synth,
		componentMetadata: types.ComponentMetadata{Type: "DECODER"},
	}
	for _, option := range options {
		option(d)
	}
	return d, nil
}

// NextFrame reads coefficient records up to and including the next
// end-of-frame marker. It returns io.EOF when the stream ends cleanly between
// frames and a *types.ProtocolError for an out-of-range index or a stream
// that ends mid-frame.
func (d *Decoder) NextFrame() (types.SparseFrame, error) {
	frame := types.SparseFrame{WindowSize: d.size}
	top := uint32(d.size / 2)
	started := false

	for {
		at := d.offset
		if err := d.read(d.head[:]); err != nil {
			if errors.Is(err, io.EOF) && !started {
				return frame, io.EOF
			}
			return frame, d.streamError(at, err)
		}
		started = true

		idx := binary.LittleEndian.Uint32(d.head[:])
		if idx == EndOfFrame {
			d.frames++
			if d.verbose {
				d.NotifyLoggers(types.DebugLevel, "end of frame", "component", d.componentMetadata, "event", "EndOfFrame", "frame", d.frames, "bins", len(frame.Bins))
			}
			return frame, nil
		}
		if idx > top {
			err := &types.ProtocolError{Offset: at, Index: idx, Reason: fmt.Sprintf("coefficient index %d outside [0,%d]", idx, top)}
			d.NotifyLoggers(types.ErrorLevel, "protocol desync", "component", d.componentMetadata, "event", "NextFrame", "error", err)
			return frame, err
		}

		if err := d.read(d.body[:]); err != nil {
			return frame, d.streamError(at, err)
		}
		re := math.Float32frombits(binary.LittleEndian.Uint32(d.body[0:4]))
		stored := math.Float32frombits(binary.LittleEndian.Uint32(d.body[4:8]))
		c := complex(float64(re), -float64(stored))
		frame.Bins = append(frame.Bins, types.SpectralBin{Index: idx, Coefficient: c})

		if d.verbose {
			d.NotifyLoggers(types.DebugLevel, "coefficient received", "component", d.componentMetadata, "event", "Coefficient", "index", idx, "real", real(c), "imag", imag(c))
		}
	}
}

// Next reads one frame and returns its reconstructed window.
func (d *Decoder) Next() (types.Window, error) {
	frame, err := d.NextFrame()
	if err != nil {
		return nil, err
	}
	return d.synth.Frame(frame)
}

// Reconstruct synthesizes the window a decoded frame describes.
func (d *Decoder) Reconstruct(f types.SparseFrame) (types.Window, error) {
	return d.synth.Frame(f)
}

// Frames returns the number of complete frames decoded.
func (d *Decoder) Frames() int64 { return d.frames }

// Offset returns the number of bytes consumed.
func (d *Decoder) Offset() int64 { return d.offset }

func (d *Decoder) read(buf []byte) error {
	n, err := io.ReadFull(d.r, buf)
	d.offset += int64(n)
	return err
}

func (d *Decoder) streamError(at int64, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &types.ProtocolError{Offset: at, Reason: "stream ended mid-frame", Err: io.ErrUnexpectedEOF}
	}
	return fmt.Errorf("read frame at byte %d: %w", at, err)
}
