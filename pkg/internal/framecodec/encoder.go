// Package framecodec reads and writes the sparse-frame wire format.
//
// A frame is a run of 12-byte coefficient records followed by a 4-byte
// end-of-frame marker, all little endian:
//
//	index uint32 | real float32 | stored float32 ... | 0x0000C07F
//
// The stored float is the negated imaginary part of the coefficient
// (stored = -Im(c)); decoders rebuild c = real - i*stored.
package framecodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
)

// EndOfFrame terminates every frame on the wire.
const EndOfFrame = types.EndOfFrame

// FrameBytes is the encoded size of a frame carrying bins coefficients.
func FrameBytes(bins int) int {
	return bins*types.RecordSize + types.SentinelSize
}

// CheckWindowSize verifies that every legal bin index of an N-sample window
// stays below the end-of-frame marker.
func CheckWindowSize(size int) error {
	if size <= 0 {
		return types.InvalidConfig("window size must be positive, got %d", size)
	}
	if size/2 >= int(EndOfFrame) {
		return types.InvalidConfig("window size %d: bin index %d would collide with end-of-frame 0x%08X", size, size/2, EndOfFrame)
	}
	return nil
}

// AppendFrame appends the wire encoding of f to dst. It refuses any bin whose
// index falls outside [0, N/2].
func AppendFrame(dst []byte, f types.SparseFrame) ([]byte, error) {
	if err := CheckWindowSize(f.WindowSize); err != nil {
		return dst, err
	}
	top := uint32(f.WindowSize / 2)
	for i, b := range f.Bins {
		if b.Index > top {
			return dst, &types.ProtocolError{
				Offset: int64(len(dst) + i*types.RecordSize),
				Index:  b.Index,
				Reason: fmt.Sprintf("coefficient index %d outside [0,%d]", b.Index, top),
			}
		}
	}
	for _, b := range f.Bins {
		dst = binary.LittleEndian.AppendUint32(dst, b.Index)
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(real(b.Coefficient))))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(float32(-imag(b.Coefficient))))
	}
	return binary.LittleEndian.AppendUint32(dst, EndOfFrame), nil
}

// Encoder writes one frame per WriteFrame call, in a single Write.
type Encoder struct {
	w      io.Writer
	size   int
	buf    []byte
	frames int64
	bytes  int64
}

// NewEncoder returns an encoder writing N-sample frames to w.
func NewEncoder(w io.Writer, size int) (*Encoder, error) {
	if err := CheckWindowSize(size); err != nil {
		return nil, err
	}
	return &Encoder{w: w, size: size}, nil
}

// WriteFrame encodes and writes f. A zero WindowSize inherits the encoder's.
func (e *Encoder) WriteFrame(f types.SparseFrame) error {
	if f.WindowSize == 0 {
		f.WindowSize = e.size
	}
	if f.WindowSize != e.size {
		return types.InvalidConfig("frame window size %d, encoder expects %d", f.WindowSize, e.size)
	}
	buf, err := AppendFrame(e.buf[:0], f)
	if err != nil {
		return err
	}
	e.buf = buf
	n, err := e.w.Write(buf)
	e.bytes += int64(n)
	if err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	e.frames++
	return nil
}

// Frames returns how many frames were written.
func (e *Encoder) Frames() int64 { return e.frames }

// BytesWritten returns how many bytes reached the writer.
func (e *Encoder) BytesWritten() int64 { return e.bytes }
