package costmodel

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4"
)

// Codecs lists the lossless baselines Baseline understands.
var Codecs = []string{"brotli", "gzip", "lz4", "snappy", "zstd"}

// RawBytes serializes samples as little-endian doubles, the uncompressed
// representation the baselines compress.
func RawBytes(samples []float64) []byte {
	out := make([]byte, 0, len(samples)*8)
	for _, s := range samples {
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(s))
	}
	return out
}

// Compress runs data through the named codec.
func Compress(codec string, data []byte) ([]byte, error) {
	var b bytes.Buffer
	var w io.WriteCloser

	switch strings.ToLower(codec) {
	case "gzip":
		w = gzip.NewWriter(&b)
	case "snappy":
		w = snappy.NewBufferedWriter(&b)
	case "zstd":
		var err error
		w, err = zstd.NewWriter(&b)
		if err != nil {
			return nil, err
		}
	case "brotli":
		w = brotli.NewWriterLevel(&b, brotli.BestCompression)
	case "lz4":
		w = lz4.NewWriter(&b)
	default:
		return nil, types.InvalidConfig("unknown codec %q", codec)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("%s: %w", codec, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", codec, err)
	}
	return b.Bytes(), nil
}

// Baselines compresses the analysed samples with every codec and reports
// the ratio against the same uncompressed size the sparse frames are priced
// against. Results are ordered smallest first.
func (a *Analysis) Baselines(codecs ...string) ([]types.BaselineResult, error) {
	if len(codecs) == 0 {
		codecs = Codecs
	}
	raw := RawBytes(a.samples)
	uncompressed := len(a.samples) * a.sizes.SampleBytes

	out := make([]types.BaselineResult, 0, len(codecs))
	for _, c := range codecs {
		packed, err := Compress(c, raw)
		if err != nil {
			return nil, err
		}
		res := types.BaselineResult{Codec: strings.ToLower(c), Bytes: len(packed)}
		if uncompressed > 0 {
			res.RatioPercent = 100 * (1 - float64(len(packed))/float64(uncompressed))
		}
		out = append(out, res)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Bytes < out[j].Bytes })
	return out, nil
}
