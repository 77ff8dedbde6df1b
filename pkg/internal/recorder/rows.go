// Package recorder persists reconstructed windows and compression sweeps as
// Parquet, either to a local file or to an S3 bucket.
package recorder

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	parquet "github.com/parquet-go/parquet-go"
)

// WindowRow is one reconstructed window.
type WindowRow struct {
	SessionID    string    `parquet:"session_id"`
	WindowIndex  int64     `parquet:"window_index"`
	StartSeconds float64   `parquet:"start_seconds"`
	Threshold    float64   `parquet:"threshold"`
	Samples      []float64 `parquet:"samples"`
}

// SweepRow is one threshold of a compression sweep.
type SweepRow struct {
	Signal            string  `parquet:"signal"`
	WindowSize        int64   `parquet:"window_size"`
	Threshold         float64 `parquet:"threshold"`
	Windows           int64   `parquet:"windows"`
	NonZeroBins       int64   `parquet:"non_zero_bins"`
	EstimatedBytes    int64   `parquet:"estimated_bytes"`
	UncompressedBytes int64   `parquet:"uncompressed_bytes"`
	RatioPercent      float64 `parquet:"ratio_percent"`
}

// WindowRows lays out windows as rows, stamping each with its start time.
func WindowRows(sessionID string, cfg types.SessionConfig, windows []types.Window) []WindowRow {
	rows := make([]WindowRow, len(windows))
	for i, w := range windows {
		rows[i] = WindowRow{
			SessionID:    sessionID,
			WindowIndex:  int64(i),
			StartSeconds: cfg.SampleTime(i * cfg.WindowSize),
			Threshold:    cfg.Threshold,
			Samples:      append([]float64(nil), w...),
		}
	}
	return rows
}

// SweepRows converts sweep statistics for the named signal.
func SweepRows(signal string, windowSize int, stats []types.CompressionStats) []SweepRow {
	rows := make([]SweepRow, len(stats))
	for i, s := range stats {
		rows[i] = SweepRow{
			Signal:            signal,
			WindowSize:        int64(windowSize),
			Threshold:         s.Threshold,
			Windows:           int64(s.Windows),
			NonZeroBins:       int64(s.NonZeroBinCount),
			EstimatedBytes:    int64(s.EstimatedBytes),
			UncompressedBytes: int64(s.UncompressedBytes),
			RatioPercent:      s.RatioPercent,
		}
	}
	return rows
}

// Compressions lists the accepted page compression names.
var Compressions = []string{"snappy", "zstd", "gzip", "brotli", "lz4", "none"}

func compressionOption(name string) (parquet.WriterOption, error) {
	switch strings.ToLower(name) {
	case "", "snappy":
		return parquet.Compression(&parquet.Snappy), nil
	case "zstd":
		return parquet.Compression(&parquet.Zstd), nil
	case "gzip", "gz":
		return parquet.Compression(&parquet.Gzip), nil
	case "brotli":
		return parquet.Compression(&parquet.Brotli), nil
	case "lz4":
		return parquet.Compression(&parquet.Lz4Raw), nil
	case "none":
		return parquet.Compression(&parquet.Uncompressed), nil
	default:
		return nil, types.InvalidConfig("unknown parquet compression %q", name)
	}
}

// Encode writes rows as a single Parquet file.
func Encode[T any](rows []T, compression string) ([]byte, error) {
	opt, err := compressionOption(compression)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	pw := parquet.NewGenericWriter[T](&buf, opt)
	if _, err := pw.Write(rows); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reads every row of a Parquet file produced by Encode.
func Decode[T any](data []byte) ([]T, error) {
	return parquet.Read[T](bytes.NewReader(data), int64(len(data)))
}
