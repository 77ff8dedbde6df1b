// Package costmodel estimates what a significance threshold costs and saves:
// bytes on the wire, compression ratio, and reconstruction error.
package costmodel

import (
	"math"

	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"gonum.org/v1/gonum/floats"
)

// ValidateThreshold accepts thresholds in [0,1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return types.InvalidConfig("threshold must be in [0,1], got %v", threshold)
	}
	return nil
}

// CountRetained counts the bins at or above threshold. Silent rows retain
// nothing, matching what the encoder sends for a silent window.
func CountRetained(m types.NormalizedMagnitudeMatrix, threshold float64) int {
	n := 0
	for _, row := range m {
		if len(row) == 0 || floats.Max(row) == 0 {
			continue
		}
		for _, v := range row {
			if v >= threshold {
				n++
			}
		}
	}
	return n
}

// Compute applies the size model to a retained-bin count.
func Compute(threshold float64, retained, windows, samples int, sizes types.SizeModel) types.CompressionStats {
	compressed := retained*(sizes.IndexBytes+sizes.CoefficientBytes) + windows*sizes.SentinelBytes
	uncompressed := samples * sizes.SampleBytes
	stats := types.CompressionStats{
		Threshold:         threshold,
		Windows:           windows,
		NonZeroBinCount:   retained,
		EstimatedBytes:    compressed,
		UncompressedBytes: uncompressed,
	}
	if uncompressed > 0 {
		stats.RatioPercent = 100 * (1 - float64(compressed)/float64(uncompressed))
	}
	return stats
}

// Estimate prices a threshold over a batch of windows holding samples
// samples in total. It is a pure function of its inputs.
func Estimate(m types.NormalizedMagnitudeMatrix, threshold float64, samples int, sizes types.SizeModel) (types.CompressionStats, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return types.CompressionStats{}, err
	}
	if samples < 0 {
		return types.CompressionStats{}, types.InvalidConfig("sample count must not be negative, got %d", samples)
	}
	return Compute(threshold, CountRetained(m, threshold), len(m), samples, sizes), nil
}
