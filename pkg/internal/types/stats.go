package types

// CompressionStats is the cost estimate for one threshold over a sample set.
type CompressionStats struct {
	Threshold         float64 `json:"threshold" yaml:"threshold"`
	Windows           int     `json:"windows" yaml:"windows"`
	NonZeroBinCount   int     `json:"non_zero_bins" yaml:"non_zero_bins"`
	EstimatedBytes    int     `json:"estimated_bytes" yaml:"estimated_bytes"`
	UncompressedBytes int     `json:"uncompressed_bytes" yaml:"uncompressed_bytes"`
	RatioPercent      float64 `json:"ratio_percent" yaml:"ratio_percent"`
}

// SizeModel carries the byte widths the cost model charges for each field.
type SizeModel struct {
	IndexBytes       int `json:"index_bytes" yaml:"index_bytes"`
	CoefficientBytes int `json:"coefficient_bytes" yaml:"coefficient_bytes"`
	SentinelBytes    int `json:"sentinel_bytes" yaml:"sentinel_bytes"`
	SampleBytes      int `json:"sample_bytes" yaml:"sample_bytes"`
}

// DefaultSizeModel charges the wire widths for the sparse frames against raw
// samples stored as doubles.
func DefaultSizeModel() SizeModel {
	return SizeModel{IndexBytes: IndexSize, CoefficientBytes: CoefficientSize, SentinelBytes: SentinelSize, SampleBytes: 8}
}

// AnalysisSizeModel charges a complex double per coefficient and a double per
// raw sample, the widths of the offline analysis representation.
func AnalysisSizeModel() SizeModel {
	return SizeModel{IndexBytes: 4, CoefficientBytes: 16, SentinelBytes: 4, SampleBytes: 8}
}

// WireSizeModel charges the widths actually used on the link in both directions.
func WireSizeModel() SizeModel {
	return SizeModel{IndexBytes: IndexSize, CoefficientBytes: CoefficientSize, SentinelBytes: SentinelSize, SampleBytes: SampleSize}
}

// BaselineResult is the size of the raw sample stream under a lossless codec.
type BaselineResult struct {
	Codec        string  `json:"codec" yaml:"codec"`
	Bytes        int     `json:"bytes" yaml:"bytes"`
	RatioPercent float64 `json:"ratio_percent" yaml:"ratio_percent"`
}

// ReconstructionError compares a lossy reconstruction with its source.
type ReconstructionError struct {
	RMSE     float64 `json:"rmse" yaml:"rmse"`
	MaxAbs   float64 `json:"max_abs" yaml:"max_abs"`
	SNRDecib float64 `json:"snr_db" yaml:"snr_db"`
	Exact    bool    `json:"exact" yaml:"exact"`
}
