package analysisrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/joeydtaylor/sparsewave/pkg/internal/costmodel"
	"github.com/joeydtaylor/sparsewave/pkg/internal/internallogger"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// maxSweepThresholds bounds a single Sweep request.
const maxSweepThresholds = 10_000

// Service answers analysis requests against one precomputed Analysis.
type Service struct {
	internallogger.Registry

	analysis *costmodel.Analysis
	signal   string

	componentMetadata types.ComponentMetadata
}

// NewService wraps a for serving; signal names the excitation it was built from.
func NewService(a *costmodel.Analysis, signal string, loggers ...types.Logger) *Service {
	s := &Service{
		analysis:          a,
		signal:            signal,
		componentMetadata: types.ComponentMetadata{Type: "ANALYSIS_RPC", Name: signal},
	}
	s.ConnectLogger(loggers...)
	return s
}

func (s *Service) Describe(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	baselines, err := s.analysis.Baselines()
	if err != nil {
		return nil, status.Errorf(codes.Internal, "baselines: %v", err)
	}
	bl := make([]interface{}, len(baselines))
	for i, b := range baselines {
		bl[i] = map[string]interface{}{
			"codec":         b.Codec,
			"bytes":         b.Bytes,
			"ratio_percent": b.RatioPercent,
		}
	}
	sizes := s.analysis.SizeModel()
	out, err := structpb.NewStruct(map[string]interface{}{
		"signal":      s.signal,
		"window_size": s.analysis.WindowSize(),
		"windows":     s.analysis.Windows(),
		"samples":     len(s.analysis.Samples()),
		"size_model": map[string]interface{}{
			"index_bytes":       sizes.IndexBytes,
			"coefficient_bytes": sizes.CoefficientBytes,
			"sentinel_bytes":    sizes.SentinelBytes,
			"sample_bytes":      sizes.SampleBytes,
		},
		"baselines": bl,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode description: %v", err)
	}
	return out, nil
}

func (s *Service) Estimate(ctx context.Context, in *wrapperspb.DoubleValue) (*structpb.Struct, error) {
	stats, err := s.analysis.Estimate(in.GetValue())
	if err != nil {
		return nil, s.statusFor("Estimate", err)
	}
	out, err := statsToStruct(stats)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode stats: %v", err)
	}
	s.NotifyLoggers(types.DebugLevel, "estimate served", "component", s.componentMetadata, "event", "Estimate",
		"threshold", stats.Threshold, "non_zero_bins", stats.NonZeroBinCount, "ratio_percent", stats.RatioPercent)
	return out, nil
}

func (s *Service) Sweep(ctx context.Context, in *structpb.ListValue) (*structpb.ListValue, error) {
	values := in.GetValues()
	if len(values) > maxSweepThresholds {
		return nil, status.Errorf(codes.InvalidArgument, "sweep of %d thresholds exceeds %d", len(values), maxSweepThresholds)
	}
	thresholds := make([]float64, len(values))
	for i, v := range values {
		n, ok := v.GetKind().(*structpb.Value_NumberValue)
		if !ok {
			return nil, status.Errorf(codes.InvalidArgument, "threshold %d is not a number", i)
		}
		thresholds[i] = n.NumberValue
	}

	stats, err := s.analysis.Sweep(thresholds)
	if err != nil {
		return nil, s.statusFor("Sweep", err)
	}
	out := &structpb.ListValue{Values: make([]*structpb.Value, len(stats))}
	for i, st := range stats {
		sv, err := statsToStruct(st)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode stats: %v", err)
		}
		out.Values[i] = structpb.NewStructValue(sv)
	}
	s.NotifyLoggers(types.DebugLevel, "sweep served", "component", s.componentMetadata, "event", "Sweep", "thresholds", len(thresholds))
	return out, nil
}

func (s *Service) statusFor(event string, err error) error {
	if errors.Is(err, types.ErrInvalidConfiguration) {
		return status.Error(codes.InvalidArgument, err.Error())
	}
	s.NotifyLoggers(types.ErrorLevel, "analysis request failed", "component", s.componentMetadata, "event", event, "error", err)
	return status.Error(codes.Internal, err.Error())
}

func statsToStruct(st types.CompressionStats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]interface{}{
		"threshold":          st.Threshold,
		"windows":            st.Windows,
		"non_zero_bins":      st.NonZeroBinCount,
		"estimated_bytes":    st.EstimatedBytes,
		"uncompressed_bytes": st.UncompressedBytes,
		"ratio_percent":      st.RatioPercent,
	})
}

func statsFromStruct(s *structpb.Struct) (types.CompressionStats, error) {
	f := s.GetFields()
	num := func(k string) (float64, error) {
		v, ok := f[k]
		if !ok {
			return 0, fmt.Errorf("stats field %q missing", k)
		}
		return v.GetNumberValue(), nil
	}
	var st types.CompressionStats
	var err error
	var v float64
	if st.Threshold, err = num("threshold"); err != nil {
		return st, err
	}
	if v, err = num("windows"); err != nil {
		return st, err
	}
	st.Windows = int(v)
	if v, err = num("non_zero_bins"); err != nil {
		return st, err
	}
	st.NonZeroBinCount = int(v)
	if v, err = num("estimated_bytes"); err != nil {
		return st, err
	}
	st.EstimatedBytes = int(v)
	if v, err = num("uncompressed_bytes"); err != nil {
		return st, err
	}
	st.UncompressedBytes = int(v)
	if st.RatioPercent, err = num("ratio_percent"); err != nil {
		return st, err
	}
	return st, nil
}

var _ AnalysisServer = (*Service)(nil)
