package builder

import (
	"github.com/joeydtaylor/sparsewave/pkg/internal/analysisrpc"
	"github.com/joeydtaylor/sparsewave/pkg/internal/costmodel"
	"github.com/joeydtaylor/sparsewave/pkg/internal/types"
	"google.golang.org/grpc"
)

type Analysis = costmodel.Analysis

type CompressionStats = types.CompressionStats

type SizeModel = types.SizeModel

type BaselineResult = types.BaselineResult

type ReconstructionError = types.ReconstructionError

type AnalysisServer = analysisrpc.Server

type AnalysisClient = analysisrpc.Client

type TLSConfig = types.TLSConfig

// AnalysisServerOption configures an AnalysisServer.
type AnalysisServerOption = types.Option[*analysisrpc.Server]

// BaselineCodecs lists the lossless codecs the raw samples are compared against.
var BaselineCodecs = costmodel.Codecs

func DefaultSizeModel() SizeModel { return types.DefaultSizeModel() }

func AnalysisSizeModel() SizeModel { return types.AnalysisSizeModel() }

func WireSizeModel() SizeModel { return types.WireSizeModel() }

// NewAnalysis precomputes the normalized magnitude matrix of samples.
func NewAnalysis(samples []float64, windowSize int, options ...types.Option[*costmodel.Analysis]) (*Analysis, error) {
	return costmodel.New(samples, windowSize, options...)
}

func AnalysisWithSizeModel(sizes SizeModel) types.Option[*costmodel.Analysis] {
	return costmodel.WithSizeModel(sizes)
}

// ThresholdSteps returns n evenly spaced thresholds from 0 to 1.
func ThresholdSteps(n int) []float64 {
	return costmodel.Steps(n)
}

// NewAnalysisServer serves a over native gRPC and gRPC-Web.
func NewAnalysisServer(a *Analysis, signal string, options ...types.Option[*analysisrpc.Server]) *AnalysisServer {
	svc := analysisrpc.NewService(a, signal)
	s := analysisrpc.NewServer(svc, options...)
	svc.ConnectLogger(s.Loggers()...)
	return s
}

func AnalysisServerWithTLS(cfg *TLSConfig) types.Option[*analysisrpc.Server] {
	return analysisrpc.WithTLS(cfg)
}

func AnalysisServerWithAllowedOrigins(origins ...string) types.Option[*analysisrpc.Server] {
	return analysisrpc.WithAllowedOrigins(origins...)
}

func AnalysisServerWithLogger(l ...types.Logger) types.Option[*analysisrpc.Server] {
	return analysisrpc.WithServerLogger(l...)
}

// DialAnalysis connects to a remote analysis server; cleartext by default.
func DialAnalysis(target string, opts ...grpc.DialOption) (*AnalysisClient, error) {
	return analysisrpc.Dial(target, opts...)
}

// CompareSignals reports how far got is from want.
func CompareSignals(want, got []float64) (ReconstructionError, error) {
	return costmodel.Compare(want, got)
}
