// Package analysisrpc serves the offline cost model over gRPC. The same
// listener accepts native gRPC (HTTP/2, cleartext via h2c or TLS) and
// gRPC-Web from browsers. Messages are protobuf well-known types so no
// generated stubs are needed.
package analysisrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const serviceName = "sparsewave.analysis.v1.Analysis"

const (
	methodDescribe = "/" + serviceName + "/Describe"
	methodEstimate = "/" + serviceName + "/Estimate"
	methodSweep    = "/" + serviceName + "/Sweep"
)

// AnalysisServer is the server API of the analysis service.
//
//   - Describe reports the loaded signal: window size, windows, size model and
//     lossless baselines.
//   - Estimate takes a threshold and returns its compression stats.
//   - Sweep takes a list of thresholds and returns one stats struct each.
type AnalysisServer interface {
	Describe(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	Estimate(context.Context, *wrapperspb.DoubleValue) (*structpb.Struct, error)
	Sweep(context.Context, *structpb.ListValue) (*structpb.ListValue, error)
}

// RegisterAnalysisServer registers srv on s.
func RegisterAnalysisServer(s grpc.ServiceRegistrar, srv AnalysisServer) {
	s.RegisterService(&analysisServiceDesc, srv)
}

var analysisServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*AnalysisServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Describe", Handler: describeHandler},
		{MethodName: "Estimate", Handler: estimateHandler},
		{MethodName: "Sweep", Handler: sweepHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "sparsewave/analysis/v1/analysis.proto",
}

func describeHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).Describe(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodDescribe}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalysisServer).Describe(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func estimateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.DoubleValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).Estimate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodEstimate}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalysisServer).Estimate(ctx, req.(*wrapperspb.DoubleValue))
	}
	return interceptor(ctx, in, info, handler)
}

func sweepHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.ListValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalysisServer).Sweep(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: methodSweep}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(AnalysisServer).Sweep(ctx, req.(*structpb.ListValue))
	}
	return interceptor(ctx, in, info, handler)
}
